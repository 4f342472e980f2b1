// Package config loads leapcrawl configuration and turns it into the
// override bundle handed to the crawl layer.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
)

// Default configuration values.
const (
	DefaultConfigFile = "leapcrawl.yaml"
	DefaultOutput     = "text"
	EnvPrefix         = "LEAPCRAWL_"
)

// Output formats accepted by the output key.
var outputFormats = []string{"text", "json", "yaml"}

// Config holds all leapcrawl configuration options.
type Config struct {
	Target       *TargetConfig   `koanf:"target"`
	Overrides    OverridesConfig `koanf:"overrides"`
	Verbose      bool            `koanf:"verbose"`
	OutputFormat string          `koanf:"output"`

	// File is the config file that was loaded, empty when none was found.
	File string `koanf:"-"`
}

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // postgres, mysql, duckdb, sqlite

	// File-based databases (DuckDB, SQLite)
	Path string `koanf:"path"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options (sslmode, driver, tls, ...)
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// OverridesConfig is the configured form of the crawl override bundle.
type OverridesConfig struct {
	// Strategies maps a metadata category to a retrieval strategy name.
	Strategies map[string]string `koanf:"strategies"`

	// ViewsDir holds <KEY>.sql files merged over the adapter's views.
	ViewsDir string `koanf:"views_dir"`

	// Views are inline SQL merged last.
	Views map[string]string `koanf:"views"`

	Identifiers *IdentifierConfig `koanf:"identifiers"`
}

// IdentifierConfig overrides parts of the adapter's identifier policy.
// Empty fields keep the adapter's value.
type IdentifierConfig struct {
	Quote         string   `koanf:"quote"`
	QuoteEnd      string   `koanf:"quote_end"`
	Escape        string   `koanf:"escape"`
	Normalization string   `koanf:"normalization"`
	Reserved      []string `koanf:"reserved"`
}

// ToAdapterConfig converts the target into the adapter connection config.
func (t *TargetConfig) ToAdapterConfig() core.AdapterConfig {
	return core.AdapterConfig{
		Type:     strings.ToLower(t.Type),
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (t *TargetConfig) Validate() error {
	if t == nil || t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if !adapter.IsRegistered(t.Type) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// Validate checks the configuration values that do not depend on an
// adapter.
func (c *Config) Validate() error {
	valid := false
	for _, f := range outputFormats {
		if c.OutputFormat == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.OutputFormat, strings.Join(outputFormats, ", "))
	}
	if _, err := c.Overrides.strategies(); err != nil {
		return err
	}
	if id := c.Overrides.Identifiers; id != nil && id.Normalization != "" {
		if _, ok := core.ParseNormalization(id.Normalization); !ok {
			return fmt.Errorf("unknown identifier normalization %q", id.Normalization)
		}
	}
	return nil
}
