// Package postgres provides a PostgreSQL database adapter for leapcrawl.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/lib/pq"              // lib/pq driver
)

//go:embed views/*.sql
var viewsFS embed.FS

// Driver names accepted in the "driver" option.
const (
	DriverPgx = "pgx"
	DriverPq  = "postgres"
)

// Server versions (server_version_num) that introduced table kinds.
const (
	versionMaterializedViews = 90300
	versionPartitionedTables = 100000
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "postgres"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)
	driver := driverName(cfg)

	a.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.String("driver", driver))

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// driverName picks the database/sql driver from the "driver" option.
func driverName(cfg adapter.Config) string {
	if cfg.Options != nil {
		switch cfg.Options["driver"] {
		case "pq", "lib/pq", DriverPq:
			return DriverPq
		}
	}
	return DriverPgx
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		dsnValue(host), port, dsnValue(cfg.Database), dsnValue(sslmode))

	if cfg.Username != "" {
		dsn += " user=" + dsnValue(cfg.Username)
	}
	if cfg.Password != "" {
		dsn += " password=" + dsnValue(cfg.Password)
	}

	return dsn
}

// dsnValue quotes a key/value connection string value the way libpq
// expects: empty values and values with spaces, quotes or backslashes are
// single-quoted with ' and \ backslash-escaped.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n'\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// MetaData returns the adapter itself once connected.
func (a *Adapter) MetaData() (adapter.MetaData, error) {
	if err := a.RequireConnection(); err != nil {
		return nil, err
	}
	return a, nil
}

// ProductName returns "PostgreSQL".
func (a *Adapter) ProductName() string {
	return "PostgreSQL"
}

// TableTypes returns the relation kinds the connected server supports.
func (a *Adapter) TableTypes(ctx context.Context) ([]string, error) {
	if err := a.RequireConnection(); err != nil {
		return nil, err
	}

	var raw string
	if err := a.DB.QueryRowContext(ctx, "SHOW server_version_num").Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid server_version_num %q: %w", raw, err)
	}

	return tableTypesForVersion(version), nil
}

func tableTypesForVersion(version int) []string {
	types := []string{
		"TABLE", "VIEW", "FOREIGN TABLE", "SEQUENCE", "TYPE",
		"SYSTEM TABLE", "SYSTEM VIEW", "TEMPORARY TABLE", "TEMPORARY VIEW",
	}
	if version >= versionMaterializedViews {
		types = append(types, "MATERIALIZED VIEW")
	}
	if version >= versionPartitionedTables {
		types = append(types, "PARTITIONED TABLE")
	}
	return types
}

// SupportsCatalogs is false: PostgreSQL cannot qualify tables across databases.
func (a *Adapter) SupportsCatalogs(_ context.Context) (bool, error) {
	return false, a.RequireConnection()
}

// SupportsSchemas is true for every PostgreSQL server.
func (a *Adapter) SupportsSchemas(_ context.Context) (bool, error) {
	if err := a.RequireConnection(); err != nil {
		return false, err
	}
	return true, nil
}

// TypeNames lists base, enum, range and domain type names as formatted by
// format_type, e.g. "character varying".
func (a *Adapter) TypeNames(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT DISTINCT format_type(t.oid, NULL)
		FROM pg_catalog.pg_type t
		WHERE t.typtype IN ('b', 'd', 'e', 'r')
		  AND t.typname NOT LIKE '\_%'
		ORDER BY 1
	`)
}

// Defaults returns the PostgreSQL information-schema SQL and identifier policy.
func (a *Adapter) Defaults() adapter.Defaults {
	views, err := infoschema.LoadFS(viewsFS, "views")
	if err != nil {
		// The views directory is embedded; this only fails on a broken build.
		a.Logger.Warn("failed to load embedded postgres views", slog.String("error", err.Error()))
	}
	return adapter.Defaults{
		Views: views,
		Identifiers: core.NewIdentifiers(core.IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: core.NormLowercase,
		}, postgresReservedWords...),
	}
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
