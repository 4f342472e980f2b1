// Package duckdb provides a DuckDB database adapter for leapcrawl.
package duckdb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

//go:embed views/*.sql
var viewsFS embed.FS

// settingName restricts SET targets and extension names to plain words.
var settingName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const tableTypesQuery = `SELECT table_type FROM (VALUES ('BASE TABLE'), ('VIEW'), ('LOCAL TEMPORARY')) AS t(table_type)
UNION
SELECT DISTINCT table_type FROM information_schema.tables
ORDER BY 1`

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
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
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	if err := applyParams(ctx, db, params, a.Logger); err != nil {
		_ = db.Close()
		return err
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// applyParams loads extensions first so their settings are recognized.
func applyParams(ctx context.Context, db *sql.DB, p *Params, logger *slog.Logger) error {
	for _, ext := range p.Extensions {
		if !settingName.MatchString(ext) {
			return fmt.Errorf("invalid duckdb extension name %q", ext)
		}
		logger.Debug("loading duckdb extension", slog.String("extension", ext))
		if _, err := db.ExecContext(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if _, err := db.ExecContext(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !settingName.MatchString(k) {
			return fmt.Errorf("invalid duckdb setting name %q", k)
		}
		stmt := fmt.Sprintf("SET %s = '%s'", k, strings.ReplaceAll(p.Settings[k], "'", "''"))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}
	return nil
}

// MetaData returns the adapter itself once connected.
func (a *Adapter) MetaData() (adapter.MetaData, error) {
	if err := a.RequireConnection(); err != nil {
		return nil, err
	}
	return a, nil
}

// ProductName returns "DuckDB".
func (a *Adapter) ProductName() string {
	return "DuckDB"
}

// TableTypes returns the built-in relation types plus any others present
// in information_schema.tables.
func (a *Adapter) TableTypes(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, tableTypesQuery)
}

// SupportsCatalogs is true when at least one attached database is listed.
func (a *Adapter) SupportsCatalogs(ctx context.Context) (bool, error) {
	return a.QueryBool(ctx, "SELECT count(*) FROM duckdb_databases()")
}

// SupportsSchemas always reports true.
func (a *Adapter) SupportsSchemas(_ context.Context) (bool, error) {
	return true, a.RequireConnection()
}

// TypeNames lists the type names known to duckdb_types().
func (a *Adapter) TypeNames(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SELECT DISTINCT type_name FROM duckdb_types() ORDER BY 1")
}

// Defaults returns the DuckDB information-schema SQL and identifier policy.
func (a *Adapter) Defaults() adapter.Defaults {
	views, err := infoschema.LoadFS(viewsFS, "views")
	if err != nil {
		a.Logger.Warn("failed to load embedded duckdb views", slog.String("error", err.Error()))
	}
	return adapter.Defaults{
		Views: views,
		Identifiers: core.NewIdentifiers(core.IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: core.NormCaseInsensitive,
		}, duckdbReservedWords...),
	}
}

var duckdbReservedWords = []string{
	"all", "analyse", "analyze", "and", "any", "array", "as", "asc",
	"asymmetric", "both", "case", "cast", "check", "collate", "column",
	"constraint", "create", "default", "deferrable", "desc", "describe",
	"distinct", "do", "else", "end", "except", "false", "fetch", "for",
	"foreign", "from", "grant", "group", "having", "in", "initially",
	"intersect", "into", "lateral", "leading", "limit", "not", "null",
	"offset", "on", "only", "or", "order", "pivot", "placing", "primary",
	"qualify", "references", "returning", "select", "show", "some",
	"summarize", "symmetric", "table", "then", "to", "trailing", "true",
	"union", "unique", "unpivot", "using", "variadic", "when", "where",
	"window", "with",
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
