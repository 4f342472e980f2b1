// Package sqlite provides a SQLite database adapter for leapcrawl.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"

	_ "modernc.org/sqlite" // sqlite driver
)

//go:embed views/*.sql
var viewsFS embed.FS

// sqliteTypeNames are the storage classes and affinity names SQLite
// recognizes in column declarations.
var sqliteTypeNames = []string{
	"INTEGER", "REAL", "TEXT", "BLOB", "NUMERIC",
	"BOOLEAN", "DATE", "DATETIME", "VARCHAR",
}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
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
	return "sqlite"
}

// Connect opens the database file at cfg.Path, or an in-memory database
// when the path is empty. The pool is limited to one connection so an
// in-memory database is shared by every query.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// MetaData returns the adapter itself once connected.
func (a *Adapter) MetaData() (adapter.MetaData, error) {
	if err := a.RequireConnection(); err != nil {
		return nil, err
	}
	return a, nil
}

// ProductName returns "SQLite".
func (a *Adapter) ProductName() string {
	return "SQLite"
}

// TableTypes returns the object types stored in sqlite_master.
func (a *Adapter) TableTypes(_ context.Context) ([]string, error) {
	if err := a.RequireConnection(); err != nil {
		return nil, err
	}
	return []string{"TABLE", "VIEW"}, nil
}

// SupportsCatalogs is always false.
func (a *Adapter) SupportsCatalogs(_ context.Context) (bool, error) {
	return false, a.RequireConnection()
}

// SupportsSchemas reports whether attached databases are listed; each
// attached database acts as a schema.
func (a *Adapter) SupportsSchemas(ctx context.Context) (bool, error) {
	return a.QueryBool(ctx, "SELECT count(*) FROM pragma_database_list")
}

// TypeNames returns the fixed affinity names.
func (a *Adapter) TypeNames(_ context.Context) ([]string, error) {
	if err := a.RequireConnection(); err != nil {
		return nil, err
	}
	names := make([]string, len(sqliteTypeNames))
	copy(names, sqliteTypeNames)
	return names, nil
}

// Defaults returns the SQLite catalog SQL and identifier policy.
func (a *Adapter) Defaults() adapter.Defaults {
	views, err := infoschema.LoadFS(viewsFS, "views")
	if err != nil {
		a.Logger.Warn("failed to load embedded sqlite views", slog.String("error", err.Error()))
	}
	return adapter.Defaults{
		Views: views,
		Identifiers: core.NewIdentifiers(core.IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: core.NormCaseInsensitive,
		}, sqliteReservedWords...),
	}
}

var sqliteReservedWords = []string{
	"abort", "action", "add", "after", "all", "alter", "analyze", "and",
	"as", "asc", "attach", "autoincrement", "before", "begin", "between",
	"by", "cascade", "case", "cast", "check", "collate", "column", "commit",
	"conflict", "constraint", "create", "cross", "default", "deferrable",
	"delete", "desc", "detach", "distinct", "drop", "each", "else", "end",
	"escape", "except", "exists", "explain", "for", "foreign", "from",
	"glob", "group", "having", "if", "in", "index", "inner", "insert",
	"intersect", "into", "is", "isnull", "join", "key", "left", "like",
	"limit", "match", "natural", "not", "notnull", "null", "of", "offset",
	"on", "or", "order", "outer", "pragma", "primary", "references",
	"reindex", "rename", "replace", "right", "select", "set", "table",
	"then", "to", "transaction", "trigger", "union", "unique", "update",
	"using", "vacuum", "values", "view", "when", "where", "with",
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
