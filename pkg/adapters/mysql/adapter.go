// Package mysql provides a MySQL database adapter for leapcrawl.
package mysql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"
)

//go:embed views/*.sql
var viewsFS embed.FS

// mysqlTypeNames are the type names MySQL Connector drivers report; the
// server has no catalog table listing them.
var mysqlTypeNames = []string{
	"BIT", "BOOL", "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT",
	"FLOAT", "DOUBLE", "DECIMAL", "NUMERIC",
	"CHAR", "VARCHAR", "BINARY", "VARBINARY",
	"TINYTEXT", "TEXT", "MEDIUMTEXT", "LONGTEXT",
	"TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB",
	"DATE", "TIME", "DATETIME", "TIMESTAMP", "YEAR",
	"ENUM", "SET", "JSON",
	"GEOMETRY", "POINT", "LINESTRING", "POLYGON",
}

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
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
	return "mysql"
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildMySQLDSN(cfg)

	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildMySQLDSN constructs a go-sql-driver DSN. Options other than "tls"
// are passed through as connection parameters.
func buildMySQLDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true

	for k, v := range cfg.Options {
		if k == "tls" {
			mc.TLSConfig = v
			continue
		}
		if mc.Params == nil {
			mc.Params = make(map[string]string)
		}
		mc.Params[k] = v
	}

	return mc.FormatDSN()
}

// MetaData returns the adapter itself once connected.
func (a *Adapter) MetaData() (adapter.MetaData, error) {
	if err := a.RequireConnection(); err != nil {
		return nil, err
	}
	return a, nil
}

// ProductName returns "MySQL".
func (a *Adapter) ProductName() string {
	return "MySQL"
}

// TableTypes returns the distinct TABLE_TYPE values the server reports.
func (a *Adapter) TableTypes(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SELECT DISTINCT TABLE_TYPE FROM information_schema.TABLES ORDER BY TABLE_TYPE")
}

// SupportsCatalogs is true when the server exposes databases through
// information_schema; MySQL databases act as catalogs.
func (a *Adapter) SupportsCatalogs(ctx context.Context) (bool, error) {
	return a.QueryBool(ctx, "SELECT COUNT(*) FROM information_schema.SCHEMATA")
}

// SupportsSchemas is false: MySQL has no schema level below the database.
func (a *Adapter) SupportsSchemas(_ context.Context) (bool, error) {
	return false, a.RequireConnection()
}

// TypeNames returns the fixed MySQL type list.
func (a *Adapter) TypeNames(_ context.Context) ([]string, error) {
	if err := a.RequireConnection(); err != nil {
		return nil, err
	}
	names := make([]string, len(mysqlTypeNames))
	copy(names, mysqlTypeNames)
	return names, nil
}

// Defaults returns the MySQL information-schema SQL and identifier policy.
func (a *Adapter) Defaults() adapter.Defaults {
	views, err := infoschema.LoadFS(viewsFS, "views")
	if err != nil {
		a.Logger.Warn("failed to load embedded mysql views", slog.String("error", err.Error()))
	}
	return adapter.Defaults{
		Views: views,
		Identifiers: core.NewIdentifiers(core.IdentifierConfig{
			Quote:         "`",
			QuoteEnd:      "`",
			Escape:        "``",
			Normalization: core.NormCaseSensitive,
		}, mysqlReservedWords...),
	}
}

// mysqlReservedWords contains frequently problematic MySQL reserved words.
var mysqlReservedWords = []string{
	"add", "all", "alter", "and", "as", "asc", "between", "by", "case",
	"change", "check", "column", "condition", "constraint", "create",
	"cross", "database", "databases", "default", "delete", "desc",
	"describe", "distinct", "drop", "else", "exists", "explain", "false",
	"for", "force", "foreign", "from", "fulltext", "function", "group",
	"having", "if", "ignore", "in", "index", "inner", "insert", "interval",
	"into", "is", "join", "key", "keys", "kill", "left", "like", "limit",
	"lines", "load", "lock", "match", "natural", "not", "null", "on",
	"option", "or", "order", "outer", "primary", "range", "read",
	"references", "regexp", "rename", "replace", "require", "restrict",
	"right", "rlike", "schema", "schemas", "select", "set", "show",
	"table", "then", "to", "trigger", "true", "union", "unique", "update",
	"usage", "use", "using", "values", "when", "where", "with", "write",
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
