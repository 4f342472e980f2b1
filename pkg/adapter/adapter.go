// Package adapter provides the connection handle and native metadata
// contract that every database adapter implements.
//
// This package contains the public contract only. Concrete adapter
// implementations are in pkg/adapters/ subdirectories and register
// themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"
)

// Type aliases for convenience - these types are defined in pkg/core.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// MetaData is the engine's native metadata facility. Each call may issue
// round-trips to the database.
type MetaData interface {
	// ProductName returns the engine name, e.g. "PostgreSQL".
	ProductName() string

	// TableTypes lists the table type names the engine supports
	// (e.g. "BASE TABLE", "VIEW"), in engine casing.
	TableTypes(ctx context.Context) ([]string, error)

	// SupportsCatalogs reports whether catalogs qualify table names.
	SupportsCatalogs(ctx context.Context) (bool, error)

	// SupportsSchemas reports whether schemas qualify table names.
	SupportsSchemas(ctx context.Context) (bool, error)

	// TypeNames lists the native SQL type names the engine reports.
	TypeNames(ctx context.Context) ([]string, error)
}

// Conn is a live connection handle. The caller that opened it owns it;
// consumers that borrow it must never close it.
type Conn interface {
	// Ping performs a lightweight liveness round-trip.
	Ping(ctx context.Context) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// MetaData returns the native metadata facility for this connection.
	MetaData() (MetaData, error)
}

// Defaults is the database-specific override bundle an adapter ships:
// information-schema SQL and the identifier formatting policy.
type Defaults struct {
	Views       infoschema.Views
	Identifiers *core.Identifiers
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	Conn

	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// DialectName returns the registered adapter name, e.g. "postgres".
	DialectName() string

	// Defaults returns the engine's built-in override bundle.
	Defaults() Defaults
}
