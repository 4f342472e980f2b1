package crawl

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"
	"github.com/leapstack-labs/leapcrawl/pkg/sqltypes"
)

// categoryViews maps each category to the information-schema view its
// custom query reads.
var categoryViews = [core.NumCategories]infoschema.Key{
	core.CategoryTable:      infoschema.Tables,
	core.CategoryColumn:     infoschema.TableColumns,
	core.CategoryPrimaryKey: infoschema.PrimaryKeys,
	core.CategoryIndex:      infoschema.Indexes,
	core.CategoryForeignKey: infoschema.ForeignKeys,
}

// ViewKey returns the information-schema key read for category.
func ViewKey(category core.MetadataCategory) (infoschema.Key, bool) {
	if !category.Valid() {
		return "", false
	}
	return categoryViews[category], true
}

// Option configures a RetrieverContext.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used while probing. Nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// RetrieverContext is the validated, probed and resolved state shared by
// every metadata retriever working on one connection. It is read-only
// after construction and safe for concurrent use.
type RetrieverContext struct {
	conn         adapter.Conn
	metaData     adapter.MetaData
	capabilities *EngineCapabilities
	strategies   Strategies
	views        infoschema.Views
	identifiers  *core.Identifiers
}

// NewRetrieverContext validates conn, requires overrides, probes the engine
// and resolves the per-category strategies, in that order. A connection
// error takes precedence over missing overrides. The caller keeps
// ownership of conn.
func NewRetrieverContext(ctx context.Context, conn adapter.Conn, overrides *Overrides, opts ...Option) (*RetrieverContext, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := ValidateConnection(ctx, conn); err != nil {
		return nil, err
	}
	if overrides == nil {
		return nil, &ConfigurationError{Err: ErrMissingOverrides}
	}

	md, err := metaDataOf(conn)
	if err != nil {
		return nil, err
	}
	caps := probeMetaData(ctx, md, logger)

	ids := overrides.Identifiers
	if ids == nil {
		ids = core.ANSIIdentifiers()
	}

	rc := &RetrieverContext{
		conn:         conn,
		metaData:     md,
		capabilities: caps,
		strategies:   ResolveStrategies(overrides),
		views:        overrides.Views,
		identifiers:  ids,
	}

	logger.Debug("database specific options",
		slog.String("product", caps.ProductName()),
		slog.Bool("supports_catalogs", caps.SupportsCatalogs()),
		slog.Bool("supports_schemas", caps.SupportsSchemas()),
		slog.Any("strategies", rc.strategies.Map()),
		slog.Any("views", rc.views.Keys()))
	logger.Debug("supported table types", slog.String("table_types", caps.TableTypes().String()))

	return rc, nil
}

// Conn returns the borrowed connection.
func (r *RetrieverContext) Conn() adapter.Conn { return r.conn }

// MetaData returns the connection's native metadata facility.
func (r *RetrieverContext) MetaData() adapter.MetaData { return r.metaData }

// TableStrategy returns the strategy for tables.
func (r *RetrieverContext) TableStrategy() core.RetrievalStrategy {
	return r.strategies.For(core.CategoryTable)
}

// ColumnStrategy returns the strategy for table columns.
func (r *RetrieverContext) ColumnStrategy() core.RetrievalStrategy {
	return r.strategies.For(core.CategoryColumn)
}

// PrimaryKeyStrategy returns the strategy for primary keys.
func (r *RetrieverContext) PrimaryKeyStrategy() core.RetrievalStrategy {
	return r.strategies.For(core.CategoryPrimaryKey)
}

// IndexStrategy returns the strategy for indexes.
func (r *RetrieverContext) IndexStrategy() core.RetrievalStrategy {
	return r.strategies.For(core.CategoryIndex)
}

// ForeignKeyStrategy returns the strategy for foreign keys.
func (r *RetrieverContext) ForeignKeyStrategy() core.RetrievalStrategy {
	return r.strategies.For(core.CategoryForeignKey)
}

// Strategy returns the strategy for any category.
func (r *RetrieverContext) Strategy(category core.MetadataCategory) core.RetrievalStrategy {
	return r.strategies.For(category)
}

// Strategies returns a copy of all resolved strategies.
func (r *RetrieverContext) Strategies() Strategies { return r.strategies }

// Capabilities returns the probed engine capabilities.
func (r *RetrieverContext) Capabilities() *EngineCapabilities { return r.capabilities }

// TableTypes returns the engine's supported table types.
func (r *RetrieverContext) TableTypes() TableTypes { return r.capabilities.TableTypes() }

// SupportsCatalogs reports whether the engine exposes catalogs.
func (r *RetrieverContext) SupportsCatalogs() bool { return r.capabilities.SupportsCatalogs() }

// SupportsSchemas reports whether the engine exposes schemas.
func (r *RetrieverContext) SupportsSchemas() bool { return r.capabilities.SupportsSchemas() }

// TypeMap returns the native-to-generic type mapping.
func (r *RetrieverContext) TypeMap() sqltypes.TypeMap { return r.capabilities.TypeMap() }

// InformationSchemaViews returns the custom query SQL supplied with the
// overrides.
func (r *RetrieverContext) InformationSchemaViews() infoschema.Views { return r.views }

// Identifiers returns the identifier policy from the overrides, unchanged.
// When the overrides carried none it is core.ANSIIdentifiers(), so the
// result is never nil.
func (r *RetrieverContext) Identifiers() *core.Identifiers { return r.identifiers }

// ViewFor returns the custom query SQL for category and whether the
// overrides defined it.
func (r *RetrieverContext) ViewFor(category core.MetadataCategory) (string, bool) {
	key, ok := ViewKey(category)
	if !ok {
		return "", false
	}
	return r.views.Get(key)
}

// CategorySummary describes one category's resolved retrieval.
type CategorySummary struct {
	Category core.MetadataCategory  `json:"category" yaml:"category"`
	Strategy core.RetrievalStrategy `json:"strategy" yaml:"strategy"`
	View     infoschema.Key         `json:"view" yaml:"view"`
	HasView  bool                   `json:"has_view" yaml:"has_view"`
}

// Summary is a plain snapshot of a RetrieverContext for rendering.
type Summary struct {
	Product          string            `json:"product" yaml:"product"`
	SupportsCatalogs bool              `json:"supports_catalogs" yaml:"supports_catalogs"`
	SupportsSchemas  bool              `json:"supports_schemas" yaml:"supports_schemas"`
	TableTypes       []string          `json:"table_types" yaml:"table_types"`
	NativeTypes      int               `json:"native_types" yaml:"native_types"`
	UnmappedTypes    []string          `json:"unmapped_types,omitempty" yaml:"unmapped_types,omitempty"`
	Categories       []CategorySummary `json:"categories" yaml:"categories"`
	Views            []string          `json:"views" yaml:"views"`
}

// Summary returns a snapshot of the context.
func (r *RetrieverContext) Summary() Summary {
	s := Summary{
		Product:          r.capabilities.ProductName(),
		SupportsCatalogs: r.SupportsCatalogs(),
		SupportsSchemas:  r.SupportsSchemas(),
		TableTypes:       r.TableTypes().Names(),
		NativeTypes:      r.TypeMap().Len(),
		UnmappedTypes:    r.TypeMap().Unknown(),
	}
	for _, c := range core.Categories() {
		key, _ := ViewKey(c)
		_, has := r.views.Get(key)
		s.Categories = append(s.Categories, CategorySummary{
			Category: c,
			Strategy: r.Strategy(c),
			View:     key,
			HasView:  has,
		})
	}
	for _, k := range r.views.Keys() {
		s.Views = append(s.Views, string(k))
	}
	return s
}
