package crawl

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/sqltypes"
)

// TableTypes is the set of relation types an engine reports, with the
// engine's own casing preserved. Membership checks ignore case.
type TableTypes struct {
	names []string
	index map[string]struct{}
}

// NewTableTypes trims and de-duplicates names, keeping the first spelling
// seen for each case-insensitive value.
func NewTableTypes(names ...string) TableTypes {
	tt := TableTypes{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToUpper(n)
		if _, ok := tt.index[key]; ok {
			continue
		}
		tt.index[key] = struct{}{}
		tt.names = append(tt.names, n)
	}
	sort.Strings(tt.names)
	return tt
}

// Names returns the table types, sorted.
func (t TableTypes) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of table types.
func (t TableTypes) Len() int { return len(t.names) }

// IsEmpty reports whether the engine reported no table types.
func (t TableTypes) IsEmpty() bool { return len(t.names) == 0 }

// Contains reports whether name is one of the reported types.
func (t TableTypes) Contains(name string) bool {
	_, ok := t.index[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}

// Accepts reports whether a table of the given type should be crawled.
// An empty set accepts everything.
func (t TableTypes) Accepts(name string) bool {
	return t.IsEmpty() || t.Contains(name)
}

func (t TableTypes) String() string {
	return strings.Join(t.names, ", ")
}

// EngineCapabilities is what the engine reported about itself.
// It is computed once per context.
type EngineCapabilities struct {
	productName      string
	tableTypes       TableTypes
	supportsCatalogs bool
	supportsSchemas  bool
	typeMap          sqltypes.TypeMap
}

// ProductName returns the engine's product name.
func (c *EngineCapabilities) ProductName() string { return c.productName }

// TableTypes returns the supported table types.
func (c *EngineCapabilities) TableTypes() TableTypes { return c.tableTypes }

// SupportsCatalogs reports whether the engine exposes catalogs.
func (c *EngineCapabilities) SupportsCatalogs() bool { return c.supportsCatalogs }

// SupportsSchemas reports whether the engine exposes schemas.
func (c *EngineCapabilities) SupportsSchemas() bool { return c.supportsSchemas }

// TypeMap returns the native-to-generic type mapping.
func (c *EngineCapabilities) TypeMap() sqltypes.TypeMap { return c.typeMap }

// probeResult carries a probed value or the error that replaced it.
type probeResult[T any] struct {
	value T
	err   error
}

// or returns the value, or def after logging the failure.
func (r probeResult[T]) or(def T, logger *slog.Logger, what string) T {
	if r.err != nil {
		logger.Warn("could not "+what+", using default",
			slog.String("error", r.err.Error()),
			slog.Any("default", def))
		return def
	}
	return r.value
}

// ProbeCapabilities asks conn's native metadata facility what the engine
// supports. Only failing to obtain the facility is an error; each
// individual probe that fails degrades to its default and is logged.
func ProbeCapabilities(ctx context.Context, conn adapter.Conn, logger *slog.Logger) (*EngineCapabilities, error) {
	md, err := metaDataOf(conn)
	if err != nil {
		return nil, err
	}
	return probeMetaData(ctx, md, logger), nil
}

func metaDataOf(conn adapter.Conn) (adapter.MetaData, error) {
	if isNil(conn) {
		return nil, &ConnectionError{Op: "get metadata", Err: errNilConnection}
	}
	md, err := conn.MetaData()
	if err != nil {
		return nil, &ConnectionError{Op: "get metadata", Err: err}
	}
	if isNil(md) {
		return nil, &ConnectionError{Op: "get metadata", Err: errNilMetaData}
	}
	return md, nil
}

func probeMetaData(ctx context.Context, md adapter.MetaData, logger *slog.Logger) *EngineCapabilities {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var types, names probeResult[[]string]
	var catalogs, schemas probeResult[bool]

	types.value, types.err = md.TableTypes(ctx)
	catalogs.value, catalogs.err = md.SupportsCatalogs(ctx)
	schemas.value, schemas.err = md.SupportsSchemas(ctx)
	names.value, names.err = md.TypeNames(ctx)

	return &EngineCapabilities{
		productName:      md.ProductName(),
		tableTypes:       NewTableTypes(types.or(nil, logger, "obtain supported table types")...),
		supportsCatalogs: catalogs.or(false, logger, "check catalog support"),
		supportsSchemas:  schemas.or(false, logger, "check schema support"),
		typeMap:          sqltypes.BuildTypeMap(names.or(nil, logger, "obtain type names")),
	}
}
