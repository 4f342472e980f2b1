package crawl

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapcrawl/internal/testutil"
	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"
	"github.com/leapstack-labs/leapcrawl/pkg/sqltypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, conn adapter.Conn, overrides *Overrides) *RetrieverContext {
	t.Helper()
	rc, err := NewRetrieverContext(context.Background(), conn, overrides, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	return rc
}

func TestNewRetrieverContext_DefaultsToNative(t *testing.T) {
	rc := newContext(t, newFakeConn(), &Overrides{})

	assert.Equal(t, core.NativeAPI, rc.TableStrategy())
	assert.Equal(t, core.NativeAPI, rc.ColumnStrategy())
	assert.Equal(t, core.NativeAPI, rc.PrimaryKeyStrategy())
	assert.Equal(t, core.NativeAPI, rc.IndexStrategy())
	assert.Equal(t, core.NativeAPI, rc.ForeignKeyStrategy())
}

func TestNewRetrieverContext_CustomQueryIsolated(t *testing.T) {
	for _, category := range core.Categories() {
		t.Run(category.String(), func(t *testing.T) {
			overrides := (&Overrides{}).WithStrategy(category, core.CustomQuery)
			rc := newContext(t, newFakeConn(), overrides)

			for _, other := range core.Categories() {
				want := core.NativeAPI
				if other == category {
					want = core.CustomQuery
				}
				assert.Equal(t, want, rc.Strategy(other), "category %s", other)
			}
		})
	}
}

func TestNewRetrieverContext_ForeignKeyScenario(t *testing.T) {
	conn := newFakeConn()
	views := infoschema.NewViews(map[string]string{"FOREIGN_KEYS": "SELECT * FROM fks"})
	overrides := &Overrides{
		Views:      views,
		Strategies: map[core.MetadataCategory]core.RetrievalStrategy{core.CategoryForeignKey: core.CustomQuery},
	}

	rc := newContext(t, conn, overrides)

	assert.Equal(t, core.CustomQuery, rc.ForeignKeyStrategy())
	assert.Equal(t, core.NativeAPI, rc.TableStrategy())
	assert.Equal(t, core.NativeAPI, rc.ColumnStrategy())
	assert.Equal(t, core.NativeAPI, rc.PrimaryKeyStrategy())
	assert.Equal(t, core.NativeAPI, rc.IndexStrategy())

	q, ok := rc.ViewFor(core.CategoryForeignKey)
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM fks", q)
	_, ok = rc.ViewFor(core.CategoryTable)
	assert.False(t, ok)
	_, ok = rc.ViewFor(core.MetadataCategory(9))
	assert.False(t, ok)

	assert.Equal(t, views, rc.InformationSchemaViews())
	assert.Same(t, conn, rc.Conn())
}

func TestNewRetrieverContext_InvalidConnection(t *testing.T) {
	conn := newFakeConn()
	conn.pingErr = errBoom

	rc, err := NewRetrieverContext(context.Background(), conn, &Overrides{})
	assert.Nil(t, rc)
	require.ErrorIs(t, err, ErrInvalidConnection)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.ErrorIs(t, connErr.Unwrap(), errBoom)

	assert.Zero(t, conn.mdCalls, "metadata must not be requested")
	assert.Zero(t, conn.md.calls, "no capability probe may run")
	assert.Zero(t, conn.queries)
}

func TestNewRetrieverContext_NilOverrides(t *testing.T) {
	t.Run("valid connection", func(t *testing.T) {
		conn := newFakeConn()
		rc, err := NewRetrieverContext(context.Background(), conn, nil)
		assert.Nil(t, rc)
		require.ErrorIs(t, err, ErrMissingOverrides)

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.NotErrorIs(t, err, ErrInvalidConnection)

		assert.Equal(t, 1, conn.pings, "connection validated first")
		assert.Zero(t, conn.mdCalls, "probe not started")
	})

	t.Run("invalid connection wins", func(t *testing.T) {
		conn := newFakeConn()
		conn.pingErr = errBoom

		_, err := NewRetrieverContext(context.Background(), conn, nil)
		require.ErrorIs(t, err, ErrInvalidConnection)
		assert.NotErrorIs(t, err, ErrMissingOverrides)
	})

	t.Run("nil connection wins", func(t *testing.T) {
		_, err := NewRetrieverContext(context.Background(), nil, nil)
		require.ErrorIs(t, err, ErrInvalidConnection)
	})
}

func TestNewRetrieverContext_TableTypesProbeFails(t *testing.T) {
	conn := newFakeConn()
	conn.md.tableTypesErr = errBoom

	rc := newContext(t, conn, &Overrides{})
	assert.True(t, rc.TableTypes().IsEmpty())
	assert.True(t, rc.TableTypes().Accepts("BASE TABLE"))
	assert.True(t, rc.SupportsCatalogs())
}

func TestNewRetrieverContext_CatalogProbeFails(t *testing.T) {
	conn := newFakeConn()
	conn.md.catalogsErr = errBoom

	rc := newContext(t, conn, &Overrides{})
	assert.False(t, rc.SupportsCatalogs())
	assert.True(t, rc.SupportsSchemas())
}

func TestNewRetrieverContext_MetaDataFails(t *testing.T) {
	conn := newFakeConn()
	conn.mdErr = errBoom

	_, err := NewRetrieverContext(context.Background(), conn, &Overrides{})
	require.ErrorIs(t, err, ErrInvalidConnection)
	require.ErrorIs(t, err, errBoom)
}

func TestRetrieverContext_Idempotent(t *testing.T) {
	conn := newFakeConn()
	overrides := (&Overrides{}).WithStrategy(core.CategoryIndex, core.CustomQuery)
	rc := newContext(t, conn, overrides)
	probes := conn.md.calls

	for range 3 {
		assert.Equal(t, core.CustomQuery, rc.IndexStrategy())
		assert.Equal(t, []string{"TABLE", "VIEW"}, rc.TableTypes().Names())
		assert.True(t, rc.SupportsCatalogs())
		assert.Equal(t, sqltypes.Integer, rc.TypeMap().Lookup("integer"))
		assert.Same(t, rc.Identifiers(), rc.Identifiers())
		assert.Equal(t, rc.Strategies(), rc.Strategies())
		assert.Equal(t, rc.Summary(), rc.Summary())
	}
	assert.Equal(t, probes, conn.md.calls, "capabilities computed once")
	assert.Equal(t, 1, conn.mdCalls)
}

func TestRetrieverContext_OverridesCopiedAtConstruction(t *testing.T) {
	overrides := &Overrides{Strategies: map[core.MetadataCategory]core.RetrievalStrategy{
		core.CategoryTable: core.CustomQuery,
	}}
	rc := newContext(t, newFakeConn(), overrides)

	overrides.Strategies[core.CategoryTable] = core.NativeAPI
	overrides.Strategies[core.CategoryColumn] = core.CustomQuery

	assert.Equal(t, core.CustomQuery, rc.TableStrategy())
	assert.Equal(t, core.NativeAPI, rc.ColumnStrategy())
}

func TestRetrieverContext_DoesNotCloseConnection(t *testing.T) {
	conn := newFakeConn()
	_ = newContext(t, conn, &Overrides{})
	_, _ = NewRetrieverContext(context.Background(), conn, nil)
	assert.Zero(t, conn.closes)
}

func TestRetrieverContext_Identifiers(t *testing.T) {
	rc := newContext(t, newFakeConn(), &Overrides{})
	require.NotNil(t, rc.Identifiers())
	assert.Equal(t, `"select"`, rc.Identifiers().Quote("select"))

	ids := core.NewIdentifiers(core.IdentifierConfig{Quote: "[", QuoteEnd: "]"})
	rc = newContext(t, newFakeConn(), &Overrides{Identifiers: ids})
	assert.Same(t, ids, rc.Identifiers())
}

func TestRetrieverContext_MetaData(t *testing.T) {
	conn := newFakeConn()
	rc := newContext(t, conn, &Overrides{})
	assert.Same(t, conn.md, rc.MetaData())
	assert.Equal(t, "FakeDB", rc.Capabilities().ProductName())
}

func TestRetrieverContext_Summary(t *testing.T) {
	overrides := &Overrides{
		Views: infoschema.NewViews(map[string]string{"INDEXES": "SELECT 1", "SEQUENCES": "SELECT 2"}),
	}
	rc := newContext(t, newFakeConn(), overrides.WithStrategy(core.CategoryIndex, core.CustomQuery))

	s := rc.Summary()
	assert.Equal(t, "FakeDB", s.Product)
	assert.True(t, s.SupportsCatalogs)
	assert.Equal(t, []string{"TABLE", "VIEW"}, s.TableTypes)
	assert.Equal(t, 3, s.NativeTypes)
	assert.Equal(t, []string{"geometry"}, s.UnmappedTypes)
	assert.Equal(t, []string{"INDEXES", "SEQUENCES"}, s.Views)
	require.Len(t, s.Categories, core.NumCategories)

	idx := s.Categories[core.CategoryIndex]
	assert.Equal(t, core.CustomQuery, idx.Strategy)
	assert.Equal(t, infoschema.Indexes, idx.View)
	assert.True(t, idx.HasView)
	assert.False(t, s.Categories[core.CategoryTable].HasView)
}

func TestRetrieverContext_LogsOptions(t *testing.T) {
	logger, logs := testutil.NewCapturingLogger()
	overrides := (&Overrides{}).WithStrategy(core.CategoryForeignKey, core.CustomQuery)

	_, err := NewRetrieverContext(context.Background(), newFakeConn(), overrides, WithLogger(logger))
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "database specific options")
	assert.Contains(t, out, "product=FakeDB")
	assert.Contains(t, out, "foreign_key:custom_query")
	assert.Contains(t, out, `table_types="TABLE, VIEW"`)
}

func TestNewRetrieverContext_SQLMock(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPing()
	mock.ExpectQuery("SELECT table_type FROM table_types").
		WillReturnRows(sqlmock.NewRows([]string{"table_type"}).AddRow("BASE TABLE").AddRow("VIEW"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM catalogs`).WillReturnError(errBoom)
	mock.ExpectQuery(`SELECT count\(\*\) FROM schemata`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectQuery("SELECT type_name FROM types").
		WillReturnRows(sqlmock.NewRows([]string{"type_name"}).AddRow("int4").AddRow("text"))

	engine := &sqlEngine{BaseSQLAdapter: adapter.BaseSQLAdapter{DB: db}}
	rc := newContext(t, engine, (&Overrides{}).WithStrategy(core.CategoryColumn, core.CustomQuery))

	assert.Equal(t, "MockSQL", rc.Capabilities().ProductName())
	assert.Equal(t, []string{"BASE TABLE", "VIEW"}, rc.TableTypes().Names())
	assert.False(t, rc.SupportsCatalogs())
	assert.True(t, rc.SupportsSchemas())
	assert.Equal(t, sqltypes.Integer, rc.TypeMap().Lookup("int4"))
	assert.Equal(t, sqltypes.LongVarchar, rc.TypeMap().Lookup("text"))
	assert.Equal(t, core.CustomQuery, rc.ColumnStrategy())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRetrieverContext_SQLMockPingFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPing().WillReturnError(errBoom)

	engine := &sqlEngine{BaseSQLAdapter: adapter.BaseSQLAdapter{DB: db}}
	_, err = NewRetrieverContext(context.Background(), engine, &Overrides{})
	require.ErrorIs(t, err, ErrInvalidConnection)
	require.ErrorIs(t, err, errBoom)
	require.NoError(t, mock.ExpectationsWereMet())
}
