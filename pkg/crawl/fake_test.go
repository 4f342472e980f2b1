package crawl

import (
	"context"
	"errors"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
)

var errBoom = errors.New("boom")

type fakeMetaData struct {
	product       string
	tableTypes    []string
	tableTypesErr error
	catalogs      bool
	catalogsErr   error
	schemas       bool
	schemasErr    error
	typeNames     []string
	typeNamesErr  error
	calls         int
}

func (m *fakeMetaData) ProductName() string { return m.product }

func (m *fakeMetaData) TableTypes(context.Context) ([]string, error) {
	m.calls++
	return m.tableTypes, m.tableTypesErr
}

func (m *fakeMetaData) SupportsCatalogs(context.Context) (bool, error) {
	m.calls++
	return m.catalogs, m.catalogsErr
}

func (m *fakeMetaData) SupportsSchemas(context.Context) (bool, error) {
	m.calls++
	return m.schemas, m.schemasErr
}

func (m *fakeMetaData) TypeNames(context.Context) ([]string, error) {
	m.calls++
	return m.typeNames, m.typeNamesErr
}

type fakeConn struct {
	pingErr error
	mdErr   error
	md      *fakeMetaData
	pings   int
	mdCalls int
	queries int
	closes  int
}

func newFakeConn() *fakeConn {
	return &fakeConn{md: &fakeMetaData{
		product:    "FakeDB",
		tableTypes: []string{"TABLE", "VIEW"},
		catalogs:   true,
		schemas:    true,
		typeNames:  []string{"integer", "varchar", "geometry"},
	}}
}

func (c *fakeConn) Ping(context.Context) error {
	c.pings++
	return c.pingErr
}

func (c *fakeConn) Query(context.Context, string, ...any) (*adapter.Rows, error) {
	c.queries++
	return nil, errBoom
}

func (c *fakeConn) MetaData() (adapter.MetaData, error) {
	c.mdCalls++
	if c.mdErr != nil {
		return nil, c.mdErr
	}
	return c.md, nil
}

func (c *fakeConn) Close() error {
	c.closes++
	return nil
}

// sqlEngine is a minimal engine over database/sql, used with sqlmock.
type sqlEngine struct {
	adapter.BaseSQLAdapter
}

func (e *sqlEngine) MetaData() (adapter.MetaData, error) {
	if err := e.RequireConnection(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *sqlEngine) ProductName() string { return "MockSQL" }

func (e *sqlEngine) TableTypes(ctx context.Context) ([]string, error) {
	return e.QueryStrings(ctx, "SELECT table_type FROM table_types")
}

func (e *sqlEngine) SupportsCatalogs(ctx context.Context) (bool, error) {
	return e.QueryBool(ctx, "SELECT count(*) FROM catalogs")
}

func (e *sqlEngine) SupportsSchemas(ctx context.Context) (bool, error) {
	return e.QueryBool(ctx, "SELECT count(*) FROM schemata")
}

func (e *sqlEngine) TypeNames(ctx context.Context) ([]string, error) {
	return e.QueryStrings(ctx, "SELECT type_name FROM types")
}
