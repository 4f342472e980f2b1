package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/leapcrawl/pkg/adapters/sqlite"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapcrawl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("type", "", "")
	fs.String("path", "", "")
	fs.String("host", "", "")
	fs.Int("port", 0, "")
	fs.String("output", DefaultOutput, "")
	fs.Bool("verbose", false, "")
	fs.StringToString("strategy", nil, "")
	fs.String("views-dir", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Nil(t, cfg.Target)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
target:
  type: postgres
  host: db.internal
  port: 5433
  database: app
  user: crawler
  options:
    sslmode: require
overrides:
  strategies:
    foreign_key: custom_query
    Index: information_schema
  views_dir: sql
  views:
    TABLES: SELECT 1
  identifiers:
    quote: "`+"`"+`"
    normalization: case_sensitive
output: json
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, "postgres", cfg.Target.Type)
	assert.Equal(t, 5433, cfg.Target.Port)
	assert.Equal(t, "require", cfg.Target.Options["sslmode"])
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "custom_query", cfg.Overrides.Strategies["foreign_key"])
	assert.Equal(t, filepath.Join(dir, "sql"), cfg.Overrides.ViewsDir)
	assert.Equal(t, "SELECT 1", cfg.Overrides.Views["TABLES"])
	require.NotNil(t, cfg.Overrides.Identifiers)
	assert.Equal(t, "`", cfg.Overrides.Identifiers.Quote)
}

func TestLoad_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "output: yaml\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, filepath.Join(root, "leapcrawl.yaml"), cfg.File)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
target:
  type: sqlite
  path: from-file.db
  host: file-host
output: text
`)
	t.Setenv("LEAPCRAWL_TARGET__HOST", "env-host")
	t.Setenv("LEAPCRAWL_OUTPUT", "yaml")

	cfg, err := Load(path, newFlags(t, "--output", "json", "--strategy", "column=custom"))
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Target.Host, "env overrides file")
	assert.Equal(t, "json", cfg.OutputFormat, "flag overrides env")
	assert.Equal(t, filepath.Join(dir, "from-file.db"), cfg.Target.Path)
	assert.Equal(t, "custom", cfg.Overrides.Strategies["column"])
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "output: yaml\ntarget:\n  type: sqlite\n  path: \":memory:\"\n")

	cfg, err := Load(path, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, ":memory:", cfg.Target.Path)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CRAWL_TEST_PASSWORD", "s3cret")
	path := writeConfig(t, dir, `
target:
  type: postgres
  password: ${CRAWL_TEST_PASSWORD}
  user: ${CRAWL_TEST_MISSING}
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Target.Password)
	assert.Equal(t, "${CRAWL_TEST_MISSING}", cfg.Target.User)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(*testing.T, error)
	}{
		{
			name:    "bad output",
			content: "output: xml\n",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "unknown output format")
			},
		},
		{
			name:    "bad strategy",
			content: "overrides:\n  strategies:\n    table: sometimes\n",
			check: func(t *testing.T, err error) {
				var se *InvalidStrategyError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, "table", se.Category)
				assert.Equal(t, "sometimes", se.Value)
			},
		},
		{
			name:    "bad category",
			content: "overrides:\n  strategies:\n    routines: custom\n",
			check: func(t *testing.T, err error) {
				var se *InvalidStrategyError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, "routines", se.Category)
			},
		},
		{
			name:    "bad normalization",
			content: "overrides:\n  identifiers:\n    normalization: sideways\n",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "sideways")
			},
		},
		{
			name:    "malformed yaml",
			content: "target: [unclosed\n",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "error reading config file")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path, nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTargetConfig_Validate(t *testing.T) {
	var nilTarget *TargetConfig
	require.Error(t, nilTarget.Validate())
	require.Error(t, (&TargetConfig{}).Validate())
	require.NoError(t, (&TargetConfig{Type: "SQLite"}).Validate())

	err := (&TargetConfig{Type: "oracle"}).Validate()
	var unknown *adapter.UnknownAdapterError
	require.True(t, errors.As(err, &unknown))
	assert.Contains(t, unknown.Available, "sqlite")
}

func TestTargetConfig_ToAdapterConfig(t *testing.T) {
	tc := &TargetConfig{
		Type: "Postgres", Host: "h", Port: 1, Database: "d", User: "u", Password: "p",
		Schema: "s", Options: map[string]string{"sslmode": "disable"},
	}
	ac := tc.ToAdapterConfig()
	assert.Equal(t, "postgres", ac.Type)
	assert.Equal(t, "u", ac.Username)
	assert.Equal(t, "p", ac.Password)
	assert.Equal(t, "disable", ac.Options["sslmode"])
}

func TestConfig_Overrides(t *testing.T) {
	viewsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(viewsDir, "INDEXES.sql"), []byte("SELECT 'dir'"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(viewsDir, "TABLES.sql"), []byte("SELECT 'dir'"), 0o600))

	defaults := adapter.Defaults{
		Views: infoschema.NewViews(map[string]string{
			"TABLES":       "SELECT 'default'",
			"FOREIGN_KEYS": "SELECT 'default'",
		}),
		Identifiers: core.NewIdentifiers(core.IdentifierConfig{Quote: `"`, Normalization: core.NormLowercase}, "select"),
	}

	cfg := &Config{Overrides: OverridesConfig{
		Strategies: map[string]string{"foreign-key": "custom_query", "index": "native"},
		ViewsDir:   viewsDir,
		Views:      map[string]string{"tables": "SELECT 'inline'"},
		Identifiers: &IdentifierConfig{
			Quote:         "[",
			QuoteEnd:      "]",
			Normalization: "uppercase",
		},
	}}

	o, err := cfg.CrawlOverrides(defaults)
	require.NoError(t, err)

	q, _ := o.Views.Get(infoschema.Tables)
	assert.Equal(t, "SELECT 'inline'", q)
	q, _ = o.Views.Get(infoschema.Indexes)
	assert.Equal(t, "SELECT 'dir'", q)
	q, _ = o.Views.Get(infoschema.ForeignKeys)
	assert.Equal(t, "SELECT 'default'", q)

	assert.Equal(t, core.CustomQuery, o.Strategies[core.CategoryForeignKey])
	assert.Equal(t, core.NativeAPI, o.Strategies[core.CategoryIndex])
	_, set := o.Strategies[core.CategoryTable]
	assert.False(t, set)

	ids := o.Identifiers
	assert.Equal(t, "[SELECT]", ids.QuoteIfNeeded("SELECT"), "reserved words kept from defaults")
	assert.Equal(t, "]]", ids.Config().Escape)
	assert.Equal(t, core.NormUppercase, ids.Config().Normalization)
}

func TestConfig_Overrides_KeepsDefaults(t *testing.T) {
	ids := core.ANSIIdentifiers()
	defaults := adapter.Defaults{Identifiers: ids}

	o, err := (&Config{}).CrawlOverrides(defaults)
	require.NoError(t, err)
	assert.Same(t, ids, o.Identifiers)
	assert.Empty(t, o.Strategies)
	assert.True(t, o.Views.IsEmpty())
}

func TestConfig_Overrides_Errors(t *testing.T) {
	_, err := (&Config{Overrides: OverridesConfig{ViewsDir: filepath.Join(t.TempDir(), "missing")}}).CrawlOverrides(adapter.Defaults{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "views_dir")

	_, err = (&Config{Overrides: OverridesConfig{Strategies: map[string]string{"pk": "x"}}}).CrawlOverrides(adapter.Defaults{})
	var se *InvalidStrategyError
	require.True(t, errors.As(err, &se))
}

func TestConfig_CrawlOverrides_DuplicateCategory(t *testing.T) {
	tests := []struct {
		name       string
		strategies map[string]string
	}{
		{"alias and name", map[string]string{"pk": "custom", "primary_key": "native"}},
		{"same value", map[string]string{"fk": "custom", "foreign_keys": "custom"}},
		{"plural", map[string]string{"index": "custom", "indexes": "custom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Overrides: OverridesConfig{Strategies: tt.strategies}}
			_, err := cfg.CrawlOverrides(adapter.Defaults{})

			var se *InvalidStrategyError
			require.True(t, errors.As(err, &se))
			assert.ErrorIs(t, err, errDuplicateCategory)
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := GetLogger(context.Background())
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestFromContext(t *testing.T) {
	def := FromContext(context.Background())
	assert.Equal(t, DefaultOutput, def.OutputFormat)
	assert.Nil(t, def.Target)

	cfg := &Config{OutputFormat: "json"}
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
