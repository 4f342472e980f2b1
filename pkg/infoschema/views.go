// Package infoschema holds the engine-specific SQL used to read
// INFORMATION_SCHEMA style views when a metadata category is fetched with
// a custom query.
//
// A Views value is immutable once built. Keys are upper case; unknown keys
// are kept so engines can ship extra views.
package infoschema

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Key identifies a logical information-schema view.
type Key string

// Well-known view keys.
const (
	Schemata         Key = "SCHEMATA"
	Tables           Key = "TABLES"
	TableColumns     Key = "TABLE_COLUMNS"
	PrimaryKeys      Key = "PRIMARY_KEYS"
	Indexes          Key = "INDEXES"
	ForeignKeys      Key = "FOREIGN_KEYS"
	TableConstraints Key = "TABLE_CONSTRAINTS"
	CheckConstraints Key = "CHECK_CONSTRAINTS"
	ViewDefinitions  Key = "VIEWS"
	Routines         Key = "ROUTINES"
	Sequences        Key = "SEQUENCES"
	Triggers         Key = "TRIGGERS"
)

// KnownKeys returns the well-known view keys.
func KnownKeys() []Key {
	return []Key{
		Schemata, Tables, TableColumns, PrimaryKeys, Indexes, ForeignKeys,
		TableConstraints, CheckConstraints, ViewDefinitions, Routines, Sequences, Triggers,
	}
}

// IsKnown reports whether k is one of the well-known keys.
func (k Key) IsKnown() bool {
	for _, known := range KnownKeys() {
		if k == known {
			return true
		}
	}
	return false
}

// NormalizeKey upper-cases a key and replaces spaces and hyphens with
// underscores, so "referential constraints" and "FOREIGN-KEYS" both work.
func NormalizeKey(s string) Key {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return Key(s)
}

// Views maps view keys to SQL text.
type Views struct {
	sql map[Key]string
}

// NewViews builds a view set from a key → SQL map. Keys are normalized and
// blank SQL entries are dropped. The input map is copied.
func NewViews(m map[string]string) Views {
	v := Views{sql: make(map[Key]string, len(m))}
	for k, q := range m {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		v.sql[NormalizeKey(k)] = q
	}
	return v
}

// LoadFS reads every "<KEY>.sql" file in dir of fsys into a view set.
// Files with other extensions are ignored.
func LoadFS(fsys fs.FS, dir string) (Views, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Views{}, fmt.Errorf("failed to read views directory %s: %w", dir, err)
	}

	m := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(path.Ext(entry.Name()), ".sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return Views{}, fmt.Errorf("failed to read view %s: %w", entry.Name(), err)
		}
		m[strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))] = string(content)
	}
	return NewViews(m), nil
}

// Get returns the SQL for a key.
func (v Views) Get(k Key) (string, bool) {
	q, ok := v.sql[NormalizeKey(string(k))]
	return q, ok
}

// Has reports whether a SQL definition exists for k.
func (v Views) Has(k Key) bool {
	_, ok := v.Get(k)
	return ok
}

// Keys returns the defined keys, sorted.
func (v Views) Keys() []Key {
	keys := make([]Key, 0, len(v.sql))
	for k := range v.sql {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of defined views.
func (v Views) Len() int {
	return len(v.sql)
}

// IsEmpty reports whether no views are defined.
func (v Views) IsEmpty() bool {
	return len(v.sql) == 0
}

// Merge returns a new view set with the entries of other layered over v.
func (v Views) Merge(other Views) Views {
	merged := Views{sql: make(map[Key]string, len(v.sql)+len(other.sql))}
	for k, q := range v.sql {
		merged.sql[k] = q
	}
	for k, q := range other.sql {
		merged.sql[k] = q
	}
	return merged
}

// Map returns a copy of the view set as a plain map.
func (v Views) Map() map[string]string {
	m := make(map[string]string, len(v.sql))
	for k, q := range v.sql {
		m[string(k)] = q
	}
	return m
}
