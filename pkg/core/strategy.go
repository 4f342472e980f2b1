package core

import (
	"fmt"
	"strings"
)

// RetrievalStrategy selects how a metadata category is fetched.
type RetrievalStrategy int

const (
	// NativeAPI asks the engine's native metadata facility (the default).
	NativeAPI RetrievalStrategy = iota
	// CustomQuery runs an engine-specific query, usually against
	// INFORMATION_SCHEMA style views.
	CustomQuery
)

// String returns the string representation of RetrievalStrategy.
func (s RetrievalStrategy) String() string {
	switch s {
	case NativeAPI:
		return "native_api"
	case CustomQuery:
		return "custom_query"
	default:
		return "unknown"
	}
}

// Valid reports whether s is a known strategy.
func (s RetrievalStrategy) Valid() bool {
	return s == NativeAPI || s == CustomQuery
}

// MarshalText implements encoding.TextMarshaler.
func (s RetrievalStrategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseRetrievalStrategy parses a configured strategy name (case-insensitive).
func ParseRetrievalStrategy(s string) (RetrievalStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native", "native_api", "metadata":
		return NativeAPI, nil
	case "custom", "custom_query", "information_schema", "data_dictionary":
		return CustomQuery, nil
	default:
		return NativeAPI, fmt.Errorf("unknown retrieval strategy %q", s)
	}
}

// MetadataCategory is a class of schema object whose retrieval can be
// configured independently.
type MetadataCategory int

const (
	// CategoryTable covers tables and views.
	CategoryTable MetadataCategory = iota
	// CategoryColumn covers table columns.
	CategoryColumn
	// CategoryPrimaryKey covers primary keys.
	CategoryPrimaryKey
	// CategoryIndex covers indexes.
	CategoryIndex
	// CategoryForeignKey covers foreign keys.
	CategoryForeignKey

	// NumCategories is the number of metadata categories.
	NumCategories = int(CategoryForeignKey) + 1
)

var categoryNames = [NumCategories]string{
	"table",
	"column",
	"primary_key",
	"index",
	"foreign_key",
}

// Categories returns all metadata categories in crawl order.
func Categories() []MetadataCategory {
	return []MetadataCategory{
		CategoryTable,
		CategoryColumn,
		CategoryPrimaryKey,
		CategoryIndex,
		CategoryForeignKey,
	}
}

// Valid reports whether c is one of the known categories.
func (c MetadataCategory) Valid() bool {
	return c >= CategoryTable && int(c) < NumCategories
}

// String returns the configuration key of the category.
func (c MetadataCategory) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return categoryNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c MetadataCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseMetadataCategory parses a configuration key such as "foreign_key".
// Hyphens and camel case ("foreignKey", "primary-key") are accepted too.
func ParseMetadataCategory(s string) (MetadataCategory, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	for i, name := range categoryNames {
		if key == name || key == strings.ReplaceAll(name, "_", "") {
			return MetadataCategory(i), nil
		}
	}
	switch key {
	case "tables":
		return CategoryTable, nil
	case "columns", "table_column", "table_columns":
		return CategoryColumn, nil
	case "pk", "primary_keys":
		return CategoryPrimaryKey, nil
	case "indexes", "indices":
		return CategoryIndex, nil
	case "fk", "foreign_keys":
		return CategoryForeignKey, nil
	}
	return CategoryTable, fmt.Errorf("unknown metadata category %q", s)
}
