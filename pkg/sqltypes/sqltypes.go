// Package sqltypes maps engine-native SQL type names onto a small set of
// portable generic types.
//
// The reference table covers the names reported by PostgreSQL, MySQL,
// DuckDB and SQLite. Anything it does not recognize maps to Other.
package sqltypes

import (
	"sort"
	"strings"
)

// GenericType is the portable representation of a native SQL type.
type GenericType int

// Generic types. Other is the zero value and the fallback for unknown names.
const (
	Other GenericType = iota
	Bit
	Boolean
	TinyInt
	SmallInt
	Integer
	BigInt
	HugeInt
	Real
	Double
	Decimal
	Char
	Varchar
	LongVarchar
	Binary
	Varbinary
	Blob
	Clob
	Date
	Time
	TimeTZ
	Timestamp
	TimestampTZ
	Interval
	UUID
	JSON
	XML
	Array
	Struct
	Enum
)

var genericNames = map[GenericType]string{
	Other:       "OTHER",
	Bit:         "BIT",
	Boolean:     "BOOLEAN",
	TinyInt:     "TINYINT",
	SmallInt:    "SMALLINT",
	Integer:     "INTEGER",
	BigInt:      "BIGINT",
	HugeInt:     "HUGEINT",
	Real:        "REAL",
	Double:      "DOUBLE",
	Decimal:     "DECIMAL",
	Char:        "CHAR",
	Varchar:     "VARCHAR",
	LongVarchar: "LONGVARCHAR",
	Binary:      "BINARY",
	Varbinary:   "VARBINARY",
	Blob:        "BLOB",
	Clob:        "CLOB",
	Date:        "DATE",
	Time:        "TIME",
	TimeTZ:      "TIME_WITH_TIMEZONE",
	Timestamp:   "TIMESTAMP",
	TimestampTZ: "TIMESTAMP_WITH_TIMEZONE",
	Interval:    "INTERVAL",
	UUID:        "UUID",
	JSON:        "JSON",
	XML:         "XML",
	Array:       "ARRAY",
	Struct:      "STRUCT",
	Enum:        "ENUM",
}

// String returns the generic type name.
func (g GenericType) String() string {
	if name, ok := genericNames[g]; ok {
		return name
	}
	return genericNames[Other]
}

// reference maps normalized native names to generic types.
var reference = map[string]GenericType{
	// boolean / bit
	"bit":       Bit,
	"varbit":    Bit,
	"bitstring": Bit,
	"bool":      Boolean,
	"boolean":   Boolean,
	"logical":   Boolean,

	// integers
	"tinyint":   TinyInt,
	"int1":      TinyInt,
	"utinyint":  TinyInt,
	"smallint":  SmallInt,
	"int2":      SmallInt,
	"short":     SmallInt,
	"usmallint": SmallInt,
	"int16":     SmallInt,
	"uint8":     TinyInt,
	"mediumint": Integer,
	"int":       Integer,
	"int4":      Integer,
	"integer":   Integer,
	"signed":    Integer,
	"uinteger":  Integer,
	"int32":     Integer,
	"uint16":    SmallInt,
	"serial":    Integer,
	"bigint":    BigInt,
	"int8":      BigInt,
	"long":      BigInt,
	"ubigint":   BigInt,
	"int64":     BigInt,
	"uint32":    Integer,
	"bigserial": BigInt,
	"oid":       BigInt,
	"hugeint":   HugeInt,
	"uhugeint":  HugeInt,
	"int128":    HugeInt,
	"uint64":    BigInt,
	"varint":    HugeInt,

	// approximate numerics
	"real":             Real,
	"float4":           Real,
	"float":            Double,
	"float8":           Double,
	"double":           Double,
	"double precision": Double,

	// exact numerics
	"numeric": Decimal,
	"decimal": Decimal,
	"dec":     Decimal,
	"money":   Decimal,

	// character
	"char":              Char,
	"character":         Char,
	"bpchar":            Char,
	"nchar":             Char,
	"varchar":           Varchar,
	"character varying": Varchar,
	"nvarchar":          Varchar,
	"name":              Varchar,
	"string":            Varchar,
	"citext":            Varchar,
	"text":              LongVarchar,
	"tinytext":          LongVarchar,
	"mediumtext":        LongVarchar,
	"longtext":          LongVarchar,
	"clob":              Clob,

	// binary
	"binary":     Binary,
	"varbinary":  Varbinary,
	"bytea":      Varbinary,
	"blob":       Blob,
	"tinyblob":   Blob,
	"mediumblob": Blob,
	"longblob":   Blob,

	// temporal
	"date":                        Date,
	"time":                        Time,
	"time without time zone":      Time,
	"timetz":                      TimeTZ,
	"time with time zone":         TimeTZ,
	"datetime":                    Timestamp,
	"timestamp":                   Timestamp,
	"timestamp without time zone": Timestamp,
	"timestamptz":                 TimestampTZ,
	"timestamp with time zone":    TimestampTZ,
	"timestamp_s":                 Timestamp,
	"timestamp_ms":                Timestamp,
	"timestamp_us":                Timestamp,
	"timestamp_ns":                Timestamp,
	"year":                        SmallInt,
	"interval":                    Interval,

	// other well-known types
	"uuid":   UUID,
	"guid":   UUID,
	"json":   JSON,
	"jsonb":  JSON,
	"xml":    XML,
	"struct": Struct,
	"map":    Struct,
	"union":  Struct,
	"enum":   Enum,
	"set":    Enum,
	"list":   Array,
}

// Resolve maps a native type name to its generic type using only the
// reference table. Parameters ("varchar(255)"), array markers ("int[]",
// "_int4") and the MySQL "unsigned"/"zerofill" suffixes are ignored.
func Resolve(native string) GenericType {
	name := Normalize(native)
	if name == "" {
		return Other
	}
	if strings.HasSuffix(name, "[]") {
		return Array
	}
	if g, ok := reference[name]; ok {
		return g
	}
	// PostgreSQL array types are reported with a leading underscore.
	if strings.HasPrefix(name, "_") {
		if _, ok := reference[strings.TrimPrefix(name, "_")]; ok {
			return Array
		}
	}
	return Other
}

// Normalize lowercases a native type name and strips modifiers.
func Normalize(native string) string {
	name := strings.ToLower(strings.TrimSpace(native))
	if i := strings.IndexByte(name, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(name[i:], ')'); j >= 0 {
			rest = name[i+j+1:]
		}
		name = strings.TrimSpace(name[:i]) + rest
	}
	for _, suffix := range []string{" zerofill", " unsigned", " signed"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.Join(strings.Fields(name), " ")
}

// TypeMap is the per-engine mapping from reported native type names to
// generic types. The zero value is an empty map that still resolves names
// through the reference table.
type TypeMap struct {
	m map[string]GenericType
}

// BuildTypeMap cross-references the engine's reported native type names
// against the reference table. Names the table does not know map to Other.
func BuildTypeMap(nativeNames []string) TypeMap {
	m := make(map[string]GenericType, len(nativeNames))
	for _, n := range nativeNames {
		key := Normalize(n)
		if key == "" {
			continue
		}
		m[key] = Resolve(key)
	}
	return TypeMap{m: m}
}

// Lookup returns the generic type for a native type name. Reported names
// use the built mapping; unreported names fall back to the reference table.
func (t TypeMap) Lookup(native string) GenericType {
	if g, ok := t.m[Normalize(native)]; ok {
		return g
	}
	return Resolve(native)
}

// Reported reports whether the engine listed native among its types.
func (t TypeMap) Reported(native string) bool {
	_, ok := t.m[Normalize(native)]
	return ok
}

// NativeTypes returns the reported native type names, sorted.
func (t TypeMap) NativeTypes() []string {
	names := make([]string, 0, len(t.m))
	for n := range t.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of reported native types.
func (t TypeMap) Len() int {
	return len(t.m)
}

// Unknown returns the reported native names that map to Other, sorted.
func (t TypeMap) Unknown() []string {
	var names []string
	for n, g := range t.m {
		if g == Other {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
