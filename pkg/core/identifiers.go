package core

import (
	"sort"
	"strings"
)

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Snowflake, Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly (MySQL, ClickHouse).
	NormCaseSensitive
	// NormCaseInsensitive normalizes to lowercase for comparison (BigQuery, Hive, DuckDB).
	NormCaseInsensitive
)

// String returns the configuration name of the strategy.
func (n NormalizationStrategy) String() string {
	switch n {
	case NormLowercase:
		return "lowercase"
	case NormUppercase:
		return "uppercase"
	case NormCaseSensitive:
		return "case_sensitive"
	case NormCaseInsensitive:
		return "case_insensitive"
	default:
		return "unknown"
	}
}

// ParseNormalization parses a configured normalization name.
// Unknown names fall back to NormLowercase and ok is false.
func ParseNormalization(s string) (n NormalizationStrategy, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lowercase", "lower":
		return NormLowercase, true
	case "uppercase", "upper":
		return NormUppercase, true
	case "case_sensitive", "sensitive":
		return NormCaseSensitive, true
	case "case_insensitive", "insensitive":
		return NormCaseInsensitive, true
	}
	return NormLowercase, false
}

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// Identifiers is the identifier formatting policy handed to metadata
// retrievers. The crawl context passes it through without interpreting it.
type Identifiers struct {
	cfg      IdentifierConfig
	reserved map[string]struct{}
}

// NewIdentifiers creates an identifier policy. Reserved words are matched
// case-insensitively. An empty Quote defaults to the ANSI double quote.
func NewIdentifiers(cfg IdentifierConfig, reserved ...string) *Identifiers {
	if cfg.Quote == "" {
		cfg.Quote = `"`
	}
	if cfg.QuoteEnd == "" {
		cfg.QuoteEnd = cfg.Quote
	}
	if cfg.Escape == "" {
		cfg.Escape = cfg.QuoteEnd + cfg.QuoteEnd
	}
	words := make(map[string]struct{}, len(reserved))
	for _, w := range reserved {
		words[strings.ToLower(w)] = struct{}{}
	}
	return &Identifiers{cfg: cfg, reserved: words}
}

// ANSIIdentifiers returns the policy used when an engine does not supply one.
func ANSIIdentifiers() *Identifiers {
	return NewIdentifiers(IdentifierConfig{Quote: `"`, Normalization: NormLowercase})
}

// Config returns the quoting and normalization rules.
func (i *Identifiers) Config() IdentifierConfig {
	return i.cfg
}

// IsReserved reports whether name is a reserved word.
func (i *Identifiers) IsReserved(name string) bool {
	_, ok := i.reserved[strings.ToLower(name)]
	return ok
}

// ReservedWords returns the reserved words, sorted.
func (i *Identifiers) ReservedWords() []string {
	words := make([]string, 0, len(i.reserved))
	for w := range i.reserved {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Quote always quotes name, escaping embedded end quotes.
func (i *Identifiers) Quote(name string) string {
	escaped := strings.ReplaceAll(name, i.cfg.QuoteEnd, i.cfg.Escape)
	return i.cfg.Quote + escaped + i.cfg.QuoteEnd
}

// QuoteIfNeeded quotes name only when it is reserved, contains characters
// outside [A-Za-z0-9_], starts with a digit, or would change under
// normalization.
func (i *Identifiers) QuoteIfNeeded(name string) string {
	if i.needsQuoting(name) {
		return i.Quote(name)
	}
	return name
}

// Normalize applies the normalization strategy to an unquoted identifier.
func (i *Identifiers) Normalize(name string) string {
	switch i.cfg.Normalization {
	case NormUppercase:
		return strings.ToUpper(name)
	case NormCaseSensitive:
		return name
	default:
		return strings.ToLower(name)
	}
}

func (i *Identifiers) needsQuoting(name string) bool {
	if name == "" || i.IsReserved(name) {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	for _, r := range name {
		isWord := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isWord {
			return true
		}
	}
	if i.cfg.Normalization == NormCaseInsensitive || i.cfg.Normalization == NormCaseSensitive {
		return false
	}
	return i.Normalize(name) != name
}
