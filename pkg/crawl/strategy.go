package crawl

import (
	"github.com/leapstack-labs/leapcrawl/pkg/core"
)

// Strategies holds exactly one retrieval strategy per metadata category.
// The zero value resolves every category to NativeAPI.
type Strategies [core.NumCategories]core.RetrievalStrategy

// For returns the strategy for category. Invalid categories resolve to
// NativeAPI.
func (s Strategies) For(category core.MetadataCategory) core.RetrievalStrategy {
	if !category.Valid() {
		return core.NativeAPI
	}
	return s[category]
}

// Map returns the strategies keyed by category.
func (s Strategies) Map() map[core.MetadataCategory]core.RetrievalStrategy {
	m := make(map[core.MetadataCategory]core.RetrievalStrategy, len(s))
	for _, c := range core.Categories() {
		m[c] = s[c]
	}
	return m
}

// ResolveStrategies maps every category to its override, defaulting to
// NativeAPI when the overrides are nil or leave the category unset.
func ResolveStrategies(overrides *Overrides) Strategies {
	var s Strategies
	if overrides == nil {
		return s
	}
	for _, c := range core.Categories() {
		if st, ok := overrides.Strategies[c]; ok && st.Valid() {
			s[c] = st
		}
	}
	return s
}
