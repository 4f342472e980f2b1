package crawl

import (
	"maps"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"
)

// Overrides is the database-specific bundle a caller supplies with a
// connection: custom information-schema SQL, the identifier policy, and
// per-category strategy choices. A category absent from Strategies is
// unset and resolves to NativeAPI.
type Overrides struct {
	Views       infoschema.Views
	Identifiers *core.Identifiers
	Strategies  map[core.MetadataCategory]core.RetrievalStrategy
}

// NewOverrides starts a bundle from an adapter's defaults with every
// strategy unset.
func NewOverrides(defaults adapter.Defaults) *Overrides {
	return &Overrides{
		Views:       defaults.Views,
		Identifiers: defaults.Identifiers,
	}
}

// WithStrategy returns a copy of o with category set to strategy.
func (o *Overrides) WithStrategy(category core.MetadataCategory, strategy core.RetrievalStrategy) *Overrides {
	c := o.clone()
	if c.Strategies == nil {
		c.Strategies = make(map[core.MetadataCategory]core.RetrievalStrategy, 1)
	}
	c.Strategies[category] = strategy
	return c
}

// WithViews returns a copy of o with views merged over its current views.
func (o *Overrides) WithViews(views infoschema.Views) *Overrides {
	c := o.clone()
	c.Views = c.Views.Merge(views)
	return c
}

// WithIdentifiers returns a copy of o using ids.
func (o *Overrides) WithIdentifiers(ids *core.Identifiers) *Overrides {
	c := o.clone()
	c.Identifiers = ids
	return c
}

func (o *Overrides) clone() *Overrides {
	if o == nil {
		return &Overrides{}
	}
	c := *o
	c.Strategies = maps.Clone(o.Strategies)
	return &c
}
