package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/leapstack-labs/leapcrawl/pkg/core"
	"github.com/leapstack-labs/leapcrawl/pkg/crawl"
	"github.com/leapstack-labs/leapcrawl/pkg/infoschema"
)

// errDuplicateCategory reports two strategies keys naming one category.
var errDuplicateCategory = errors.New("category configured more than once")

// InvalidStrategyError is returned when an overrides.strategies entry
// names an unknown category or strategy, or repeats a category under
// another alias.
type InvalidStrategyError struct {
	Category string
	Value    string
	Err      error
}

func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid retrieval strategy %s=%q: %v\nHint: use native_api or custom_query for one of table, column, primary_key, index, foreign_key", e.Category, e.Value, e.Err)
}

func (e *InvalidStrategyError) Unwrap() error { return e.Err }

// strategies parses the configured strategies in key order so the first
// reported error is stable.
func (o OverridesConfig) strategies() (map[core.MetadataCategory]core.RetrievalStrategy, error) {
	if len(o.Strategies) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(o.Strategies))
	for k := range o.Strategies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[core.MetadataCategory]core.RetrievalStrategy, len(keys))
	seen := make(map[core.MetadataCategory]string, len(keys))
	for _, k := range keys {
		category, err := core.ParseMetadataCategory(k)
		if err != nil {
			return nil, &InvalidStrategyError{Category: k, Value: o.Strategies[k], Err: err}
		}
		if prev, ok := seen[category]; ok {
			return nil, &InvalidStrategyError{
				Category: k,
				Value:    o.Strategies[k],
				Err:      fmt.Errorf("%w (also set as %q)", errDuplicateCategory, prev),
			}
		}
		seen[category] = k
		strategy, err := core.ParseRetrievalStrategy(o.Strategies[k])
		if err != nil {
			return nil, &InvalidStrategyError{Category: k, Value: o.Strategies[k], Err: err}
		}
		out[category] = strategy
	}
	return out, nil
}

// CrawlOverrides builds the crawl override bundle: the adapter defaults, then
// views_dir files, then inline views, then identifier and strategy
// settings.
func (c *Config) CrawlOverrides(defaults adapter.Defaults) (*crawl.Overrides, error) {
	o := crawl.NewOverrides(defaults)

	if dir := c.Overrides.ViewsDir; dir != "" {
		views, err := infoschema.LoadFS(os.DirFS(dir), ".")
		if err != nil {
			return nil, fmt.Errorf("failed to load views_dir: %w", err)
		}
		o = o.WithViews(views)
	}
	if len(c.Overrides.Views) > 0 {
		o = o.WithViews(infoschema.NewViews(c.Overrides.Views))
	}

	if id := c.Overrides.Identifiers; id != nil {
		ids, err := mergeIdentifiers(defaults.Identifiers, id)
		if err != nil {
			return nil, err
		}
		o = o.WithIdentifiers(ids)
	}

	strategies, err := c.Overrides.strategies()
	if err != nil {
		return nil, err
	}
	for category, strategy := range strategies {
		o = o.WithStrategy(category, strategy)
	}
	return o, nil
}

func mergeIdentifiers(base *core.Identifiers, id *IdentifierConfig) (*core.Identifiers, error) {
	if base == nil {
		base = core.ANSIIdentifiers()
	}
	cfg := base.Config()
	reserved := base.ReservedWords()

	if id.Quote != "" {
		cfg.Quote = id.Quote
		// a new opening quote implies a new closing quote and escape
		cfg.QuoteEnd = ""
		cfg.Escape = ""
	}
	if id.QuoteEnd != "" {
		cfg.QuoteEnd = id.QuoteEnd
		cfg.Escape = ""
	}
	if id.Escape != "" {
		cfg.Escape = id.Escape
	}
	if id.Normalization != "" {
		n, ok := core.ParseNormalization(id.Normalization)
		if !ok {
			return nil, fmt.Errorf("unknown identifier normalization %q", id.Normalization)
		}
		cfg.Normalization = n
	}
	if len(id.Reserved) > 0 {
		reserved = id.Reserved
	}
	return core.NewIdentifiers(cfg, reserved...), nil
}
