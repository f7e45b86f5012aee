package pipeline

import (
	"log/slog"
	"path/filepath"

	"github.com/japaniel/wordray/pkg/config"
	"github.com/japaniel/wordray/pkg/knowledge"
)

// Knowledge holds the description sources built from configuration. They
// share one cache.
type Knowledge struct {
	Cache    *knowledge.Cache
	Lookup   knowledge.Lookup
	Wikidata *knowledge.Wikidata
	Commons  *knowledge.Commons
}

// OpenKnowledge opens the cache and sources cfg enables. It returns nil
// when knowledge lookups are disabled.
func OpenKnowledge(cfg *config.Config, logger *slog.Logger) (*Knowledge, error) {
	kc := cfg.Knowledge
	if !kc.Enabled {
		return nil, nil
	}
	cache, err := knowledge.OpenCache(knowledge.CacheOptions{Dir: filepath.Join(kc.CacheDir, "knowledge"), Logger: logger})
	if err != nil {
		return nil, err
	}
	opts := knowledge.Options{
		Client:      knowledge.ClientOptions{RequestsPerSecond: kc.RequestsPerSecond, Timeout: kc.Timeout},
		Concurrency: kc.Concurrency,
		Logger:      logger,
	}

	k := &Knowledge{Cache: cache}
	if kc.Fandom != "" {
		k.Lookup = knowledge.NewFandom(kc.Fandom, cache, opts)
	} else {
		k.Lookup = knowledge.NewWikipedia(cfg.Language, cache, opts)
	}
	// Locator maps only make sense for Wikipedia pages, which carry
	// Wikidata items.
	if kc.LocatorMap && kc.Fandom == "" {
		k.Wikidata = knowledge.NewWikidata(cache, opts)
		k.Commons = knowledge.NewCommons(filepath.Join(kc.CacheDir, "commons"), opts)
	}
	return k, nil
}

// Apply wires the sources into deps. A nil Knowledge leaves deps unchanged.
func (k *Knowledge) Apply(deps *Deps) {
	if k == nil {
		return
	}
	deps.Lookup = k.Lookup
	if k.Wikidata != nil {
		deps.Places = k.Wikidata
		deps.Images = k.Commons
	}
}

// Close closes the cache.
func (k *Knowledge) Close() error {
	if k == nil {
		return nil
	}
	return k.Cache.Close()
}
