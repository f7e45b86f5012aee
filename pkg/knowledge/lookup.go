// Package knowledge fetches short encyclopedic descriptions of entities
// from Wikipedia, Fandom wikis, Wikidata and Wikimedia Commons, caching
// every answer so a title is requested at most once.
package knowledge

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Intro is the cached description of a title.
type Intro struct {
	Intro string `msgpack:"intro"`
	// ItemID is the Wikidata item of the page, when known.
	ItemID string `msgpack:"item_id"`
	// Missing marks titles the source has no page for.
	Missing bool `msgpack:"missing"`
}

// Lookup is a description source backed by a cache.
type Lookup interface {
	// Query fetches every title not yet cached.
	Query(ctx context.Context, titles []string) error
	// GetCache returns the cached description of title.
	GetCache(title string) (Intro, bool)
	// SaveCache persists the cache.
	SaveCache() error
	SourceName() string
	// SourceLink is the URL prefix that, followed by a title, links to the
	// source page.
	SourceLink() string
}

// Options configures the sources.
type Options struct {
	Client ClientOptions
	// Concurrency bounds parallel requests per source.
	Concurrency int
	Logger      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return 4
	}
	return o.Concurrency
}

// fetchFunc fetches one batch of keys and stores the results.
type fetchFunc func(ctx context.Context, batch []string) error

// prefetch splits the uncached keys into batches and fetches them with at
// most limit batches in flight. A failed batch is logged and skipped.
func prefetch(ctx context.Context, keys []string, cached func(string) bool, batchSize, limit int, logger *slog.Logger, fetch fetchFunc) error {
	var todo []string
	for _, k := range keys {
		if k != "" && !cached(k) && !slices.Contains(todo, k) {
			todo = append(todo, k)
		}
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for batch := range slices.Chunk(todo, batchSize) {
		g.Go(func() error {
			if err := fetch(ctx, batch); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("knowledge lookup failed", "keys", batch, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
