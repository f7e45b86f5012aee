package knowledge

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

const (
	nsWikidata = "wikidata"
	// wbgetentities accepts up to 50 ids per request.
	maxEntities = 50

	propDemocracyIndex = "P8328"
	propLocatorMap     = "P242"
)

// Place is what Wikidata contributes to a footnote.
type Place struct {
	DemocracyIndex string `msgpack:"democracy_index"`
	MapFilename    string `msgpack:"map_filename"`
	Missing        bool   `msgpack:"missing"`
}

// Wikidata reads claims of items by id.
type Wikidata struct {
	api    string
	cache  *Cache
	client *client
	opts   Options
	logger *slog.Logger
}

// NewWikidata returns a Wikidata source.
func NewWikidata(cache *Cache, opts Options) *Wikidata {
	return newWikidata("https://www.wikidata.org/w/api.php", cache, opts)
}

func newWikidata(api string, cache *Cache, opts Options) *Wikidata {
	return &Wikidata{api: api, cache: cache, client: newClient(opts.Client), opts: opts, logger: opts.logger()}
}

// ItemLink is the page URL of an item.
func (w *Wikidata) ItemLink(itemID string) string {
	return "https://www.wikidata.org/wiki/" + itemID
}

func (w *Wikidata) GetCache(itemID string) (Place, bool) {
	var p Place
	ok, err := w.cache.Get(nsWikidata, itemID, &p)
	if err != nil || !ok || p.Missing {
		return Place{}, false
	}
	return p, true
}

func (w *Wikidata) SaveCache() error { return w.cache.Sync() }

func (w *Wikidata) cached(itemID string) bool {
	var p Place
	ok, _ := w.cache.Get(nsWikidata, itemID, &p)
	return ok
}

// Query fetches the claims of every uncached item.
func (w *Wikidata) Query(ctx context.Context, itemIDs []string) error {
	return prefetch(ctx, itemIDs, w.cached, maxEntities, w.opts.concurrency(), w.logger, w.fetch)
}

type claim struct {
	Rank     string `json:"rank"`
	MainSnak struct {
		DataValue struct {
			Value any `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

type entitiesResponse struct {
	Entities map[string]struct {
		Missing *string            `json:"missing"`
		Claims  map[string][]claim `json:"claims"`
	} `json:"entities"`
}

func (w *Wikidata) fetch(ctx context.Context, ids []string) error {
	q := url.Values{
		"action": {"wbgetentities"},
		"format": {"json"},
		"props":  {"claims"},
		"ids":    {strings.Join(ids, "|")},
	}
	var resp entitiesResponse
	if err := w.client.getJSON(ctx, w.api+"?"+q.Encode(), &resp); err != nil {
		return err
	}
	for _, id := range ids {
		e, ok := resp.Entities[id]
		p := Place{Missing: !ok || e.Missing != nil}
		if !p.Missing {
			if v, ok := bestClaim(e.Claims[propDemocracyIndex]).(map[string]any); ok {
				if amount, ok := v["amount"].(string); ok {
					p.DemocracyIndex = strings.TrimPrefix(amount, "+")
				}
			}
			if v, ok := bestClaim(e.Claims[propLocatorMap]).(string); ok {
				p.MapFilename = v
			}
		}
		if err := w.cache.Put(nsWikidata, id, p); err != nil {
			return err
		}
	}
	return nil
}

// bestClaim returns the value of the preferred claim, else the last one,
// which for yearly indices is the most recent.
func bestClaim(claims []claim) any {
	var best any
	for _, c := range claims {
		if c.Rank == "deprecated" {
			continue
		}
		best = c.MainSnak.DataValue.Value
		if c.Rank == "preferred" {
			return best
		}
	}
	return best
}

// RegimeType classifies a democracy index score the way the Economist
// Intelligence Unit does.
func RegimeType(index float64) string {
	switch {
	case index > 8:
		return "Full democracy"
	case index > 6:
		return "Flawed democracy"
	case index > 4:
		return "Hybrid regime"
	default:
		return "Authoritarian regime"
	}
}

// ParseRegimeType classifies a stored democracy index.
func ParseRegimeType(index string) (string, bool) {
	f, err := strconv.ParseFloat(index, 64)
	if err != nil {
		return "", false
	}
	return RegimeType(f), true
}
