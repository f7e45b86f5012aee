package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

const (
	nsMediaWiki = "mediawiki"
	// maxTitles is the MediaWiki limit for extracts per request.
	maxTitles = 20
)

// MediaWiki reads page intros through the MediaWiki action API, as served
// by Wikipedia.
type MediaWiki struct {
	api    string
	link   string
	name   string
	ns     string
	cache  *Cache
	client *client
	opts   Options
	logger *slog.Logger
}

// NewWikipedia returns a lookup for the Wikipedia of lang.
func NewWikipedia(lang string, cache *Cache, opts Options) *MediaWiki {
	base := fmt.Sprintf("https://%s.wikipedia.org", lang)
	return NewMediaWiki(base+"/w/api.php", base+"/wiki/", "Wikipedia", cache, opts)
}

// NewMediaWiki returns a lookup for the action API at api. link is the
// page URL prefix.
func NewMediaWiki(api, link, name string, cache *Cache, opts Options) *MediaWiki {
	return &MediaWiki{
		api:    api,
		link:   link,
		name:   name,
		ns:     nsMediaWiki + ":" + api,
		cache:  cache,
		client: newClient(opts.Client),
		opts:   opts,
		logger: opts.logger(),
	}
}

func (m *MediaWiki) SourceName() string { return m.name }
func (m *MediaWiki) SourceLink() string { return m.link }
func (m *MediaWiki) SaveCache() error   { return m.cache.Sync() }

func (m *MediaWiki) GetCache(title string) (Intro, bool) {
	var in Intro
	ok, err := m.cache.Get(m.ns, title, &in)
	if err != nil {
		m.logger.Warn("knowledge cache read failed", "title", title, "error", err)
		return Intro{}, false
	}
	if !ok || in.Missing || in.Intro == "" {
		return Intro{}, false
	}
	return in, true
}

func (m *MediaWiki) cached(title string) bool {
	var in Intro
	ok, _ := m.cache.Get(m.ns, title, &in)
	return ok
}

func (m *MediaWiki) Query(ctx context.Context, titles []string) error {
	return prefetch(ctx, titles, m.cached, maxTitles, m.opts.concurrency(), m.logger, m.fetch)
}

type extractsResponse struct {
	Query struct {
		Normalized []redirect `json:"normalized"`
		Redirects  []redirect `json:"redirects"`
		Pages      []struct {
			Title     string `json:"title"`
			Extract   string `json:"extract"`
			Missing   bool   `json:"missing"`
			PageProps struct {
				WikibaseItem string `json:"wikibase_item"`
			} `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
}

type redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (m *MediaWiki) fetch(ctx context.Context, titles []string) error {
	q := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"extracts|pageprops"},
		"exintro":       {"1"},
		"explaintext":   {"1"},
		"exsentences":   {"5"},
		"exlimit":       {"max"},
		"ppprop":        {"wikibase_item"},
		"redirects":     {"1"},
		"titles":        {strings.Join(titles, "|")},
	}
	var resp extractsResponse
	if err := m.client.getJSON(ctx, m.api+"?"+q.Encode(), &resp); err != nil {
		return err
	}

	pages := make(map[string]Intro, len(resp.Query.Pages))
	for _, p := range resp.Query.Pages {
		pages[p.Title] = Intro{
			Intro:   strings.TrimSpace(p.Extract),
			ItemID:  p.PageProps.WikibaseItem,
			Missing: p.Missing || strings.TrimSpace(p.Extract) == "",
		}
	}
	follow := func(t string, hops []redirect) string {
		for _, r := range hops {
			if r.From == t {
				return r.To
			}
		}
		return t
	}
	for _, title := range titles {
		resolved := follow(follow(title, resp.Query.Normalized), resp.Query.Redirects)
		in, ok := pages[resolved]
		if !ok {
			in = Intro{Missing: true}
		}
		if err := m.cache.Put(m.ns, title, in); err != nil {
			return err
		}
	}
	return nil
}
