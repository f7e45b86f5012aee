package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const nsFandom = "fandom"

// Fandom reads the lead section of pages on a Fandom wiki. Fandom pages
// are cluttered with infoboxes and navigation, so the rendered section is
// passed through readability and its excerpt kept.
type Fandom struct {
	base   string
	ns     string
	cache  *Cache
	client *client
	opts   Options
	logger *slog.Logger
}

// NewFandom returns a lookup for the wiki at base, for example
// "https://oz.fandom.com".
func NewFandom(base string, cache *Cache, opts Options) *Fandom {
	base = strings.TrimSuffix(base, "/")
	return &Fandom{
		base:   base,
		ns:     nsFandom + ":" + base,
		cache:  cache,
		client: newClient(opts.Client),
		opts:   opts,
		logger: opts.logger(),
	}
}

func (f *Fandom) SourceName() string { return "Fandom" }
func (f *Fandom) SourceLink() string { return f.base + "/wiki/" }
func (f *Fandom) SaveCache() error   { return f.cache.Sync() }

func (f *Fandom) GetCache(title string) (Intro, bool) {
	var in Intro
	ok, err := f.cache.Get(f.ns, title, &in)
	if err != nil || !ok || in.Missing || in.Intro == "" {
		return Intro{}, false
	}
	return in, true
}

func (f *Fandom) cached(title string) bool {
	var in Intro
	ok, _ := f.cache.Get(f.ns, title, &in)
	return ok
}

// Query fetches one page per request; the parse API takes a single page.
func (f *Fandom) Query(ctx context.Context, titles []string) error {
	return prefetch(ctx, titles, f.cached, 1, f.opts.concurrency(), f.logger, func(ctx context.Context, batch []string) error {
		return f.fetch(ctx, batch[0])
	})
}

type parseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

func (f *Fandom) fetch(ctx context.Context, title string) error {
	q := url.Values{
		"action":        {"parse"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"text"},
		"section":       {"0"},
		"redirects":     {"1"},
		"page":          {title},
	}
	var resp parseResponse
	if err := f.client.getJSON(ctx, f.base+"/api.php?"+q.Encode(), &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" {
			return f.cache.Put(f.ns, title, Intro{Missing: true})
		}
		return fmt.Errorf("knowledge: fandom %s: %s", resp.Error.Code, resp.Error.Info)
	}

	pageURL, _ := url.Parse(f.SourceLink() + url.PathEscape(title))
	var intro string
	article, err := readability.FromReader(strings.NewReader("<html><body>"+resp.Parse.Text+"</body></html>"), pageURL)
	if err == nil {
		intro = strings.TrimSpace(article.Excerpt)
	} else {
		f.logger.Debug("readability failed, using first paragraph", "title", title, "error", err)
	}
	if intro == "" {
		intro = firstParagraph(resp.Parse.Text)
	}
	return f.cache.Put(f.ns, title, Intro{Intro: intro, Missing: intro == ""})
}

// firstParagraph returns the text of the first non-empty <p> in fragment.
func firstParagraph(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.DataAtom != atom.P {
			continue
		}
		var sb strings.Builder
		for c := range n.Descendants() {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		if text := strings.Join(strings.Fields(sb.String()), " "); text != "" {
			return text
		}
	}
	return ""
}
