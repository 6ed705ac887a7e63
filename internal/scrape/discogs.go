package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/fetch"
	"github.com/abelujo/bookscout/internal/model"
)

// NewDiscogs builds the adapter for discogs.com, the CD and vinyl source. It
// carries no price, identifier or publisher: the catalog covers releases, not
// retail offers.
func NewDiscogs(client *fetch.Client, rc *cache.Results) *Source {
	base := "http://discogs.com"
	return NewSource(client, rc, Constants{
		Name:      "discogs",
		BaseURL:   base,
		SearchURL: base + "/search/?q=",
		URLEnd:    "&type=all",
		CardType:  model.CardTypeCD,
	}, &discogsHooks{base: base})
}

type discogsHooks struct {
	BaseHooks
	base string
}

func (h *discogsHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	return doc.Find(".card_large")
}

func (h *discogsHooks) Title(sel *goquery.Selection) (string, error) {
	title := strings.TrimSpace(sel.Find("h4").First().Text())
	if title == "" {
		return "", eris.New("discogs: no title node")
	}
	return title, nil
}

func (h *discogsHooks) Authors(sel *goquery.Selection) ([]string, error) {
	var authors []string
	sel.Find("h5 a").Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			authors = append(authors, name)
		}
	})
	return authors, nil
}

func (h *discogsHooks) DetailsURL(sel *goquery.Selection) (string, error) {
	href, ok := sel.Find("h4 a").Attr("href")
	if !ok {
		return "", eris.New("discogs: no details link")
	}
	return h.base + strings.TrimSpace(href), nil
}

func (h *discogsHooks) Img(sel *goquery.Selection) (string, error) {
	src, ok := sel.Find("img").First().Attr("src")
	if !ok {
		return "", eris.New("discogs: no cover image")
	}
	return src, nil
}
