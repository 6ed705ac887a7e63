package scrape

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/fetch"
	"github.com/abelujo/bookscout/internal/model"
	"github.com/abelujo/bookscout/internal/normalize"
)

// NewCasaDelLibro builds the adapter for casadellibro.com, the Spanish
// bookstore source. Identifiers only appear on detail pages, hence the
// enricher.
func NewCasaDelLibro(client *fetch.Client, rc *cache.Results) *Source {
	base := "http://www.casadellibro.com"
	return NewSource(client, rc, Constants{
		Name:      "casadellibro",
		BaseURL:   base,
		SearchURL: base + "/busqueda-generica?busqueda=",
		URLEnd:    "&idtipoproducto=-1&tipoproducto=1&nivel=5",
	}, &casaDelLibroHooks{base: base},
		WithEnricher(&casaDelLibroEnricher{client: client}),
	)
}

type casaDelLibroHooks struct {
	BaseHooks
	base string
}

func (h *casaDelLibroHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	return doc.Find(".mod-list-item")
}

func (h *casaDelLibroHooks) Title(sel *goquery.Selection) (string, error) {
	title := strings.TrimSpace(sel.Find(".title-link").Text())
	if title == "" {
		return "", eris.New("casadellibro: no title node")
	}
	return normalize.Capitalize(title), nil
}

func (h *casaDelLibroHooks) DetailsURL(sel *goquery.Selection) (string, error) {
	href, ok := sel.Find(".title-link").Attr("href")
	if !ok {
		return "", eris.New("casadellibro: no details link")
	}
	return h.base + strings.TrimSpace(href), nil
}

func (h *casaDelLibroHooks) Price(sel *goquery.Selection) (*float64, error) {
	price := normalize.ExtractPrice(sel.Find(".currentPrice").Text())
	if price == nil {
		return nil, eris.New("casadellibro: no price")
	}
	return price, nil
}

func (h *casaDelLibroHooks) Authors(sel *goquery.Selection) ([]string, error) {
	author := strings.TrimSpace(sel.Find(".mod-libros-author").Text())
	if author == "" {
		return nil, eris.New("casadellibro: no author node")
	}
	return []string{normalize.Capitalize(author)}, nil
}

func (h *casaDelLibroHooks) Img(sel *goquery.Selection) (string, error) {
	src, ok := sel.Find(".img-shadow").Attr("src")
	if !ok {
		return "", eris.New("casadellibro: no cover image")
	}
	return src, nil
}

func (h *casaDelLibroHooks) Publishers(sel *goquery.Selection) ([]string, error) {
	// The node reads "Publisher, 2016".
	raw := strings.TrimSpace(sel.Find(".mod-libros-editorial").Text())
	if raw == "" {
		return nil, eris.New("casadellibro: no publisher node")
	}
	return []string{strings.TrimSpace(strings.SplitN(raw, ",", 2)[0])}, nil
}

func (h *casaDelLibroHooks) DatePublication(sel *goquery.Selection) (string, error) {
	parts := strings.SplitN(sel.Find(".mod-libros-editorial").Text(), ",", 2)
	if len(parts) < 2 {
		return "", eris.New("casadellibro: no date in publisher node")
	}
	return strings.TrimSpace(parts[1]), nil
}

func (h *casaDelLibroHooks) Summary(sel *goquery.Selection) (string, error) {
	return strings.TrimSpace(sel.Find(".pb15").Text()), nil
}

// casaDelLibroEnricher fetches a record's detail page to recover its ISBN.
type casaDelLibroEnricher struct {
	client *fetch.Client
}

func (e *casaDelLibroEnricher) Enrich(ctx context.Context, rec model.Record) (model.Record, error) {
	if rec.ISBN != "" {
		return rec, nil
	}
	if rec.DetailsURL == "" {
		return rec, eris.New("casadellibro: record has no details url")
	}

	page, err := e.client.Get(ctx, rec.DetailsURL)
	if err != nil {
		return rec, eris.Wrap(err, "casadellibro: fetching detail page")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return rec, eris.Wrap(err, "casadellibro: parsing detail page")
	}

	raw := doc.Find(".book-header-2-subtitle-isbn").Text()
	isbn := normalize.CleanISBN(strings.TrimSpace(strings.ReplaceAll(raw, "ISBN", "")))
	if !normalize.IsISBN(isbn) {
		return rec, eris.New("casadellibro: no isbn on detail page")
	}

	out := rec.Clone()
	out.ISBN = isbn
	return out, nil
}
