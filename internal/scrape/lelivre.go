package scrape

import (
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/fetch"
	"github.com/abelujo/bookscout/internal/normalize"
)

// NewLeLivre builds the adapter for lelivre.ch, the Swiss bookstore source.
// Searches go out as a POST form and prices come back in francs.
func NewLeLivre(client *fetch.Client, rc *cache.Results) *Source {
	base := "https://www.lelivre.ch"
	return NewSource(client, rc, Constants{
		Name:      "lelivre",
		BaseURL:   base,
		SearchURL: base + "/Results",
		Method:    http.MethodPost,
		PostField: "inputSearch",
		Currency:  "CHF",
	}, &leLivreHooks{base: base})
}

type leLivreHooks struct {
	BaseHooks
	base string
}

func (h *leLivreHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	return doc.Find(".result-table .result-item")
}

// findDD resolves a label from the product's <dt>/<dd> description table. The
// table holds three to five rows in no fixed order, so rows are matched by
// label text. Rows whose value is a link (publisher, collection) yield the
// link text.
func findDD(sel *goquery.Selection, label string) (string, bool) {
	var out string
	var found bool
	dds := sel.Find("dd")
	sel.Find("dt").EachWithBreak(func(i int, dt *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(dt.Text()), strings.ToLower(label)) {
			return true
		}
		dd := dds.Eq(i)
		if a := dd.Find("a"); a.Length() > 0 {
			out = strings.TrimSpace(a.First().Text())
		} else {
			out = strings.TrimSpace(dd.Text())
		}
		found = true
		return false
	})
	return out, found
}

func (h *leLivreHooks) Title(sel *goquery.Selection) (string, error) {
	title := strings.TrimSpace(sel.Find(".result-details h2").Text())
	if title == "" {
		return "", eris.New("lelivre: no title node")
	}
	return normalize.Capitalize(title), nil
}

func (h *leLivreHooks) Authors(sel *goquery.Selection) ([]string, error) {
	raw := sel.Find(".result-author").Text()
	var authors []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			authors = append(authors, normalize.Capitalize(line))
		}
	}
	return authors, nil
}

func (h *leLivreHooks) DetailsURL(sel *goquery.Selection) (string, error) {
	href, ok := sel.Find(".result-details h2 a").Attr("href")
	if !ok {
		return "", eris.New("lelivre: no details link")
	}
	return h.base + strings.TrimSpace(href), nil
}

func (h *leLivreHooks) Price(sel *goquery.Selection) (*float64, error) {
	price := normalize.ExtractPrice(sel.Find(".result-price").Text())
	if price == nil {
		return nil, eris.New("lelivre: no price")
	}
	return price, nil
}

func (h *leLivreHooks) Img(sel *goquery.Selection) (string, error) {
	src, ok := sel.Find(".result-cover img").Attr("src")
	if !ok {
		return "", eris.New("lelivre: no cover image")
	}
	return src, nil
}

func (h *leLivreHooks) Publishers(sel *goquery.Selection) ([]string, error) {
	// Match on "diteur" to cover both Éditeur and éditeur.
	pub, ok := findDD(sel, "diteur")
	if !ok {
		return nil, eris.New("lelivre: no publisher row")
	}
	return []string{pub}, nil
}

func (h *leLivreHooks) ISBN(sel *goquery.Selection) (string, error) {
	isbn, ok := findDD(sel, "ean")
	if !ok {
		return "", eris.New("lelivre: no ean row")
	}
	return isbn, nil
}

func (h *leLivreHooks) DatePublication(sel *goquery.Selection) (string, error) {
	date, ok := findDD(sel, "parution")
	if !ok {
		return "", eris.New("lelivre: no parution row")
	}
	return date, nil
}

func (h *leLivreHooks) Format(sel *goquery.Selection) (string, error) {
	format, ok := findDD(sel, "format")
	if !ok {
		return "", eris.New("lelivre: no format row")
	}
	return format, nil
}
