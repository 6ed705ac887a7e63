package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/fetch"
	"github.com/abelujo/bookscout/internal/normalize"
)

// NewLibrairieDeParis builds the adapter for librairie-de-paris.fr, the
// French general bookstore source.
func NewLibrairieDeParis(client *fetch.Client, rc *cache.Results) *Source {
	base := "http://www.librairie-de-paris.fr"
	return NewSource(client, rc, Constants{
		Name:              "librairiedeparis",
		BaseURL:           base,
		SearchURL:         base + "/listeliv.php?RECHERCHE=simple&LIVREANCIEN=2&MOTS=",
		AdvancedSearchURL: base + "/listeliv.php?RECHERCHE=appro&LIVREANCIEN=2&MOTS=",
		URLEnd:            "&x=0&y=0",
		PublisherParam:    "EDITEUR",
		ResultsParam:      "NOMBRE",
		OffsetParam:       "DEBUT",
		ResultsPerPage:    12,
	}, &librairieDeParisHooks{base: base})
}

type librairieDeParisHooks struct {
	BaseHooks
	base string
}

func (h *librairieDeParisHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	// Only direct <li> children: nested lists hold facets, not results.
	return doc.Find(".resultsList").ChildrenFiltered("li")
}

func (h *librairieDeParisHooks) Title(sel *goquery.Selection) (string, error) {
	title := strings.TrimSpace(sel.Find(".livre_titre").Text())
	if title == "" {
		return "", eris.New("librairiedeparis: no title node")
	}
	return normalize.Capitalize(title), nil
}

func (h *librairieDeParisHooks) Authors(sel *goquery.Selection) ([]string, error) {
	raw := sel.Find(".livre_auteur").Text()
	var authors []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		authors = append(authors, normalize.Capitalize(line))
	}
	return authors, nil
}

func (h *librairieDeParisHooks) DetailsURL(sel *goquery.Selection) (string, error) {
	href, ok := sel.Find(".livre_titre a").Attr("href")
	if !ok {
		return "", eris.New("librairiedeparis: no details link")
	}
	return h.base + strings.TrimSpace(href), nil
}

func (h *librairieDeParisHooks) Price(sel *goquery.Selection) (*float64, error) {
	price := normalize.ExtractPrice(sel.Find(".item_prix").Text())
	if price == nil {
		return nil, eris.New("librairiedeparis: no price")
	}
	return price, nil
}

func (h *librairieDeParisHooks) Img(sel *goquery.Selection) (string, error) {
	src, ok := sel.Find(".zone_image a img").Attr("data-original")
	if !ok {
		return "", eris.New("librairiedeparis: no cover image")
	}
	return src, nil
}

func (h *librairieDeParisHooks) Publishers(sel *goquery.Selection) ([]string, error) {
	raw := sel.Find(".editeur").Text()
	if raw == "" {
		return nil, eris.New("librairiedeparis: no publisher node")
	}
	// The node reads "Publisher - collection".
	pub := strings.TrimSpace(strings.SplitN(raw, "-", 2)[0])
	return []string{pub}, nil
}

func (h *librairieDeParisHooks) ISBN(sel *goquery.Selection) (string, error) {
	lines := strings.Split(sel.Find(".editeur-collection-parution").Text(), "\n")
	// The identifier is usually the second-to-last line; fall back to a scan.
	if len(lines) >= 2 {
		if isbn := strings.TrimSpace(lines[len(lines)-2]); normalize.IsISBN(isbn) {
			return isbn, nil
		}
	}
	for _, line := range lines {
		if isbn := strings.TrimSpace(line); normalize.IsISBN(isbn) {
			return isbn, nil
		}
	}
	return "", eris.New("librairiedeparis: no isbn line")
}

func (h *librairieDeParisHooks) DatePublication(sel *goquery.Selection) (string, error) {
	// Not always present.
	return strings.TrimSpace(sel.Find(".MiseEnLigne").Text()), nil
}

func (h *librairieDeParisHooks) Availability(sel *goquery.Selection) (string, error) {
	return strings.TrimSpace(sel.Find(".item_stock").Text()), nil
}

func (h *librairieDeParisHooks) Format(sel *goquery.Selection) (string, error) {
	const (
		fmtPocket = "Format poche"
		fmtLarge  = "Grand format"
	)
	raw := strings.ToUpper(strings.TrimSpace(sel.Find(".item_format").Text()))
	switch {
	case strings.Contains(raw, strings.ToUpper(fmtLarge)):
		return fmtLarge, nil
	case strings.Contains(raw, strings.ToUpper(fmtPocket)):
		return fmtPocket, nil
	}
	return "", nil
}
