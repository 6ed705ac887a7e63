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

// NewBuchLentner builds the adapter for buchlentner.de, the German bookstore
// source. An ISBN search there redirects to the product page, so the source
// carries a second hook set for it, plus a detail-page enricher: the results
// list never shows identifiers.
func NewBuchLentner(client *fetch.Client, rc *cache.Results) *Source {
	base := "http://www.buchlentner.de"
	searchParams := "?storeId=21711&catalogId=4099276460822233275&langId=-3" +
		"&pageSize=10&beginIndex=0&sType=SimpleSearch&resultCatEntryType=2" +
		"&showResultsPage=true&pageView=image&pageType=PK" +
		"&mediaTypes=Book:B%C3%BCcher&searchBtn=SUCHEN&searchTerm="
	return NewSource(client, rc, Constants{
		Name:      "buchlentner",
		BaseURL:   base,
		SearchURL: base + "/webapp/wcs/stores/servlet/SearchCmd" + searchParams,
	}, &buchLentnerHooks{base: base},
		WithProductPageHooks(&buchLentnerProductHooks{}),
		WithEnricher(&buchLentnerEnricher{client: client}),
	)
}

type buchLentnerHooks struct {
	BaseHooks
	base string
}

func (h *buchLentnerHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	return doc.Find(".searchResultsList li")
}

func (h *buchLentnerHooks) Title(sel *goquery.Selection) (string, error) {
	title := strings.TrimSpace(sel.Find(".prodTitle h3 a").Text())
	if title == "" {
		return "", eris.New("buchlentner: no title node")
	}
	return title, nil
}

func (h *buchLentnerHooks) Authors(sel *goquery.Selection) ([]string, error) {
	raw := sel.Find(".prodSubTitle h3 a").Text()
	var authors []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			authors = append(authors, line)
		}
	}
	return authors, nil
}

func (h *buchLentnerHooks) DetailsURL(sel *goquery.Selection) (string, error) {
	href, ok := sel.Find(".prodTitle h3 a").Attr("href")
	if !ok {
		return "", eris.New("buchlentner: no details link")
	}
	return h.base + strings.TrimSpace(href), nil
}

func (h *buchLentnerHooks) Price(sel *goquery.Selection) (*float64, error) {
	price := normalize.ExtractPrice(sel.Find(".bookPrise").Text())
	if price == nil {
		return nil, eris.New("buchlentner: no price")
	}
	return price, nil
}

func (h *buchLentnerHooks) Img(sel *goquery.Selection) (string, error) {
	src, ok := sel.Find(".icoBook img").Attr("src")
	if !ok {
		return "", eris.New("buchlentner: no cover image")
	}
	// The site serves protocol-relative image URLs.
	if strings.HasPrefix(src, "//") {
		src = "http:" + src
	}
	return src, nil
}

func (h *buchLentnerHooks) Publishers(sel *goquery.Selection) ([]string, error) {
	// The node reads "2016 - Publisher".
	parts := strings.Split(sel.Find(".year").Text(), "-")
	if len(parts) < 2 {
		return nil, eris.New("buchlentner: no publisher in year node")
	}
	return []string{strings.TrimSpace(parts[1])}, nil
}

// buchLentnerProductHooks parses the product page an ISBN search lands on.
type buchLentnerProductHooks struct {
	BaseHooks
}

func (h *buchLentnerProductHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	return doc.Find(".bigMainContent")
}

func (h *buchLentnerProductHooks) Title(sel *goquery.Selection) (string, error) {
	title := strings.TrimSpace(sel.Find(".productTitleHeader").Text())
	if title == "" {
		return "", eris.New("buchlentner: no product title")
	}
	return title, nil
}

func (h *buchLentnerProductHooks) Authors(sel *goquery.Selection) ([]string, error) {
	ps := sel.Find(".productInfo p")
	if ps.Length() < 3 {
		return nil, eris.New("buchlentner: no author paragraph")
	}
	author := strings.TrimSpace(ps.Eq(2).Text())
	if author == "" {
		return nil, eris.New("buchlentner: empty author paragraph")
	}
	return []string{author}, nil
}

func (h *buchLentnerProductHooks) Price(sel *goquery.Selection) (*float64, error) {
	price := normalize.ExtractPrice(sel.Find(".bookPrise").Text())
	if price == nil {
		return nil, eris.New("buchlentner: no product price")
	}
	return price, nil
}

func (h *buchLentnerProductHooks) Img(sel *goquery.Selection) (string, error) {
	src, ok := sel.Find(".icoBook img").Attr("src")
	if !ok {
		return "", eris.New("buchlentner: no product image")
	}
	if strings.HasPrefix(src, "//") {
		src = "http:" + src
	}
	return src, nil
}

func (h *buchLentnerProductHooks) Publishers(sel *goquery.Selection) ([]string, error) {
	pub := strings.TrimSpace(sel.Find(".other-media-newpdp a").First().Text())
	if pub == "" {
		return nil, eris.New("buchlentner: no product publisher")
	}
	return []string{pub}, nil
}

func (h *buchLentnerProductHooks) Summary(sel *goquery.Selection) (string, error) {
	return strings.TrimSpace(sel.Find("ul.alt_content").Text()), nil
}

// buchLentnerEnricher fetches a record's product page to recover the ISBN the
// results list omits.
type buchLentnerEnricher struct {
	client *fetch.Client
}

func (e *buchLentnerEnricher) Enrich(ctx context.Context, rec model.Record) (model.Record, error) {
	if rec.ISBN != "" {
		return rec, nil
	}
	if rec.DetailsURL == "" {
		return rec, eris.New("buchlentner: record has no details url")
	}

	page, err := e.client.Get(ctx, rec.DetailsURL)
	if err != nil {
		return rec, eris.Wrap(err, "buchlentner: fetching product page")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return rec, eris.Wrap(err, "buchlentner: parsing product page")
	}

	isbns := findISBNs(doc.Find(".col49.floatRight").Text(), "978")
	if len(isbns) == 0 {
		return rec, eris.New("buchlentner: no isbn on product page")
	}

	out := rec.Clone()
	out.ISBN = isbns[0]
	return out, nil
}
