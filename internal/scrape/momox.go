package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/fetch"
	"github.com/abelujo/bookscout/internal/model"
	"github.com/abelujo/bookscout/internal/normalize"
)

// NewMomox builds the adapter for momox-shop.fr, the second-hand DVD source.
// An EAN search redirects to the product page, handled by a second hook set.
func NewMomox(client *fetch.Client, rc *cache.Results) *Source {
	base := "https://www.momox-shop.fr"
	return NewSource(client, rc, Constants{
		Name:      "momox",
		BaseURL:   base,
		SearchURL: base + "/films-C09/?fcIsSearch=1&searchparam=",
		CardType:  model.CardTypeDVD,
	}, &momoxHooks{},
		WithProductPageHooks(&momoxProductHooks{}),
	)
}

type momoxHooks struct {
	BaseHooks
}

func (h *momoxHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	return doc.Find("#body .mx-product-list-item")
}

func (h *momoxHooks) Title(sel *goquery.Selection) (string, error) {
	title := strings.TrimSpace(sel.Find(".mx-product-list-item-title").Text())
	if title == "" {
		return "", eris.New("momox: no title node")
	}
	return title, nil
}

func (h *momoxHooks) Authors(sel *goquery.Selection) ([]string, error) {
	raw := sel.Find(".mx-product-list-item-manufacturer").Text()
	var authors []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		// The manufacturer block starts with a "de:" label line.
		if line == "" || line == "de:" {
			continue
		}
		authors = append(authors, line)
	}
	return authors, nil
}

func (h *momoxHooks) DetailsURL(sel *goquery.Selection) (string, error) {
	href, ok := sel.Find(".mx-product-list-item-title a").Attr("href")
	if !ok {
		return "", eris.New("momox: no details link")
	}
	return strings.TrimSpace(href), nil
}

func (h *momoxHooks) Price(sel *goquery.Selection) (*float64, error) {
	// The struck-through price is the new-copy reference price.
	price := normalize.ExtractPrice(sel.Find(".mx-strikethrough").Text())
	if price == nil {
		return nil, eris.New("momox: no price")
	}
	return price, nil
}

func (h *momoxHooks) Img(sel *goquery.Selection) (string, error) {
	src, ok := sel.Find(".mx-product-image").Attr("src")
	if !ok {
		return "", eris.New("momox: no cover image")
	}
	return src, nil
}

// momoxProductHooks parses the product page an EAN search lands on.
type momoxProductHooks struct {
	BaseHooks
}

func (h *momoxProductHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	return doc.Find("body").First()
}

func (h *momoxProductHooks) Title(sel *goquery.Selection) (string, error) {
	title := strings.TrimSpace(sel.Find("#test_product_name").Text())
	if title == "" {
		return "", eris.New("momox: no product title")
	}
	return title, nil
}

func (h *momoxProductHooks) Img(sel *goquery.Selection) (string, error) {
	src, ok := sel.Find("#product_img").Attr("src")
	if !ok {
		return "", eris.New("momox: no product image")
	}
	return src, nil
}
