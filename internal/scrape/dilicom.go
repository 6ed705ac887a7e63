package scrape

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/model"
	"github.com/abelujo/bookscout/internal/normalize"
	"github.com/abelujo/bookscout/pkg/dilicom"
)

const dilicomSourceName = "dilicom"

// dilicomDetailsURL is the consultation page for one sheet. emet identifies
// the requesting bookstore and may be empty.
const dilicomDetailsURL = "https://dilicom-prod.centprod.com/catalogue/detail_article_consultation.html?ean=%s&emet=%s"

// DilicomSource adapts the FEL à la demande catalog to the source contract.
// Unlike the website sources it takes no HTML apart: the catalog answers
// structured sheets, and only for identifier searches.
type DilicomSource struct {
	client dilicom.Client
	emet   string
	cache  *cache.Results
}

// NewDilicom wraps a catalog client as a registrable source.
func NewDilicom(client dilicom.Client, rc *cache.Results, emet string) *DilicomSource {
	return &DilicomSource{client: client, emet: emet, cache: rc}
}

// Name returns the source identifier.
func (s *DilicomSource) Name() string { return dilicomSourceName }

// Search looks up the identifier tokens in the catalog. Keyword searches are
// rejected: the service has no free search.
func (s *DilicomSource) Search(ctx context.Context, tokens []string, _ Options) ([]model.Record, []string) {
	key := cache.Key(dilicomSourceName, tokens)
	if records, ok := s.cache.Get(key); ok {
		return records, nil
	}

	query := model.ParseQuery(tokens, normalize.IsISBN)
	if !query.IsISBNSearch() {
		return []model.Record{}, []string{"Please only search ISBNs on Dilicom."}
	}

	products, err := s.client.FetchProducts(ctx, query.ISBNs)
	if err != nil {
		zap.L().Warn("dilicom: lookup failed", zap.Error(err))
		return []model.Record{}, []string{fmt.Sprintf("dilicom: %v", err)}
	}

	records := make([]model.Record, 0, len(products))
	for _, p := range products {
		records = append(records, s.record(p, query))
	}

	s.cache.Put(key, records)
	return records, nil
}

func (s *DilicomSource) record(p dilicom.Product, q model.Query) model.Record {
	rec := model.Record{
		Title:        normalize.Capitalize(p.Title),
		Price:        &p.Price,
		Currency:     "€",
		ISBN:         p.EAN,
		DetailsURL:   fmt.Sprintf(dilicomDetailsURL, p.EAN, s.emet),
		SearchTerms:  q.Terms(),
		Availability: normalize.AvailabilityLabel(p.Availability),
		CardType:     model.CardTypeBook,
		DataSource:   dilicomSourceName,
		Thickness:    p.Thickness,
		Height:       p.Height,
		Width:        p.Width,
		Weight:       p.Weight,
	}
	rec.PriceFmt = normalize.FormatPrice(rec.Price, rec.Currency)
	rec.SetAuthors([]string{p.Author})
	rec.SetPublishers([]string{normalize.Capitalize(p.Publisher)})
	if !p.DatePublication.IsZero() {
		rec.DatePublication = p.DatePublication.Format("2006-01-02")
	}
	return rec
}
