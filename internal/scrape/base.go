package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/fetch"
	"github.com/abelujo/bookscout/internal/model"
	"github.com/abelujo/bookscout/internal/normalize"
)

// Source runs the shared request/response lifecycle for one website. Sites
// differ only by their Constants and hook sets.
type Source struct {
	constants Constants
	results   Hooks
	product   Hooks
	enricher  Enricher
	client    *fetch.Client
	cache     *cache.Results
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithProductPageHooks sets the hook set used when an ISBN search gets
// 302-redirected straight to a product page.
func WithProductPageHooks(h Hooks) SourceOption {
	return func(s *Source) { s.product = h }
}

// WithEnricher sets the detail-page enricher for this source.
func WithEnricher(e Enricher) SourceOption {
	return func(s *Source) { s.enricher = e }
}

// NewSource builds a source from its constants and results-page hooks.
func NewSource(client *fetch.Client, rc *cache.Results, c Constants, hooks Hooks, opts ...SourceOption) *Source {
	s := &Source{
		constants: c,
		results:   hooks,
		client:    client,
		cache:     rc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source identifier.
func (s *Source) Name() string { return s.constants.Name }

// Enricher returns the source's detail-page enricher, or nil.
func (s *Source) Enricher() Enricher { return s.enricher }

// Search classifies the tokens, fires the one search request, and maps every
// product node through the extraction hooks. It always returns a (records,
// errors) pair; transport problems become error strings, extraction problems
// become missing fields.
func (s *Source) Search(ctx context.Context, tokens []string, opts Options) ([]model.Record, []string) {
	// Cache short-circuit comes first, before any network or parse work.
	key := cache.Key(s.constants.Name, tokens)
	if records, ok := s.cache.Get(key); ok {
		return records, nil
	}

	if len(tokens) == 0 {
		zap.L().Error("scrape: no search terms given", zap.String("source", s.constants.Name))
	}

	query := model.ParseQuery(tokens, normalize.IsISBN)
	if opts.Page > 1 {
		query.Page = opts.Page
	}

	searchURL, terms := s.buildURL(query)
	zap.L().Debug("scrape: search url",
		zap.String("source", s.constants.Name),
		zap.String("url", searchURL),
	)

	page, err := s.fetchPage(ctx, searchURL, terms)
	if err != nil {
		return []model.Record{}, []string{fmt.Sprintf("%s: %v", s.constants.Name, err)}
	}

	var errs []string
	if page.ErrorStatus() {
		errs = append(errs, fmt.Sprintf(
			"the remote source %s has a problem, we can not connect to it (status %d)",
			s.constants.Name, page.Status,
		))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		errs = append(errs, fmt.Sprintf("%s: unreadable response: %v", s.constants.Name, err))
		return []model.Record{}, errs
	}

	hooks := s.results
	if page.Redirected && s.product != nil {
		// The site sent us straight to a product page: parse it as a
		// single-item result with the product-page hook set.
		hooks = s.product
	}

	records := []model.Record{}
	hooks.ProductList(doc).Each(func(_ int, sel *goquery.Selection) {
		records = append(records, s.assemble(hooks, sel, query, searchURL, terms, page))
	})

	s.cache.Put(key, records)
	return records, errs
}

func (s *Source) fetchPage(ctx context.Context, searchURL, terms string) (*fetch.Page, error) {
	if s.constants.method() == http.MethodPost {
		form := url.Values{s.constants.PostField: {terms}}
		return s.client.PostForm(ctx, searchURL, form)
	}
	return s.client.Get(ctx, searchURL)
}

// buildURL concatenates base search (or advanced/ISBN-specific) URL, query
// string, source URL suffix and pagination suffix. Returns the URL and the
// query terms recorded on each record.
func (s *Source) buildURL(q model.Query) (string, string) {
	c := s.constants

	if c.method() == http.MethodPost {
		// POST sources carry the query in the form body, not the URL.
		if q.IsISBNSearch() {
			return c.SearchURL, q.ISBNs[0]
		}
		return c.SearchURL, strings.Join(q.Keywords, " ")
	}

	if q.IsISBNSearch() {
		// Single-item adapters use only the first identifier.
		isbn := q.ISBNs[0]
		var query string
		if c.ISBNParam != "" {
			query = "&" + c.ISBNParam + "=" + isbn
		} else {
			query = isbn
		}
		// No pagination on ISBN searches.
		return c.isbnSearchURL() + query + c.URLEnd, isbn
	}

	if q.Publisher != "" && c.PublisherParam != "" {
		query := "&" + c.PublisherParam + "=" + q.Publisher
		return c.AdvancedSearchURL + query + c.URLEnd + s.pagination(q.Page), query
	}

	terms := q.Terms()
	return c.SearchURL + terms + c.URLEnd + s.pagination(q.Page), terms
}

func (c Constants) isbnSearchURL() string {
	if c.ISBNSearchURL != "" {
		return c.ISBNSearchURL
	}
	return c.SearchURL
}

// pagination returns the URL suffix selecting the requested page. Page 1
// produces no suffix; sources without paging parameters never produce one.
func (s *Source) pagination(page int) string {
	c := s.constants
	if page <= 1 || c.ResultsParam == "" || c.OffsetParam == "" || c.ResultsPerPage == 0 {
		return ""
	}
	return fmt.Sprintf("&%s=%d&%s=%d",
		c.ResultsParam, c.ResultsPerPage,
		c.OffsetParam, c.ResultsPerPage*(page-1),
	)
}

// assemble maps one product node to a record. Every hook failure is caught
// here: the field stays at its zero value and the record survives.
func (s *Source) assemble(h Hooks, sel *goquery.Selection, q model.Query, searchURL, terms string, page *fetch.Page) model.Record {
	name := s.constants.Name

	rec := model.Record{
		DataSource:  name,
		SearchURL:   searchURL,
		SearchTerms: terms,
		Currency:    s.constants.currency(),
		CardType:    s.constants.cardType(),
	}

	rec.Title = hookValue(name, "title", sel, h.Title)
	rec.SetAuthors(hookValue(name, "authors", sel, h.Authors))
	rec.SetPublishers(hookValue(name, "publishers", sel, h.Publishers))
	rec.DetailsURL = hookValue(name, "details_url", sel, h.DetailsURL)
	rec.Price = hookValue(name, "price", sel, h.Price)
	rec.PriceFmt = normalize.FormatPrice(rec.Price, rec.Currency)
	rec.Img = hookValue(name, "img", sel, h.Img)
	rec.ISBN = hookValue(name, "isbn", sel, h.ISBN)
	rec.DatePublication = hookValue(name, "date_publication", sel, h.DatePublication)
	rec.Availability = hookValue(name, "availability", sel, h.Availability)
	rec.Summary = hookValue(name, "summary", sel, h.Summary)
	rec.Format = hookValue(name, "format", sel, h.Format)

	if page.Redirected {
		// On a product page the landed URL is the details URL, and the
		// searched identifier is the record's identifier.
		if rec.DetailsURL == "" {
			rec.DetailsURL = page.FinalURL
		}
		if rec.ISBN == "" && q.IsISBNSearch() {
			rec.ISBN = q.ISBNs[0]
		}
	}

	return rec
}

// hookValue runs one extraction hook, trading its error for a zero value.
func hookValue[T any](source, field string, sel *goquery.Selection, fn func(*goquery.Selection) (T, error)) T {
	v, err := fn(sel)
	if err != nil {
		var zero T
		zap.L().Debug("scrape: hook failed",
			zap.String("source", source),
			zap.String("field", field),
			zap.Error(err),
		)
		return zero
	}
	return v
}
