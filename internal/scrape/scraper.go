// Package scrape implements the source adapter contract: one search URL, one
// HTTP request, one parsed document, and a fixed set of extraction hooks
// that each site implements independently. Sources are looked up at runtime
// in a Registry keyed by name.
package scrape

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/abelujo/bookscout/internal/model"
)

// Options tunes a single search call.
type Options struct {
	// Page selects the results page, starting at 1. Page 1 adds no
	// pagination suffix to the search URL.
	Page int
}

// Searcher is the call surface every source exposes: records plus
// human-readable error strings, never a panic.
type Searcher interface {
	Name() string
	Search(ctx context.Context, tokens []string, opts Options) ([]model.Record, []string)
}

// Constants describes one external source: its URLs, query parameters and
// request shape. Only what differs between sites lives here.
type Constants struct {
	Name              string
	BaseURL           string
	SearchURL         string
	AdvancedSearchURL string
	ISBNSearchURL     string
	// URLEnd is appended to every search URL (site-specific filters).
	URLEnd string
	// ISBNParam, when set, carries the ISBN as a query parameter instead of
	// appending it to the search path.
	ISBNParam string
	// PublisherParam is the query parameter of the publisher-filtered
	// advanced search ("ed:NAME" tokens).
	PublisherParam string
	// ResultsParam/OffsetParam/ResultsPerPage drive pagination. Sources
	// without paging leave them empty.
	ResultsParam   string
	OffsetParam    string
	ResultsPerPage int
	// Method defaults to GET; POST sources set PostField to the form field
	// carrying the query.
	Method    string
	PostField string
	Currency  string
	CardType  model.CardType
}

func (c Constants) method() string {
	if c.Method == "" {
		return http.MethodGet
	}
	return c.Method
}

func (c Constants) currency() string {
	if c.Currency == "" {
		return "€"
	}
	return c.Currency
}

func (c Constants) cardType() model.CardType {
	if c.CardType == "" {
		return model.CardTypeBook
	}
	return c.CardType
}

// Hooks is the extraction contract: given a product node, pull one field out
// of it. A hook returning an error is logged and contributes a zero value to
// the record; it never aborts the record or the search.
type Hooks interface {
	ProductList(doc *goquery.Document) *goquery.Selection
	Title(sel *goquery.Selection) (string, error)
	Authors(sel *goquery.Selection) ([]string, error)
	DetailsURL(sel *goquery.Selection) (string, error)
	Price(sel *goquery.Selection) (*float64, error)
	Img(sel *goquery.Selection) (string, error)
	Publishers(sel *goquery.Selection) ([]string, error)
	ISBN(sel *goquery.Selection) (string, error)
	DatePublication(sel *goquery.Selection) (string, error)
	Availability(sel *goquery.Selection) (string, error)
	Summary(sel *goquery.Selection) (string, error)
	Format(sel *goquery.Selection) (string, error)
}

type noFieldError struct{}

func (noFieldError) Error() string { return "field not provided by this source" }

// ErrNoField is what default hooks return for fields their source does not
// carry. It is logged at debug level only.
var ErrNoField error = noFieldError{}

// BaseHooks implements every hook as "not provided". Site hook sets embed it
// and override only the fields their results page actually carries.
type BaseHooks struct{}

func (BaseHooks) ProductList(doc *goquery.Document) *goquery.Selection {
	return doc.Find("never-matches")
}
func (BaseHooks) Title(*goquery.Selection) (string, error)           { return "", ErrNoField }
func (BaseHooks) Authors(*goquery.Selection) ([]string, error)       { return nil, ErrNoField }
func (BaseHooks) DetailsURL(*goquery.Selection) (string, error)      { return "", ErrNoField }
func (BaseHooks) Price(*goquery.Selection) (*float64, error)         { return nil, ErrNoField }
func (BaseHooks) Img(*goquery.Selection) (string, error)             { return "", ErrNoField }
func (BaseHooks) Publishers(*goquery.Selection) ([]string, error)    { return nil, ErrNoField }
func (BaseHooks) ISBN(*goquery.Selection) (string, error)            { return "", ErrNoField }
func (BaseHooks) DatePublication(*goquery.Selection) (string, error) { return "", ErrNoField }
func (BaseHooks) Availability(*goquery.Selection) (string, error)    { return "", ErrNoField }
func (BaseHooks) Summary(*goquery.Selection) (string, error)         { return "", ErrNoField }
func (BaseHooks) Format(*goquery.Selection) (string, error)          { return "", ErrNoField }

// Enricher fetches the fields only available on a record's detail page.
// Enrich returns a new record; the input is never mutated. Failures return
// the original record unchanged.
type Enricher interface {
	Enrich(ctx context.Context, rec model.Record) (model.Record, error)
}

// Registry manages the available sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Searcher
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Searcher)}
}

// Register adds a source to the registry.
func (r *Registry) Register(s Searcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get returns a source by name, or nil if not found.
func (r *Registry) Get(name string) Searcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[name]
}

// List returns all registered source names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
