// Package reviews searches literary press coverage for a record. A metasearch
// instance is queried for articles on a fixed set of review sites, and the
// first hits are fetched and condensed to short excerpts.
package reviews

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abelujo/bookscout/internal/fetch"
	"github.com/abelujo/bookscout/internal/model"
	"github.com/abelujo/bookscout/internal/normalize"
)

const (
	defaultSearchURL = "https://framabee.org/?q=site%3Almda.net+site%3Afranceculture.org+{search}&categories=general"

	// Only the first hits; the tail is rarely about the right book.
	maxReviews = 5

	fetchWorkers = 8

	shortSummaryLength = 400
	longSummaryLength  = 2000
)

// Review is one press article about a record.
type Review struct {
	Title        string `json:"title" yaml:"title"`
	URL          string `json:"url" yaml:"url"`
	ShortSummary string `json:"short_summary" yaml:"short_summary"`
	LongSummary  string `json:"long_summary" yaml:"long_summary"`
}

// Finder queries the metasearch engine and extracts article excerpts.
type Finder struct {
	client    *fetch.Client
	searchURL string
}

// Option configures the finder.
type Option func(*Finder)

// WithSearchURL overrides the metasearch URL template. The template must
// contain a {search} placeholder.
func WithSearchURL(url string) Option {
	return func(f *Finder) { f.searchURL = url }
}

// NewFinder creates a review finder on the given fetch client.
func NewFinder(client *fetch.Client, opts ...Option) *Finder {
	f := &Finder{client: client, searchURL: defaultSearchURL}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find searches reviews for the record. A record without a title or authors
// has nothing to search for and yields no reviews.
func (f *Finder) Find(ctx context.Context, rec model.Record) ([]Review, error) {
	if rec.Title == "" || len(rec.Authors) == 0 {
		return nil, nil
	}

	terms := normalize.StripPunctuation(rec.Title)
	searchURL := strings.Replace(f.searchURL, "{search}", strings.ReplaceAll(terms, " ", "+"), 1)
	zap.L().Debug("reviews: searching", zap.String("url", searchURL))

	page, err := f.client.Get(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrap(err, "reviews: search request")
	}
	if page.ErrorStatus() {
		return nil, eris.Errorf("reviews: search answered status %d", page.Status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, eris.Wrap(err, "reviews: parse search results")
	}

	var links []string
	doc.Find(".result").Each(func(_ int, sel *goquery.Selection) {
		if len(links) >= maxReviews {
			return
		}
		if href, ok := sel.Find("h4 a").Attr("href"); ok {
			links = append(links, href)
		}
	})
	if len(links) == 0 {
		return nil, nil
	}

	return f.fetchAll(ctx, links), nil
}

// fetchAll extracts the linked articles in parallel, keeping result order.
// An article that cannot be read is skipped.
func (f *Finder) fetchAll(ctx context.Context, links []string) []Review {
	found := make([]*Review, len(links))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			review, err := f.fetchOne(gCtx, link)
			if err != nil {
				zap.L().Debug("reviews: skipping article",
					zap.String("url", link),
					zap.Error(err),
				)
				return nil
			}
			found[i] = review
			return nil
		})
	}
	_ = g.Wait()

	reviews := []Review{}
	for _, r := range found {
		if r != nil {
			reviews = append(reviews, *r)
		}
	}
	return reviews
}

func (f *Finder) fetchOne(ctx context.Context, link string) (*Review, error) {
	page, err := f.client.Get(ctx, link)
	if err != nil {
		return nil, err
	}
	if page.ErrorStatus() {
		return nil, eris.Errorf("status %d", page.Status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, err
	}

	text := articleText(doc)
	if text == "" {
		return nil, eris.New("no article text")
	}

	return &Review{
		Title:        strings.TrimSpace(doc.Find("title").First().Text()),
		URL:          link,
		ShortSummary: truncate(text, shortSummaryLength, ""),
		LongSummary:  truncate(text, longSummaryLength, "..."),
	}, nil
}

// articleText pulls the readable text of an article page: the paragraphs of
// the main content node, whitespace collapsed.
func articleText(doc *goquery.Document) string {
	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var parts []string
	root.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n")
}

// truncate cuts text at the rune boundary closest under limit.
func truncate(text string, limit int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + suffix
}
