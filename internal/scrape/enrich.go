package scrape

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abelujo/bookscout/internal/model"
	"github.com/abelujo/bookscout/internal/normalize"
)

// DefaultEnrichWorkers bounds the detail-page fan-out.
const DefaultEnrichWorkers = 8

// enrichCapable is satisfied by sources that can fill fields from detail
// pages.
type enrichCapable interface {
	Enricher() Enricher
}

// EnrichAll runs the source's enricher over every record with a bounded
// worker pool. Results come back in input order; a failed enrichment leaves
// the corresponding record unchanged. Sources without an enricher return the
// input as is.
func EnrichAll(ctx context.Context, src Searcher, records []model.Record, workers int) []model.Record {
	ec, ok := src.(enrichCapable)
	if !ok || ec.Enricher() == nil {
		return records
	}
	enricher := ec.Enricher()

	if workers <= 0 {
		workers = DefaultEnrichWorkers
	}

	out := make([]model.Record, len(records))
	copy(out, records)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		i := i
		g.Go(func() error {
			enriched, err := enricher.Enrich(gCtx, records[i])
			if err != nil {
				zap.L().Warn("scrape: enrichment failed, keeping record as is",
					zap.String("source", src.Name()),
					zap.String("details_url", records[i].DetailsURL),
					zap.Error(err),
				)
				return nil
			}
			out[i] = enriched
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// isbnLikeRe matches ISBN-shaped digit runs, dashes and spaces included.
var isbnLikeRe = regexp.MustCompile(`\d[\d\- ]{8,15}[\dXx]`)

// findISBNs scans free text for valid identifiers, canonicalized to digits
// only. prefix, when non-empty, keeps only identifiers of that registrant
// prefix (e.g. "978").
func findISBNs(text string, prefix string) []string {
	var out []string
	for _, m := range isbnLikeRe.FindAllString(text, -1) {
		clean := normalize.CleanISBN(strings.ReplaceAll(m, " ", ""))
		if !normalize.IsISBN(clean) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(clean, prefix) {
			continue
		}
		out = append(out, clean)
	}
	return out
}
