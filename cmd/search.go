package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/abelujo/bookscout/internal/report"
	"github.com/abelujo/bookscout/internal/reviews"
	"github.com/abelujo/bookscout/internal/scrape"
)

var (
	searchEnrich  bool
	searchTiming  bool
	searchReviews bool
	searchPage    int
	searchFormat  string
)

var searchCmd = &cobra.Command{
	Use:   "search SOURCE WORDS...",
	Short: "Search one source for books, CDs or DVDs",
	Long: `Searches the given source with keywords or ISBNs and prints one card per
result. "ed:NAME" among the words restricts the search to one publisher on
sources that support it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sourceName, words := args[0], args[1:]

		registry, client, closeCache := initRegistry()
		defer closeCache()

		source := registry.Get(sourceName)
		if source == nil {
			return eris.Errorf("unknown source %q, try: bookscout sources", sourceName)
		}

		start := time.Now()
		records, errs := source.Search(ctx, words, scrape.Options{Page: searchPage})
		if searchEnrich {
			records = scrape.EnrichAll(ctx, source, records, cfg.Enrich.Workers)
		}
		elapsed := time.Since(start)

		report.Errors(os.Stderr, errs)
		switch searchFormat {
		case "cards":
			report.Summary(os.Stdout, len(records), elapsed, searchTiming)
			report.Cards(os.Stdout, records, false)
		case "json":
			if err := report.JSON(os.Stdout, records); err != nil {
				return err
			}
		case "yaml":
			if err := report.YAML(os.Stdout, records); err != nil {
				return err
			}
		default:
			return eris.Errorf("unknown format %q, want cards, json or yaml", searchFormat)
		}

		if searchReviews && len(records) > 0 {
			var opts []reviews.Option
			if cfg.Reviews.SearchURL != "" {
				opts = append(opts, reviews.WithSearchURL(cfg.Reviews.SearchURL))
			}
			revs, err := reviews.NewFinder(client, opts...).Find(ctx, records[0])
			if err != nil {
				return eris.Wrap(err, "search reviews")
			}
			report.Reviews(os.Stdout, revs)
		}

		if len(records) == 0 && len(errs) > 0 {
			return eris.New("the search failed on every front")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVarP(&searchEnrich, "enrich", "i", false, "fetch detail pages to complete missing fields (slower)")
	searchCmd.Flags().BoolVarP(&searchTiming, "timing", "t", false, "print how long the search took")
	searchCmd.Flags().BoolVarP(&searchReviews, "reviews", "r", false, "search press reviews for the first result")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "results page to fetch")
	searchCmd.Flags().StringVar(&searchFormat, "format", "cards", "output format: cards, json or yaml")
}
