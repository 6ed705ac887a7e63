package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/report"
	"github.com/abelujo/bookscout/internal/scrape"
	"github.com/abelujo/bookscout/pkg/dilicom"
)

var dilicomCmd = &cobra.Command{
	Use:   "dilicom ISBN...",
	Short: "Look up ISBNs in the Dilicom catalog",
	Long: `Fetches product sheets from Dilicom's FEL à la demande, with prices,
availability and physical dimensions. Needs DILICOM_USER and DILICOM_PASSWORD.
The catalog only accepts ISBNs, not keywords.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := scrape.NewDilicom(
			dilicom.NewClient(cfg.Dilicom.User, cfg.Dilicom.Password),
			cache.New(),
			cfg.Dilicom.Emet,
		)

		records, errs := source.Search(cmd.Context(), args, scrape.Options{})
		report.Errors(os.Stderr, errs)
		report.Cards(os.Stdout, records, true)

		if len(records) == 0 && len(errs) > 0 {
			return eris.New("the catalog lookup failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dilicomCmd)
}
