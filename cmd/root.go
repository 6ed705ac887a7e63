package main

import (
	"net/http"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abelujo/bookscout/internal/cache"
	"github.com/abelujo/bookscout/internal/config"
	"github.com/abelujo/bookscout/internal/fetch"
	"github.com/abelujo/bookscout/internal/scrape"
	"github.com/abelujo/bookscout/pkg/dilicom"
	"github.com/abelujo/bookscout/pkg/httpcache"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bookscout",
	Short: "Book, CD and DVD metadata search across bookstore websites",
	Long:  "Searches retail bookstore websites and the Dilicom catalog for bibliographic data: title, authors, publisher, price, availability.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initRegistry wires the fetch client, the caches and every source. The
// returned closer releases the on-disk cache, when one is open.
func initRegistry() (*scrape.Registry, *fetch.Client, func()) {
	closer := func() {}

	var transport http.RoundTripper
	if cfg.Cache.Enabled {
		hc, err := httpcache.New(cfg.Cache.Path, cfg.Cache.TTL())
		if err != nil {
			zap.L().Warn("http cache unavailable, going straight to the network", zap.Error(err))
		} else {
			transport = hc
			closer = func() { _ = hc.Close() }
		}
	}

	client := fetch.NewClient(fetch.Options{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout(),
		Transport: transport,
	})

	rc := cache.New()
	registry := scrape.NewDefaultRegistry(client, rc)
	registry.Register(scrape.NewDilicom(
		dilicom.NewClient(cfg.Dilicom.User, cfg.Dilicom.Password),
		rc,
		cfg.Dilicom.Emet,
	))
	return registry, client, closer
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
