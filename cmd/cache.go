package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/abelujo/bookscout/pkg/httpcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk HTTP cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired entries from the HTTP cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Cache.Enabled {
			return eris.New("the http cache is disabled")
		}

		hc, err := httpcache.New(cfg.Cache.Path, cfg.Cache.TTL())
		if err != nil {
			return eris.Wrap(err, "open http cache")
		}
		defer func() { _ = hc.Close() }()

		n, err := hc.Purge()
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d entries.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}
