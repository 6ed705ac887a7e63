package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/abelujo/bookscout/internal/report"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the available sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, _, closeCache := initRegistry()
		defer closeCache()

		report.Sources(os.Stdout, registry.List())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
