// Package cmd defines and implements the CLI commands for the crawler.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventcrawler",
		Short: "Batch crawler for Chilean event listings.",
		Long: `eventcrawler ingests event listings from puntoticket.cl by driving a
stealth headless browser, normalizing the extracted fields, and upserting
canonical event records into Postgres.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point. The process exits non-zero when the
// scrape reported errors or failed to start.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
