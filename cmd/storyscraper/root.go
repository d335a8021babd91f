package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for storyscraper.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storyscraper",
		Short: "Scrape stories from the web into clean HTML documents",
		Long: `storyscraper extracts stories from web sites into clean, standalone HTML5
documents.

Each supported site has a spider that knows where the story lives on the
page. The extracted content runs through a chain of filters (scripts,
comments and event handlers are stripped by default) and is written as a
pretty-printed document whose <head> carries the story's metadata.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewSpidersCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
