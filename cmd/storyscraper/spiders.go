package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/storyscraper/internal/report"
	"github.com/nao1215/storyscraper/internal/spider"
	"github.com/nao1215/storyscraper/internal/spiders"
)

// errNoSpiders is returned when a registry has nothing to list.
var errNoSpiders = errors.New("no spiders registered")

// NewSpidersCmd creates the spiders command.
func NewSpidersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spiders",
		Short: "List the available spiders",
		Long: `List the spiders storyscraper can crawl with, their domains, a sample URL
each and the filters they run by default.

Examples:
  # Markdown table (default)
  storyscraper spiders

  # JSON for scripts
  storyscraper spiders --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			return listSpiders(cmd, spiders.Default(), report.Format(format))
		},
	}

	cmd.Flags().String("format", string(report.FormatMarkdown),
		"Output format (text, json, markdown)")

	return cmd
}

// listSpiders writes every spider in registry in the given format.
func listSpiders(cmd *cobra.Command, registry *spiders.Registry, format report.Format) error {
	all := registry.All()
	if len(all) == 0 {
		return errNoSpiders
	}

	infos := make([]report.SpiderInfo, 0, len(all))
	for _, sp := range all {
		infos = append(infos, report.SpiderInfo{
			Name:      sp.Name(),
			Domain:    sp.Domain(),
			SampleURL: sp.SampleURL(),
			Filters:   spider.New(sp).Filters().ShortNames(),
		})
	}

	w, err := report.NewWriter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if _, err := w.WriteSpiders(infos); err != nil {
		return fmt.Errorf("failed to list spiders: %w", err)
	}
	return nil
}
