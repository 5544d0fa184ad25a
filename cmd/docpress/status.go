package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List manuscripts and their render state",
	Long: `Status lists every manuscript in the source directory with its title,
word count, and render state. A manuscript edited since its last render is
shown as stale.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)

	docs, err := manifest.Load(cfg.SourceDir, cfg.OutputDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-40s  %8s  %-8s  %s\n",
		"Document", "Title", "Words", "Status", "Rendered")
	for _, doc := range docs {
		rendered := "-"
		if !doc.RenderedAt.IsZero() {
			rendered = doc.RenderedAt.Format("2006-01-02 15:04")
		}
		title := doc.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-40s  %8d  %-8s  %s\n",
			doc.ID, title, doc.WordCount, doc.Status, rendered)
	}

	pending := 0
	for _, doc := range docs {
		if doc.Status != types.StatusRendered {
			pending++
		}
	}
	fmt.Fprintf(os.Stdout, "\n%d manuscript(s), %d pending render\n", len(docs), pending)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
