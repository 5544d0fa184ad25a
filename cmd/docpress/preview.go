package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpress/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Render a manuscript to styled terminal output",
	Long: `Preview renders a single Markdown manuscript to the terminal with
styling, for a quick look before committing to a PDF render. Use --raw to
print the source unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return preview.Render(args[0], raw, os.Stdout)
	},
}

func init() {
	previewCmd.Flags().Bool("raw", false, "print the Markdown source without styling")
	rootCmd.AddCommand(previewCmd)
}
