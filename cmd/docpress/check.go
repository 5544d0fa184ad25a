package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpress/internal/toolchain"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that pandoc and the PDF engine are installed",
	Long: `Check probes the external toolchain: pandoc and the configured PDF
engine (pdflatex, xelatex, or lualatex). Missing tools are listed with
per-platform install instructions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := toolchain.Check(toolchainConfig(cmd))

		for _, t := range report.Tools {
			if t.Available {
				fmt.Printf("ok:      %s (%s)\n", t.Name, t.Version)
				continue
			}
			fmt.Printf("missing: %s\n", t.Name)
			for _, hint := range t.Hints {
				fmt.Printf("  %s\n", hint)
			}
		}

		if !report.OK() {
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("%d required tool(s) missing", len(report.Missing()))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("engine", "pdflatex", "PDF engine: pdflatex, xelatex, or lualatex")
	rootCmd.AddCommand(checkCmd)
}
