// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpress/internal/convert"
	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/internal/toolchain"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Render Markdown manuscripts to PDF",
	Long: `Convert renders Markdown manuscripts to PDF through pandoc with a LaTeX
engine. Without arguments it processes every Markdown file in the source
directory; with arguments it renders only the named files.

Documents whose PDF is already up to date are skipped unless --force is set.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)
	ctx := cmd.Context()

	if err := toolchain.Verify(toolchainConfigFrom(cfg)); err != nil {
		return fmt.Errorf("%w (run 'docpress check' for install instructions)", err)
	}

	conv, err := convert.NewPandocConverter(toolchain.Pandoc(), cfg)
	if err != nil {
		return err
	}

	var result convert.BatchResult
	if len(args) > 0 {
		result, err = convert.RenderPaths(ctx, conv, args, cfg, os.Stdout)
		if err != nil {
			return err
		}
	} else {
		docs, err := manifest.Load(cfg.SourceDir, cfg.OutputDir)
		if err != nil {
			return err
		}
		result = convert.RenderParallel(ctx, conv, docs, cfg, os.Stdout)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed rendering", result.Failed)
	}
	return nil
}

func init() {
	convertCmd.Flags().String("engine", "pdflatex", "PDF engine: pdflatex, xelatex, or lualatex")
	convertCmd.Flags().Duration("timeout", 0, "per-document render timeout (0 = config default)")
	convertCmd.Flags().Int("jobs", 0, "concurrent renders (0 = config default)")
	convertCmd.Flags().Int("toc-depth", 3, "table of contents depth (0 disables the TOC)")
	convertCmd.Flags().Bool("force", false, "re-render documents that are already up to date")

	rootCmd.AddCommand(convertCmd)
}
