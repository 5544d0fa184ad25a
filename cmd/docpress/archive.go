// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpress/internal/archive"
	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Bundle rendered PDFs into a zip archive",
	Long: `Archive collects the rendered PDFs of every manuscript into a zip
bundle together with a YAML manifest describing each document. The default
bundle name carries a timestamp; override it with --name.`,
	RunE: runArchive,
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)

	docs, err := manifest.Load(cfg.SourceDir, cfg.OutputDir)
	if err != nil {
		return err
	}

	_, err = archive.Bundle(archiveConfig(cmd), docs, version, os.Stdout)
	if err != nil {
		return err
	}

	stale := 0
	for _, doc := range docs {
		if doc.Status != types.StatusRendered {
			stale++
		}
	}
	if stale > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d manuscript(s) are not rendered or are stale; run 'docpress convert' first\n", stale)
	}
	return nil
}

func init() {
	archiveCmd.Flags().String("name", "", "bundle filename (default: docpress_bundle_<timestamp>.zip)")
	rootCmd.AddCommand(archiveCmd)
}
