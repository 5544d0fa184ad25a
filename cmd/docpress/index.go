// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpress/internal/index"
	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the manuscript full-text index (build, search, export)",
	Long: `Index maintains a local SQLite full-text index over manuscript
content. Use subcommands to build the index, search it, or export it.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Index manuscript content for full-text search",
	Long: `Build reads every manuscript in the source directory and ingests it
into a SQLite database with FTS5 indexing. Unchanged files are skipped on
subsequent runs.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)

	docs, err := manifest.Load(cfg.SourceDir, cfg.OutputDir)
	if err != nil {
		return err
	}

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), docs, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the index with full-text search and filters",
	Long: `Search queries the index using FTS5 full-text search, structured
filters (status, document), or a combination of both. Matches include a
snippet of the surrounding source text.

Use --trace with a document ID and --section to view a section's body.`,
	RunE: runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	traceID, _ := cmd.Flags().GetString("trace")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	// Trace mode: show a section body from a specific document.
	if traceID != "" {
		section, _ := cmd.Flags().GetString("section")
		if section == "" {
			return fmt.Errorf("--trace requires --section")
		}
		text, err := store.Trace(context.Background(), traceID, section)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --status, or --document")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []index.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-40s  %-8s  %s\n",
		"Rank", "Document", "Title", "Words", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		title := r.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		id := r.ID
		if len(id) > 20 {
			id = id[:17] + "..."
		}
		snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
		if len(snippet) > 40 {
			snippet = snippet[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-40s  %-8d  %s\n",
			i+1, id, title, r.Words, snippet)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index to YAML or JSON",
	Long: `Export writes the full index (or a filtered subset) to export.yaml
or export.json in the index directory. Supports the same filter flags as
search for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := indexConfig(cmd)
	store, err := index.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", cfg.IndexDir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", cfg.IndexDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	status, _ := cmd.Flags().GetString("status")
	docID, _ := cmd.Flags().GetString("document")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:      queryText,
		Status:     types.DocumentStatus(status),
		DocumentID: docID,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", "index", "directory holding the SQLite database and exports")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Search flags.
	indexSearchCmd.Flags().String("query", "", "full-text search query")
	indexSearchCmd.Flags().String("status", "", "filter by status: none, rendered, stale, failed")
	indexSearchCmd.Flags().String("document", "", "filter by document ID")
	indexSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexSearchCmd.Flags().String("trace", "", "show a section body for a document ID")
	indexSearchCmd.Flags().String("section", "", "heading name for --trace")
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	indexExportCmd.Flags().String("status", "", "filter by status for partial export")
	indexExportCmd.Flags().String("document", "", "filter by document ID for partial export")
	indexExportCmd.Flags().Int("limit", 0, "maximum entries to export (0 = all)")

	// Wire subcommands.
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
