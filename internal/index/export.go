// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds one document record for export.
type ExportEntry struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	SourcePath string `json:"source_path" yaml:"source_path"`
	Words      int    `json:"words" yaml:"words"`
	Status     string `json:"status" yaml:"status"`
}

const exportLimit = 100000

// ExportYAML writes the index to indexDir/export.yaml. It supports the
// same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the index to indexDir/export.json. It supports the
// same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}

	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, err
	}

	entries := make([]ExportEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, ExportEntry{
			ID:         r.ID,
			Title:      r.Title,
			SourcePath: r.SourcePath,
			Words:      r.Words,
			Status:     r.Status,
		})
	}
	return entries, nil
}
