// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest discovers Markdown manuscripts and maintains their YAML
// metadata sidecars.
// See docs/ARCHITECTURE § Manifest.
package manifest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docpress/pkg/types"
)

const (
	// pdfDir is the subdirectory under the output base for rendered PDFs.
	pdfDir = "pdf"
	// metadataDir is the subdirectory under the output base for sidecars.
	metadataDir = "metadata"
)

// PDFPath returns the output path for a document's rendered PDF.
func PDFPath(outputDir, slug string) string {
	return filepath.Join(outputDir, pdfDir, slug+".pdf")
}

// MetadataPath returns the path of a document's YAML sidecar.
func MetadataPath(outputDir, slug string) string {
	return filepath.Join(outputDir, metadataDir, slug+".yaml")
}

// Slug derives a document ID from a source path: the base name without its
// extension.
func Slug(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover lists the Markdown files directly under dir, sorted by name.
// It returns an error when the directory holds no Markdown files.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no Markdown files found in %s", dir)
	}
	return paths, nil
}

// Inspect reads a Markdown source and builds a Document with its title,
// word count, and content digest. PDFPath and Status are left for the
// caller to fill in.
func Inspect(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	doc := types.Document{
		ID:           Slug(path),
		SourcePath:   path,
		Title:        extractTitle(string(data)),
		WordCount:    len(strings.Fields(string(data))),
		SourceSHA256: hex.EncodeToString(sum[:]),
		Status:       types.StatusNone,
	}
	if doc.Title == "" {
		doc.Title = doc.ID
	}
	return doc, nil
}

// extractTitle returns the text of the first level-one ATX heading, or ""
// when the document has none. Headings inside fenced code blocks are ignored.
func extractTitle(content string) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	inFence := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// WriteMetadata writes a Document sidecar under outputDir/metadata/.
func WriteMetadata(doc types.Document, outputDir string) error {
	dir := filepath.Join(outputDir, metadataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(MetadataPath(outputDir, doc.ID), data, 0o644)
}

// ReadMetadata reads a Document sidecar from outputDir/metadata/.
func ReadMetadata(outputDir, slug string) (*types.Document, error) {
	data, err := os.ReadFile(MetadataPath(outputDir, slug))
	if err != nil {
		return nil, err
	}
	var doc types.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", slug, err)
	}
	return &doc, nil
}

// RemoveMetadata deletes a document's sidecar. A missing sidecar is not an
// error.
func RemoveMetadata(outputDir, slug string) error {
	err := os.Remove(MetadataPath(outputDir, slug))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Load discovers the manuscripts in sourceDir and merges each with its
// existing sidecar. A document whose content digest no longer matches the
// sidecar is marked stale; one with no sidecar is marked none.
func Load(sourceDir, outputDir string) ([]types.Document, error) {
	paths, err := Discover(sourceDir)
	if err != nil {
		return nil, err
	}

	docs := make([]types.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := Inspect(path)
		if err != nil {
			return nil, err
		}
		doc.PDFPath = PDFPath(outputDir, doc.ID)

		if prev, err := ReadMetadata(outputDir, doc.ID); err == nil {
			doc.RenderedAt = prev.RenderedAt
			doc.Engine = prev.Engine
			switch {
			case prev.Status == types.StatusRendered && prev.SourceSHA256 != doc.SourceSHA256:
				doc.Status = types.StatusStale
			default:
				doc.Status = prev.Status
			}
		}

		docs = append(docs, doc)
	}
	return docs, nil
}
