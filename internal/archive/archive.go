// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive bundles rendered PDFs into a zip with a YAML manifest.
// See docs/ARCHITECTURE § Bundling.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/pkg/types"
)

const (
	// bundlesDir is the subdirectory under the output base for archives.
	bundlesDir = "bundles"
	// manifestName is the manifest entry written inside each bundle.
	manifestName = "manifest.yaml"
)

// Manifest is the bundle description written into the archive.
type Manifest struct {
	CreatedAt time.Time       `yaml:"created_at"`
	Tool      string          `yaml:"tool"`
	Documents []ManifestEntry `yaml:"documents"`
}

// ManifestEntry records one bundled document.
type ManifestEntry struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title"`
	WordCount    int       `yaml:"word_count"`
	SourceSHA256 string    `yaml:"source_sha256"`
	RenderedAt   time.Time `yaml:"rendered_at,omitempty"`
}

// Summary holds the outcome of a bundling run.
type Summary struct {
	Path  string
	Files int
	Bytes int64
}

// DefaultBundleName returns the timestamped archive name for the given time,
// e.g. "docpress_bundle_20260828_153000.zip".
func DefaultBundleName(now time.Time) string {
	return fmt.Sprintf("docpress_bundle_%s.zip", now.Format("20060102_150405"))
}

// Bundle zips the rendered PDFs of the given documents, together with a
// manifest, into cfg's bundle directory. Documents without a rendered PDF
// are listed as missing on w and left out; an archive with no PDFs at all
// is an error.
func Bundle(cfg types.ArchiveConfig, docs []types.Document, version string, w io.Writer) (Summary, error) {
	name := cfg.BundleName
	if name == "" {
		name = DefaultBundleName(time.Now().UTC())
	}

	dir := filepath.Join(cfg.OutputDir, bundlesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating bundle directory: %w", err)
	}
	path := filepath.Join(dir, name)

	var bundled []types.Document
	for _, doc := range docs {
		pdfPath := manifest.PDFPath(cfg.OutputDir, doc.ID)
		if _, err := os.Stat(pdfPath); err != nil {
			fmt.Fprintf(w, "missing: %s (no rendered PDF)\n", doc.ID)
			continue
		}
		bundled = append(bundled, doc)
	}
	if len(bundled) == 0 {
		return Summary{}, fmt.Errorf("no rendered PDFs to archive in %s", cfg.OutputDir)
	}

	if err := writeZip(path, cfg.OutputDir, bundled, version, w); err != nil {
		os.Remove(path)
		return Summary{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Summary{}, fmt.Errorf("stat bundle: %w", err)
	}

	summary := Summary{Path: path, Files: len(bundled), Bytes: info.Size()}
	fmt.Fprintf(w, "\nBundle: %s (%d PDFs, %.2f MB)\n",
		path, summary.Files, float64(summary.Bytes)/1024/1024)
	return summary, nil
}

func writeZip(path, outputDir string, docs []types.Document, version string, w io.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bundle %s: %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	man := Manifest{
		CreatedAt: time.Now().UTC(),
		Tool:      "docpress " + version,
	}

	for _, doc := range docs {
		pdfPath := manifest.PDFPath(outputDir, doc.ID)
		if err := addFile(zw, pdfPath); err != nil {
			zw.Close()
			return err
		}
		fmt.Fprintf(w, "added: %s\n", filepath.Base(pdfPath))

		man.Documents = append(man.Documents, ManifestEntry{
			ID:           doc.ID,
			Title:        doc.Title,
			WordCount:    doc.WordCount,
			SourceSHA256: doc.SourceSHA256,
			RenderedAt:   doc.RenderedAt,
		})
	}

	manData, err := yaml.Marshal(man)
	if err != nil {
		zw.Close()
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	entry, err := zw.Create(manifestName)
	if err != nil {
		zw.Close()
		return fmt.Errorf("creating manifest entry: %w", err)
	}
	if _, err := entry.Write(manData); err != nil {
		zw.Close()
		return fmt.Errorf("writing manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing bundle: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	entry, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("creating entry for %s: %w", path, err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
