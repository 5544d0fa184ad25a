// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/pkg/types"
)

func writePDF(t *testing.T, outputDir, slug string) {
	t.Helper()
	path := manifest.PDFPath(outputDir, slug)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("%PDF-1.5 "+slug), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultBundleName(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	if got := DefaultBundleName(now); got != "docpress_bundle_20260828_153000.zip" {
		t.Errorf("DefaultBundleName = %q", got)
	}
}

func TestBundle(t *testing.T) {
	outDir := t.TempDir()
	writePDF(t, outDir, "alpha")
	writePDF(t, outDir, "beta")

	docs := []types.Document{
		{ID: "alpha", Title: "Alpha", WordCount: 100, SourceSHA256: strings.Repeat("aa", 32), Status: types.StatusRendered},
		{ID: "beta", Title: "Beta", WordCount: 200, SourceSHA256: strings.Repeat("bb", 32), Status: types.StatusRendered},
		{ID: "gamma", Title: "Gamma", Status: types.StatusNone},
	}

	cfg := types.ArchiveConfig{OutputDir: outDir, BundleName: "test.zip"}
	var out bytes.Buffer

	summary, err := Bundle(cfg, docs, "1.0.0", &out)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Files != 2 {
		t.Errorf("Files = %d, want 2", summary.Files)
	}
	if summary.Path != filepath.Join(outDir, "bundles", "test.zip") {
		t.Errorf("Path = %q", summary.Path)
	}
	if !strings.Contains(out.String(), "missing: gamma (no rendered PDF)") {
		t.Errorf("missing line absent from output: %q", out.String())
	}
	if !strings.Contains(out.String(), "Bundle: ") {
		t.Errorf("summary line absent from output: %q", out.String())
	}

	// Read the archive back: two PDFs plus the manifest.
	zr, err := zip.OpenReader(summary.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	var manData []byte
	for _, f := range zr.File {
		names[f.Name] = true
		if f.Name == "manifest.yaml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			manData, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	for _, want := range []string{"alpha.pdf", "beta.pdf", "manifest.yaml"} {
		if !names[want] {
			t.Errorf("archive missing %s (have %v)", want, names)
		}
	}

	var man Manifest
	if err := yaml.Unmarshal(manData, &man); err != nil {
		t.Fatal(err)
	}
	if man.Tool != "docpress 1.0.0" {
		t.Errorf("manifest tool = %q", man.Tool)
	}
	if len(man.Documents) != 2 || man.Documents[0].ID != "alpha" || man.Documents[1].WordCount != 200 {
		t.Errorf("manifest documents = %+v", man.Documents)
	}
}

func TestBundle_NoPDFs(t *testing.T) {
	cfg := types.ArchiveConfig{OutputDir: t.TempDir()}
	docs := []types.Document{{ID: "unrendered"}}

	_, err := Bundle(cfg, docs, "dev", io.Discard)
	if err == nil || !strings.Contains(err.Error(), "no rendered PDFs") {
		t.Errorf("expected no-PDFs error, got %v", err)
	}
}

func TestBundle_DefaultName(t *testing.T) {
	outDir := t.TempDir()
	writePDF(t, outDir, "solo")
	docs := []types.Document{{ID: "solo", Title: "Solo"}}

	summary, err := Bundle(types.ArchiveConfig{OutputDir: outDir}, docs, "dev", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(summary.Path)
	if !strings.HasPrefix(base, "docpress_bundle_") || !strings.HasSuffix(base, ".zip") {
		t.Errorf("bundle name = %q", base)
	}
}
