// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/pkg/types"
)

// fakeConverter writes a stub PDF for every document except those listed in
// failIDs.
type fakeConverter struct {
	mu      sync.Mutex
	calls   []string
	failIDs map[string]bool
}

func (f *fakeConverter) Convert(ctx context.Context, doc types.Document, pdfPath string) error {
	f.mu.Lock()
	f.calls = append(f.calls, doc.ID)
	f.mu.Unlock()
	if f.failIDs[doc.ID] {
		return errors.New("latex blew up")
	}
	return os.WriteFile(pdfPath, []byte("%PDF-1.5 stub"), 0o644)
}

func (f *fakeConverter) Engine() string { return "pdflatex" }

func (f *fakeConverter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// makeDoc writes a Markdown source into srcDir and returns its inspected
// Document with the PDF path set under outDir.
func makeDoc(t *testing.T, srcDir, outDir, slug, content string) types.Document {
	t.Helper()
	path := filepath.Join(srcDir, slug+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := manifest.Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	doc.PDFPath = manifest.PDFPath(outDir, doc.ID)
	return doc
}

func testConfig(outDir string) types.ConvertConfig {
	cfg := types.DefaultConvertConfig()
	cfg.OutputDir = outDir
	return cfg
}

func TestRenderDocument_Rendered(t *testing.T) {
	srcDir, outDir := t.TempDir(), t.TempDir()
	doc := makeDoc(t, srcDir, outDir, "paper", "# Paper\n\nBody.\n")
	conv := &fakeConverter{}
	var out bytes.Buffer

	status := RenderDocument(context.Background(), conv, doc, testConfig(outDir), &out)

	if status != StatusRendered {
		t.Fatalf("status = %v, want rendered", status)
	}
	if !strings.Contains(out.String(), "rendered: paper -> paper.pdf") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if _, err := os.Stat(manifest.PDFPath(outDir, "paper")); err != nil {
		t.Errorf("expected PDF on disk: %v", err)
	}
	meta, err := manifest.ReadMetadata(outDir, "paper")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Status != types.StatusRendered || meta.Engine != "pdflatex" {
		t.Errorf("sidecar = %+v", meta)
	}
	if meta.RenderedAt.IsZero() {
		t.Error("RenderedAt not recorded")
	}
}

func TestRenderDocument_SkipsUpToDate(t *testing.T) {
	srcDir, outDir := t.TempDir(), t.TempDir()
	doc := makeDoc(t, srcDir, outDir, "paper", "# Paper\n")
	conv := &fakeConverter{}
	cfg := testConfig(outDir)

	if status := RenderDocument(context.Background(), conv, doc, cfg, io.Discard); status != StatusRendered {
		t.Fatalf("first render status = %v", status)
	}

	var out bytes.Buffer
	status := RenderDocument(context.Background(), conv, doc, cfg, &out)
	if status != StatusSkipped {
		t.Fatalf("second render status = %v, want skipped", status)
	}
	if !strings.Contains(out.String(), "skipped:  paper (up to date)") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if conv.callCount() != 1 {
		t.Errorf("converter ran %d times, want 1", conv.callCount())
	}

	// Force re-renders even when up to date.
	cfg.Force = true
	if status := RenderDocument(context.Background(), conv, doc, cfg, io.Discard); status != StatusRendered {
		t.Errorf("forced render status = %v, want rendered", status)
	}
	if conv.callCount() != 2 {
		t.Errorf("converter ran %d times after force, want 2", conv.callCount())
	}
}

func TestRenderDocument_Failed(t *testing.T) {
	srcDir, outDir := t.TempDir(), t.TempDir()
	doc := makeDoc(t, srcDir, outDir, "broken", "# Broken\n")
	conv := &fakeConverter{failIDs: map[string]bool{"broken": true}}
	var out bytes.Buffer

	status := RenderDocument(context.Background(), conv, doc, testConfig(outDir), &out)

	if status != StatusFailed {
		t.Fatalf("status = %v, want failed", status)
	}
	if !strings.Contains(out.String(), "failed:   broken (latex blew up)") {
		t.Errorf("unexpected output: %q", out.String())
	}
	meta, err := manifest.ReadMetadata(outDir, "broken")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Status != types.StatusFailed {
		t.Errorf("sidecar status = %q, want failed", meta.Status)
	}
}

func TestRenderBatch(t *testing.T) {
	srcDir, outDir := t.TempDir(), t.TempDir()
	docs := []types.Document{
		makeDoc(t, srcDir, outDir, "one", "# One\n"),
		makeDoc(t, srcDir, outDir, "two", "# Two\n"),
		makeDoc(t, srcDir, outDir, "bad", "# Bad\n"),
	}
	conv := &fakeConverter{failIDs: map[string]bool{"bad": true}}
	var out bytes.Buffer

	result := RenderBatch(context.Background(), conv, docs, testConfig(outDir), &out)

	if result.Rendered != 2 || result.Failed != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v", result)
	}
	if !result.HasFailures() {
		t.Error("expected HasFailures")
	}
	if result.Total() != 3 {
		t.Errorf("Total() = %d, want 3", result.Total())
	}
	if !strings.Contains(out.String(), "Batch summary: 2 rendered, 0 skipped, 1 failed (total: 3)") {
		t.Errorf("missing summary in output: %q", out.String())
	}
}

func TestRenderBatch_CancelledContext(t *testing.T) {
	srcDir, outDir := t.TempDir(), t.TempDir()
	docs := []types.Document{makeDoc(t, srcDir, outDir, "one", "# One\n")}
	conv := &fakeConverter{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := RenderBatch(ctx, conv, docs, testConfig(outDir), io.Discard)
	if result.Total() != 0 {
		t.Errorf("cancelled batch processed %d documents", result.Total())
	}
	if conv.callCount() != 0 {
		t.Errorf("converter ran %d times under cancelled context", conv.callCount())
	}
}

func TestRenderParallel(t *testing.T) {
	srcDir, outDir := t.TempDir(), t.TempDir()
	var docs []types.Document
	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		docs = append(docs, makeDoc(t, srcDir, outDir, slug, "# "+slug+"\n"))
	}
	conv := &fakeConverter{failIDs: map[string]bool{"c": true}}
	cfg := testConfig(outDir)
	cfg.Jobs = 3
	var out bytes.Buffer

	result := RenderParallel(context.Background(), conv, docs, cfg, &out)

	if result.Rendered != 4 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}
	// Each document's status line must appear exactly once and unbroken.
	for _, slug := range []string{"a", "b", "d", "e"} {
		line := "rendered: " + slug + " -> " + slug + ".pdf"
		if strings.Count(out.String(), line) != 1 {
			t.Errorf("expected one %q line in output: %q", line, out.String())
		}
	}
	if !strings.Contains(out.String(), "Batch summary: 4 rendered, 0 skipped, 1 failed (total: 5)") {
		t.Errorf("missing summary: %q", out.String())
	}
}

func TestRenderPaths(t *testing.T) {
	srcDir, outDir := t.TempDir(), t.TempDir()
	paths := []string{
		makeDoc(t, srcDir, outDir, "first", "# First\n").SourcePath,
		makeDoc(t, srcDir, outDir, "second", "# Second\n").SourcePath,
	}
	conv := &fakeConverter{}

	result, err := RenderPaths(context.Background(), conv, paths, testConfig(outDir), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if result.Rendered != 2 {
		t.Errorf("result = %+v", result)
	}

	// A path that does not exist is an error before any rendering starts.
	if _, err := RenderPaths(context.Background(), conv, []string{filepath.Join(srcDir, "nope.md")}, testConfig(outDir), io.Discard); err == nil {
		t.Error("expected error for missing source")
	}
}
