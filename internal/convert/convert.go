// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements Markdown-to-PDF rendering with pluggable backends.
// See docs/ARCHITECTURE § Rendering.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/pkg/types"
)

// Converter renders a Markdown source file into a PDF at pdfPath. Different
// backends (pandoc with pdflatex, xelatex, or lualatex) implement this
// interface.
type Converter interface {
	// Convert renders the document's source to a PDF at pdfPath. The render
	// is aborted when ctx is cancelled or its deadline passes.
	Convert(ctx context.Context, doc types.Document, pdfPath string) error

	// Engine returns the PDF engine name recorded in document metadata.
	Engine() string
}

// BatchResult holds the outcome of a batch rendering run.
type BatchResult struct {
	Rendered int
	Skipped  int
	Failed   int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Rendered + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed rendering.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// RenderStatus is the per-document outcome of RenderDocument.
type RenderStatus int

const (
	StatusRendered RenderStatus = iota
	StatusSkipped
	StatusFailed
)

// RenderDocument renders a single manuscript to PDF, writing the result
// under outputDir/pdf/ and updating the document's metadata sidecar. When
// the PDF already exists and the source is unchanged, the render is skipped
// unless cfg.Force is set.
func RenderDocument(ctx context.Context, c Converter, doc types.Document, cfg types.ConvertConfig, w io.Writer) RenderStatus {
	pdfPath := manifest.PDFPath(cfg.OutputDir, doc.ID)

	if !cfg.Force && upToDate(doc, cfg.OutputDir) {
		fmt.Fprintf(w, "skipped:  %s (up to date)\n", doc.ID)
		return StatusSkipped
	}

	if err := os.MkdirAll(filepath.Dir(pdfPath), 0o755); err != nil {
		return failDocument(doc, cfg.OutputDir, err, w)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	renderCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.Convert(renderCtx, doc, pdfPath); err != nil {
		return failDocument(doc, cfg.OutputDir, err, w)
	}

	doc.PDFPath = pdfPath
	doc.RenderedAt = time.Now().UTC()
	doc.Engine = c.Engine()
	doc.Status = types.StatusRendered
	if err := manifest.WriteMetadata(doc, cfg.OutputDir); err != nil {
		fmt.Fprintf(w, "rendered: %s (warning: metadata write failed: %v)\n", doc.ID, err)
		return StatusRendered
	}

	fmt.Fprintf(w, "rendered: %s -> %s\n", doc.ID, filepath.Base(pdfPath))
	return StatusRendered
}

// failDocument records a failed render in the sidecar and logs it.
func failDocument(doc types.Document, outputDir string, cause error, w io.Writer) RenderStatus {
	fmt.Fprintf(w, "failed:   %s (%v)\n", doc.ID, cause)
	doc.Status = types.StatusFailed
	if err := manifest.WriteMetadata(doc, outputDir); err != nil {
		fmt.Fprintf(w, "  warning: metadata write failed for %s: %v\n", doc.ID, err)
	}
	return StatusFailed
}

// upToDate reports whether a document's PDF exists and the source digest
// matches the one recorded at the last render.
func upToDate(doc types.Document, outputDir string) bool {
	if _, err := os.Stat(manifest.PDFPath(outputDir, doc.ID)); err != nil {
		return false
	}
	prev, err := manifest.ReadMetadata(outputDir, doc.ID)
	if err != nil {
		return false
	}
	return prev.Status == types.StatusRendered && prev.SourceSHA256 == doc.SourceSHA256
}

// RenderBatch processes documents sequentially through the converter,
// printing per-document status to w and returning a summary.
func RenderBatch(ctx context.Context, c Converter, docs []types.Document, cfg types.ConvertConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		tally(&result, RenderDocument(ctx, c, doc, cfg, w))
	}
	summarize(w, result)
	return result
}

// RenderParallel renders documents with up to cfg.Jobs concurrent workers.
// Status output is serialized per document. Jobs below 2 fall back to
// RenderBatch.
func RenderParallel(ctx context.Context, c Converter, docs []types.Document, cfg types.ConvertConfig, w io.Writer) BatchResult {
	if cfg.Jobs < 2 {
		return RenderBatch(ctx, c, docs, cfg, w)
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)

	for _, doc := range docs {
		g.Go(func() error {
			var buf syncWriter
			status := RenderDocument(gctx, c, doc, cfg, &buf)

			mu.Lock()
			tally(&result, status)
			io.WriteString(w, buf.String())
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	summarize(w, result)
	return result
}

// RenderPaths builds Document records from raw Markdown paths and delegates
// to RenderBatch or RenderParallel depending on cfg.Jobs.
func RenderPaths(ctx context.Context, c Converter, paths []string, cfg types.ConvertConfig, w io.Writer) (BatchResult, error) {
	docs := make([]types.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := manifest.Inspect(p)
		if err != nil {
			return BatchResult{}, err
		}
		doc.PDFPath = manifest.PDFPath(cfg.OutputDir, doc.ID)
		docs = append(docs, doc)
	}
	return RenderParallel(ctx, c, docs, cfg, w), nil
}

func tally(r *BatchResult, status RenderStatus) {
	switch status {
	case StatusRendered:
		r.Rendered++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

func summarize(w io.Writer, r BatchResult) {
	fmt.Fprintf(w, "\nBatch summary: %d rendered, %d skipped, %d failed (total: %d)\n",
		r.Rendered, r.Skipped, r.Failed, r.Total())
}

// syncWriter is a mutex-guarded strings builder used to collect one
// document's status lines before flushing them to the shared writer.
type syncWriter struct {
	mu  sync.Mutex
	buf []byte
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, p...)
	return len(p), nil
}

func (s *syncWriter) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.buf)
}
