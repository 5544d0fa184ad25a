// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pdiddy/docpress/internal/toolchain"
	"github.com/pdiddy/docpress/pkg/types"
)

// PandocConverter renders Markdown to PDF by invoking pandoc with a LaTeX
// engine. It depends on a toolchain.Tool injected at construction time.
type PandocConverter struct {
	pandoc toolchain.Tool
	cfg    types.ConvertConfig
}

// NewPandocConverter creates a converter that renders through the given
// pandoc Tool. It verifies that pandoc is available before returning; the
// engine binary is pandoc's to find and report on.
func NewPandocConverter(pandoc toolchain.Tool, cfg types.ConvertConfig) (*PandocConverter, error) {
	if !pandoc.Available() {
		return nil, fmt.Errorf("%s not available on PATH", pandoc.Name())
	}
	return &PandocConverter{pandoc: pandoc, cfg: cfg}, nil
}

// Engine returns the configured PDF engine name.
func (p *PandocConverter) Engine() string {
	if p.cfg.Engine == "" {
		return string(types.EnginePDFLaTeX)
	}
	return string(p.cfg.Engine)
}

// Convert runs pandoc on the document's source, writing the PDF to pdfPath.
// An empty or missing output file is treated as a failure.
func (p *PandocConverter) Convert(ctx context.Context, doc types.Document, pdfPath string) error {
	args := p.args(doc.SourcePath, pdfPath)
	if err := p.pandoc.Run(ctx, args, nil, nil); err != nil {
		return fmt.Errorf("converting %s: %w", doc.ID, err)
	}

	info, err := os.Stat(pdfPath)
	if err != nil {
		return fmt.Errorf("pandoc produced no output for %s: %w", doc.ID, err)
	}
	if info.Size() == 0 {
		os.Remove(pdfPath)
		return fmt.Errorf("pandoc produced empty output for %s", doc.ID)
	}
	return nil
}

// args builds the pandoc argument list from the conversion config.
func (p *PandocConverter) args(srcPath, pdfPath string) []string {
	args := []string{
		srcPath,
		"-o", pdfPath,
		"--pdf-engine=" + p.Engine(),
		"--variable", "geometry:margin=" + p.cfg.Margin,
		"--variable", "fontsize=" + p.cfg.FontSize,
	}

	if p.cfg.ColorLinks {
		args = append(args,
			"--variable", "colorlinks=true",
			"--variable", "linkcolor="+p.cfg.LinkColor,
		)
	}
	if p.cfg.TOCDepth > 0 {
		args = append(args, "--toc", "--toc-depth="+strconv.Itoa(p.cfg.TOCDepth))
	}
	if p.cfg.NumberSections {
		args = append(args, "--number-sections")
	}
	args = append(args, "-V", "papersize="+p.cfg.PaperSize)

	return args
}
