// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preview renders a manuscript to styled terminal output.
package preview

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
)

const wordWrap = 100

// Render reads the Markdown file at path and writes a styled rendering to
// w. With raw set, the source is written through unchanged.
func Render(path string, raw bool, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if raw {
		_, err := w.Write(data)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	out, err := r.Render(string(data))
	if err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}

	_, err = io.WriteString(w, out)
	return err
}
