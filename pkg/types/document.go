// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DocumentStatus indicates the state of Markdown-to-PDF rendering for a manuscript.
type DocumentStatus string

const (
	StatusNone     DocumentStatus = "none"
	StatusRendered DocumentStatus = "rendered"
	StatusStale    DocumentStatus = "stale"
	StatusFailed   DocumentStatus = "failed"
)

// Document holds metadata and file paths for a Markdown manuscript.
type Document struct {
	// ID is a slug derived from the source filename (e.g. "chapter-03").
	ID string `json:"id" yaml:"id"`

	// SourcePath is the local filesystem path to the Markdown source.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// PDFPath is the local filesystem path of the rendered PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Title is the first level-one heading of the source, or the slug when
	// the source has no heading.
	Title string `json:"title" yaml:"title"`

	// WordCount is the number of whitespace-separated words in the source.
	WordCount int `json:"word_count" yaml:"word_count"`

	// SourceSHA256 is the hex SHA-256 digest of the source contents at the
	// time of the last render. A mismatch marks the document stale.
	SourceSHA256 string `json:"source_sha256" yaml:"source_sha256"`

	// RenderedAt is the completion time of the last successful render.
	RenderedAt time.Time `json:"rendered_at,omitempty" yaml:"rendered_at,omitempty"`

	// Engine identifies the PDF engine used for the last render.
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// Status tracks whether the source has been rendered to PDF.
	Status DocumentStatus `json:"status" yaml:"status"`
}
