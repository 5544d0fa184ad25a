package types

import "time"

// PDFEngine identifies the LaTeX engine pandoc uses for PDF output.
type PDFEngine string

const (
	EnginePDFLaTeX PDFEngine = "pdflatex"
	EngineXeLaTeX  PDFEngine = "xelatex"
	EngineLuaLaTeX PDFEngine = "lualatex"
)

// ToolchainConfig holds settings for external tool detection.
type ToolchainConfig struct {
	// Engine is the PDF engine whose presence is verified alongside pandoc.
	Engine PDFEngine `json:"engine" yaml:"engine"`
}

// ConvertConfig holds settings for the rendering stage.
type ConvertConfig struct {
	// SourceDir is the directory containing Markdown manuscripts.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// OutputDir is the base directory for output (contains pdf/, metadata/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Engine selects the pandoc PDF engine: pdflatex, xelatex, or lualatex.
	Engine PDFEngine `json:"engine" yaml:"engine"`

	// Margin is the page margin passed to the geometry variable (default "1in").
	Margin string `json:"margin" yaml:"margin"`

	// FontSize is the document font size (default "11pt").
	FontSize string `json:"font_size" yaml:"font_size"`

	// PaperSize is the LaTeX paper size (default "a4").
	PaperSize string `json:"paper_size" yaml:"paper_size"`

	// TOCDepth is the table-of-contents depth; zero disables the TOC.
	TOCDepth int `json:"toc_depth" yaml:"toc_depth"`

	// NumberSections enables section numbering.
	NumberSections bool `json:"number_sections" yaml:"number_sections"`

	// ColorLinks enables colored hyperlinks.
	ColorLinks bool `json:"color_links" yaml:"color_links"`

	// LinkColor is the hyperlink color when ColorLinks is set (default "blue").
	LinkColor string `json:"link_color" yaml:"link_color"`

	// Timeout is the per-document render timeout (default 2 m).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Jobs is the number of concurrent renders; values below 2 render
	// sequentially.
	Jobs int `json:"jobs" yaml:"jobs"`

	// Force re-renders documents whose PDF is already up to date.
	Force bool `json:"force" yaml:"force"`
}

// ArchiveConfig holds settings for the bundling stage.
type ArchiveConfig struct {
	// OutputDir is the base directory for output (contains pdf/, bundles/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// BundleName overrides the timestamped default archive name.
	BundleName string `json:"bundle_name,omitempty" yaml:"bundle_name,omitempty"`
}

// IndexConfig holds settings for the full-text index stage.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite database and exports.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// WatchConfig holds settings for the continuous rendering stage.
type WatchConfig struct {
	// Debounce is the quiet period a file must hold before it is
	// re-rendered (default 500 ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Toolchain ToolchainConfig `json:"toolchain" yaml:"toolchain"`
	Convert   ConvertConfig   `json:"convert" yaml:"convert"`
	Archive   ArchiveConfig   `json:"archive" yaml:"archive"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Watch     WatchConfig     `json:"watch" yaml:"watch"`
}

// DefaultConvertConfig returns the standard rendering options: pdflatex
// engine, 1 inch margins, 11 pt, A4, colored blue links, a depth-3 table
// of contents, numbered sections, and a 2 minute per-document timeout.
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		SourceDir:      "manuscripts",
		OutputDir:      "output",
		Engine:         EnginePDFLaTeX,
		Margin:         "1in",
		FontSize:       "11pt",
		PaperSize:      "a4",
		TOCDepth:       3,
		NumberSections: true,
		ColorLinks:     true,
		LinkColor:      "blue",
		Timeout:        2 * time.Minute,
		Jobs:           1,
	}
}
