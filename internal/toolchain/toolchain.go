// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain implements external tool detection and execution for the
// pandoc/LaTeX toolchain.
// See docs/ARCHITECTURE § Toolchain.
package toolchain

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pdiddy/docpress/pkg/types"
)

const binPandoc = "pandoc"

// Tool provides operations on one external binary: checking availability,
// probing its version, and running it with piped stdio.
type Tool interface {
	// Name returns the binary name ("pandoc", "pdflatex", ...).
	Name() string

	// Available reports whether the binary exists on PATH and responds
	// to a --version probe.
	Available() bool

	// Version returns the first line of the binary's --version output.
	Version() (string, error)

	// Run executes the binary with args, piping stdin and stdout. Stderr
	// is captured and included in the returned error on failure. The run
	// is killed when ctx is cancelled or its deadline passes.
	Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	Output(name string, args ...string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) Output(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	return string(out), err
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// tool implements Tool for a named binary.
type tool struct {
	bin  string
	exec executor
}

func (t *tool) Name() string { return t.bin }

func (t *tool) Available() bool {
	if _, err := t.exec.LookPath(t.bin); err != nil {
		return false
	}
	return t.exec.RunSilent(t.bin, "--version") == nil
}

func (t *tool) Version() (string, error) {
	out, err := t.exec.Output(t.bin, "--version")
	if err != nil {
		return "", fmt.Errorf("probing %s version: %w", t.bin, err)
	}
	line, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(line), nil
}

func (t *tool) Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr strings.Builder
	if err := t.exec.RunPiped(ctx, t.bin, args, stdin, stdout, &stderr); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("running %s: %w", t.bin, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s: %w: %s", t.bin, err, msg)
		}
		return fmt.Errorf("running %s: %w", t.bin, err)
	}
	return nil
}

var defaultExec executor = &osExecutor{}

// Pandoc returns the pandoc Tool.
func Pandoc() Tool {
	return &tool{bin: binPandoc, exec: defaultExec}
}

// Engine returns the Tool for the given PDF engine binary.
func Engine(engine types.PDFEngine) Tool {
	return &tool{bin: string(engine), exec: defaultExec}
}

// installHints maps each required tool to per-platform install guidance,
// printed when Check finds the tool missing.
var installHints = map[string][]string{
	binPandoc: {
		"Ubuntu/Debian: sudo apt-get install pandoc",
		"macOS: brew install pandoc",
	},
	"pdflatex": {
		"Ubuntu/Debian: sudo apt-get install texlive-latex-base",
		"macOS: brew install basictex",
	},
	"xelatex": {
		"Ubuntu/Debian: sudo apt-get install texlive-xetex",
		"macOS: brew install basictex",
	},
	"lualatex": {
		"Ubuntu/Debian: sudo apt-get install texlive-luatex",
		"macOS: brew install basictex",
	},
}

// ToolStatus describes one required tool in a Report.
type ToolStatus struct {
	Name      string
	Available bool
	Version   string
	Hints     []string
}

// Report holds the outcome of a toolchain check.
type Report struct {
	Tools []ToolStatus
}

// Missing returns the names of unavailable tools.
func (r Report) Missing() []string {
	var missing []string
	for _, t := range r.Tools {
		if !t.Available {
			missing = append(missing, t.Name)
		}
	}
	return missing
}

// OK reports whether every required tool is available.
func (r Report) OK() bool { return len(r.Missing()) == 0 }

// Check probes pandoc and the configured PDF engine and returns a Report.
// Every tool is probed even after the first failure so the caller can show
// the complete list of missing dependencies.
func Check(cfg types.ToolchainConfig) Report {
	return check(cfg, defaultExec)
}

func check(cfg types.ToolchainConfig, exec executor) Report {
	engine := cfg.Engine
	if engine == "" {
		engine = types.EnginePDFLaTeX
	}

	var report Report
	for _, bin := range []string{binPandoc, string(engine)} {
		t := &tool{bin: bin, exec: exec}
		status := ToolStatus{Name: bin, Available: t.Available()}
		if status.Available {
			status.Version, _ = t.Version()
		} else {
			status.Hints = installHints[bin]
		}
		report.Tools = append(report.Tools, status)
	}
	return report
}

// Verify runs Check and converts a failed report into an error naming all
// missing tools.
func Verify(cfg types.ToolchainConfig) error {
	report := Check(cfg)
	if missing := report.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	return nil
}
