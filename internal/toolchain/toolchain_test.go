// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolchain

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/docpress/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool   // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool   // "bin arg1 arg2" -> whether RunSilent succeeds
	outputs       map[string]string // "bin arg1 arg2" -> Output result
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) Output(name string, args ...string) (string, error) {
	key := name + " " + strings.Join(args, " ")
	if out, ok := m.outputs[key]; ok {
		return out, nil
	}
	return "", errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout, stderr)
	}
	return nil
}

func allAvailable() *mockExecutor {
	return &mockExecutor{
		availableBins: map[string]bool{"pandoc": true, "pdflatex": true, "xelatex": true},
		runnableCmds: map[string]bool{
			"pandoc --version":   true,
			"pdflatex --version": true,
			"xelatex --version":  true,
		},
		outputs: map[string]string{
			"pandoc --version":   "pandoc 3.1.9\nFeatures: ...",
			"pdflatex --version": "pdfTeX 3.141592653-2.6-1.40.25\nmore",
			"xelatex --version":  "XeTeX 3.141592653-2.6-0.999996\nmore",
		},
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		engine      types.PDFEngine
		exec        *mockExecutor
		wantOK      bool
		wantMissing []string
	}{
		{
			name:   "pandoc and pdflatex available",
			engine: types.EnginePDFLaTeX,
			exec:   allAvailable(),
			wantOK: true,
		},
		{
			name:   "empty engine defaults to pdflatex",
			engine: "",
			exec:   allAvailable(),
			wantOK: true,
		},
		{
			name:   "alternate engine probed",
			engine: types.EngineXeLaTeX,
			exec:   allAvailable(),
			wantOK: true,
		},
		{
			name:        "engine missing",
			engine:      types.EnginePDFLaTeX,
			exec:        &mockExecutor{availableBins: map[string]bool{"pandoc": true}, runnableCmds: map[string]bool{"pandoc --version": true}, outputs: map[string]string{"pandoc --version": "pandoc 3.1.9"}},
			wantMissing: []string{"pdflatex"},
		},
		{
			name:        "everything missing is fully reported",
			engine:      types.EnginePDFLaTeX,
			exec:        &mockExecutor{},
			wantMissing: []string{"pandoc", "pdflatex"},
		},
		{
			name:        "binary on PATH but version probe fails",
			engine:      types.EnginePDFLaTeX,
			exec:        &mockExecutor{availableBins: map[string]bool{"pandoc": true, "pdflatex": true}, runnableCmds: map[string]bool{"pandoc --version": true}, outputs: map[string]string{"pandoc --version": "pandoc 3.1.9"}},
			wantMissing: []string{"pdflatex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := check(types.ToolchainConfig{Engine: tt.engine}, tt.exec)

			if report.OK() != tt.wantOK {
				t.Errorf("OK() = %v, want %v", report.OK(), tt.wantOK)
			}

			missing := report.Missing()
			if len(missing) != len(tt.wantMissing) {
				t.Fatalf("Missing() = %v, want %v", missing, tt.wantMissing)
			}
			for i, name := range tt.wantMissing {
				if missing[i] != name {
					t.Errorf("Missing()[%d] = %q, want %q", i, missing[i], name)
				}
			}
		})
	}
}

func TestCheck_VersionAndHints(t *testing.T) {
	report := check(types.ToolchainConfig{Engine: types.EnginePDFLaTeX}, &mockExecutor{
		availableBins: map[string]bool{"pandoc": true},
		runnableCmds:  map[string]bool{"pandoc --version": true},
		outputs:       map[string]string{"pandoc --version": "pandoc 3.1.9\nFeatures: +server"},
	})

	if len(report.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(report.Tools))
	}

	pandoc := report.Tools[0]
	if pandoc.Version != "pandoc 3.1.9" {
		t.Errorf("version = %q, want first line only", pandoc.Version)
	}
	if len(pandoc.Hints) != 0 {
		t.Errorf("available tool should carry no hints, got %v", pandoc.Hints)
	}

	engine := report.Tools[1]
	if engine.Available {
		t.Error("pdflatex should be missing")
	}
	if len(engine.Hints) == 0 {
		t.Error("missing tool should carry install hints")
	}
}

func TestToolRun_StderrInError(t *testing.T) {
	exec := allAvailable()
	exec.runPipedFunc = func(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
		io.WriteString(stderr, "! LaTeX Error: File `missing.sty' not found.")
		return errors.New("exit status 43")
	}

	tl := &tool{bin: "pandoc", exec: exec}
	err := tl.Run(context.Background(), []string{"in.md", "-o", "out.pdf"}, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing.sty") {
		t.Errorf("error should carry stderr output, got %v", err)
	}
}

func TestToolRun_ContextCancelled(t *testing.T) {
	exec := allAvailable()
	exec.runPipedFunc = func(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
		return errors.New("signal: killed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tl := &tool{bin: "pandoc", exec: exec}
	err := tl.Run(ctx, nil, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestVerify_ListsAllMissing(t *testing.T) {
	orig := defaultExec
	defaultExec = &mockExecutor{}
	defer func() { defaultExec = orig }()

	err := Verify(types.ToolchainConfig{Engine: types.EnginePDFLaTeX})
	if err == nil {
		t.Fatal("expected error when toolchain is missing")
	}
	for _, bin := range []string{"pandoc", "pdflatex"} {
		if !strings.Contains(err.Error(), bin) {
			t.Errorf("error should name %s, got %v", bin, err)
		}
	}
}
