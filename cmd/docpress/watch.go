// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpress/internal/convert"
	"github.com/pdiddy/docpress/internal/toolchain"
	"github.com/pdiddy/docpress/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render manuscripts as their sources change",
	Long: `Watch monitors the source directory and re-renders a manuscript when
its Markdown file is created or modified. Rapid saves are debounced so a
document renders once per editing burst. Interrupt with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)

	if err := toolchain.Verify(toolchainConfigFrom(cfg)); err != nil {
		return fmt.Errorf("%w (run 'docpress check' for install instructions)", err)
	}

	conv, err := convert.NewPandocConverter(toolchain.Pandoc(), cfg)
	if err != nil {
		return err
	}

	w, err := watch.New(conv, cfg, watchConfig(cmd), os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	w.Stop()

	stats := w.Snapshot()
	fmt.Printf("\nWatch summary: %d rendered, %d failed, %d removed\n",
		stats.Rendered, stats.Failed, stats.Removed)
	return nil
}

func init() {
	watchCmd.Flags().String("engine", "pdflatex", "PDF engine: pdflatex, xelatex, or lualatex")
	watchCmd.Flags().Duration("timeout", 0, "per-document render timeout (0 = config default)")
	watchCmd.Flags().Duration("debounce", 0, "quiet period before a changed file is re-rendered (0 = config default)")

	rootCmd.AddCommand(watchCmd)
}
