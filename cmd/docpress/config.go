// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpress/pkg/types"
)

// convertConfig builds a ConvertConfig from defaults, the viper config
// file, and command flags, in increasing precedence.
func convertConfig(cmd *cobra.Command) types.ConvertConfig {
	cfg := types.DefaultConvertConfig()

	applyString(&cfg.SourceDir, "convert.source_dir")
	applyString(&cfg.OutputDir, "convert.output_dir")
	if v := viper.GetString("convert.engine"); v != "" {
		cfg.Engine = types.PDFEngine(v)
	}
	applyString(&cfg.Margin, "convert.margin")
	applyString(&cfg.FontSize, "convert.font_size")
	applyString(&cfg.PaperSize, "convert.paper_size")
	if viper.IsSet("convert.toc_depth") {
		cfg.TOCDepth = viper.GetInt("convert.toc_depth")
	}
	if viper.IsSet("convert.number_sections") {
		cfg.NumberSections = viper.GetBool("convert.number_sections")
	}
	if viper.IsSet("convert.color_links") {
		cfg.ColorLinks = viper.GetBool("convert.color_links")
	}
	applyString(&cfg.LinkColor, "convert.link_color")
	if v := viper.GetDuration("convert.timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v := viper.GetInt("convert.jobs"); v > 0 {
		cfg.Jobs = v
	}

	flagString(cmd, "source-dir", &cfg.SourceDir)
	flagString(cmd, "output-dir", &cfg.OutputDir)
	if cmd.Flags().Changed("engine") {
		v, _ := cmd.Flags().GetString("engine")
		cfg.Engine = types.PDFEngine(v)
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs, _ = cmd.Flags().GetInt("jobs")
	}
	if cmd.Flags().Changed("toc-depth") {
		cfg.TOCDepth, _ = cmd.Flags().GetInt("toc-depth")
	}
	if cmd.Flags().Changed("force") {
		cfg.Force, _ = cmd.Flags().GetBool("force")
	}

	return cfg
}

func toolchainConfig(cmd *cobra.Command) types.ToolchainConfig {
	return toolchainConfigFrom(convertConfig(cmd))
}

func toolchainConfigFrom(cfg types.ConvertConfig) types.ToolchainConfig {
	return types.ToolchainConfig{Engine: cfg.Engine}
}

func archiveConfig(cmd *cobra.Command) types.ArchiveConfig {
	cfg := types.ArchiveConfig{OutputDir: "output"}
	applyString(&cfg.OutputDir, "convert.output_dir")
	flagString(cmd, "output-dir", &cfg.OutputDir)
	if cmd.Flags().Changed("name") {
		cfg.BundleName, _ = cmd.Flags().GetString("name")
	}
	return cfg
}

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	cfg := types.IndexConfig{IndexDir: "index", MaxResults: 20}
	applyString(&cfg.IndexDir, "index.index_dir")
	if v := viper.GetInt("index.max_results"); v > 0 {
		cfg.MaxResults = v
	}
	if cmd.Flags().Changed("index-dir") {
		cfg.IndexDir, _ = cmd.Flags().GetString("index-dir")
	}
	if cmd.Flags().Changed("max-results") {
		cfg.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	return cfg
}

func watchConfig(cmd *cobra.Command) types.WatchConfig {
	cfg := types.WatchConfig{Debounce: 500 * time.Millisecond}
	if v := viper.GetDuration("watch.debounce"); v > 0 {
		cfg.Debounce = v
	}
	if cmd.Flags().Changed("debounce") {
		cfg.Debounce, _ = cmd.Flags().GetDuration("debounce")
	}
	return cfg
}

// applyString overwrites dst with the viper value for key when one is set.
func applyString(dst *string, key string) {
	if v := viper.GetString(key); v != "" {
		*dst = v
	}
}

// flagString overwrites dst when the named flag was set explicitly.
func flagString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}
