// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docpress CLI.
// See docs/ARCHITECTURE § Pipeline Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docpress CLI.
var rootCmd = &cobra.Command{
	Use:   "docpress",
	Short: "Turn Markdown manuscripts into submission-ready PDF bundles",
	Long: `docpress renders a directory of Markdown manuscripts to PDF through
pandoc and a LaTeX engine, bundles the PDFs into a timestamped zip archive
with a manifest, and maintains a full-text search index over the sources.

Each pipeline stage is a subcommand: check, convert, watch, archive, index,
preview, and status.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docpress.yaml or ~/.config/docpress/config.yaml)")
	rootCmd.PersistentFlags().String("source-dir", "manuscripts", "directory containing Markdown manuscripts")
	rootCmd.PersistentFlags().String("output-dir", "output", "base directory for output (contains pdf/, metadata/, bundles/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docpress")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docpress"))
		}
	}

	viper.SetEnvPrefix("DOCPRESS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
