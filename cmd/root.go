// Package cmd implements the pitwall CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/app"
	"github.com/derickschaefer/pitwall/internal/config"
	pwlog "github.com/derickschaefer/pitwall/internal/log"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	BaseURL  string
	Format   string
	Out      string
	Timeout  string
	Rate     float64
	DBPath   string
	PageSize int
	Quiet    bool
	Verbose  bool
	Debug    bool
}

// rootCmd is the base command. Running `pitwall` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "pitwall",
	Short: "pitwall — racing setup storefront CLI",
	Long: `pitwall browses a racing-setup storefront from the command line.

Filters cascade: every choice narrows the options of the filters chosen
after it, and a filter left with a single option is picked for you. Any
filtered view has a shareable deep link of the form

  /setups/<category>[/<car>[/<track>]]?class=GT3&season=...

which pitwall can open directly.

Quick start:
  pitwall config init                           # create a config.json
  pitwall categories                            # list games
  pitwall setups iracing --set class=GT3 --set car="Ferrari 296"
  pitwall setups /setups/iracing/ferrari-296/monza?class=GT3
  pitwall browse iracing                        # interactive session`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves config and applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if globalFlags.BaseURL != "" {
		cfg.BaseURL = globalFlags.BaseURL
	}
	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if globalFlags.Timeout != "" {
		if d, err2 := time.ParseDuration(globalFlags.Timeout); err2 == nil {
			cfg.Timeout = d
		}
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	if globalFlags.DBPath != "" {
		cfg.DBPath = globalFlags.DBPath
	}
	if globalFlags.PageSize > 0 {
		cfg.PageSize = globalFlags.PageSize
	}
	return cfg, nil
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg, pwlog.New(cfg.Debug)), nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.BaseURL, "base-url", "",
		"storefront API root (overrides env PITWALL_BASE_URL and config.json)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 5.0)")
	pf.StringVar(&globalFlags.DBPath, "db", "",
		"path of the local store (default: ~/.pitwall/pitwall.db)")
	pf.IntVar(&globalFlags.PageSize, "page-size", 0,
		"setups per result page (default: 10)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and engine decisions to stderr")
}
