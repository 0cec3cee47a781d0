// Package cmd implements the plateful CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/plateful/plateful/internal/app"
	"github.com/plateful/plateful/internal/config"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	Token       string
	BaseURL     string
	DBPath      string
	Timeout     string
	Rate        float64
	WaterTarget int
	Quiet       bool
	Verbose     bool
	Debug       bool
}

// rootCmd is the base command. Running `plateful` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "plateful",
	Short: "plateful — recipe favorites and daily nutrition tracking",
	Long: `plateful is the companion tool for the Plateful cooking app: it tracks
daily meals, water, and streaks in a local database and keeps your saved
recipes in sync with the Plateful backend.

Local commands (meal, water, goal, stats, streak, history) work offline.
Remote commands (favorites, profile) need a backend token.

Quick start:
  plateful config init             # create a config.json
  plateful meal add --name "Oats" --calories 350
  plateful stats                   # today's progress
  plateful favorites list          # saved recipes (requires token)`,
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

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE. Callers own Close().
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load(globalFlags.Token)
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
	if globalFlags.DBPath != "" {
		cfg.DBPath = globalFlags.DBPath
	}
	if globalFlags.Timeout != "" {
		if d, err2 := time.ParseDuration(globalFlags.Timeout); err2 == nil {
			cfg.Timeout = d
		}
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	if globalFlags.WaterTarget > 0 {
		cfg.WaterTarget = globalFlags.WaterTarget
	}

	return app.New(cfg)
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.Token, "token", "",
		"backend bearer token (overrides env PLATEFUL_TOKEN and config.json)")
	pf.StringVar(&globalFlags.BaseURL, "base-url", "",
		"backend base URL (default: "+config.DefaultBaseURL+")")
	pf.StringVar(&globalFlags.DBPath, "db", "",
		"local database path (default: ~/.plateful/plateful.db)")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 5.0)")
	pf.IntVar(&globalFlags.WaterTarget, "water-target", 0,
		"daily water goal in glasses (default: 8)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show extra detail after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and responses (token redacted)")
}
