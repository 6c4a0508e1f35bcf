// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/recommend/similarity"
)

// Persistent flag values.
var (
	configPath   string
	metricFlag   string
	modeFlag     string
	topKFlag     int
	positiveOnly bool
	movielensDir string
)

// cfg is loaded by the root command before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "simrec",
	Short:         "Item similarity and recommendation engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Simrec computes item-to-item similarity from ratings and recommends
items to users from the resulting similarity index.

Ratings are read from a MovieLens 100K directory when --movielens is set,
otherwise from the interaction database.`,
	PersistentPreRunE: loadConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "config file (default: CONFIG_PATH, ./config.yaml or /etc/simrec/config.yaml)")
	f.StringVar(&metricFlag, "metric", "", fmt.Sprintf("similarity metric %v", similarity.Metrics()))
	f.StringVar(&modeFlag, "mode", "", "recommendation mode: raw_sum or weighted_average")
	f.IntVar(&topKFlag, "top-k", 0, "truncate similarity lists and recommendations (0 keeps all)")
	f.BoolVar(&positiveOnly, "positive-only", false, "drop results scoring <= 0")
	f.StringVar(&movielensDir, "movielens", "", "MovieLens 100K directory holding u.item and u.data")
}

// Execute is called by main. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printErr("", err.Error())
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return nil
}

// applyFlags overrides cfg with the flags set on the command line and
// revalidates it.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("metric") {
		cfg.Engine.Metric = similarity.Metric(metricFlag)
	}
	if flags.Changed("mode") {
		cfg.Engine.Mode = modeFlag
	}
	if flags.Changed("top-k") {
		cfg.Engine.TopK = topKFlag
	}
	if flags.Changed("positive-only") {
		cfg.Engine.PositiveOnly = positiveOnly
	}
	if flags.Changed("movielens") {
		cfg.MovieLens.Dir = movielensDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
