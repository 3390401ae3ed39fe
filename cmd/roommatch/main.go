// Package main provides the roommatch binary: extraction and matching from
// the command line, the evaluation harness, the HTTP server and inventory
// seeding.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/config"
	"github.com/liteapi-travel/room-matcher-async/internal/logging"
)

const (
	Version = "0.1.0"
	appName = "roommatch"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globals struct {
	roomsFile string
	logLevel  string
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Match natural-language meeting requests to rooms",
		Long: `roommatch extracts capacity, time and equipment constraints from a
free-text meeting request and picks the best room from an inventory.

Configuration is read from the environment (PORT, ROOM_SOURCE, ROOMS_FILE,
DB_*, REDIS_*, LOG_LEVEL, LOG_FORMAT).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.roomsFile, "rooms", "", "Room inventory file (JSON or YAML); overrides ROOMS_FILE")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(
		parseCmd(),
		matchCmd(g),
		featuresCmd(),
		harnessCmd(g),
		serveCmd(g),
		seedCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// load reads the environment configuration and applies flag overrides.
func (g *globals) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if g.roomsFile != "" {
		cfg.Rooms.Source = config.SourceFile
		cfg.Rooms.File = g.roomsFile
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
