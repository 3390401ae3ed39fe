package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/app"
	"github.com/liteapi-travel/room-matcher-async/internal/extract"
	"github.com/liteapi-travel/room-matcher-async/internal/harness"
	"github.com/liteapi-travel/room-matcher-async/internal/inventory"
	"github.com/liteapi-travel/room-matcher-async/internal/server"
	"github.com/liteapi-travel/room-matcher-async/internal/service"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text>",
		Short: "Print the constraints extracted from a request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			constraints, err := service.New(nil, nil, zap.NewNop()).Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), constraints)
		},
	}
}

// offline builds the runtime for one-shot commands, which skip the Redis
// inventory cache.
func (g *globals) offline(ctx context.Context) (*app.App, error) {
	cfg, logger, err := g.load()
	if err != nil {
		return nil, err
	}
	cfg.Rooms.CacheTTL = 0
	return app.New(ctx, cfg, logger)
}

func matchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "match <text>",
		Short: "Match a request against the room inventory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.offline(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Matcher.Match(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func featuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "List the recognised feature tags and their aliases",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range extract.Vocabulary() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", f.Tag, strings.Join(f.Aliases, ", "))
			}
		},
	}
}

func harnessCmd(g *globals) *cobra.Command {
	var (
		mode      string
		baseURL   string
		generated int
		seed      int64
		withBase  bool
		out       string
	)

	cmd := &cobra.Command{
		Use:   "harness",
		Short: "Evaluate extraction and matching over annotated and generated requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.offline(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var m harness.Matcher = a.Matcher
			switch mode {
			case "local":
			case "http":
				if baseURL == "" {
					baseURL = fmt.Sprintf("http://localhost:%s", a.Config.Port)
				}
				m = harness.NewClient(baseURL, 10*time.Second)
			default:
				return fmt.Errorf("unknown harness mode %q", mode)
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			cases := harness.FixedCases()
			if withBase {
				cases = append(cases, harness.BaseQueries()...)
			}
			cases = append(cases, harness.Generate(rand.New(rand.NewSource(seed)), generated)...)

			a.Logger.Info("starting test harness", zap.String("mode", mode), zap.Int("cases", len(cases)), zap.Int64("seed", seed))
			stats := harness.Run(cmd.Context(), cases, m, a.Logger)

			if err := printJSON(cmd.OutOrStdout(), stats); err != nil {
				return err
			}
			if out == "" {
				return nil
			}
			if err := stats.WriteFile(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", envOr("HARNESS_MODE", "local"), "local or http")
	cmd.Flags().StringVar(&baseURL, "base-url", os.Getenv("TEST_BASE_URL"), "Server URL in http mode (default http://localhost:$PORT)")
	cmd.Flags().IntVar(&generated, "generated", 94, "Number of random template requests")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().BoolVar(&withBase, "base-queries", false, "Include the stock demo queries")
	cmd.Flags().StringVar(&out, "out", "test-results.json", "Write stats JSON here; empty disables")
	return cmd
}

func serveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			router := server.NewRouter(a.Matcher, a.Metrics, logger)
			return server.Run(ctx, ":"+cfg.Port, router, logger)
		},
	}
}

func seedCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the room table and load rooms into Postgres",
		Long: `seed replaces the contents of the Postgres room table with the rooms
from --rooms, or with the built-in demo rooms when no file is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			rooms := inventory.DefaultRooms()
			if g.roomsFile != "" {
				if rooms, err = (inventory.File{Path: g.roomsFile}).Rooms(ctx); err != nil {
					return err
				}
			}

			db, err := inventory.Open(ctx, cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			repo := inventory.NewPostgres(db, logger)
			if err := repo.Migrate(ctx); err != nil {
				return err
			}
			if err := repo.Seed(ctx, rooms); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d rooms\n", len(rooms))
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
