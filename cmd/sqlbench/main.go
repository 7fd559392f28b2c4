// Package main provides the CLI entry point for sqlbench, a benchmark
// comparing a local file-backed libsql/SQLite database against a remote
// sqld server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/GerbenAaltink/libsql-client-server-benchmark/bench"
	"github.com/GerbenAaltink/libsql-client-server-benchmark/client"
	"github.com/GerbenAaltink/libsql-client-server-benchmark/probe"
	"github.com/GerbenAaltink/libsql-client-server-benchmark/report"
	"github.com/GerbenAaltink/libsql-client-server-benchmark/workload"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "sqlbench",
		Short: "Benchmark a local libsql file against a remote sqld server",
		Long: `Sqlbench runs an identical SQL workload against a local file-backed
database and a remote sqld server, measures per-operation latency, and
reports the comparison as a table, JSON, or a chart image.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newSyncCmd(logger))

	return root
}

type runConfig struct {
	local      string
	remote     string
	rows       int
	seed       int64
	rounds     int
	timeout    time.Duration
	outputJSON bool
	chartPath  string
}

func addTargetFlags(cmd *cobra.Command, cfg *runConfig) {
	flags := cmd.Flags()
	flags.StringVar(&cfg.local, "local", envOr("SQLBENCH_LOCAL", "local.db"),
		"Local database file path")
	flags.StringVar(&cfg.remote, "remote", envOr("SQLBENCH_REMOTE", "http://localhost:8080"),
		"Remote sqld server URL")
	flags.DurationVar(&cfg.timeout, "timeout", 30*time.Minute,
		"Overall timeout per target")
	flags.BoolVar(&cfg.outputJSON, "json", false,
		"Output results as JSON instead of a table")
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var cfg runConfig

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the insert benchmark against both targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), logger, cfg)
		},
	}

	addTargetFlags(cmd, &cfg)
	cmd.Flags().IntVar(&cfg.rows, "rows", envIntOr("SQLBENCH_OPS", 5000),
		"Number of rows to insert per target")
	cmd.Flags().Int64Var(&cfg.seed, "seed", 0,
		"Random seed for workload generation")
	cmd.Flags().StringVar(&cfg.chartPath, "chart", "",
		"Write a chart image to this path (format by extension, e.g. bench.png)")

	return cmd
}

func newSyncCmd(logger *slog.Logger) *cobra.Command {
	var cfg runConfig

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Check read-after-write visibility on both targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSyncCheck(cmd.Context(), logger, cfg)
		},
	}

	addTargetFlags(cmd, &cfg)
	cmd.Flags().IntVar(&cfg.rounds, "rounds", 10,
		"Number of insert-then-read rounds per target")

	return cmd
}

// targets returns the two benchmark endpoints, local first. The local
// target carries its file path so the runner can measure db size.
func targets(cfg runConfig) []bench.Target {
	local := bench.Target{Label: "local", URL: cfg.local}
	if driver, dsn := client.ResolveDriver(cfg.local); driver == "sqlite" {
		local.Path = dsn
	}

	return []bench.Target{
		local,
		{Label: "remote", URL: cfg.remote},
	}
}

func runBenchmark(ctx context.Context, logger *slog.Logger, cfg runConfig) error {
	logger.InfoContext(ctx, "starting benchmark",
		slog.String("local", cfg.local),
		slog.String("remote", cfg.remote),
		slog.Int("rows", cfg.rows),
		slog.Int64("seed", cfg.seed),
	)

	wl := workload.NewGenerator(workload.Config{
		Rows: cfg.rows,
		Seed: cfg.seed,
	}).Generate()

	summary := wl.Summary()
	logger.InfoContext(ctx, "workload generated",
		slog.Int("rows", summary.Rows),
		slog.Int("statements", summary.TotalStatements),
	)

	results := make([]bench.Result, 0, 2)

	for _, target := range targets(cfg) {
		result, err := runTarget(ctx, logger, cfg, target, wl)
		if err != nil {
			return err
		}

		results = append(results, *result)
	}

	if cfg.outputJSON {
		if err := report.GenerateJSON(os.Stdout, results); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(os.Stdout, results); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	if cfg.chartPath != "" {
		if err := report.Chart(cfg.chartPath, results); err != nil {
			return fmt.Errorf("generate chart: %w", err)
		}

		logger.InfoContext(ctx, "chart written",
			slog.String("path", cfg.chartPath),
		)
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

func runTarget(
	ctx context.Context,
	logger *slog.Logger,
	cfg runConfig,
	target bench.Target,
	wl *workload.Workload,
) (*bench.Result, error) {
	if err := probeTarget(ctx, logger, target); err != nil {
		return nil, err
	}

	c, err := client.Open(ctx, target.URL)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", target.Label, err)
	}
	defer c.Close()

	result, err := bench.NewRunner(target, c, logger).Run(ctx, wl, bench.RunConfig{
		Timeout: cfg.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", target.Label, err)
	}

	return result, nil
}

func runSyncCheck(ctx context.Context, logger *slog.Logger, cfg runConfig) error {
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	checks := make([]bench.SyncResult, 0, 2)

	for _, target := range targets(cfg) {
		if err := probeTarget(ctx, logger, target); err != nil {
			return err
		}

		c, err := client.Open(ctx, target.URL)
		if err != nil {
			return fmt.Errorf("connect %s: %w", target.Label, err)
		}

		check, err := bench.NewRunner(target, c, logger).SyncCheck(ctx, cfg.rounds)
		c.Close()

		if err != nil {
			return fmt.Errorf("sync check %s: %w", target.Label, err)
		}

		checks = append(checks, *check)
	}

	if cfg.outputJSON {
		return report.GenerateSyncJSON(os.Stdout, checks)
	}

	return report.GenerateSync(os.Stdout, checks)
}

// probeTarget verifies a remote target answers HTTP before benchmark
// traffic is sent. Non-HTTP targets are skipped.
func probeTarget(ctx context.Context, logger *slog.Logger, target bench.Target) error {
	if !strings.HasPrefix(target.URL, "http://") &&
		!strings.HasPrefix(target.URL, "https://") {
		return nil
	}

	timing, err := probe.Remote(ctx, target.URL)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", target.Label, err)
	}

	logger.InfoContext(ctx, "target probed",
		slog.String("target", target.Label),
		slog.Duration("dns", timing.DNSLookup),
		slog.Duration("connect", timing.TCPConnection),
		slog.Duration("server", timing.ServerProcessing),
		slog.Duration("total", timing.Total),
		slog.Int("status", timing.StatusCode),
	)

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return fallback
}
