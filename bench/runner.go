package bench

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/GerbenAaltink/libsql-client-server-benchmark/client"
	"github.com/GerbenAaltink/libsql-client-server-benchmark/workload"
)

// Executor is the slice of client.Client the runner needs.
type Executor interface {
	Execute(ctx context.Context, query string, args ...any) *client.ResultSet
}

// Target identifies one benchmark endpoint. Path is only set for targets
// backed by a local file and is used to measure database size on disk.
type Target struct {
	Label string
	URL   string
	Path  string
}

// RunConfig holds parameters for a single benchmark run.
type RunConfig struct {
	Timeout        time.Duration
	SchemaPoll     time.Duration
	VisibilityPoll time.Duration
}

// Runner executes the workload phases against a single target.
type Runner struct {
	target Target
	exec   Executor
	logger *slog.Logger
}

// NewRunner creates a Runner for the given target.
func NewRunner(target Target, exec Executor, logger *slog.Logger) *Runner {
	return &Runner{
		target: target,
		exec:   exec,
		logger: logger.With(slog.String("target", target.Label)),
	}
}

// Run executes the full phase sequence: stale cleanup, create, duplicate
// create, schema sync wait, inserts, visibility wait, cleanup. Any
// unexpected statement failure aborts the run with no partial result.
func (r *Runner) Run(ctx context.Context, wl *workload.Workload, cfg RunConfig) (*Result, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	schemaPoll := cfg.SchemaPoll
	if schemaPoll == 0 {
		schemaPoll = time.Second
	}

	visibilityPoll := cfg.VisibilityPoll
	if visibilityPoll == 0 {
		visibilityPoll = 2 * time.Second
	}

	start := time.Now()

	// Stale cleanup. A successful drop means a previous run crashed
	// before its own cleanup; a failure is the expected case.
	if rs := r.exec.Execute(ctx, workload.DropTable); rs.OK() {
		r.logger.Warn("dropped leftover table from a previous run")
	}

	rs := r.exec.Execute(ctx, workload.CreateTable)
	if !rs.OK() {
		return nil, fmt.Errorf("create table on %s: %w", r.target.Label, rs.Err)
	}

	createDur := rs.Duration

	// Creating the same table again must fail. A success here means the
	// target is not enforcing schema at all.
	if rs := r.exec.Execute(ctx, workload.CreateTableDupe); rs.OK() {
		return nil, fmt.Errorf(
			"duplicate create table unexpectedly succeeded on %s",
			r.target.Label,
		)
	}

	schemaSyncDur, err := r.waitSchemaSync(ctx, schemaPoll)
	if err != nil {
		return nil, fmt.Errorf("schema sync on %s: %w", r.target.Label, err)
	}

	r.logger.InfoContext(ctx, "inserting rows", slog.Int("rows", len(wl.Rows)))

	samples := make([]Sample, 0, len(wl.Rows))
	insertStart := time.Now()

	for i, row := range wl.Rows {
		rs := r.exec.Execute(ctx, workload.InsertRow, row...)
		if !rs.OK() {
			return nil, fmt.Errorf(
				"insert %d/%d on %s: %w", i+1, len(wl.Rows), r.target.Label, rs.Err,
			)
		}

		samples = append(samples, Sample{
			Target:  r.target.Label,
			Index:   i,
			Elapsed: rs.Duration,
		})
	}

	insertDur := time.Since(insertStart)

	visibilityDur, err := r.waitVisible(ctx, len(wl.Rows), visibilityPoll)
	if err != nil {
		return nil, fmt.Errorf("visibility wait on %s: %w", r.target.Label, err)
	}

	var dbSize uint64
	if r.target.Path != "" {
		if info, err := os.Stat(r.target.Path); err == nil {
			dbSize = uint64(info.Size())
		}
	}

	rs = r.exec.Execute(ctx, workload.DropTable)
	if !rs.OK() {
		return nil, fmt.Errorf("cleanup on %s: %w", r.target.Label, rs.Err)
	}

	cleanupDur := rs.Duration
	total := time.Since(start)
	waiting := schemaSyncDur + visibilityDur

	r.logger.InfoContext(ctx, "target finished",
		slog.Duration("total", total),
		slog.Duration("insert", insertDur),
		slog.Duration("waiting", waiting),
	)

	return &Result{
		Target:             r.target.Label,
		Rows:               len(wl.Rows),
		CreateMs:           createDur.Milliseconds(),
		SchemaSyncMs:       schemaSyncDur.Milliseconds(),
		InsertMs:           insertDur.Milliseconds(),
		VisibilityWaitMs:   visibilityDur.Milliseconds(),
		CleanupMs:          cleanupDur.Milliseconds(),
		TotalMs:            total.Milliseconds(),
		TotalWithoutWaitMs: (total - waiting).Milliseconds(),
		DBSizeBytes:        dbSize,
		Samples:            samples,
	}, nil
}

// waitSchemaSync polls sqlite_schema until both the table and its
// autoincrement sequence are visible. Remote servers can lag here.
func (r *Runner) waitSchemaSync(ctx context.Context, poll time.Duration) (time.Duration, error) {
	start := time.Now()

	for {
		rs := r.exec.Execute(ctx, workload.SelectSchema)
		if !rs.OK() {
			return 0, rs.Err
		}

		if rs.Count == 2 {
			return time.Since(start), nil
		}

		r.logger.Info("schema not synchronized yet",
			slog.Int("entries", rs.Count),
		)

		if err := sleepCtx(ctx, poll); err != nil {
			return 0, err
		}
	}
}

// waitVisible polls the row count until every inserted row is readable.
func (r *Runner) waitVisible(ctx context.Context, want int, poll time.Duration) (time.Duration, error) {
	start := time.Now()

	for {
		rs := r.exec.Execute(ctx, workload.CountRows)
		if !rs.OK() {
			return 0, rs.Err
		}

		got, ok := countFrom(rs)
		if !ok {
			return 0, fmt.Errorf("unexpected count result: %+v", rs.Records)
		}

		r.logger.Info("visibility check",
			slog.Int64("visible", got),
			slog.Int("want", want),
		)

		if got == int64(want) {
			return time.Since(start), nil
		}

		if err := sleepCtx(ctx, poll); err != nil {
			return 0, err
		}
	}
}

// countFrom extracts the count(0) value, tolerating the numeric types
// different drivers hand back.
func countFrom(rs *client.ResultSet) (int64, bool) {
	if len(rs.Records) != 1 {
		return 0, false
	}

	switch v := rs.Records[0]["c"].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
