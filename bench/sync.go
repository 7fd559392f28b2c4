package bench

import (
	"context"
	"fmt"
	"log/slog"
)

// Scratch table used by the sync check. Kept separate from the benchmark
// table so the two operations never interfere.
const (
	createScratch = "create table insert_test (id INTEGER PRIMARY KEY AUTOINCREMENT, description)"
	insertScratch = "insert into insert_test(description) VALUES (?)"
	selectScratch = "select * from insert_test"
	dropScratch   = "drop table insert_test"
)

// SyncCheck measures read-after-write visibility: each round inserts one
// row into a fresh scratch table and immediately reads it back. File
// targets are expected to always see the row; server targets often lag.
func (r *Runner) SyncCheck(ctx context.Context, rounds int) (*SyncResult, error) {
	result := &SyncResult{
		Target: r.target.Label,
		Rounds: make([]bool, 0, rounds),
	}

	// Stale scratch table from a crashed run.
	r.exec.Execute(ctx, dropScratch)

	for i := 1; i <= rounds; i++ {
		visible, err := r.syncRound(ctx)
		if err != nil {
			return nil, fmt.Errorf("sync round %d on %s: %w", i, r.target.Label, err)
		}

		r.logger.Info("sync check round",
			slog.Int("round", i),
			slog.Bool("directly_visible", visible),
		)

		result.Rounds = append(result.Rounds, visible)
		if visible {
			result.DirectlyVisible++
		}
	}

	return result, nil
}

func (r *Runner) syncRound(ctx context.Context) (bool, error) {
	if rs := r.exec.Execute(ctx, createScratch); !rs.OK() {
		return false, fmt.Errorf("create scratch table: %w", rs.Err)
	}

	if rs := r.exec.Execute(ctx, insertScratch, "test"); !rs.OK() {
		return false, fmt.Errorf("insert scratch row: %w", rs.Err)
	}

	rs := r.exec.Execute(ctx, selectScratch)
	if !rs.OK() {
		return false, fmt.Errorf("read scratch row: %w", rs.Err)
	}

	visible := rs.Count == 1

	if rs := r.exec.Execute(ctx, dropScratch); !rs.OK() {
		return false, fmt.Errorf("drop scratch table: %w", rs.Err)
	}

	return visible, nil
}
