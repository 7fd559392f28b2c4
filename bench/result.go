// Package bench runs the benchmark workload against one target and
// collects per-operation timing samples.
package bench

import "time"

// Sample is one measured duration for a single insert against one target.
type Sample struct {
	Target  string        `json:"target"`
	Index   int           `json:"index"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Result holds the measurements from one target's benchmark run.
type Result struct {
	Target             string `json:"target"`
	Rows               int    `json:"rows"`
	CreateMs           int64  `json:"create_ms"`
	SchemaSyncMs       int64  `json:"schema_sync_ms"`
	InsertMs           int64  `json:"insert_ms"`
	VisibilityWaitMs   int64  `json:"visibility_wait_ms"`
	CleanupMs          int64  `json:"cleanup_ms"`
	TotalMs            int64  `json:"total_ms"`
	TotalWithoutWaitMs int64  `json:"total_without_wait_ms"`
	DBSizeBytes        uint64 `json:"db_size_bytes,omitempty"`

	Samples []Sample `json:"-"`
}

// SyncResult reports, per round, whether a freshly inserted row was
// directly readable from the target.
type SyncResult struct {
	Target          string `json:"target"`
	Rounds          []bool `json:"rounds"`
	DirectlyVisible int    `json:"directly_visible"`
}
