// Package report formats benchmark results into comparison tables and
// charts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/GerbenAaltink/libsql-client-server-benchmark/bench"
)

// Report is the JSON output shape: raw per-target results plus derived
// insert latency statistics.
type Report struct {
	Results       []bench.Result     `json:"results"`
	InsertLatency []Stats            `json:"insert_latency"`
	SyncChecks    []bench.SyncResult `json:"sync_checks,omitempty"`
}

// Generate writes a markdown comparison table for the given results.
func Generate(w io.Writer, results []bench.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fastest := findFastest(results)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Target | Rows | Create | Schema Sync | Insert "+
		"| Visibility Wait | Cleanup | Total | w/o Waiting | DB Size | Slowdown |")
	fmt.Fprintln(w, "|--------|------|--------|-------------|--------"+
		"|-----------------|---------|-------|-------------|---------|----------|")

	for _, r := range results {
		slowdown := 1.0
		if fastest > 0 && r.TotalWithoutWaitMs > 0 {
			slowdown = float64(r.TotalWithoutWaitMs) / float64(fastest)
		}

		fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s | %.2fx |\n",
			r.Target,
			r.Rows,
			formatMs(r.CreateMs),
			formatMs(r.SchemaSyncMs),
			formatMs(r.InsertMs),
			formatMs(r.VisibilityWaitMs),
			formatMs(r.CleanupMs),
			formatMs(r.TotalMs),
			formatMs(r.TotalWithoutWaitMs),
			formatBytes(r.DBSizeBytes),
			slowdown,
		)
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Target | Samples | Mean | Median | P95 | P99 | Min | Max |")
	fmt.Fprintln(w, "|--------|---------|------|--------|-----|-----|-----|-----|")

	for _, r := range results {
		s := Compute(r.Target, r.Samples)

		fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s | %s | %s |\n",
			s.Target,
			s.Count,
			formatMsF(s.Mean),
			formatMsF(s.Median),
			formatMsF(s.P95),
			formatMsF(s.P99),
			formatMsF(s.Min),
			formatMsF(s.Max),
		)
	}

	return nil
}

// GenerateSync writes the read-after-write visibility comparison.
func GenerateSync(w io.Writer, checks []bench.SyncResult) error {
	if len(checks) == 0 {
		return fmt.Errorf("no sync checks to report")
	}

	fmt.Fprintln(w, "## Read-After-Write Visibility")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Target | Rounds | Directly Visible |")
	fmt.Fprintln(w, "|--------|--------|------------------|")

	for _, c := range checks {
		fmt.Fprintf(w, "| %s | %d | %d/%d |\n",
			c.Target, len(c.Rounds), c.DirectlyVisible, len(c.Rounds))
	}

	return nil
}

// GenerateSyncJSON writes sync check results as JSON to w.
func GenerateSyncJSON(w io.Writer, checks []bench.SyncResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Report{SyncChecks: checks})
}

// GenerateJSON writes results and derived statistics as JSON to w.
func GenerateJSON(w io.Writer, results []bench.Result) error {
	stats := make([]Stats, 0, len(results))
	for _, r := range results {
		stats = append(stats, Compute(r.Target, r.Samples))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Report{Results: results, InsertLatency: stats})
}

func findFastest(results []bench.Result) int64 {
	fastest := int64(math.MaxInt64)
	for _, r := range results {
		if r.TotalWithoutWaitMs > 0 && r.TotalWithoutWaitMs < fastest {
			fastest = r.TotalWithoutWaitMs
		}
	}

	if fastest == math.MaxInt64 {
		return 0
	}

	return fastest
}

func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}

func formatMsF(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.2fms", ms)
	}

	return fmt.Sprintf("%.2fs", ms/1000)
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
