package report

import (
	"sort"

	"github.com/GerbenAaltink/libsql-client-server-benchmark/bench"
)

// Stats aggregates the insert latency samples of one target. All values
// are milliseconds.
type Stats struct {
	Target string  `json:"target"`
	Count  int     `json:"count"`
	Total  float64 `json:"total_ms"`
	Mean   float64 `json:"mean_ms"`
	Min    float64 `json:"min_ms"`
	Max    float64 `json:"max_ms"`
	Median float64 `json:"median_ms"`
	P95    float64 `json:"p95_ms"`
	P99    float64 `json:"p99_ms"`
}

// Compute derives latency statistics from a target's samples.
func Compute(target string, samples []bench.Sample) Stats {
	if len(samples) == 0 {
		return Stats{Target: target}
	}

	ms := make([]float64, 0, len(samples))
	sum := 0.0

	for _, s := range samples {
		v := float64(s.Elapsed.Nanoseconds()) / 1e6
		ms = append(ms, v)
		sum += v
	}

	sort.Float64s(ms)
	size := len(ms)

	return Stats{
		Target: target,
		Count:  size,
		Total:  sum,
		Mean:   sum / float64(size),
		Min:    ms[0],
		Max:    ms[size-1],
		Median: ms[int(0.5*float64(size))],
		P95:    ms[int(0.95*float64(size))],
		P99:    ms[int(0.99*float64(size))],
	}
}
