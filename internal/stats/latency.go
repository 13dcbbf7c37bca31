// Package stats computes latency percentiles for endpoint probes and fetch summaries.
package stats

import (
	"math"
	"sort"
	"time"
)

// TailLatency holds p50, p95, p99, and max latency values.
type TailLatency struct {
	P50 time.Duration `json:"p50_ns"`
	P95 time.Duration `json:"p95_ns"`
	P99 time.Duration `json:"p99_ns"`
	Max time.Duration `json:"max_ns"`
}

// CalculateTailLatency computes P50, P95, P99 and Max from samples using the
// nearest-rank method. With few samples P95 and P99 equal Max. An empty
// input yields the zero value. The input slice is not modified.
func CalculateTailLatency(latencies []time.Duration) TailLatency {
	if len(latencies) == 0 {
		return TailLatency{}
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return TailLatency{
		P50: Percentile(sorted, 0.50),
		P95: Percentile(sorted, 0.95),
		P99: Percentile(sorted, 0.99),
		Max: sorted[len(sorted)-1],
	}
}

// Percentile returns the value at percentile p (0..1) of an ascending slice,
// index = ceil(n*p) - 1 clamped to [0, n-1].
func Percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	index := int(math.Ceil(float64(n)*p)) - 1
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}

	return sorted[index]
}

// Mean returns the average latency, or 0 for no samples.
func Mean(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range latencies {
		total += d
	}
	return total / time.Duration(len(latencies))
}
