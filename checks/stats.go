// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package checks

import (
	"math"
	"sort"
)

// LatencySummary aggregates latency over successful observations.
// Both fields are nil when no check in the input was up with a latency sample.
type LatencySummary struct {
	AvgMS *int64 `json:"avg_latency_ms"`
	P95MS *int64 `json:"p95_latency_ms"`
}

// Summarize computes the rounded mean and the nearest-rank 95th percentile
// of latency over checks that are up and carry a latency sample. Checks with
// other verdicts or without latency do not participate.
func Summarize(results []Check) LatencySummary {
	samples := make([]int64, 0, len(results))
	var sum int64
	for _, check := range results {
		if check.Status != StatusUp || check.LatencyMS == nil {
			continue
		}
		samples = append(samples, *check.LatencyMS)
		sum += *check.LatencyMS
	}
	if len(samples) == 0 {
		return LatencySummary{}
	}

	avg := int64(math.Round(float64(sum) / float64(len(samples))))

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	p95 := samples[percentileIndex(95, len(samples))]

	return LatencySummary{AvgMS: &avg, P95MS: &p95}
}

// percentileIndex returns the nearest-rank index ceil(pct/100 * n) - 1
// clamped to [0, n-1]. For n == 1 every percentile is the single sample.
func percentileIndex(pct, n int) int {
	idx := (pct*n+99)/100 - 1
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
