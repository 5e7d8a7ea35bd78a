// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package uptime implements the availability computation: interval algebra
// over epoch seconds, observation gap classification and the uptime report.
package uptime

import "sort"

// Interval is a half-open time span [Start, End) in unix seconds.
type Interval struct {
	Start int64
	End   int64
}

// Duration returns the length of the interval in seconds, never negative.
func (iv Interval) Duration() int64 {
	if iv.End <= iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// Merge sorts the intervals and coalesces every overlapping or touching pair.
// Empty intervals are dropped. The result is non-overlapping and ascending
// by start.
func Merge(intervals []Interval) []Interval {
	valid := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.End <= iv.Start {
			continue
		}
		valid = append(valid, iv)
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Start < valid[j].Start })

	merged := make([]Interval, 0, len(valid))
	for _, iv := range valid {
		merged = pushMerged(merged, iv)
	}
	return merged
}

// Sum returns the total seconds covered by the intervals. The input must be
// merged, otherwise overlapping seconds are counted more than once.
func Sum(intervals []Interval) int64 {
	var total int64
	for _, iv := range intervals {
		total += iv.Duration()
	}
	return total
}

// Overlap returns the seconds covered by both a and b. Both inputs must be
// merged sets.
func Overlap(a, b []Interval) int64 {
	var total int64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := max(a[i].Start, b[j].Start)
		end := min(a[i].End, b[j].End)
		if end > start {
			total += end - start
		}
		if a[i].End <= b[j].End {
			i++
		} else {
			j++
		}
	}
	return total
}

// pushMerged appends candidate to a merged set under construction,
// coalescing with the last element when they touch or overlap.
// The candidate must not start before the last element.
func pushMerged(merged []Interval, candidate Interval) []Interval {
	if candidate.End <= candidate.Start {
		return merged
	}
	if len(merged) > 0 {
		last := &merged[len(merged)-1]
		if candidate.Start <= last.End {
			if candidate.End > last.End {
				last.End = candidate.End
			}
			return merged
		}
	}
	return append(merged, candidate)
}
