// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package uptime

import (
	"github.com/filipe-posio-devlop/Uptimer/outage"
)

// Report is the availability breakdown of a time range.
// TotalSec always equals UptimeSec plus the seconds counted unavailable.
type Report struct {
	TotalSec    int64   `json:"total_sec"`
	DowntimeSec int64   `json:"downtime_sec"`
	UnknownSec  int64   `json:"unknown_sec"`
	UptimeSec   int64   `json:"uptime_sec"`
	UptimePct   float64 `json:"uptime_pct"`
}

// DowntimeIntervals clamps the outages to [rangeStart, rangeEnd) and merges
// them. Ongoing outages extend to the range end.
func DowntimeIntervals(rangeStart, rangeEnd int64, outages []outage.Outage) []Interval {
	intervals := make([]Interval, 0, len(outages))
	for _, out := range outages {
		start := max(out.StartedAt, rangeStart)
		end := rangeEnd
		if out.EndedAt != nil && *out.EndedAt < end {
			end = *out.EndedAt
		}
		if end <= start {
			continue
		}
		intervals = append(intervals, Interval{Start: start, End: end})
	}
	return Merge(intervals)
}

// Calculate combines the downtime and unknown interval sets into a report
// over [rangeStart, rangeEnd). Both sets must be merged and clamped to the
// range. Seconds classified both down and unknown count as downtime only.
func Calculate(rangeStart, rangeEnd int64, downtime, unknown []Interval) Report {
	total := max(rangeEnd-rangeStart, 0)

	downtimeSec := Sum(downtime)
	unknownSec := max(Sum(unknown)-Overlap(unknown, downtime), 0)

	unavailableSec := min(total, downtimeSec+unknownSec)
	uptimeSec := max(total-unavailableSec, 0)

	var pct float64
	if total > 0 {
		pct = float64(uptimeSec) / float64(total) * 100
	}

	return Report{
		TotalSec:    total,
		DowntimeSec: downtimeSec,
		UnknownSec:  unknownSec,
		UptimeSec:   uptimeSec,
		UptimePct:   pct,
	}
}
