// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package uptime

import (
	"github.com/filipe-posio-devlop/Uptimer/checks"
)

// UnknownIntervals classifies every second of [rangeStart, rangeEnd) against
// the monitor's check timeline and returns the merged sub-intervals during
// which the monitor's status is unknown.
//
// A check's verdict holds for [checked_at, checked_at+intervalSec); past that
// the monitor is unknown until the next check. Checks before rangeStart carry
// over into the range, so callers should include the last pre-range check in
// observed. Checks at or after rangeEnd are ignored. The observed slice must
// be ascending by checked_at.
func UnknownIntervals(rangeStart, rangeEnd, intervalSec int64, observed []checks.Check) []Interval {
	if rangeEnd <= rangeStart {
		return nil
	}
	// A degenerate schedule attests to nothing.
	if intervalSec <= 0 {
		return []Interval{{Start: rangeStart, End: rangeEnd}}
	}

	var unknown []Interval
	var last *checks.Check
	cursor := rangeStart
	for i := range observed {
		check := &observed[i]
		if check.CheckedAt < rangeStart {
			last = check
			continue
		}
		if check.CheckedAt >= rangeEnd {
			break
		}
		unknown = classifySegment(unknown, cursor, check.CheckedAt, last, intervalSec)
		last = check
		cursor = check.CheckedAt
	}
	return classifySegment(unknown, cursor, rangeEnd, last, intervalSec)
}

// classifySegment appends the unknown parts of [segStart, segEnd) given the
// last check observed before segStart.
func classifySegment(unknown []Interval, segStart, segEnd int64, last *checks.Check, intervalSec int64) []Interval {
	if segEnd <= segStart {
		return unknown
	}
	if last == nil {
		return pushMerged(unknown, Interval{Start: segStart, End: segEnd})
	}

	validUntil := last.CheckedAt + intervalSec
	if segStart >= validUntil {
		// The prior verdict expired before the segment began.
		return pushMerged(unknown, Interval{Start: segStart, End: segEnd})
	}

	coveredEnd := min(segEnd, validUntil)
	if last.Status == checks.StatusUnknown {
		unknown = pushMerged(unknown, Interval{Start: segStart, End: coveredEnd})
	}
	if coveredEnd < segEnd {
		// The verdict expired inside the segment.
		unknown = pushMerged(unknown, Interval{Start: coveredEnd, End: segEnd})
	}
	return unknown
}
