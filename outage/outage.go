// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package outage contains the downtime assertions written by the external
// outage-detection pipeline.
package outage

import (
	"context"

	"github.com/zeebo/errs"
)

// Error is the default outage errs class.
var Error = errs.Class("outage")

// Outage is a closed-open downtime assertion for a monitor.
// A nil EndedAt means the outage is still ongoing.
type Outage struct {
	ID        int64  `json:"id"`
	MonitorID int64  `json:"monitor_id"`
	StartedAt int64  `json:"started_at"`
	EndedAt   *int64 `json:"ended_at"`
}

// DB contains the outage records.
//
// architecture: Database
type DB interface {
	// Add stores a new outage.
	Add(ctx context.Context, out Outage) (Outage, error)
	// CloseLatest sets ended_at on the monitor's most recent open outage.
	CloseLatest(ctx context.Context, monitorID int64, endedAt int64) error
	// ListOverlapping returns the monitor's outages overlapping [from, to),
	// ascending by started_at. Open outages overlap every range that starts
	// after they began.
	ListOverlapping(ctx context.Context, monitorID int64, from, to int64) ([]Outage, error)
}
