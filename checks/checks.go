// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package checks contains the check result observations produced by the
// external scheduler.
package checks

import (
	"context"
)

// Status is the verdict of a single check.
// Paused monitors do not produce checks, so there is no paused verdict.
type Status string

// Verdicts a check can carry.
const (
	StatusUp          Status = "up"
	StatusDown        Status = "down"
	StatusMaintenance Status = "maintenance"
	StatusUnknown     Status = "unknown"
)

// ParseStatus maps a raw datastore value to a Status,
// falling back to unknown for anything unrecognized.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusUp, StatusDown, StatusMaintenance:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

// Check is a single observation of a monitor.
type Check struct {
	MonitorID int64  `json:"-"`
	CheckedAt int64  `json:"checked_at"`
	Status    Status `json:"status"`
	LatencyMS *int64 `json:"latency_ms"`
}

// DB contains the check result observations.
//
// architecture: Database
type DB interface {
	// Add stores a new check result.
	Add(ctx context.Context, check Check) error
	// ListRange returns a monitor's checks with checked_at in [from, to],
	// ascending by checked_at.
	ListRange(ctx context.Context, monitorID int64, from, to int64) ([]Check, error)
	// ListRecentByMonitor returns up to limit most recent checks per monitor
	// with checked_at >= from, newest first within each monitor, using a
	// single query across all ids.
	ListRecentByMonitor(ctx context.Context, monitorIDs []int64, from int64, limit int) (map[int64][]Check, error)
}
