// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package monitor contains the monitored endpoints and their current state.
package monitor

import (
	"context"

	"github.com/zeebo/errs"
)

// ErrNoMonitor indicates that a monitor does not exist or is not active.
var ErrNoMonitor = errs.Class("no such monitor")

// Status is the state of a monitor as shown on the public surface.
type Status string

// States a monitor can be in.
const (
	StatusUp          Status = "up"
	StatusDown        Status = "down"
	StatusMaintenance Status = "maintenance"
	StatusPaused      Status = "paused"
	StatusUnknown     Status = "unknown"
)

// ParseStatus maps a raw datastore value to a Status,
// falling back to unknown for anything unrecognized.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusUp, StatusDown, StatusMaintenance, StatusPaused:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

// Monitor is a configured endpoint under observation.
type Monitor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	IntervalSec int64  `json:"interval_sec"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   int64  `json:"created_at"`
}

// State is the current state of a monitor, mutated by the external scheduler.
type State struct {
	MonitorID     int64  `json:"monitor_id"`
	Status        Status `json:"status"`
	LastCheckedAt *int64 `json:"last_checked_at"`
	LastLatencyMS *int64 `json:"last_latency_ms"`
}

// IsStale reports whether the recorded state is too old to trust given the
// monitor's sampling interval. Paused and maintenance are operator-declared
// and never go stale; otherwise a state with no observation, or one older
// than twice the interval, is stale.
func (state State) IsStale(now, intervalSec int64) bool {
	switch state.Status {
	case StatusPaused, StatusMaintenance:
		return false
	}
	if state.LastCheckedAt == nil {
		return true
	}
	return now-*state.LastCheckedAt > 2*intervalSec
}

// WithState joins a monitor with its current state.
type WithState struct {
	Monitor Monitor
	State   State
}

// DB contains the monitors and their current state.
//
// architecture: Database
type DB interface {
	// Add stores a new monitor and returns it with its assigned id.
	Add(ctx context.Context, mon Monitor) (Monitor, error)
	// GetActive returns the active monitor with the given id.
	// Returns ErrNoMonitor when it does not exist or is inactive.
	GetActive(ctx context.Context, id int64) (Monitor, error)
	// ListActiveWithState returns all active monitors joined with their
	// current state, ascending by id. Monitors without a state row get an
	// unknown state with no observation.
	ListActiveWithState(ctx context.Context) ([]WithState, error)
	// SetState stores the monitor's current state, replacing any previous one.
	SetState(ctx context.Context, state State) error
}
