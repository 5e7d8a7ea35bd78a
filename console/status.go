// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package console

import (
	"github.com/filipe-posio-devlop/Uptimer/checks"
	"github.com/filipe-posio-devlop/Uptimer/monitor"
	"github.com/filipe-posio-devlop/Uptimer/uptime"
)

// FleetStatus is the public document describing the whole fleet.
type FleetStatus struct {
	GeneratedAt   int64           `json:"generated_at"`
	OverallStatus monitor.Status  `json:"overall_status"`
	Summary       StatusSummary   `json:"summary"`
	Monitors      []MonitorStatus `json:"monitors"`
}

// StatusSummary counts monitors per presented status.
type StatusSummary struct {
	Up          int `json:"up"`
	Down        int `json:"down"`
	Maintenance int `json:"maintenance"`
	Paused      int `json:"paused"`
	Unknown     int `json:"unknown"`
}

// add counts a monitor under its presented status.
func (summary *StatusSummary) add(status monitor.Status) {
	switch status {
	case monitor.StatusUp:
		summary.Up++
	case monitor.StatusDown:
		summary.Down++
	case monitor.StatusMaintenance:
		summary.Maintenance++
	case monitor.StatusPaused:
		summary.Paused++
	default:
		summary.Unknown++
	}
}

// Overall derives the fleet-wide status by strict priority: a single down
// monitor outweighs everything, unknown outweighs maintenance, and so on.
// An empty fleet is unknown.
func (summary StatusSummary) Overall() monitor.Status {
	switch {
	case summary.Down > 0:
		return monitor.StatusDown
	case summary.Unknown > 0:
		return monitor.StatusUnknown
	case summary.Maintenance > 0:
		return monitor.StatusMaintenance
	case summary.Up > 0:
		return monitor.StatusUp
	case summary.Paused > 0:
		return monitor.StatusPaused
	default:
		return monitor.StatusUnknown
	}
}

// MonitorStatus is one monitor's entry in the fleet status document.
// Stale monitors present as unknown with their latency cleared;
// last_checked_at stays for diagnostics.
type MonitorStatus struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Status        monitor.Status `json:"status"`
	IsStale       bool           `json:"is_stale"`
	LastCheckedAt *int64         `json:"last_checked_at"`
	LastLatencyMS *int64         `json:"last_latency_ms"`
	Heartbeats    []Heartbeat    `json:"heartbeats"`
}

// Heartbeat is a recent check as presented to clients, oldest first.
type Heartbeat struct {
	CheckedAt int64         `json:"checked_at"`
	Status    checks.Status `json:"status"`
	LatencyMS *int64        `json:"latency_ms"`
}

// MonitorRef identifies a monitor in single-monitor reports.
type MonitorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LatencyReport is the latency profile of one monitor over a range.
type LatencyReport struct {
	Monitor      MonitorRef     `json:"monitor"`
	Range        string         `json:"range"`
	RangeStartAt int64          `json:"range_start_at"`
	RangeEndAt   int64          `json:"range_end_at"`
	AvgLatencyMS *int64         `json:"avg_latency_ms"`
	P95LatencyMS *int64         `json:"p95_latency_ms"`
	Points       []LatencyPoint `json:"points"`
}

// LatencyPoint is a single check in a latency report, in datastore order.
type LatencyPoint struct {
	CheckedAt int64         `json:"checked_at"`
	Status    checks.Status `json:"status"`
	LatencyMS *int64        `json:"latency_ms"`
}

// UptimeReport is the availability breakdown of one monitor over a range.
type UptimeReport struct {
	Monitor      MonitorRef `json:"monitor"`
	Range        string     `json:"range"`
	RangeStartAt int64      `json:"range_start_at"`
	RangeEndAt   int64      `json:"range_end_at"`
	uptime.Report
}

// Health reports datastore connectivity.
type Health struct {
	OK bool `json:"ok"`
}
