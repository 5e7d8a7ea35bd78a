// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package uptimerdb

import (
	"github.com/filipe-posio-devlop/Uptimer/private/migrate"
)

// Migration returns the table migration steps.
func (db *DB) Migration() *migrate.Migration {
	return &migrate.Migration{
		Table: VersionTable,
		Steps: []*migrate.Step{
			{
				Description: "Initial setup",
				Version:     0,
				Action: migrate.SQL{
					`CREATE TABLE monitors (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						name TEXT NOT NULL,
						type TEXT NOT NULL,
						interval_sec INTEGER NOT NULL,
						is_active INTEGER NOT NULL DEFAULT 1,
						created_at INTEGER NOT NULL
					)`,
					`CREATE TABLE monitor_state (
						monitor_id INTEGER PRIMARY KEY REFERENCES monitors (id),
						status TEXT NOT NULL,
						last_checked_at INTEGER,
						last_latency_ms INTEGER
					)`,
					`CREATE TABLE check_results (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						monitor_id INTEGER NOT NULL REFERENCES monitors (id),
						checked_at INTEGER NOT NULL,
						status TEXT NOT NULL,
						latency_ms INTEGER
					)`,
					`CREATE TABLE outages (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						monitor_id INTEGER NOT NULL REFERENCES monitors (id),
						started_at INTEGER NOT NULL,
						ended_at INTEGER
					)`,
				},
			},
			{
				Description: "Add lookup indexes for range queries",
				Version:     1,
				Action: migrate.SQL{
					`CREATE INDEX idx_check_results_monitor_checked ON check_results (monitor_id, checked_at)`,
					`CREATE INDEX idx_outages_monitor_started ON outages (monitor_id, started_at)`,
				},
			},
		},
	}
}

// expectedSchema describes the tables and ordered column names the binary
// was built against. Preflight compares the live database against it.
func expectedSchema() map[string][]string {
	return map[string][]string{
		"monitors":      {"id", "name", "type", "interval_sec", "is_active", "created_at"},
		"monitor_state": {"monitor_id", "status", "last_checked_at", "last_latency_ms"},
		"check_results": {"id", "monitor_id", "checked_at", "status", "latency_ms"},
		"outages":       {"id", "monitor_id", "started_at", "ended_at"},
	}
}
