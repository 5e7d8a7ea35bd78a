// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package uptimerdb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zeebo/errs"

	"github.com/filipe-posio-devlop/Uptimer/monitor"
)

// monitorsDB contains the monitors and their current state.
type monitorsDB struct {
	*DB
}

// Add stores a new monitor and returns it with its assigned id.
func (db *monitorsDB) Add(ctx context.Context, record monitor.Monitor) (_ monitor.Monitor, err error) {
	defer mon.Task()(&ctx)(&err)

	result, err := db.sqlDB.ExecContext(ctx, `
		INSERT INTO monitors (name, type, interval_sec, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.Name, record.Type, record.IntervalSec, record.IsActive, record.CreatedAt)
	if err != nil {
		return monitor.Monitor{}, ErrDatabase.Wrap(err)
	}

	record.ID, err = result.LastInsertId()
	return record, ErrDatabase.Wrap(err)
}

// GetActive returns the active monitor with the given id.
func (db *monitorsDB) GetActive(ctx context.Context, id int64) (_ monitor.Monitor, err error) {
	defer mon.Task()(&ctx)(&err)

	row := db.sqlDB.QueryRowContext(ctx, `
		SELECT id, name, type, interval_sec, is_active, created_at
		FROM monitors
		WHERE id = ? AND is_active = 1
	`, id)

	var record monitor.Monitor
	err = row.Scan(&record.ID, &record.Name, &record.Type, &record.IntervalSec, &record.IsActive, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return monitor.Monitor{}, monitor.ErrNoMonitor.New("id %d", id)
	}
	return record, ErrDatabase.Wrap(err)
}

// ListActiveWithState returns all active monitors joined with their current
// state, ascending by id.
func (db *monitorsDB) ListActiveWithState(ctx context.Context) (_ []monitor.WithState, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.sqlDB.QueryContext(ctx, `
		SELECT m.id, m.name, m.type, m.interval_sec, m.is_active, m.created_at,
			s.status, s.last_checked_at, s.last_latency_ms
		FROM monitors m
		LEFT JOIN monitor_state s ON s.monitor_id = m.id
		WHERE m.is_active = 1
		ORDER BY m.id ASC
	`)
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var list []monitor.WithState
	for rows.Next() {
		var row monitor.WithState
		var status sql.NullString
		var lastCheckedAt, lastLatencyMS sql.NullInt64
		err := rows.Scan(
			&row.Monitor.ID, &row.Monitor.Name, &row.Monitor.Type,
			&row.Monitor.IntervalSec, &row.Monitor.IsActive, &row.Monitor.CreatedAt,
			&status, &lastCheckedAt, &lastLatencyMS,
		)
		if err != nil {
			return nil, ErrDatabase.Wrap(err)
		}

		// monitors without a state row present as unobserved unknown
		row.State.MonitorID = row.Monitor.ID
		row.State.Status = monitor.ParseStatus(status.String)
		if lastCheckedAt.Valid {
			at := lastCheckedAt.Int64
			row.State.LastCheckedAt = &at
		}
		if lastLatencyMS.Valid {
			ms := lastLatencyMS.Int64
			row.State.LastLatencyMS = &ms
		}
		list = append(list, row)
	}
	return list, ErrDatabase.Wrap(rows.Err())
}

// SetState stores the monitor's current state, replacing any previous one.
func (db *monitorsDB) SetState(ctx context.Context, state monitor.State) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.sqlDB.ExecContext(ctx, `
		INSERT INTO monitor_state (monitor_id, status, last_checked_at, last_latency_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (monitor_id) DO UPDATE SET
			status = excluded.status,
			last_checked_at = excluded.last_checked_at,
			last_latency_ms = excluded.last_latency_ms
	`, state.MonitorID, string(state.Status), state.LastCheckedAt, state.LastLatencyMS)
	return ErrDatabase.Wrap(err)
}
