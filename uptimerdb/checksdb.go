// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package uptimerdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/zeebo/errs"

	"github.com/filipe-posio-devlop/Uptimer/checks"
)

// checksDB contains the check result observations.
type checksDB struct {
	*DB
}

// Add stores a new check result.
func (db *checksDB) Add(ctx context.Context, check checks.Check) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.sqlDB.ExecContext(ctx, `
		INSERT INTO check_results (monitor_id, checked_at, status, latency_ms)
		VALUES (?, ?, ?, ?)
	`, check.MonitorID, check.CheckedAt, string(check.Status), check.LatencyMS)
	return ErrDatabase.Wrap(err)
}

// ListRange returns a monitor's checks with checked_at in [from, to],
// ascending by checked_at.
func (db *checksDB) ListRange(ctx context.Context, monitorID int64, from, to int64) (_ []checks.Check, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.sqlDB.QueryContext(ctx, `
		SELECT monitor_id, checked_at, status, latency_ms
		FROM check_results
		WHERE monitor_id = ? AND checked_at >= ? AND checked_at <= ?
		ORDER BY checked_at ASC
	`, monitorID, from, to)
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var list []checks.Check
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, check)
	}
	return list, ErrDatabase.Wrap(rows.Err())
}

// ListRecentByMonitor returns up to limit most recent checks per monitor with
// checked_at >= from, newest first within each monitor. A single windowed
// query serves all ids.
func (db *checksDB) ListRecentByMonitor(ctx context.Context, monitorIDs []int64, from int64, limit int) (_ map[int64][]checks.Check, err error) {
	defer mon.Task()(&ctx)(&err)

	recent := make(map[int64][]checks.Check, len(monitorIDs))
	if len(monitorIDs) == 0 {
		return recent, nil
	}

	args := make([]interface{}, 0, len(monitorIDs)+2)
	args = append(args, from)
	for _, id := range monitorIDs {
		args = append(args, id)
	}
	args = append(args, limit)

	rows, err := db.sqlDB.QueryContext(ctx, `
		SELECT monitor_id, checked_at, status, latency_ms
		FROM (
			SELECT monitor_id, checked_at, status, latency_ms,
				ROW_NUMBER() OVER (PARTITION BY monitor_id ORDER BY checked_at DESC) AS row_num
			FROM check_results
			WHERE checked_at >= ? AND monitor_id IN (`+placeholders(len(monitorIDs))+`)
		)
		WHERE row_num <= ?
		ORDER BY monitor_id ASC, checked_at DESC
	`, args...)
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		recent[check.MonitorID] = append(recent[check.MonitorID], check)
	}
	return recent, ErrDatabase.Wrap(rows.Err())
}

func scanCheck(rows *sql.Rows) (checks.Check, error) {
	var check checks.Check
	var status string
	var latency sql.NullInt64
	if err := rows.Scan(&check.MonitorID, &check.CheckedAt, &status, &latency); err != nil {
		return checks.Check{}, ErrDatabase.Wrap(err)
	}
	check.Status = checks.ParseStatus(status)
	if latency.Valid {
		ms := latency.Int64
		check.LatencyMS = &ms
	}
	return check, nil
}

// placeholders returns count comma separated sql placeholders.
func placeholders(count int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
