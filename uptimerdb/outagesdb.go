// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package uptimerdb

import (
	"context"
	"database/sql"

	"github.com/zeebo/errs"

	"github.com/filipe-posio-devlop/Uptimer/outage"
)

// outagesDB contains the outage records.
type outagesDB struct {
	*DB
}

// Add stores a new outage and returns it with its assigned id.
func (db *outagesDB) Add(ctx context.Context, out outage.Outage) (_ outage.Outage, err error) {
	defer mon.Task()(&ctx)(&err)

	result, err := db.sqlDB.ExecContext(ctx, `
		INSERT INTO outages (monitor_id, started_at, ended_at)
		VALUES (?, ?, ?)
	`, out.MonitorID, out.StartedAt, out.EndedAt)
	if err != nil {
		return outage.Outage{}, ErrDatabase.Wrap(err)
	}

	out.ID, err = result.LastInsertId()
	return out, ErrDatabase.Wrap(err)
}

// CloseLatest sets ended_at on the monitor's most recent open outage.
func (db *outagesDB) CloseLatest(ctx context.Context, monitorID int64, endedAt int64) (err error) {
	defer mon.Task()(&ctx)(&err)

	result, err := db.sqlDB.ExecContext(ctx, `
		UPDATE outages SET ended_at = ?
		WHERE id = (
			SELECT id FROM outages
			WHERE monitor_id = ? AND ended_at IS NULL
			ORDER BY started_at DESC
			LIMIT 1
		)
	`, endedAt, monitorID)
	if err != nil {
		return ErrDatabase.Wrap(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ErrDatabase.Wrap(err)
	}
	if affected == 0 {
		return outage.Error.New("no open outage for monitor %d", monitorID)
	}
	return nil
}

// ListOverlapping returns the monitor's outages overlapping [from, to),
// ascending by started_at.
func (db *outagesDB) ListOverlapping(ctx context.Context, monitorID int64, from, to int64) (_ []outage.Outage, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.sqlDB.QueryContext(ctx, `
		SELECT id, monitor_id, started_at, ended_at
		FROM outages
		WHERE monitor_id = ? AND started_at < ? AND (ended_at IS NULL OR ended_at > ?)
		ORDER BY started_at ASC
	`, monitorID, to, from)
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var list []outage.Outage
	for rows.Next() {
		var out outage.Outage
		var endedAt sql.NullInt64
		if err := rows.Scan(&out.ID, &out.MonitorID, &out.StartedAt, &endedAt); err != nil {
			return nil, ErrDatabase.Wrap(err)
		}
		if endedAt.Valid {
			at := endedAt.Int64
			out.EndedAt = &at
		}
		list = append(list, out)
	}
	return list, ErrDatabase.Wrap(rows.Err())
}
