// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package console implements the read-only public status query service.
package console

import (
	"context"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/filipe-posio-devlop/Uptimer/checks"
	"github.com/filipe-posio-devlop/Uptimer/monitor"
	"github.com/filipe-posio-devlop/Uptimer/outage"
	"github.com/filipe-posio-devlop/Uptimer/private/timerange"
	"github.com/filipe-posio-devlop/Uptimer/uptime"
)

var (
	// Error is the default console service errs class.
	Error = errs.Class("status console service")

	mon = monkit.Package()
)

const (
	// heartbeatLimit caps how many recent checks are returned per monitor.
	heartbeatLimit = 60
	// heartbeatLookback bounds how far back heartbeats are fetched.
	heartbeatLookback = 7 * 24 * 60 * 60
)

// DB provides access to the data consumed by the public console.
type DB interface {
	// Monitors is a getter for monitor.DB.
	Monitors() monitor.DB
	// Checks is a getter for checks.DB.
	Checks() checks.DB
	// Outages is a getter for outage.DB.
	Outages() outage.DB
	// Ping verifies datastore connectivity with a trivial read.
	Ping(ctx context.Context) error
}

// Service answers the public status, latency and uptime queries.
//
// architecture: Service
type Service struct {
	log *zap.Logger
	db  DB
}

// NewService returns a new instance of Service.
func NewService(log *zap.Logger, db DB) (*Service, error) {
	if log == nil {
		return nil, errs.New("log can't be nil")
	}
	if db == nil {
		return nil, errs.New("db can't be nil")
	}

	return &Service{
		log: log,
		db:  db,
	}, nil
}

// FleetStatus returns the current status of every active monitor together
// with a fleet-wide rollup and bounded heartbeat history.
func (service *Service) FleetStatus(ctx context.Context) (_ *FleetStatus, err error) {
	defer mon.Task()(&ctx)(&err)

	now := time.Now()
	rangeEnd := timerange.FloorMinute(now)
	lookbackStart := rangeEnd - heartbeatLookback

	rows, err := service.db.Monitors().ListActiveWithState(ctx)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	heartbeats := map[int64][]checks.Check{}
	if len(rows) > 0 {
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.Monitor.ID)
		}
		heartbeats, err = service.db.Checks().ListRecentByMonitor(ctx, ids, lookbackStart, heartbeatLimit)
		if err != nil {
			return nil, Error.Wrap(err)
		}
	}

	status := &FleetStatus{
		GeneratedAt: now.Unix(),
		Monitors:    make([]MonitorStatus, 0, len(rows)),
	}
	for _, row := range rows {
		presented := row.State.Status
		lastLatency := row.State.LastLatencyMS
		stale := row.State.IsStale(now.Unix(), row.Monitor.IntervalSec)
		if stale {
			presented = monitor.StatusUnknown
			lastLatency = nil
		}
		status.Summary.add(presented)

		recent := heartbeats[row.Monitor.ID]
		beats := make([]Heartbeat, 0, len(recent))
		for i := len(recent) - 1; i >= 0; i-- {
			beats = append(beats, Heartbeat{
				CheckedAt: recent[i].CheckedAt,
				Status:    recent[i].Status,
				LatencyMS: recent[i].LatencyMS,
			})
		}

		status.Monitors = append(status.Monitors, MonitorStatus{
			ID:            row.Monitor.ID,
			Name:          row.Monitor.Name,
			Type:          row.Monitor.Type,
			Status:        presented,
			IsStale:       stale,
			LastCheckedAt: row.State.LastCheckedAt,
			LastLatencyMS: lastLatency,
			Heartbeats:    beats,
		})
	}
	status.OverallStatus = status.Summary.Overall()

	return status, nil
}

// MonitorLatency returns the latency profile of an active monitor over the
// given range, ending on the current minute boundary.
func (service *Service) MonitorLatency(ctx context.Context, id int64, keyword timerange.Keyword) (_ *LatencyReport, err error) {
	defer mon.Task()(&ctx)(&err)

	target, err := service.db.Monitors().GetActive(ctx, id)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	rangeEnd := timerange.FloorMinute(time.Now())
	rangeStart := rangeEnd - keyword.Seconds()

	points, err := service.db.Checks().ListRange(ctx, target.ID, rangeStart, rangeEnd)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	summary := checks.Summarize(points)

	report := &LatencyReport{
		Monitor:      MonitorRef{ID: target.ID, Name: target.Name},
		Range:        keyword.String(),
		RangeStartAt: rangeStart,
		RangeEndAt:   rangeEnd,
		AvgLatencyMS: summary.AvgMS,
		P95LatencyMS: summary.P95MS,
		Points:       make([]LatencyPoint, 0, len(points)),
	}
	for _, point := range points {
		report.Points = append(report.Points, LatencyPoint{
			CheckedAt: point.CheckedAt,
			Status:    point.Status,
			LatencyMS: point.LatencyMS,
		})
	}

	return report, nil
}

// MonitorUptime returns the availability breakdown of an active monitor over
// the given range. The range never extends before the monitor's creation.
func (service *Service) MonitorUptime(ctx context.Context, id int64, keyword timerange.Keyword) (_ *UptimeReport, err error) {
	defer mon.Task()(&ctx)(&err)

	target, err := service.db.Monitors().GetActive(ctx, id)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	rangeEnd := timerange.FloorMinute(time.Now())
	rangeStart := rangeEnd - keyword.Seconds()
	if target.CreatedAt > rangeStart {
		rangeStart = target.CreatedAt
	}

	outages, err := service.db.Outages().ListOverlapping(ctx, target.ID, rangeStart, rangeEnd)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	downtime := uptime.DowntimeIntervals(rangeStart, rangeEnd, outages)

	// One extra interval of checks before the range supplies the carry-over
	// verdict for the gap classifier.
	observed, err := service.db.Checks().ListRange(ctx, target.ID, rangeStart-target.IntervalSec, rangeEnd)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	unknown := uptime.UnknownIntervals(rangeStart, rangeEnd, target.IntervalSec, observed)

	return &UptimeReport{
		Monitor:      MonitorRef{ID: target.ID, Name: target.Name},
		Range:        keyword.String(),
		RangeStartAt: rangeStart,
		RangeEndAt:   rangeEnd,
		Report:       uptime.Calculate(rangeStart, rangeEnd, downtime, unknown),
	}, nil
}

// Health confirms datastore connectivity with a trivial read.
func (service *Service) Health(ctx context.Context) (_ *Health, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := service.db.Ping(ctx); err != nil {
		return nil, Error.Wrap(err)
	}
	return &Health{OK: true}, nil
}
