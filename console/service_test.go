// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package console_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/filipe-posio-devlop/Uptimer/checks"
	"github.com/filipe-posio-devlop/Uptimer/console"
	"github.com/filipe-posio-devlop/Uptimer/monitor"
	"github.com/filipe-posio-devlop/Uptimer/outage"
	"github.com/filipe-posio-devlop/Uptimer/private/testcontext"
	"github.com/filipe-posio-devlop/Uptimer/private/timerange"
	"github.com/filipe-posio-devlop/Uptimer/uptimerdb"
	"github.com/filipe-posio-devlop/Uptimer/uptimerdb/uptimerdbtest"
)

func TestServiceNew(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		_, err := console.NewService(nil, db)
		require.Error(t, err)

		_, err = console.NewService(zaptest.NewLogger(t), nil)
		require.Error(t, err)

		service, err := console.NewService(zaptest.NewLogger(t), db)
		require.NoError(t, err)
		require.NotNil(t, service)
	})
}

func TestSummaryOverall(t *testing.T) {
	for _, tt := range []struct {
		summary  console.StatusSummary
		expected monitor.Status
	}{
		{console.StatusSummary{Down: 1, Unknown: 3, Maintenance: 2, Up: 5, Paused: 1}, monitor.StatusDown},
		{console.StatusSummary{Unknown: 1, Maintenance: 1, Up: 1}, monitor.StatusUnknown},
		{console.StatusSummary{Maintenance: 2, Up: 9}, monitor.StatusMaintenance},
		{console.StatusSummary{Up: 3, Paused: 1}, monitor.StatusUp},
		{console.StatusSummary{Paused: 2}, monitor.StatusPaused},
		{console.StatusSummary{}, monitor.StatusUnknown},
	} {
		require.Equal(t, tt.expected, tt.summary.Overall(), "summary %+v", tt.summary)
	}
}

func TestFleetStatusEmptyFleet(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)

		before := time.Now().Unix()
		status, err := service.FleetStatus(ctx)
		require.NoError(t, err)

		require.GreaterOrEqual(t, status.GeneratedAt, before)
		require.Equal(t, monitor.StatusUnknown, status.OverallStatus)
		require.Equal(t, console.StatusSummary{}, status.Summary)
		require.NotNil(t, status.Monitors)
		require.Empty(t, status.Monitors)
	})
}

func TestFleetStatus(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		api := addMonitor(ctx, t, db, "api", 60, true, now-3600)
		dbmon := addMonitor(ctx, t, db, "db", 60, true, now-3600)
		cdn := addMonitor(ctx, t, db, "cdn", 60, true, now-3600)
		batch := addMonitor(ctx, t, db, "batch", 60, true, now-3600)
		addMonitor(ctx, t, db, "edge", 60, true, now-3600)
		addMonitor(ctx, t, db, "retired", 60, false, now-3600)

		setState(ctx, t, db, api.ID, monitor.StatusUp, int64p(now), int64p(120))
		setState(ctx, t, db, dbmon.ID, monitor.StatusDown, int64p(now), nil)
		setState(ctx, t, db, cdn.ID, monitor.StatusMaintenance, int64p(now), int64p(45))
		setState(ctx, t, db, batch.ID, monitor.StatusPaused, nil, nil)

		status, err := service.FleetStatus(ctx)
		require.NoError(t, err)

		require.Equal(t, monitor.StatusDown, status.OverallStatus)
		require.Equal(t, console.StatusSummary{Up: 1, Down: 1, Maintenance: 1, Paused: 1, Unknown: 1}, status.Summary)

		require.Len(t, status.Monitors, 5)
		names := make([]string, 0, len(status.Monitors))
		for _, entry := range status.Monitors {
			names = append(names, entry.Name)
		}
		require.Equal(t, []string{"api", "db", "cdn", "batch", "edge"}, names)

		first := status.Monitors[0]
		require.Equal(t, api.ID, first.ID)
		require.Equal(t, "http", first.Type)
		require.Equal(t, monitor.StatusUp, first.Status)
		require.False(t, first.IsStale)
		require.Equal(t, int64(120), *first.LastLatencyMS)

		paused := status.Monitors[3]
		require.Equal(t, monitor.StatusPaused, paused.Status)
		require.Nil(t, paused.LastCheckedAt)
		require.Nil(t, paused.LastLatencyMS)

		// No state row yet, presented as unknown.
		edge := status.Monitors[4]
		require.Equal(t, monitor.StatusUnknown, edge.Status)
		require.Nil(t, edge.LastCheckedAt)
	})
}

func TestFleetStatusStale(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		fresh := addMonitor(ctx, t, db, "fresh", 60, true, now-7200)
		stale := addMonitor(ctx, t, db, "stale", 60, true, now-7200)

		setState(ctx, t, db, fresh.ID, monitor.StatusUp, int64p(now), int64p(80))
		setState(ctx, t, db, stale.ID, monitor.StatusUp, int64p(now-1000), int64p(95))

		status, err := service.FleetStatus(ctx)
		require.NoError(t, err)

		require.Equal(t, console.StatusSummary{Up: 1, Unknown: 1}, status.Summary)
		require.Equal(t, monitor.StatusUnknown, status.OverallStatus)

		entry := status.Monitors[1]
		require.Equal(t, "stale", entry.Name)
		require.True(t, entry.IsStale)
		require.Equal(t, monitor.StatusUnknown, entry.Status)
		require.Nil(t, entry.LastLatencyMS)
		// The observation timestamp survives for diagnostics.
		require.NotNil(t, entry.LastCheckedAt)
		require.Equal(t, now-1000, *entry.LastCheckedAt)

		require.False(t, status.Monitors[0].IsStale)
		require.Equal(t, monitor.StatusUp, status.Monitors[0].Status)
	})
}

func TestFleetStatusPausedNeverStale(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		paused := addMonitor(ctx, t, db, "paused", 60, true, now-1e6)
		maint := addMonitor(ctx, t, db, "maint", 60, true, now-1e6)

		setState(ctx, t, db, paused.ID, monitor.StatusPaused, int64p(now-100000), nil)
		setState(ctx, t, db, maint.ID, monitor.StatusMaintenance, nil, nil)

		status, err := service.FleetStatus(ctx)
		require.NoError(t, err)

		require.Equal(t, console.StatusSummary{Maintenance: 1, Paused: 1}, status.Summary)
		require.Equal(t, monitor.StatusMaintenance, status.OverallStatus)
		require.False(t, status.Monitors[0].IsStale)
		require.Equal(t, monitor.StatusPaused, status.Monitors[0].Status)
		require.False(t, status.Monitors[1].IsStale)
		require.Equal(t, monitor.StatusMaintenance, status.Monitors[1].Status)
	})
}

func TestFleetStatusHeartbeats(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		busy := addMonitor(ctx, t, db, "busy", 60, true, now-30*24*3600)
		quiet := addMonitor(ctx, t, db, "quiet", 60, true, now-30*24*3600)

		// Outside the seven day lookback.
		addCheck(ctx, t, db, busy.ID, now-7*24*3600-100, checks.StatusUp, int64p(40))
		// Inside, barely.
		addCheck(ctx, t, db, busy.ID, now-7*24*3600+120, checks.StatusUp, int64p(41))

		addCheck(ctx, t, db, busy.ID, now-300, checks.StatusUp, int64p(100))
		addCheck(ctx, t, db, busy.ID, now-240, checks.StatusDown, nil)
		addCheck(ctx, t, db, busy.ID, now-180, checks.StatusUp, int64p(110))
		addCheck(ctx, t, db, busy.ID, now-120, checks.StatusMaintenance, nil)
		addCheck(ctx, t, db, busy.ID, now-60, checks.StatusUp, int64p(90))

		status, err := service.FleetStatus(ctx)
		require.NoError(t, err)
		require.Len(t, status.Monitors, 2)

		beats := status.Monitors[0].Heartbeats
		require.Len(t, beats, 6)
		require.Equal(t, now-7*24*3600+120, beats[0].CheckedAt)
		require.Equal(t, []console.Heartbeat{
			{CheckedAt: now - 300, Status: checks.StatusUp, LatencyMS: int64p(100)},
			{CheckedAt: now - 240, Status: checks.StatusDown},
			{CheckedAt: now - 180, Status: checks.StatusUp, LatencyMS: int64p(110)},
			{CheckedAt: now - 120, Status: checks.StatusMaintenance},
			{CheckedAt: now - 60, Status: checks.StatusUp, LatencyMS: int64p(90)},
		}, beats[1:])

		require.Equal(t, quiet.ID, status.Monitors[1].ID)
		require.NotNil(t, status.Monitors[1].Heartbeats)
		require.Empty(t, status.Monitors[1].Heartbeats)
	})
}

func TestFleetStatusHeartbeatCap(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		busy := addMonitor(ctx, t, db, "busy", 60, true, now-30*24*3600)
		for i := int64(1); i <= 70; i++ {
			addCheck(ctx, t, db, busy.ID, now-i*60, checks.StatusUp, int64p(100+i))
		}

		status, err := service.FleetStatus(ctx)
		require.NoError(t, err)

		beats := status.Monitors[0].Heartbeats
		require.Len(t, beats, 60)
		require.Equal(t, now-60*60, beats[0].CheckedAt)
		require.Equal(t, now-60, beats[59].CheckedAt)
		for i := 1; i < len(beats); i++ {
			require.Greater(t, beats[i].CheckedAt, beats[i-1].CheckedAt)
		}
	})
}

func TestMonitorLatency(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		api := addMonitor(ctx, t, db, "api", 60, true, now-30*24*3600)

		addCheck(ctx, t, db, api.ID, now-600, checks.StatusUp, int64p(100))
		addCheck(ctx, t, db, api.ID, now-540, checks.StatusUp, int64p(200))
		addCheck(ctx, t, db, api.ID, now-480, checks.StatusDown, int64p(999))
		addCheck(ctx, t, db, api.ID, now-420, checks.StatusUp, nil)
		addCheck(ctx, t, db, api.ID, now-360, checks.StatusUp, int64p(300))

		report, err := service.MonitorLatency(ctx, api.ID, timerange.Day)
		require.NoError(t, err)

		require.Equal(t, api.ID, report.Monitor.ID)
		require.Equal(t, "api", report.Monitor.Name)
		require.Equal(t, "24h", report.Range)
		require.Equal(t, int64(24*3600), report.RangeEndAt-report.RangeStartAt)

		// Down checks and missing samples stay out of the aggregates.
		require.Equal(t, int64(200), *report.AvgLatencyMS)
		require.Equal(t, int64(300), *report.P95LatencyMS)

		require.Len(t, report.Points, 5)
		require.Equal(t, now-600, report.Points[0].CheckedAt)
		require.Equal(t, now-360, report.Points[4].CheckedAt)
		require.Equal(t, checks.StatusDown, report.Points[2].Status)
		require.Nil(t, report.Points[3].LatencyMS)
	})
}

func TestMonitorLatencyNoChecks(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		idle := addMonitor(ctx, t, db, "idle", 60, true, now-3600)

		report, err := service.MonitorLatency(ctx, idle.ID, timerange.Day)
		require.NoError(t, err)
		require.Nil(t, report.AvgLatencyMS)
		require.Nil(t, report.P95LatencyMS)
		require.NotNil(t, report.Points)
		require.Empty(t, report.Points)
	})
}

func TestMonitorLatencyNoMonitor(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		_, err := service.MonitorLatency(ctx, 42, timerange.Day)
		require.True(t, monitor.ErrNoMonitor.Has(err))

		retired := addMonitor(ctx, t, db, "retired", 60, false, now-3600)
		_, err = service.MonitorLatency(ctx, retired.ID, timerange.Day)
		require.True(t, monitor.ErrNoMonitor.Has(err))
	})
}

func TestMonitorUptimeClampsToCreation(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		young := addMonitor(ctx, t, db, "young", 60, true, now-600)
		addOutage(ctx, t, db, young.ID, young.CreatedAt, int64p(young.CreatedAt+100))

		report, err := service.MonitorUptime(ctx, young.ID, timerange.Day)
		require.NoError(t, err)

		require.Equal(t, young.CreatedAt, report.RangeStartAt)
		require.Equal(t, report.RangeEndAt-report.RangeStartAt, report.TotalSec)
		require.Equal(t, int64(100), report.DowntimeSec)
		// Nothing observed, so the rest of the range is unknown.
		require.Equal(t, report.TotalSec-100, report.UnknownSec)
		require.Zero(t, report.UptimeSec)
		require.Zero(t, report.UptimePct)
	})
}

func TestMonitorUptimeFullyUp(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		steady := addMonitor(ctx, t, db, "steady", 60, true, now-600)
		for at := steady.CreatedAt - 30; at <= now; at += 30 {
			addCheck(ctx, t, db, steady.ID, at, checks.StatusUp, int64p(50))
		}

		report, err := service.MonitorUptime(ctx, steady.ID, timerange.Day)
		require.NoError(t, err)

		require.Zero(t, report.DowntimeSec)
		require.Zero(t, report.UnknownSec)
		require.Equal(t, report.TotalSec, report.UptimeSec)
		require.Equal(t, float64(100), report.UptimePct)
	})
}

func TestMonitorUptimeDowntimeWins(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		flaky := addMonitor(ctx, t, db, "flaky", 60, true, now-600)
		for at := flaky.CreatedAt - 30; at <= now; at += 30 {
			addCheck(ctx, t, db, flaky.ID, at, checks.StatusUp, int64p(50))
		}
		addOutage(ctx, t, db, flaky.ID, flaky.CreatedAt+60, int64p(flaky.CreatedAt+160))

		report, err := service.MonitorUptime(ctx, flaky.ID, timerange.Day)
		require.NoError(t, err)

		require.Equal(t, int64(100), report.DowntimeSec)
		require.Zero(t, report.UnknownSec)
		require.Equal(t, report.TotalSec-100, report.UptimeSec)
		require.InDelta(t, float64(report.UptimeSec)*100/float64(report.TotalSec), report.UptimePct, 1e-9)
	})
}

func TestMonitorUptimeRanges(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		old := addMonitor(ctx, t, db, "old", 60, true, now-40*24*3600)

		week, err := service.MonitorUptime(ctx, old.ID, timerange.Week)
		require.NoError(t, err)
		require.Equal(t, "7d", week.Range)
		require.Equal(t, int64(7*24*3600), week.TotalSec)
		require.Equal(t, week.TotalSec, week.UnknownSec)
		require.Zero(t, week.UptimeSec)

		month, err := service.MonitorUptime(ctx, old.ID, timerange.Month)
		require.NoError(t, err)
		require.Equal(t, "30d", month.Range)
		require.Equal(t, int64(30*24*3600), month.TotalSec)
	})
}

func TestMonitorUptimeOpenOutage(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)
		now := time.Now().Unix()

		wedged := addMonitor(ctx, t, db, "wedged", 60, true, now-40*24*3600)
		startedAt := now - 300
		addOutage(ctx, t, db, wedged.ID, startedAt, nil)

		report, err := service.MonitorUptime(ctx, wedged.ID, timerange.Day)
		require.NoError(t, err)

		// An open outage runs to the end of the range.
		require.Equal(t, report.RangeEndAt-startedAt, report.DowntimeSec)
	})
}

func TestMonitorUptimeNoMonitor(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)

		_, err := service.MonitorUptime(ctx, 42, timerange.Day)
		require.True(t, monitor.ErrNoMonitor.Has(err))
	})
}

func TestHealth(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		service := newService(t, db)

		health, err := service.Health(ctx)
		require.NoError(t, err)
		require.True(t, health.OK)
	})
}

func newService(t *testing.T, db *uptimerdb.DB) *console.Service {
	service, err := console.NewService(zaptest.NewLogger(t), db)
	require.NoError(t, err)
	return service
}

func int64p(v int64) *int64 { return &v }

func addMonitor(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB, name string, intervalSec int64, active bool, createdAt int64) monitor.Monitor {
	created, err := db.Monitors().Add(ctx, monitor.Monitor{
		Name:        name,
		Type:        "http",
		IntervalSec: intervalSec,
		IsActive:    active,
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
	return created
}

func setState(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB, monitorID int64, status monitor.Status, lastCheckedAt, lastLatencyMS *int64) {
	err := db.Monitors().SetState(ctx, monitor.State{
		MonitorID:     monitorID,
		Status:        status,
		LastCheckedAt: lastCheckedAt,
		LastLatencyMS: lastLatencyMS,
	})
	require.NoError(t, err)
}

func addCheck(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB, monitorID, checkedAt int64, status checks.Status, latencyMS *int64) {
	err := db.Checks().Add(ctx, checks.Check{
		MonitorID: monitorID,
		CheckedAt: checkedAt,
		Status:    status,
		LatencyMS: latencyMS,
	})
	require.NoError(t, err)
}

func addOutage(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB, monitorID, startedAt int64, endedAt *int64) {
	_, err := db.Outages().Add(ctx, outage.Outage{
		MonitorID: monitorID,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	})
	require.NoError(t, err)
}
