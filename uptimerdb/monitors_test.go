// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package uptimerdb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filipe-posio-devlop/Uptimer/monitor"
	"github.com/filipe-posio-devlop/Uptimer/private/testcontext"
	"github.com/filipe-posio-devlop/Uptimer/uptimerdb"
	"github.com/filipe-posio-devlop/Uptimer/uptimerdb/uptimerdbtest"
)

func int64p(v int64) *int64 { return &v }

func TestMonitorsAddGet(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		monitors := db.Monitors()

		added, err := monitors.Add(ctx, monitor.Monitor{
			Name:        "api",
			Type:        "http",
			IntervalSec: 60,
			IsActive:    true,
			CreatedAt:   1000,
		})
		require.NoError(t, err)
		require.NotZero(t, added.ID)

		got, err := monitors.GetActive(ctx, added.ID)
		require.NoError(t, err)
		require.Equal(t, added, got)

		_, err = monitors.GetActive(ctx, added.ID+42)
		require.Error(t, err)
		require.True(t, monitor.ErrNoMonitor.Has(err))
	})
}

func TestMonitorsGetActiveSkipsInactive(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		monitors := db.Monitors()

		retired, err := monitors.Add(ctx, monitor.Monitor{
			Name:        "legacy",
			Type:        "tcp",
			IntervalSec: 60,
			IsActive:    false,
			CreatedAt:   1000,
		})
		require.NoError(t, err)

		_, err = monitors.GetActive(ctx, retired.ID)
		require.Error(t, err)
		require.True(t, monitor.ErrNoMonitor.Has(err))
	})
}

func TestMonitorsListActiveWithState(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		monitors := db.Monitors()

		first, err := monitors.Add(ctx, monitor.Monitor{Name: "api", Type: "http", IntervalSec: 60, IsActive: true, CreatedAt: 1000})
		require.NoError(t, err)
		second, err := monitors.Add(ctx, monitor.Monitor{Name: "db", Type: "tcp", IntervalSec: 30, IsActive: true, CreatedAt: 2000})
		require.NoError(t, err)
		_, err = monitors.Add(ctx, monitor.Monitor{Name: "legacy", Type: "tcp", IntervalSec: 60, IsActive: false, CreatedAt: 500})
		require.NoError(t, err)

		require.NoError(t, monitors.SetState(ctx, monitor.State{
			MonitorID:     second.ID,
			Status:        monitor.StatusUp,
			LastCheckedAt: int64p(2100),
			LastLatencyMS: int64p(32),
		}))

		list, err := monitors.ListActiveWithState(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)

		// ascending by id; the stateless monitor presents as unobserved unknown
		require.Equal(t, first.ID, list[0].Monitor.ID)
		require.Equal(t, monitor.StatusUnknown, list[0].State.Status)
		require.Nil(t, list[0].State.LastCheckedAt)
		require.Nil(t, list[0].State.LastLatencyMS)

		require.Equal(t, second.ID, list[1].Monitor.ID)
		require.Equal(t, monitor.StatusUp, list[1].State.Status)
		require.Equal(t, int64(2100), *list[1].State.LastCheckedAt)
		require.Equal(t, int64(32), *list[1].State.LastLatencyMS)
	})
}

func TestMonitorsSetStateReplaces(t *testing.T) {
	uptimerdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB) {
		monitors := db.Monitors()

		added, err := monitors.Add(ctx, monitor.Monitor{Name: "api", Type: "http", IntervalSec: 60, IsActive: true, CreatedAt: 1000})
		require.NoError(t, err)

		require.NoError(t, monitors.SetState(ctx, monitor.State{
			MonitorID:     added.ID,
			Status:        monitor.StatusUp,
			LastCheckedAt: int64p(1100),
			LastLatencyMS: int64p(40),
		}))
		require.NoError(t, monitors.SetState(ctx, monitor.State{
			MonitorID: added.ID,
			Status:    monitor.StatusPaused,
		}))

		list, err := monitors.ListActiveWithState(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, monitor.StatusPaused, list[0].State.Status)
		require.Nil(t, list[0].State.LastCheckedAt)
		require.Nil(t, list[0].State.LastLatencyMS)
	})
}
