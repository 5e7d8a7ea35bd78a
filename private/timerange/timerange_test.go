// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package timerange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/filipe-posio-devlop/Uptimer/private/timerange"
)

func TestParse(t *testing.T) {
	keyword, err := timerange.Parse("", timerange.Day, timerange.Day, timerange.Week, timerange.Month)
	require.NoError(t, err)
	require.Equal(t, timerange.Day, keyword)

	keyword, err = timerange.Parse("7d", timerange.Day, timerange.Day, timerange.Week, timerange.Month)
	require.NoError(t, err)
	require.Equal(t, timerange.Week, keyword)

	_, err = timerange.Parse("7d", timerange.Day, timerange.Day)
	require.Error(t, err)
	require.True(t, timerange.Error.Has(err))

	_, err = timerange.Parse("1y", timerange.Day, timerange.Day, timerange.Week, timerange.Month)
	require.Error(t, err)
}

func TestSeconds(t *testing.T) {
	require.EqualValues(t, 86400, timerange.Day.Seconds())
	require.EqualValues(t, 604800, timerange.Week.Seconds())
	require.EqualValues(t, 2592000, timerange.Month.Seconds())
}

func TestFloorMinute(t *testing.T) {
	require.EqualValues(t, 1200, timerange.FloorMinute(time.Unix(1259, 0)))
	require.EqualValues(t, 1200, timerange.FloorMinute(time.Unix(1200, 0)))
	require.EqualValues(t, 0, timerange.FloorMinute(time.Unix(59, 0)))
}
