// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package uptimerdbtest provides a harness for tests that need a real
// migrated database.
package uptimerdbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/filipe-posio-devlop/Uptimer/private/testcontext"
	"github.com/filipe-posio-devlop/Uptimer/uptimerdb"
)

// Run opens a fresh migrated database in a temporary directory and passes it
// to the test.
func Run(t *testing.T, test func(ctx *testcontext.Context, t *testing.T, db *uptimerdb.DB)) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	log := zaptest.NewLogger(t)

	db, err := uptimerdb.OpenNew(ctx, log, uptimerdb.Config{
		Path:              ctx.File("uptimer.db"),
		TestingDisableWAL: true,
	})
	require.NoError(t, err)
	defer ctx.Check(db.Close)

	require.NoError(t, db.MigrateToLatest(ctx))

	test(ctx, t, db)
}
