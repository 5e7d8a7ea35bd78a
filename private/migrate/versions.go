// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package migrate implements versioned schema migrations for a sql database.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// Error is the default migrate errs class.
var Error = errs.Class("migrate")

// Migration describes migration steps for a database.
type Migration struct {
	// Table is the table keeping track of the applied versions.
	Table string
	Steps []*Step
}

// Step describes a single step in a migration.
type Step struct {
	Description string
	Version     int // Versions should start at 0
	Action      Action
}

// Action is something that needs to be done inside a migration transaction.
type Action interface {
	Run(ctx context.Context, log *zap.Logger, tx *sql.Tx) error
}

// TargetVersion returns a migration with steps up to the specified version.
func (migration *Migration) TargetVersion(version int) *Migration {
	m := *migration
	m.Steps = nil
	for _, step := range migration.Steps {
		if step.Version <= version {
			m.Steps = append(m.Steps, step)
		}
	}
	return &m
}

// ValidTableName checks whether the version table name is valid.
func (migration *Migration) ValidTableName() error {
	matched, err := regexp.MatchString(`^[a-z_]+$`, migration.Table)
	if !matched || err != nil {
		return Error.New("invalid table name: %v", migration.Table)
	}
	return nil
}

// ValidateSteps checks that the version for each migration step increments in order.
func (migration *Migration) ValidateSteps() error {
	sorted := sort.SliceIsSorted(migration.Steps, func(i, j int) bool {
		return migration.Steps[i].Version <= migration.Steps[j].Version
	})
	if !sorted {
		return Error.New("steps have incorrect order")
	}
	return nil
}

// Run applies the unapplied migration steps to the database, each inside
// its own transaction.
func (migration *Migration) Run(ctx context.Context, log *zap.Logger, db *sql.DB) error {
	err := migration.ValidTableName()
	if err != nil {
		return err
	}

	err = migration.ValidateSteps()
	if err != nil {
		return err
	}

	err = migration.ensureVersionTable(ctx, db)
	if err != nil {
		return Error.New("creating version table failed: %w", err)
	}

	version, err := migration.getLatestVersion(ctx, db)
	if err != nil {
		return Error.Wrap(err)
	}
	initialSetup := version < 0

	for _, step := range migration.Steps {
		if step.Version <= version {
			continue
		}

		stepLog := log.Named(strconv.Itoa(step.Version))
		if !initialSetup {
			stepLog.Info(step.Description)
		}

		err = withTx(ctx, db, func(tx *sql.Tx) error {
			err := step.Action.Run(ctx, stepLog, tx)
			if err != nil {
				return err
			}
			return migration.addVersion(ctx, tx, step.Version)
		})
		if err != nil {
			return Error.Wrap(err)
		}
	}

	if len(migration.Steps) > 0 {
		last := migration.Steps[len(migration.Steps)-1]
		if initialSetup {
			log.Info("Database Created", zap.Int("version", last.Version))
		} else {
			log.Info("Database Version", zap.Int("version", last.Version))
		}
	} else {
		log.Info("No Versions")
	}

	return nil
}

// CurrentVersion finds the latest applied version for the database.
func (migration *Migration) CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	err := migration.ensureVersionTable(ctx, db)
	if err != nil {
		return -1, Error.Wrap(err)
	}
	return migration.getLatestVersion(ctx, db)
}

// ensureVersionTable creates the version table if it does not exist.
func (migration *Migration) ensureVersionTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migration.Table+` (version int, commited_at text)`) //nolint:misspell
	return Error.Wrap(err)
}

// getLatestVersion finds the latest version in the version table.
// It returns -1 if there are no rows.
func (migration *Migration) getLatestVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM `+migration.Table).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) || !version.Valid {
		return -1, nil
	}
	return int(version.Int64), Error.Wrap(err)
}

// addVersion records a newly applied version.
func (migration *Migration) addVersion(ctx context.Context, tx *sql.Tx, version int) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO `+migration.Table+` (version, commited_at) VALUES (?, ?)`, //nolint:misspell
		version, time.Now().String(),
	)
	return err
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return errs.Combine(err, tx.Rollback())
	}
	return tx.Commit()
}

// SQL statements that are executed on the database.
type SQL []string

// Run runs the SQL statements.
func (sql SQL) Run(ctx context.Context, log *zap.Logger, tx *sql.Tx) error {
	for _, query := range sql {
		_, err := tx.ExecContext(ctx, query)
		if err != nil {
			return errs.Wrap(err)
		}
	}
	return nil
}

// Func is an arbitrary migration operation.
type Func func(ctx context.Context, log *zap.Logger, tx *sql.Tx) error

// Run runs the migration.
func (fn Func) Run(ctx context.Context, log *zap.Logger, tx *sql.Tx) error {
	return fn(ctx, log, tx)
}
