// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package uptimerdb implements the master database over SQLite.
package uptimerdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver.
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/filipe-posio-devlop/Uptimer/checks"
	"github.com/filipe-posio-devlop/Uptimer/monitor"
	"github.com/filipe-posio-devlop/Uptimer/outage"
)

// VersionTable is the table that stores the schema version info.
const VersionTable = "versions"

var (
	mon = monkit.Package()

	// ErrDatabase represents errors from the database.
	ErrDatabase = errs.Class("uptimerdb")
	// ErrPreflight represents an error during the preflight check.
	ErrPreflight = errs.Class("preflight")
)

// Config configures the uptimer database.
type Config struct {
	Path string `help:"path to the sqlite database" default:"uptimer.db"`

	TestingDisableWAL bool
}

// DB contains access to the uptimer database tables.
type DB struct {
	log    *zap.Logger
	config Config

	sqlDB *sql.DB

	monitorsDB *monitorsDB
	checksDB   *checksDB
	outagesDB  *outagesDB
}

// OpenNew creates a new database, creating the file and parent directory
// when missing.
func OpenNew(ctx context.Context, log *zap.Logger, config Config) (*DB, error) {
	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, ErrDatabase.Wrap(err)
		}
	}
	return openDatabase(ctx, log, config)
}

// OpenExisting opens an existing database, failing when the file is missing.
func OpenExisting(ctx context.Context, log *zap.Logger, config Config) (*DB, error) {
	if _, err := os.Stat(config.Path); err != nil {
		return nil, ErrDatabase.New("database %q couldn't be read: %w", config.Path, err)
	}
	return openDatabase(ctx, log, config)
}

// openDatabase opens or creates a database at the configured path.
func openDatabase(ctx context.Context, log *zap.Logger, config Config) (*DB, error) {
	wal := "&_journal=WAL"
	if config.TestingDisableWAL {
		wal = "&_journal=MEMORY&_txlock=immediate"
	}

	sqlDB, err := sql.Open("sqlite3", "file:"+config.Path+"?_busy_timeout=10000"+wal)
	if err != nil {
		return nil, ErrDatabase.New("opening file %q failed: %w", config.Path, err)
	}
	if config.TestingDisableWAL {
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{
		log:    log,
		config: config,

		sqlDB: sqlDB,
	}
	db.monitorsDB = &monitorsDB{DB: db}
	db.checksDB = &checksDB{DB: db}
	db.outagesDB = &outagesDB{DB: db}

	return db, nil
}

// Monitors returns the database for monitors and their state.
func (db *DB) Monitors() monitor.DB { return db.monitorsDB }

// Checks returns the database for check results.
func (db *DB) Checks() checks.DB { return db.checksDB }

// Outages returns the database for outages.
func (db *DB) Outages() outage.DB { return db.outagesDB }

// Ping verifies connectivity with a trivial read.
func (db *DB) Ping(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	var one int
	err = db.sqlDB.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
	return ErrDatabase.Wrap(err)
}

// Close closes the database.
func (db *DB) Close() error {
	return ErrDatabase.Wrap(db.sqlDB.Close())
}

// MigrateToLatest applies any unapplied schema migrations.
func (db *DB) MigrateToLatest(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	migration := db.Migration()
	return migration.Run(ctx, db.log.Named("migration"), db.sqlDB)
}

// Preflight verifies that the live schema matches what this binary expects
// before serving any traffic.
func (db *DB) Preflight(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	live, err := db.querySchema(ctx)
	if err != nil {
		return ErrPreflight.New("schema check failed: %w", err)
	}
	// version bookkeeping is not part of the data schema
	delete(live, VersionTable)

	if diff := cmp.Diff(expectedSchema(), live); diff != "" {
		return ErrPreflight.New("schema mismatch:\n%s", diff)
	}
	return nil
}

// querySchema returns the live tables and their column names in order.
func (db *DB) querySchema(ctx context.Context) (_ map[string][]string, err error) {
	tables, err := db.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	schema := make(map[string][]string, len(tables))
	for _, table := range tables {
		columns, err := db.tableColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		schema[table] = columns
	}
	return schema, nil
}

func (db *DB) tableNames(ctx context.Context) (_ []string, err error) {
	rows, err := db.sqlDB.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ErrDatabase.Wrap(err)
		}
		tables = append(tables, name)
	}
	return tables, ErrDatabase.Wrap(rows.Err())
}

func (db *DB) tableColumns(ctx context.Context, table string) (_ []string, err error) {
	rows, err := db.sqlDB.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ErrDatabase.Wrap(err)
		}
		columns = append(columns, name)
	}
	return columns, ErrDatabase.Wrap(rows.Err())
}
