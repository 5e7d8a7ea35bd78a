// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Command uptimer runs the public status peer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	uptimer "github.com/filipe-posio-devlop/Uptimer"
	"github.com/filipe-posio-devlop/Uptimer/uptimerdb"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "uptimer",
		Short: "Uptimer public status peer",
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the status peer",
		RunE:  cmdRun,
	}
	setupCmd = &cobra.Command{
		Use:         "setup",
		Short:       "Create config files and initialize the datastore",
		RunE:        cmdSetup,
		Annotations: map[string]string{"type": "setup"},
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the datastore to the latest schema version",
		RunE:  cmdMigrate,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE:  cmdVersion,
	}

	confDir string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&confDir, "config-dir", defaultConfDir(), "main directory for uptimer configuration")
	rootCmd.PersistentFlags().String("log.level", "info", "the minimum log level to log")
	rootCmd.PersistentFlags().String("log.encoding", "console", "configures log encoding. can either be 'console' or 'json'")
	rootCmd.PersistentFlags().String("log.output", "stderr", "can be stdout, stderr, or a filename")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)

	bindConfigFlags(runCmd)
	bindConfigFlags(setupCmd)
	bindConfigFlags(migrateCmd)
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	log := zap.L()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := uptimerdb.OpenExisting(ctx, log.Named("db"), config.Database)
	if err != nil {
		return errs.New("Error opening database on uptimer: %+v", err)
	}
	defer func() {
		err = errs.Combine(err, db.Close())
	}()

	err = db.MigrateToLatest(ctx)
	if err != nil {
		return errs.New("Error migrating tables for database on uptimer: %+v", err)
	}

	err = db.Preflight(ctx)
	if err != nil {
		return errs.New("Error during preflight check for uptimer database: %+v", err)
	}

	peer, err := uptimer.New(log, db, *config)
	if err != nil {
		return err
	}

	runError := peer.Run(ctx)
	closeError := peer.Close()
	return errs.Combine(runError, closeError)
}

func cmdSetup(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	log := zap.L()

	setupDir, err := filepath.Abs(confDir)
	if err != nil {
		return err
	}

	configFile := filepath.Join(setupDir, "config.yaml")
	if fileExists(configFile) {
		return errs.New("uptimer configuration already exists (%v)", setupDir)
	}

	err = os.MkdirAll(setupDir, 0700)
	if err != nil {
		return err
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Unless the operator picked a location, the datastore lives next
	// to the config file.
	overrides := map[string]interface{}{}
	databasePath := cmd.Flag("database.path")
	if !databasePath.Changed {
		config.Database.Path = filepath.Join(setupDir, "uptimer.db")
		overrides[databasePath.Name] = config.Database.Path
	}

	db, err := uptimerdb.OpenNew(ctx, log.Named("db"), config.Database)
	if err != nil {
		return errs.New("Error creating database on uptimer: %+v", err)
	}
	defer func() {
		err = errs.Combine(err, db.Close())
	}()

	err = db.MigrateToLatest(ctx)
	if err != nil {
		return errs.New("Error creating tables for database on uptimer: %+v", err)
	}

	return saveConfig(cmd, configFile, overrides)
}

func cmdMigrate(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	log := zap.L()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := uptimerdb.OpenExisting(ctx, log.Named("db"), config.Database)
	if err != nil {
		return errs.New("Error opening database on uptimer: %+v", err)
	}
	defer func() {
		err = errs.Combine(err, db.Close())
	}()

	return db.MigrateToLatest(ctx)
}

func cmdVersion(cmd *cobra.Command, args []string) error {
	fmt.Printf("uptimer %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

func defaultConfDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".uptimer"
	}
	return filepath.Join(home, ".uptimer")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() { _ = zap.L().Sync() }()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
