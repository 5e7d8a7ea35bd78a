// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

// Package uptimer is the public status peer. It serves the read-only
// status, latency and uptime queries over the monitoring datastore.
package uptimer

import (
	"context"
	"errors"
	"net"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/filipe-posio-devlop/Uptimer/checks"
	"github.com/filipe-posio-devlop/Uptimer/console"
	"github.com/filipe-posio-devlop/Uptimer/console/consoleserver"
	"github.com/filipe-posio-devlop/Uptimer/monitor"
	"github.com/filipe-posio-devlop/Uptimer/outage"
	"github.com/filipe-posio-devlop/Uptimer/pkg/debug"
	"github.com/filipe-posio-devlop/Uptimer/uptimerdb"
)

var mon = monkit.Package()

// DB is the master database for the status peer.
//
// architecture: Master Database
type DB interface {
	// Monitors returns the database for monitors and their current state.
	Monitors() monitor.DB
	// Checks returns the database for check results.
	Checks() checks.DB
	// Outages returns the database for outage records.
	Outages() outage.DB

	// Ping verifies datastore connectivity with a trivial read.
	Ping(ctx context.Context) error
	// MigrateToLatest migrates the database to the latest schema version.
	MigrateToLatest(ctx context.Context) error
	// Preflight verifies that the database schema matches the expected one.
	Preflight(ctx context.Context) error
	// Close closes the database.
	Close() error
}

// Config is all the configuration parameters for a status peer.
type Config struct {
	Database uptimerdb.Config

	Console consoleserver.Config
	Debug   debug.Config
}

// Peer is the representation of a status peer.
//
// architecture: Peer
type Peer struct {
	// core dependencies
	Log *zap.Logger
	DB  DB

	Debug struct {
		Listener net.Listener
		Server   *debug.Server
	}

	Console struct {
		Listener net.Listener
		Service  *console.Service
		Endpoint *consoleserver.Server
	}
}

// New creates a new status peer.
func New(log *zap.Logger, db DB, config Config) (peer *Peer, err error) {
	peer = &Peer{
		Log: log,
		DB:  db,
	}

	{ // setup debug
		if config.Debug.Address != "" {
			peer.Debug.Listener, err = net.Listen("tcp", config.Debug.Address)
			if err != nil {
				withoutStack := errors.New(err.Error())
				peer.Log.Debug("failed to start debug endpoints", zap.Error(withoutStack))
			}
		}
		peer.Debug.Server = debug.NewServer(log.Named("debug"), peer.Debug.Listener, monkit.Default)
	}

	{ // setup console
		peer.Console.Service, err = console.NewService(log.Named("console:service"), db)
		if err != nil {
			return nil, errs.Combine(err, peer.Close())
		}

		peer.Console.Listener, err = net.Listen("tcp", config.Console.Address)
		if err != nil {
			return nil, errs.Combine(err, peer.Close())
		}

		peer.Console.Endpoint = consoleserver.NewServer(
			log.Named("console:endpoint"),
			config.Console,
			peer.Console.Service,
			peer.Console.Listener,
		)
	}

	return peer, nil
}

// Run runs the status peer until it's either closed or it errors.
func (peer *Peer) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return peer.Debug.Server.Run(ctx)
	})
	group.Go(func() error {
		peer.Log.Info("public status server started", zap.String("address", peer.Addr()))
		return peer.Console.Endpoint.Run(ctx)
	})

	return group.Wait()
}

// Close closes all the resources.
func (peer *Peer) Close() error {
	var errlist errs.Group

	// close servers in reverse initialization order
	if peer.Console.Endpoint != nil {
		errlist.Add(peer.Console.Endpoint.Close())
	} else if peer.Console.Listener != nil {
		// the endpoint closes the listener when present
		errlist.Add(peer.Console.Listener.Close())
	}

	if peer.Debug.Server != nil {
		errlist.Add(peer.Debug.Server.Close())
	} else if peer.Debug.Listener != nil {
		errlist.Add(peer.Debug.Listener.Close())
	}

	return errlist.Err()
}

// Addr returns the public status api address.
func (peer *Peer) Addr() string { return peer.Console.Listener.Addr().String() }
