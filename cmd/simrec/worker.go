// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/database"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/pairstore"
	"github.com/tomtom215/simrec/internal/recommend"
	"github.com/tomtom215/simrec/internal/recompute"
	"github.com/tomtom215/simrec/internal/supervisor"
	"github.com/tomtom215/simrec/internal/supervisor/services"
)

// errWorkerDown is reported by /healthz while no worker is consuming.
var errWorkerDown = errors.New("recompute worker not running")

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the recompute worker",
	Long: `Run the long-lived recompute worker under a supervisor tree:

  - recompute-worker  consumes rating change events and refreshes one item
  - rebuild-service   periodically rebuilds the full similarity index
  - pairstore-gc      runs Badger value log garbage collection
  - ops-server        serves /metrics and /healthz (when server.addr is set)

Only one worker may run per pair store; a second one exits immediately.`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

// acquireWorkerLock takes the worker lock without waiting.
func acquireWorkerLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	l := flock.New(path)
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("cannot acquire worker lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another worker is running (lock: %s)", path)
	}
	return func() { _ = l.Unlock() }, nil
}

func runWorker(cmd *cobra.Command, _ []string) error {
	unlock, err := acquireWorkerLock(cfg.Recompute.LockPath)
	if err != nil {
		return err
	}
	defer unlock()

	ctx := cmd.Context()
	logging.Info().
		Str("transport", cfg.Recompute.Transport).
		Str("metric", string(cfg.Engine.Metric)).
		Str("mode", cfg.Engine.Mode).
		Msg("Starting simrec worker")

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer closeLogged("database", db)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeLogged("pair store", store)

	engine, err := newEngine()
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	var current atomic.Pointer[recompute.Worker]
	addWorkerServices(tree, db, store, engine, &current)

	if configPath != "" {
		watchConfig(configPath)
	}

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	logging.Info().Msg("Simrec worker stopped")
	return nil
}

func addWorkerServices(
	tree *supervisor.SupervisorTree,
	db *database.DB,
	store *pairstore.Store,
	engine *recommend.Engine[int64],
	current *atomic.Pointer[recompute.Worker],
) {
	tree.AddDataService(services.NewPairStoreGCService(store, cfg.PairStore.GCInterval, logging.WithComponent("pairstore")))

	tree.AddQueueService(services.NewRecomputeService(func() (services.RecomputeRunner, error) {
		w, err := recompute.NewWorker(cfg, db, engine, store)
		if err != nil {
			return nil, err
		}
		current.Store(w)
		return w, nil
	}))

	rebuilder := recompute.NewRebuilder(db, engine, store, logging.WithComponent("rebuild"))
	tree.AddQueueService(services.NewRebuildService(rebuilder, services.RebuildServiceConfig{
		OnStartup: cfg.Recompute.RebuildOnStartup,
		Interval:  cfg.Recompute.RebuildInterval,
	}, logging.Logger()))

	if cfg.Server.Addr == "" {
		return
	}
	checks := map[string]services.HealthCheck{
		"database":  db.Ping,
		"recompute": func(context.Context) error {
			if w := current.Load(); w != nil && w.IsRunning() {
				return nil
			}
			return errWorkerDown
		},
	}
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           services.NewOpsRouter(checks),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}
	tree.AddOpsService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", cfg.Server.Addr).Msg("Ops endpoints enabled")
}

// watchConfig warns when the config file changes. Settings are read once at
// startup, so changes need a restart.
func watchConfig(path string) {
	err := config.WatchConfigFile(path, func() {
		logging.Warn().Str("path", path).Msg("Config file changed, restart the worker to apply it")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch unavailable")
	}
}
