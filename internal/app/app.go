// Package app wires configuration, storage, the compass engine, heading
// sources and controllers into a running daemon.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/compasskit/compassd/internal/compass"
	"github.com/compasskit/compassd/internal/log"
	"github.com/compasskit/compassd/internal/managers"
	"github.com/compasskit/compassd/internal/storage/snapshotkv"
	"github.com/compasskit/compassd/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfgData, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	// Open the snapshot store if one is configured
	var snapshotStore *snapshotkv.Store
	if cfgData.Storage.Snapshot != nil && cfgData.Storage.Snapshot.Path != "" {
		snapshotStore, err = snapshotkv.New(cfgData.Storage.Snapshot.Path)
		if err != nil {
			return err
		}
		defer snapshotStore.Close()
	}

	// Initialize the storage manager for sample archiving
	storageManager, err := managers.NewStorageManager(ctx, &wg, cfgData.Storage)
	if err != nil {
		return err
	}

	// Initialize the compass engine. Assign the store through the
	// interface only when one exists, so the engine sees a true nil.
	var store compass.SnapshotWriter
	if snapshotStore != nil {
		store = snapshotStore
	}
	engine := compass.NewEngine(cfgData.Compass, store, storageManager.GetSampleDistributor(), a.logger)

	// Restore persisted state before any source starts feeding updates
	if snapshotStore != nil {
		snap, found, err := snapshotStore.Load()
		if err != nil {
			log.Warnf("could not load compass snapshot: %v", err)
		} else if found {
			engine.Dispatch(compass.HydrateEvent{Snapshot: snap})
			log.Infof("restored compass snapshot with %d log entries", len(snap.Log))
		}
	}

	engine.Run(ctx, &wg)

	// Initialize the source manager
	sm, err := managers.NewSourceManager(ctx, &wg, a.configProvider, engine.Updates(), a.logger)
	if err != nil {
		return err
	}
	go sm.StartSources()

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, cfgData, engine, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
