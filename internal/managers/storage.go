package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/compasskit/compassd/internal/storage"
	"github.com/compasskit/compassd/internal/storage/archive"
	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/config"
)

// StorageManager holds our active sample archive backends
type StorageManager struct {
	Engines           []StorageEngine
	SampleDistributor chan types.HeadingSample
}

// StorageEngine holds a backend archive engine's interface as well as
// a channel for passing samples to the engine
type StorageEngine struct {
	Engine storage.SampleEngineInterface
	C      chan<- types.HeadingSample
}

// NewStorageManager creates a StorageManager object, populated with all configured archive engines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, storageConfig config.StorageData) (*StorageManager, error) {
	s := StorageManager{}

	s.SampleDistributor = make(chan types.HeadingSample, 20)

	go s.startSampleDistributor(ctx, wg)

	if storageConfig.TimescaleDB != nil && storageConfig.TimescaleDB.ConnectionString != "" {
		if err := s.AddEngine(ctx, wg, "timescaledb", storageConfig); err != nil {
			return &s, fmt.Errorf("could not add TimescaleDB archive backend: %v", err)
		}
	}

	return &s, nil
}

// GetSampleDistributor returns the sample distributor channel
func (s *StorageManager) GetSampleDistributor() chan types.HeadingSample {
	return s.SampleDistributor
}

// AddEngine adds a new StorageEngine of name engineName to our StorageManager
func (s *StorageManager) AddEngine(ctx context.Context, wg *sync.WaitGroup, engineName string, storageConfig config.StorageData) error {
	switch engineName {
	case "timescaledb":
		se := StorageEngine{}
		engine, err := archive.New(ctx, storageConfig.TimescaleDB.ConnectionString)
		if err != nil {
			return err
		}
		se.Engine = engine
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		s.Engines = append(s.Engines, se)
	}

	return nil
}

// startSampleDistributor receives recorded samples from the compass engine
// and fans them out to the archive backends
func (s *StorageManager) startSampleDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case sample := <-s.SampleDistributor:
			for _, e := range s.Engines {
				e.C <- sample
			}
		case <-ctx.Done():
			return
		}
	}
}
