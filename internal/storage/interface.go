// Package storage defines interfaces and implementations for heading data storage backends.
package storage

import (
	"context"
	"sync"

	"github.com/compasskit/compassd/internal/types"
)

// SampleEngineInterface is an interface that provides a few standardized
// methods for various sample archive backends
type SampleEngineInterface interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.HeadingSample
}

// SnapshotStore persists and restores the durable compass state.
type SnapshotStore interface {
	Save(types.Snapshot) error
	Load() (types.Snapshot, bool, error)
	Close() error
}
