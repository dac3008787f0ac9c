package compass

import (
	"context"
	"sync"

	"github.com/compasskit/compassd/internal/bearing"
	"github.com/compasskit/compassd/internal/smoothing"
	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/config"
	"go.uber.org/zap"
)

// SnapshotWriter persists the durable state projection. Writes are
// best-effort: the engine logs failures and keeps going.
type SnapshotWriter interface {
	Save(types.Snapshot) error
}

// Engine owns the compass state. Heading updates and control events are
// consumed by a single goroutine, so the reducer never races with
// itself; concurrent readers go through the lock-guarded accessors.
type Engine struct {
	mu       sync.RWMutex
	state    State
	smoother *smoothing.Smoother

	events  chan Event
	updates chan types.HeadingUpdate
	samples chan<- types.HeadingSample
	store   SnapshotWriter
	logger  *zap.SugaredLogger
}

// effects is the side-effect request list a reducer step produces. The
// run loop executes it after the state mutation completes.
type effects struct {
	persist  bool
	archived []types.HeadingSample
}

// NewEngine creates an engine seeded with configured defaults. store and
// samples may be nil when snapshot persistence or archiving is not
// configured.
func NewEngine(defaults config.CompassData, store SnapshotWriter, samples chan<- types.HeadingSample, logger *zap.SugaredLogger) *Engine {
	settings := types.DefaultSettings()
	if defaults.Units == types.UnitsDegrees || defaults.Units == types.UnitsMils {
		settings.Units = defaults.Units
	}
	if defaults.TickDensity >= 1 {
		settings.TickDensity = defaults.TickDensity
	}
	if defaults.LogSize >= 1 {
		settings.LogSize = defaults.LogSize
	}

	return &Engine{
		state: State{
			UseTrueNorth: defaults.UseTrueNorth,
			Declination:  defaults.Declination,
			Settings:     settings,
		},
		smoother: smoothing.New(defaults.SmoothingAlpha),
		events:   make(chan Event, 20),
		updates:  make(chan types.HeadingUpdate, 20),
		samples:  samples,
		store:    store,
		logger:   logger,
	}
}

// Updates returns the channel heading sources send to.
func (e *Engine) Updates() chan types.HeadingUpdate {
	return e.updates
}

// Submit queues a control event for the consumer loop.
func (e *Engine) Submit(ev Event) {
	e.events <- ev
}

// Run consumes events until the context is cancelled. It is the only
// goroutine that mutates state.
func (e *Engine) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.logger.Info("compass engine started")
		for {
			select {
			case u := <-e.updates:
				e.Dispatch(HeadingEvent{Update: u})
			case ev := <-e.events:
				e.Dispatch(ev)
			case <-ctx.Done():
				e.logger.Info("cancellation request received. Stopping compass engine.")
				return
			}
		}
	}()
}

// Dispatch applies one event to state and executes the resulting
// effects. Exported for the consumer loop and for synchronous use in
// tests; callers outside the loop should prefer Submit.
func (e *Engine) Dispatch(ev Event) {
	e.mu.Lock()
	eff := e.apply(ev)
	e.mu.Unlock()

	if eff.persist {
		e.persistSnapshot()
	}
	if e.samples != nil {
		for _, sample := range eff.archived {
			e.samples <- sample
		}
	}
}

// apply is the reducer: one event in, a state delta plus side-effect
// requests out. Called with the state lock held.
func (e *Engine) apply(ev Event) effects {
	var eff effects

	switch event := ev.(type) {
	case HeadingEvent:
		u := event.Update
		raw := bearing.Normalize(u.Heading)
		e.state.LastRawHeading = &raw
		e.state.LastHint = u.AccuracyHint
		e.smoother.Advance(raw)

		if e.state.shouldLog(raw, u.Timestamp) {
			mode := types.ModeMagnetic
			if u.Simulated {
				mode = types.ModeSimulated
			} else if e.state.UseTrueNorth {
				mode = types.ModeTrue
			}
			sample := e.state.record(raw, mode, u.Timestamp)
			eff.persist = true
			eff.archived = append(eff.archived, sample)
		}

	case SetSettingsEvent:
		e.state.Settings = sanitizeSettings(e.state.Settings, event.Settings)
		e.state.truncateLog()
		eff.persist = true

	case SetCorrectionEvent:
		e.state.Declination = event.Declination
		e.state.UseTrueNorth = event.UseTrueNorth
		eff.persist = true

	case ClearLogEvent:
		e.state.Log = nil
		eff.persist = true

	case PinEvent:
		for _, sample := range e.state.Log {
			if sample.Timestamp.Equal(event.Timestamp) {
				e.smoother.Seed(sample.Heading)
				break
			}
		}

	case HydrateEvent:
		snap := event.Snapshot
		e.state.Settings = sanitizeSettings(e.state.Settings, snap.Settings)
		e.state.Declination = snap.Declination
		e.state.UseTrueNorth = snap.UseTrueNorth
		e.state.Log = snap.Log
		e.state.truncateLog()
	}

	return eff
}

// persistSnapshot writes the durable projection. Failures are warned
// and swallowed; persistence never interrupts the in-memory update that
// triggered it.
func (e *Engine) persistSnapshot() {
	if e.store == nil {
		return
	}
	e.mu.RLock()
	snap := e.state.snapshot()
	e.mu.RUnlock()

	if err := e.store.Save(snap); err != nil {
		e.logger.Warnf("could not persist compass snapshot: %v", err)
	}
}

// Snapshot returns a copy of the durable state projection.
func (e *Engine) Snapshot() types.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.snapshot()
}

// LogEntries returns a copy of the observation log, newest first.
func (e *Engine) LogEntries() []types.HeadingSample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entries := make([]types.HeadingSample, len(e.state.Log))
	copy(entries, e.state.Log)
	return entries
}

// CurrentSettings returns the active settings.
func (e *Engine) CurrentSettings() types.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Settings
}
