package compass

import (
	"time"

	"github.com/compasskit/compassd/internal/types"
)

// Event is the tagged union of inputs to the engine's reducer. Events
// are applied one at a time by the single consumer loop, so replaying
// the same sequence from the same initial state reproduces the same
// displayed angle and log trajectory.
type Event interface {
	isEvent()
}

// HeadingEvent carries an adapter-normalized observation from a source.
type HeadingEvent struct {
	Update types.HeadingUpdate
}

// SetSettingsEvent replaces the user settings. Fields are sanitized by
// the reducer; an invalid field keeps its previous value.
type SetSettingsEvent struct {
	Settings types.Settings
}

// SetCorrectionEvent updates the magnetic/true-north correction.
type SetCorrectionEvent struct {
	Declination  float64
	UseTrueNorth bool
}

// ClearLogEvent empties the observation log.
type ClearLogEvent struct{}

// PinEvent re-seeds the displayed angle from the logged sample with the
// given timestamp. The log itself is left unchanged.
type PinEvent struct {
	Timestamp time.Time
}

// HydrateEvent applies a snapshot loaded from durable storage. Sent once
// at startup, before any source delivers updates.
type HydrateEvent struct {
	Snapshot types.Snapshot
}

func (HeadingEvent) isEvent()       {}
func (SetSettingsEvent) isEvent()   {}
func (SetCorrectionEvent) isEvent() {}
func (ClearLogEvent) isEvent()      {}
func (PinEvent) isEvent()           {}
func (HydrateEvent) isEvent()       {}
