package compass

import (
	"time"

	"github.com/compasskit/compassd/internal/bearing"
	"github.com/compasskit/compassd/internal/types"
)

// Log admission thresholds: a new observation is recorded when it moved
// far enough from the last logged heading, or when enough time has
// passed that a heartbeat entry is due even while stationary.
const (
	logChangeThreshold = 3.0 // degrees
	logHeartbeat       = 3000 * time.Millisecond
)

// State is the engine-owned compass state. All mutation happens inside
// the reducer on the engine's consumer goroutine; readers take copies
// under the engine's lock.
type State struct {
	LastRawHeading *float64
	LastHint       string
	UseTrueNorth   bool
	Declination    float64
	Settings       types.Settings
	Log            []types.HeadingSample
}

// shouldLog decides whether an observation is worth recording: always
// for the first entry, otherwise on a >3° move or a >3s gap since the
// last entry.
func (st *State) shouldLog(heading float64, ts time.Time) bool {
	if len(st.Log) == 0 {
		return true
	}
	last := st.Log[0]
	if diff := bearing.ShortestSignedDiff(last.Heading, heading); diff > logChangeThreshold || diff < -logChangeThreshold {
		return true
	}
	return ts.Sub(last.Timestamp) > logHeartbeat
}

// record inserts an observation at the front of the log and truncates
// the tail to the configured bound. Returns the recorded sample.
func (st *State) record(heading float64, mode string, ts time.Time) types.HeadingSample {
	h := bearing.Normalize(heading)
	sample := types.HeadingSample{
		Timestamp: ts,
		Heading:   h,
		Cardinal:  bearing.Cardinal16(h),
		Mode:      mode,
	}
	st.Log = append([]types.HeadingSample{sample}, st.Log...)
	st.truncateLog()
	return sample
}

// truncateLog drops the oldest entries (the tail) so the log never
// exceeds the configured size.
func (st *State) truncateLog() {
	if max := st.Settings.LogSize; max > 0 && len(st.Log) > max {
		st.Log = st.Log[:max]
	}
}

// snapshot projects the durable subset of state. Displayed angle and the
// last raw heading are session-only.
func (st *State) snapshot() types.Snapshot {
	logCopy := make([]types.HeadingSample, len(st.Log))
	copy(logCopy, st.Log)
	return types.Snapshot{
		Settings:     st.Settings,
		Declination:  st.Declination,
		UseTrueNorth: st.UseTrueNorth,
		Log:          logCopy,
	}
}

// sanitizeSettings merges requested settings over current ones, keeping
// the previous value for any field that fails validation.
func sanitizeSettings(current, requested types.Settings) types.Settings {
	out := current
	if requested.Units == types.UnitsDegrees || requested.Units == types.UnitsMils {
		out.Units = requested.Units
	}
	if requested.TickDensity >= 1 {
		out.TickDensity = requested.TickDensity
	}
	if requested.LogSize >= 1 {
		out.LogSize = requested.LogSize
	}
	return out
}
