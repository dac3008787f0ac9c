// Package types holds the shared data types passed between heading
// sources, the compass engine, storage engines, and controllers.
package types

import "time"

// Source mode tags recorded on each heading sample.
const (
	ModeMagnetic  = "magnetic"
	ModeTrue      = "true"
	ModeSimulated = "simulated"
)

// Display units for the heading readout.
const (
	UnitsDegrees = "deg"
	UnitsMils    = "mil"
)

// HeadingUpdate is a single normalized observation emitted by a heading
// source after adapter normalization. Heading is always in [0,360).
type HeadingUpdate struct {
	Timestamp    time.Time
	SourceName   string
	Heading      float64
	AccuracyHint string
	Simulated    bool
}

// HeadingSample is one recorded observation in the bounded event log.
// Cardinal is a pure function of Heading.
type HeadingSample struct {
	Timestamp time.Time `json:"ts"`
	Heading   float64   `json:"heading"`
	Cardinal  string    `json:"cardinal"`
	Mode      string    `json:"mode"`
}

// Settings holds the user-tunable compass options. TickDensity only
// affects dial rendering by clients; it is stored and served but not
// otherwise interpreted by the engine.
type Settings struct {
	Units       string `json:"units"`
	TickDensity int    `json:"tickDensity"`
	LogSize     int    `json:"logSize"`
}

// DefaultSettings returns the settings used before any snapshot or user
// input has been applied.
func DefaultSettings() Settings {
	return Settings{
		Units:       UnitsDegrees,
		TickDensity: 8,
		LogSize:     50,
	}
}

// Snapshot is the durable projection of compass state. The displayed
// needle angle and last raw heading are session-only and excluded.
type Snapshot struct {
	Settings     Settings        `json:"settings"`
	Declination  float64         `json:"declination"`
	UseTrueNorth bool            `json:"useTrueNorth"`
	Log          []HeadingSample `json:"log"`
}
