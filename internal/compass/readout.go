package compass

import (
	"fmt"
	"math"

	"github.com/compasskit/compassd/internal/bearing"
	"github.com/compasskit/compassd/internal/types"
)

// Readout is the rendered view of compass state served to clients.
type Readout struct {
	DisplayedAngle float64  `json:"displayedAngle"`
	Heading        *float64 `json:"heading,omitempty"`
	RawHeading     *float64 `json:"rawHeading,omitempty"`
	Display        string   `json:"display"`
	Cardinal       string   `json:"cardinal"`
	Mode           string   `json:"mode"`
	Units          string   `json:"units"`
	TickDensity    int      `json:"tickDensity"`
	AccuracyHint   string   `json:"accuracyHint,omitempty"`
}

// EffectiveHeading applies the true-north correction to a raw heading.
func EffectiveHeading(raw, declination float64, useTrueNorth bool) float64 {
	if useTrueNorth {
		return bearing.Normalize(raw + declination)
	}
	return bearing.Normalize(raw)
}

// FormatHeading renders a heading in the configured display units.
func FormatHeading(units string, h float64) string {
	if units == types.UnitsMils {
		return fmt.Sprintf("%d mil", bearing.ToMils(h))
	}
	return fmt.Sprintf("%d°", int(math.Round(bearing.Normalize(h))))
}

// ModeLabel renders the correction mode, independent of which source
// produced the current heading.
func ModeLabel(useTrueNorth bool) string {
	if useTrueNorth {
		return types.ModeTrue
	}
	return types.ModeMagnetic
}

// Readout assembles the current display view. Heading and RawHeading
// are nil until the first sample arrives.
func (e *Engine) Readout() Readout {
	e.mu.RLock()
	defer e.mu.RUnlock()

	displayed, _ := e.smoother.Angle()
	r := Readout{
		DisplayedAngle: displayed,
		Mode:           ModeLabel(e.state.UseTrueNorth),
		Units:          e.state.Settings.Units,
		TickDensity:    e.state.Settings.TickDensity,
		AccuracyHint:   e.state.LastHint,
	}

	if e.state.LastRawHeading != nil {
		raw := *e.state.LastRawHeading
		eff := EffectiveHeading(raw, e.state.Declination, e.state.UseTrueNorth)
		r.RawHeading = &raw
		r.Heading = &eff
		r.Display = FormatHeading(r.Units, eff)
		r.Cardinal = bearing.Cardinal16(eff)
	}

	return r
}
