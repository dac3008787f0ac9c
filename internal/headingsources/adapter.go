package headingsources

import (
	"fmt"
	"time"

	"github.com/compasskit/compassd/internal/bearing"
	"github.com/compasskit/compassd/internal/types"
)

// SensorEvent is the tagged union of raw input shapes a source can
// produce. The adapter matches variants exhaustively instead of probing
// for optional fields.
type SensorEvent interface {
	isSensorEvent()
}

// PlatformCompassReading carries a direct compass-heading field from a
// platform sensor, plus an optional accuracy estimate in degrees.
type PlatformCompassReading struct {
	Timestamp      time.Time
	Source         string
	CompassHeading *float64
	Accuracy       *float64
}

// OrientationReading carries a generic rotation-around-vertical-axis
// angle (0-360, device frame). Absolute is set when the sensor declares
// an absolute reference frame. The frame is best-effort and is not
// corrected further.
type OrientationReading struct {
	Timestamp time.Time
	Source    string
	Alpha     *float64
	Absolute  bool
}

// PointerDragReading carries pointer coordinates relative to the compass
// widget. Active means the button or capture is still held; Released
// marks the final position on release, which is also processed.
type PointerDragReading struct {
	Timestamp        time.Time
	Source           string
	X, Y             float64
	CenterX, CenterY float64
	Active           bool
	Released         bool
}

func (PlatformCompassReading) isSensorEvent() {}
func (OrientationReading) isSensorEvent()     {}
func (PointerDragReading) isSensorEvent()     {}

// NormalizeEvent converts a raw sensor event into a HeadingUpdate. The
// second return is false when the event yields no usable heading; such
// events are discarded with no state mutation downstream.
func NormalizeEvent(ev SensorEvent) (types.HeadingUpdate, bool) {
	switch e := ev.(type) {
	case PlatformCompassReading:
		if e.CompassHeading == nil {
			return types.HeadingUpdate{}, false
		}
		update := types.HeadingUpdate{
			Timestamp:  e.Timestamp,
			SourceName: e.Source,
			Heading:    bearing.Normalize(*e.CompassHeading),
		}
		if e.Accuracy != nil {
			update.AccuracyHint = fmt.Sprintf("±%.1f°", *e.Accuracy)
		}
		return update, true

	case OrientationReading:
		if e.Alpha == nil {
			return types.HeadingUpdate{}, false
		}
		update := types.HeadingUpdate{
			Timestamp:  e.Timestamp,
			SourceName: e.Source,
			Heading:    bearing.Normalize(*e.Alpha),
		}
		if e.Absolute {
			update.AccuracyHint = "absolute"
		}
		return update, true

	case PointerDragReading:
		if !e.Active && !e.Released {
			return types.HeadingUpdate{}, false
		}
		return types.HeadingUpdate{
			Timestamp:    e.Timestamp,
			SourceName:   e.Source,
			Heading:      bearing.PointerHeading(e.X, e.Y, e.CenterX, e.CenterY),
			AccuracyHint: "simulated",
			Simulated:    true,
		}, true
	}

	return types.HeadingUpdate{}, false
}
