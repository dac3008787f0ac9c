package headingsources

import (
	"math"
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }

func TestNormalizeEvent(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		event       SensorEvent
		wantOK      bool
		wantHeading float64
		wantHint    string
		wantSim     bool
	}{
		{
			name:        "platform compass heading used verbatim",
			event:       PlatformCompassReading{Timestamp: now, Source: "imu0", CompassHeading: f(123.4)},
			wantOK:      true,
			wantHeading: 123.4,
		},
		{
			name:        "platform accuracy formatted as hint",
			event:       PlatformCompassReading{Timestamp: now, Source: "imu0", CompassHeading: f(90), Accuracy: f(5.25)},
			wantOK:      true,
			wantHeading: 90,
			wantHint:    "±5.2°",
		},
		{
			name:   "platform event without heading discarded",
			event:  PlatformCompassReading{Timestamp: now, Source: "imu0", Accuracy: f(5)},
			wantOK: false,
		},
		{
			name:        "orientation alpha used best-effort",
			event:       OrientationReading{Timestamp: now, Source: "phone", Alpha: f(200)},
			wantOK:      true,
			wantHeading: 200,
		},
		{
			name:        "orientation absolute flag becomes hint",
			event:       OrientationReading{Timestamp: now, Source: "phone", Alpha: f(10), Absolute: true},
			wantOK:      true,
			wantHeading: 10,
			wantHint:    "absolute",
		},
		{
			name:   "orientation event without alpha discarded",
			event:  OrientationReading{Timestamp: now, Source: "phone", Absolute: true},
			wantOK: false,
		},
		{
			name:        "out of range heading normalized",
			event:       PlatformCompassReading{Timestamp: now, Source: "imu0", CompassHeading: f(400)},
			wantOK:      true,
			wantHeading: 40,
		},
		{
			name:        "pointer drag while held",
			event:       PointerDragReading{Timestamp: now, Source: "sim", X: 150, Y: 100, CenterX: 100, CenterY: 100, Active: true},
			wantOK:      true,
			wantHeading: 90,
			wantHint:    "simulated",
			wantSim:     true,
		},
		{
			name:        "pointer release processed",
			event:       PointerDragReading{Timestamp: now, Source: "sim", X: 100, Y: 150, CenterX: 100, CenterY: 100, Released: true},
			wantOK:      true,
			wantHeading: 180,
			wantHint:    "simulated",
			wantSim:     true,
		},
		{
			name:   "pointer hover without button discarded",
			event:  PointerDragReading{Timestamp: now, Source: "sim", X: 150, Y: 100, CenterX: 100, CenterY: 100},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, ok := NormalizeEvent(tt.event)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeEvent ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(update.Heading-tt.wantHeading) > 1e-9 {
				t.Errorf("Heading = %v, want %v", update.Heading, tt.wantHeading)
			}
			if update.AccuracyHint != tt.wantHint {
				t.Errorf("AccuracyHint = %q, want %q", update.AccuracyHint, tt.wantHint)
			}
			if update.Simulated != tt.wantSim {
				t.Errorf("Simulated = %v, want %v", update.Simulated, tt.wantSim)
			}
			if !update.Timestamp.Equal(now) {
				t.Errorf("Timestamp not carried through")
			}
		})
	}
}

func TestThrottle(t *testing.T) {
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	th := NewThrottle()

	if !th.Allow(base) {
		t.Fatal("first event must be accepted")
	}
	if th.Allow(base.Add(10 * time.Millisecond)) {
		t.Error("event inside 15ms window must be dropped")
	}
	if th.Allow(base.Add(14 * time.Millisecond)) {
		t.Error("event at 14ms must be dropped")
	}
	if !th.Allow(base.Add(15 * time.Millisecond)) {
		t.Error("event at 15ms must be accepted")
	}
	// Dropped events must not reset the window.
	if !th.Allow(base.Add(31 * time.Millisecond)) {
		t.Error("event 16ms after last accepted must be accepted")
	}
}
