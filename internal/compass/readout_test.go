package compass

import (
	"testing"

	"github.com/compasskit/compassd/internal/types"
	"github.com/compasskit/compassd/pkg/config"
	"go.uber.org/zap"
)

func TestEffectiveHeading(t *testing.T) {
	tests := []struct {
		name         string
		raw          float64
		declination  float64
		useTrueNorth bool
		want         float64
	}{
		{"correction off ignores declination", 100, 13, false, 100},
		{"positive declination", 100, 13, true, 113},
		{"negative declination", 100, -13, true, 87},
		{"wraps past north", 355, 10, true, 5},
		{"wraps below zero", 2, -10, true, 352},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveHeading(tt.raw, tt.declination, tt.useTrueNorth); got != tt.want {
				t.Errorf("EffectiveHeading(%v, %v, %v) = %v, want %v", tt.raw, tt.declination, tt.useTrueNorth, got, tt.want)
			}
		})
	}
}

func TestFormatHeading(t *testing.T) {
	tests := []struct {
		units string
		h     float64
		want  string
	}{
		{types.UnitsDegrees, 0, "0°"},
		{types.UnitsDegrees, 89.6, "90°"},
		{types.UnitsDegrees, 359.7, "360°"},
		{types.UnitsMils, 90, "1600 mil"},
		{types.UnitsMils, 360, "0 mil"},
	}

	for _, tt := range tests {
		if got := FormatHeading(tt.units, tt.h); got != tt.want {
			t.Errorf("FormatHeading(%q, %v) = %q, want %q", tt.units, tt.h, got, tt.want)
		}
	}
}

func TestReadoutBeforeFirstSample(t *testing.T) {
	e := NewEngine(config.CompassData{TickDensity: 12}, nil, nil, zap.NewNop().Sugar())

	r := e.Readout()
	if r.Heading != nil || r.RawHeading != nil {
		t.Errorf("headings should be nil before the first sample: %+v", r)
	}
	if r.Display != "" || r.Cardinal != "" {
		t.Errorf("display fields should be empty before the first sample: %+v", r)
	}
	if r.Mode != types.ModeMagnetic {
		t.Errorf("Mode = %q, want magnetic", r.Mode)
	}
	if r.TickDensity != 12 {
		t.Errorf("TickDensity = %d, want 12", r.TickDensity)
	}
}

func TestReadoutAccuracyHint(t *testing.T) {
	e := NewEngine(config.CompassData{}, nil, nil, zap.NewNop().Sugar())
	ev := heading(t0, 45)
	ev.Update.AccuracyHint = "±2.0°"
	e.Dispatch(ev)

	r := e.Readout()
	if r.AccuracyHint != "±2.0°" {
		t.Errorf("AccuracyHint = %q, want ±2.0°", r.AccuracyHint)
	}
	if r.Cardinal != "NE" {
		t.Errorf("Cardinal = %q, want NE", r.Cardinal)
	}
	if r.Display != "45°" {
		t.Errorf("Display = %q, want 45°", r.Display)
	}
}
