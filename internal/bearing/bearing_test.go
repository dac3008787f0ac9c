package bearing

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"zero", 0, 0},
		{"in range", 123.4, 123.4},
		{"exactly 360", 360, 0},
		{"over range", 400, 40},
		{"multiple wraps", 1085, 5},
		{"negative", -90, 270},
		{"large negative", -725, 355},
		{"NaN", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 0},
		{"negative infinity", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Normalize(%v) = %v, want %v", tt.input, got, tt.expected)
			}
			if got < 0 || got >= 360 {
				t.Errorf("Normalize(%v) = %v, outside [0,360)", tt.input, got)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for h := -1080.0; h <= 1080.0; h += 7.3 {
		once := Normalize(h)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent at %v: %v != %v", h, once, twice)
		}
	}
}

func TestShortestSignedDiff(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"no rotation", 10, 10, 0},
		{"small clockwise", 10, 14, 4},
		{"small counterclockwise", 14, 10, -4},
		{"across north clockwise", 350, 10, 20},
		{"across north counterclockwise", 10, 350, -20},
		{"opposite is positive", 0, 180, 180},
		{"opposite reversed is positive", 90, 270, 180},
		{"unnormalized inputs", -10, 370, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortestSignedDiff(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ShortestSignedDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestShortestSignedDiffProperties(t *testing.T) {
	for a := 0.0; a < 360.0; a += 17.0 {
		for b := 0.0; b < 360.0; b += 13.0 {
			d := ShortestSignedDiff(a, b)
			if d <= -180 || d > 180 {
				t.Fatalf("ShortestSignedDiff(%v, %v) = %v, outside (-180,180]", a, b, d)
			}
			// Rotating a by the diff must land on b, modulo 360.
			landed := Normalize(a + d)
			if math.Abs(ShortestSignedDiff(landed, b)) > 1e-9 {
				t.Fatalf("a + diff did not land on b: a=%v b=%v diff=%v landed=%v", a, b, d, landed)
			}
		}
	}
}

func TestCardinal16(t *testing.T) {
	tests := []struct {
		heading  float64
		expected string
	}{
		{0, "N"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{360, "N"},
		{11.2, "N"},
		{11.3, "NNE"},
		{22.5, "NNE"},
		{45, "NE"},
		{348.7, "NNW"},
		{348.8, "N"},
		{-45, "NW"},
	}

	for _, tt := range tests {
		got := Cardinal16(tt.heading)
		if got != tt.expected {
			t.Errorf("Cardinal16(%v) = %q, want %q", tt.heading, got, tt.expected)
		}
	}
}

func TestToMils(t *testing.T) {
	tests := []struct {
		heading  float64
		expected int
	}{
		{0, 0},
		{90, 1600},
		{180, 3200},
		{270, 4800},
		{45, 800},
		{1, 18},
	}

	for _, tt := range tests {
		got := ToMils(tt.heading)
		if got != tt.expected {
			t.Errorf("ToMils(%v) = %d, want %d", tt.heading, got, tt.expected)
		}
	}
}

func TestPointerHeading(t *testing.T) {
	tests := []struct {
		name     string
		x, y     float64
		expected float64
	}{
		{"straight up", 100, 50, 0},
		{"right", 150, 100, 90},
		{"down", 100, 150, 180},
		{"left", 50, 100, 270},
		{"upper right diagonal", 150, 50, 45},
	}

	const cx, cy = 100.0, 100.0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointerHeading(tt.x, tt.y, cx, cy)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("PointerHeading(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}
