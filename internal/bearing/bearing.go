// Package bearing provides compass angle arithmetic: normalization,
// shortest-arc differences, cardinal labels, and unit conversion.
// All functions are total; out-of-range and non-finite input degrades
// to a defined fallback rather than an error.
package bearing

import "math"

// cardinals holds the 16-point compass rose, one label per 22.5° sector.
var cardinals = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// Normalize maps any heading in degrees to [0, 360). Non-finite input
// normalizes to 0.
func Normalize(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return math.Mod(math.Mod(h, 360)+360, 360)
}

// ShortestSignedDiff returns the signed delta in (-180, 180] representing
// the minimal rotation from a to b. A positive result rotates clockwise.
func ShortestSignedDiff(a, b float64) float64 {
	d := math.Mod(Normalize(b)-Normalize(a)+540, 360) - 180
	if d == -180 {
		return 180
	}
	return d
}

// Cardinal16 returns the 16-point compass label for a heading. Sectors
// are 22.5° wide and centered on each compass point, so 11.24° is still
// "N" and 11.26° is "NNE".
func Cardinal16(h float64) string {
	idx := int(math.Round(Normalize(h)/22.5)) % 16
	return cardinals[idx]
}

// ToMils converts a heading in degrees to NATO mils (6400 per circle),
// rounded to the nearest mil.
func ToMils(h float64) int {
	return int(math.Round(Normalize(h) / 360.0 * 6400.0))
}

// PointerHeading computes the heading of a pointer position relative to
// the compass widget center: straight up is 0°, increasing clockwise.
func PointerHeading(x, y, cx, cy float64) float64 {
	dx := x - cx
	dy := y - cy
	return Normalize(math.Atan2(dx, -dy) * 180.0 / math.Pi)
}
