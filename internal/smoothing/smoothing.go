// Package smoothing implements the exponential moving-angle filter that
// advances the displayed needle angle toward a target heading along the
// shortest arc.
package smoothing

import (
	"github.com/compasskit/compassd/internal/bearing"
)

// DefaultAlpha is the fraction of the remaining angular gap closed per
// update. Smaller values give a smoother, slower needle.
const DefaultAlpha = 0.12

// Smoother tracks the displayed angle. It is the sole owner of that
// value: callers advance it with new targets and read it back, never
// write it directly.
type Smoother struct {
	alpha  float64
	angle  float64
	seeded bool
}

// New creates a Smoother with the given coefficient. Values outside
// (0,1) fall back to DefaultAlpha.
func New(alpha float64) *Smoother {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	return &Smoother{alpha: alpha}
}

// Advance moves the displayed angle toward target along the shortest
// arc and returns the new displayed angle. The first call seeds the
// angle directly so there is no transient swing on startup.
func (s *Smoother) Advance(target float64) float64 {
	t := bearing.Normalize(target)
	if !s.seeded {
		s.angle = t
		s.seeded = true
		return s.angle
	}
	diff := bearing.ShortestSignedDiff(s.angle, t)
	s.angle = bearing.Normalize(s.angle + diff*s.alpha)
	return s.angle
}

// Seed sets the displayed angle directly, bypassing smoothing. Used when
// re-seeding from a pinned history entry or a restored snapshot.
func (s *Smoother) Seed(angle float64) {
	s.angle = bearing.Normalize(angle)
	s.seeded = true
}

// Angle returns the current displayed angle and whether it has been
// initialized by at least one sample.
func (s *Smoother) Angle() (float64, bool) {
	return s.angle, s.seeded
}
