package compass

import (
	"math"

	"github.com/compasskit/compassd/internal/bearing"
	"gonum.org/v1/gonum/stat"
)

// LogStats summarizes the headings currently in the observation log.
type LogStats struct {
	Count        int     `json:"count"`
	MeanHeading  float64 `json:"meanHeading"`
	MeanCardinal string  `json:"meanCardinal"`
	Spread       float64 `json:"spread"`
}

// LogStats computes the circular mean of the logged headings and the
// standard deviation of the shortest-arc deviations around it. A plain
// arithmetic mean would average 359° and 1° to 180°; the circular mean
// puts it at 0°.
func (e *Engine) LogStats() LogStats {
	entries := e.LogEntries()
	if len(entries) == 0 {
		return LogStats{}
	}

	radians := make([]float64, len(entries))
	for i, sample := range entries {
		radians[i] = sample.Heading * math.Pi / 180.0
	}

	mean := bearing.Normalize(stat.CircularMean(radians, nil) * 180.0 / math.Pi)

	deviations := make([]float64, len(entries))
	for i, sample := range entries {
		deviations[i] = bearing.ShortestSignedDiff(mean, sample.Heading)
	}

	spread := 0.0
	if len(entries) > 1 {
		spread = stat.StdDev(deviations, nil)
	}

	return LogStats{
		Count:        len(entries),
		MeanHeading:  mean,
		MeanCardinal: bearing.Cardinal16(mean),
		Spread:       spread,
	}
}
