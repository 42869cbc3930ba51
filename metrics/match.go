// Package metrics computes trajectory accuracy metrics: timestamp correspondences, a
// scale and translation alignment, and the absolute and relative error statistics built on them.
package metrics

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/viamrobotics/orbslam3-eval/trajectory"
)

// DefaultMaxTimeDiff is the largest time gap, in seconds, accepted between matched samples.
const DefaultMaxTimeDiff = 0.1

// Correspondences are index-aligned estimated and ground-truth positions. Times holds the
// timestamp of each estimated sample.
type Correspondences struct {
	Times       []float64
	Estimated   []r3.Vector
	GroundTruth []r3.Vector
}

// Len returns the number of matched pairs.
func (c Correspondences) Len() int {
	return len(c.Estimated)
}

// Match pairs every estimated pose with the ground-truth pose closest in time. A pair is kept only
// when the gap is strictly below maxTimeDiff; unmatched estimated poses are dropped. Ties go to
// the first ground-truth pose. There is no interpolation.
func Match(est, gt trajectory.Trajectory, maxTimeDiff float64) Correspondences {
	var c Correspondences
	if len(gt) == 0 {
		return c
	}
	for _, e := range est {
		best := -1
		bestDiff := math.Inf(1)
		for j, g := range gt {
			if d := math.Abs(g.Time - e.Time); d < bestDiff {
				best, bestDiff = j, d
			}
		}
		if best < 0 || !(bestDiff < maxTimeDiff) {
			continue
		}
		c.Times = append(c.Times, e.Time)
		c.Estimated = append(c.Estimated, e.Position)
		c.GroundTruth = append(c.GroundTruth, gt[best].Position)
	}
	return c
}
