package metrics

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/pkg/errors"
)

// MinCorrespondences is the fewest matched pairs the absolute error is computed from.
const MinCorrespondences = 3

var (
	// ErrInsufficientCorrespondences is returned when too few pairs were matched for a metric.
	ErrInsufficientCorrespondences = errors.New("insufficient correspondences")
	// ErrInvalidDelta is returned for a relative error frame delta below 1.
	ErrInvalidDelta = errors.New("frame delta must be at least 1")
)

// Similarity maps an estimated position onto the ground-truth frame with a uniform scale
// followed by a translation. It has no rotation.
type Similarity struct {
	Scale       float64
	Translation r3.Vector
}

// Identity is the similarity that leaves positions unchanged.
func Identity() Similarity {
	return Similarity{Scale: 1}
}

// Apply returns Scale*p + Translation.
func (s Similarity) Apply(p r3.Vector) r3.Vector {
	return p.Mul(s.Scale).Add(s.Translation)
}

// Align computes the least-squares scale and translation mapping the estimated positions onto
// the ground-truth ones, assuming both are already co-oriented. The scale is the ratio of the RMS
// spread of each set about its centroid (1 when the estimate has no spread); the translation
// then matches the centroids after scaling.
func Align(c Correspondences) (Similarity, error) {
	n := c.Len()
	if n == 0 || n != len(c.GroundTruth) {
		return Similarity{}, errors.Wrapf(ErrInsufficientCorrespondences, "cannot align %d estimated to %d ground truth positions",
			n, len(c.GroundTruth))
	}
	estMean := centroid(c.Estimated)
	gtMean := centroid(c.GroundTruth)

	estSpread := rmsSpread(c.Estimated, estMean)
	gtSpread := rmsSpread(c.GroundTruth, gtMean)

	scale := 1.0
	if estSpread != 0 {
		scale = gtSpread / estSpread
	}
	return Similarity{
		Scale:       scale,
		Translation: gtMean.Sub(estMean.Mul(scale)),
	}, nil
}

func centroid(points []r3.Vector) r3.Vector {
	var sum r3.Vector
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

func rmsSpread(points []r3.Vector, mean r3.Vector) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Sub(mean).Norm2()
	}
	return math.Sqrt(sum / float64(len(points)))
}

// FrameRotation estimates how far the estimated frame is rotated from the ground-truth frame as
// the mean angle between corresponding centered positions. Align ignores rotation, so a large
// value means its result, and every error derived from it, is not trustworthy.
func FrameRotation(c Correspondences) s1.Angle {
	n := c.Len()
	if n == 0 || n != len(c.GroundTruth) {
		return 0
	}
	estMean := centroid(c.Estimated)
	gtMean := centroid(c.GroundTruth)

	var sum s1.Angle
	var counted int
	for i := range c.Estimated {
		e := c.Estimated[i].Sub(estMean)
		g := c.GroundTruth[i].Sub(gtMean)
		if e.Norm2() == 0 || g.Norm2() == 0 {
			continue
		}
		sum += e.Angle(g)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / s1.Angle(counted)
}
