package metrics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrorStats summarizes a vector of error magnitudes in meters.
type ErrorStats struct {
	RMSE float64
	Mean float64
	Std  float64
}

// Summarize reduces errs to its root mean square, arithmetic mean and population standard deviation.
func Summarize(errs []float64) ErrorStats {
	if len(errs) == 0 {
		return ErrorStats{}
	}
	mean, std := stat.PopMeanStdDev(errs, nil)
	return ErrorStats{
		RMSE: math.Sqrt(floats.Dot(errs, errs) / float64(len(errs))),
		Mean: mean,
		Std:  std,
	}
}

// AbsoluteErrors returns the distance between every transformed estimated position and its
// ground-truth counterpart.
func AbsoluteErrors(c Correspondences, t Similarity) []float64 {
	errs := make([]float64, c.Len())
	for i, est := range c.Estimated {
		errs[i] = t.Apply(est).Distance(c.GroundTruth[i])
	}
	return errs
}

// ATE computes the absolute trajectory error of c under t. At least MinCorrespondences pairs are required.
func ATE(c Correspondences, t Similarity) (ErrorStats, error) {
	if c.Len() < MinCorrespondences {
		return ErrorStats{}, errors.Wrapf(ErrInsufficientCorrespondences, "ATE needs %d correspondences, have %d",
			MinCorrespondences, c.Len())
	}
	return Summarize(AbsoluteErrors(c, t)), nil
}

// RelativeErrors returns, for every index i with i+delta in range, the distance between the
// displacement over delta frames in the transformed estimate and in the ground truth. The same
// global transform is used for every window; nothing is re-aligned locally.
func RelativeErrors(c Correspondences, t Similarity, delta int) []float64 {
	n := c.Len() - delta
	if delta < 1 || n <= 0 {
		return nil
	}
	errs := make([]float64, n)
	for i := 0; i < n; i++ {
		estRel := t.Apply(c.Estimated[i+delta]).Sub(t.Apply(c.Estimated[i]))
		gtRel := c.GroundTruth[i+delta].Sub(c.GroundTruth[i])
		errs[i] = estRel.Sub(gtRel).Norm()
	}
	return errs
}

// RPE computes the translational relative pose error of c under t for a frame delta.
func RPE(c Correspondences, t Similarity, delta int) (ErrorStats, error) {
	if delta < 1 {
		return ErrorStats{}, errors.Wrapf(ErrInvalidDelta, "got %d", delta)
	}
	if c.Len() < delta+1 {
		return ErrorStats{}, errors.Wrapf(ErrInsufficientCorrespondences, "RPE with delta %d needs %d correspondences, have %d",
			delta, delta+1, c.Len())
	}
	return Summarize(RelativeErrors(c, t, delta)), nil
}
