// Package orbslam3eval evaluates ORB_SLAM3 trajectories against ground truth.
// It computes the absolute and relative trajectory errors itself, or delegates them to the
// evo package when it is installed.
package orbslam3eval

import (
	"context"
	"os"

	"github.com/edaniels/golog"
	"github.com/golang/geo/s1"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/viamrobotics/orbslam3-eval/metrics"
	"github.com/viamrobotics/orbslam3-eval/trajectory"
)

const manualEvaluatorName = "manual"

var (
	// ErrEstimateMissing is returned when the estimated trajectory file cannot be found.
	ErrEstimateMissing = errors.New("estimated trajectory not found")
	// ErrEmptyEstimate is returned when the estimated trajectory holds no poses.
	ErrEmptyEstimate = errors.New("no estimated trajectory data")
	// ErrNoGroundTruth is returned by evaluators that cannot run without ground truth.
	ErrNoGroundTruth = errors.New("ground truth trajectory required")
)

// Request names the inputs and output location of one evaluation. An empty GroundTruthPath
// asks for trajectory statistics only.
type Request struct {
	EstimatedPath   string
	GroundTruthPath string
	OutputDir       string
}

// Result holds everything one evaluation produced. ATE and RPE are nil when they could not be
// computed; Stats is set only when there was no ground truth to compare against.
type Result struct {
	Evaluator        string
	EstimatedPoses   int
	GroundTruthPoses int
	SkippedLines     int

	ATE   *metrics.ErrorStats
	RPE   *metrics.ErrorStats
	Stats *trajectory.Stats

	Matches         int
	Alignment       *metrics.Similarity
	FrameRotation   s1.Angle
	Correspondences metrics.Correspondences
	Estimated       trajectory.Trajectory

	// ExternalOutput maps a metric name to the text the external evaluator printed for it.
	ExternalOutput map[string]string
}

// AlignedEstimate returns the matched estimated trajectory mapped into the ground-truth frame.
func (r *Result) AlignedEstimate() trajectory.Trajectory {
	if r.Alignment == nil {
		return nil
	}
	c := r.Correspondences
	aligned := make(trajectory.Trajectory, c.Len())
	for i, p := range c.Estimated {
		aligned[i] = trajectory.Pose{Time: c.Times[i], Position: r.Alignment.Apply(p)}
	}
	return aligned
}

// Evaluator computes trajectory accuracy metrics for a request.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, req Request) (*Result, error)
}

// ManualEvaluator computes the metrics in process.
type ManualEvaluator struct {
	cfg    Config
	logger golog.Logger
}

// NewManualEvaluator returns an in process evaluator configured by cfg.
func NewManualEvaluator(cfg Config, logger golog.Logger) *ManualEvaluator {
	return &ManualEvaluator{cfg: cfg, logger: logger}
}

// Name returns the evaluator name.
func (m *ManualEvaluator) Name() string {
	return manualEvaluatorName
}

// Evaluate loads both trajectories, matches them by timestamp, aligns the estimate and computes
// ATE and RPE. A missing estimate is an error; a missing or empty ground truth reduces the result
// to trajectory statistics.
func (m *ManualEvaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	_, span := trace.StartSpan(ctx, "orbslam3eval::ManualEvaluator::Evaluate")
	defer span.End()

	if _, err := os.Stat(req.EstimatedPath); err != nil {
		return nil, errors.Wrapf(ErrEstimateMissing, "%v: %v", req.EstimatedPath, err)
	}
	est, err := trajectory.ReadFile(req.EstimatedPath)
	if err != nil {
		return nil, err
	}
	gt := &trajectory.ParseResult{}
	if req.GroundTruthPath != "" {
		gt = trajectory.Load(req.GroundTruthPath, m.logger)
	}
	m.logger.Infow("loaded trajectories",
		"estimated", len(est.Trajectory),
		"ground_truth", len(gt.Trajectory),
		"skipped_lines", est.Skipped+gt.Skipped)

	if len(est.Trajectory) == 0 {
		return nil, errors.Wrap(ErrEmptyEstimate, req.EstimatedPath)
	}

	res := &Result{
		Evaluator:        m.Name(),
		EstimatedPoses:   len(est.Trajectory),
		GroundTruthPoses: len(gt.Trajectory),
		SkippedLines:     est.Skipped + gt.Skipped,
		Estimated:        est.Trajectory,
	}
	if len(gt.Trajectory) == 0 {
		m.logger.Info("no ground truth provided, computing trajectory statistics only")
		stats := trajectory.ComputeStats(est.Trajectory)
		res.Stats = &stats
		return res, nil
	}

	c := metrics.Match(est.Trajectory, gt.Trajectory, m.cfg.MaxTimeDiff)
	res.Correspondences = c
	res.Matches = c.Len()
	m.logger.Debugw("matched trajectories", "matches", res.Matches, "max_time_diff", m.cfg.MaxTimeDiff)
	if res.Matches == 0 {
		m.logger.Warnw("no estimated pose is close enough in time to the ground truth",
			"max_time_diff", m.cfg.MaxTimeDiff)
		return res, nil
	}

	transform := metrics.Identity()
	switch {
	case !m.cfg.Align:
	case res.Matches < metrics.MinCorrespondences:
		m.logger.Warnw("too few correspondences to align, using the identity transform",
			"matches", res.Matches, "required", metrics.MinCorrespondences)
	default:
		if transform, err = metrics.Align(c); err != nil {
			return nil, err
		}
		res.FrameRotation = metrics.FrameRotation(c)
		if res.FrameRotation.Degrees() > m.cfg.RotationWarnDegrees {
			m.logger.Warnw("estimate looks rotated relative to ground truth; scale and translation alignment does not correct rotation",
				"rotation_degrees", res.FrameRotation.Degrees())
		}
	}
	res.Alignment = &transform

	if ate, err := metrics.ATE(c, transform); err != nil {
		m.logger.Infow("ATE unavailable", "error", err)
	} else {
		res.ATE = &ate
	}
	if rpe, err := metrics.RPE(c, transform, m.cfg.RPEDelta); err != nil {
		m.logger.Infow("RPE unavailable", "error", err)
	} else {
		res.RPE = &rpe
	}
	return res, nil
}

// FallbackEvaluator runs Primary and, if it fails, Secondary.
type FallbackEvaluator struct {
	Primary   Evaluator
	Secondary Evaluator
	logger    golog.Logger
}

// NewFallbackEvaluator returns an evaluator that falls back to secondary when primary fails.
func NewFallbackEvaluator(primary, secondary Evaluator, logger golog.Logger) *FallbackEvaluator {
	return &FallbackEvaluator{Primary: primary, Secondary: secondary, logger: logger}
}

// Name returns the name of the primary evaluator.
func (f *FallbackEvaluator) Name() string {
	return f.Primary.Name()
}

// Evaluate implements Evaluator.
func (f *FallbackEvaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "orbslam3eval::FallbackEvaluator::Evaluate")
	defer span.End()

	res, err := f.Primary.Evaluate(ctx, req)
	if err == nil {
		return res, nil
	}
	f.logger.Warnw("evaluator failed, falling back", "evaluator", f.Primary.Name(), "fallback", f.Secondary.Name(), "error", err)
	return f.Secondary.Evaluate(ctx, req)
}

// NewEvaluator picks the evaluator for req: the external one, backed by the manual one, when it
// is installed and there is ground truth to compare against; otherwise the manual one.
func NewEvaluator(ctx context.Context, cfg Config, req Request, logger golog.Logger) Evaluator {
	manual := NewManualEvaluator(cfg, logger)
	switch {
	case cfg.ForceManual:
		logger.Info("manual evaluation forced")
		return manual
	case req.GroundTruthPath == "":
		return manual
	case !Available(ctx, cfg.APEExecutable, logger):
		logger.Infow("external evaluator not found, using manual evaluation", "executable", cfg.APEExecutable)
		return manual
	}
	logger.Infow("using external evaluator", "executable", cfg.APEExecutable)
	return NewFallbackEvaluator(NewExternalEvaluator(cfg, logger), manual, logger)
}
