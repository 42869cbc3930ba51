package orbslam3eval

import (
	"context"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/viamrobotics/orbslam3-eval/plotting"
	"github.com/viamrobotics/orbslam3-eval/trajectory"
)

const (
	// AlignedFileName is the TUM file the aligned estimate is saved to when requested.
	AlignedFileName = "aligned_estimate.txt"
	plotPrefix      = "trajectory"
)

// Run performs a complete evaluation: it validates the inputs, picks an evaluator, evaluates and
// saves the report, plus the aligned estimate and plots when cfg asks for them. Only a missing
// estimate, an invalid configuration or a failed evaluation are errors; a missing ground truth
// downgrades the run to trajectory statistics.
func Run(ctx context.Context, cfg Config, req Request, logger golog.Logger) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "orbslam3eval::Run")
	defer span.End()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid evaluation config")
	}
	if _, err := os.Stat(req.EstimatedPath); err != nil {
		return nil, errors.Wrapf(ErrEstimateMissing, "%v", req.EstimatedPath)
	}
	if req.GroundTruthPath != "" {
		if _, err := os.Stat(req.GroundTruthPath); err != nil {
			logger.Warnw("ground truth not found", "path", req.GroundTruthPath)
			req.GroundTruthPath = ""
		}
	}

	evaluator := NewEvaluator(ctx, cfg, req, logger)
	res, err := evaluator.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	reportPath, err := SaveReport(req.OutputDir, req, res)
	if err != nil {
		return res, err
	}
	logger.Infow("results saved", "path", reportPath)

	if cfg.SaveAligned && res.Alignment == nil {
		logger.Warnw("no alignment to save; the aligned estimate is only produced by manual evaluation with ground truth",
			"evaluator", res.Evaluator)
	}
	if cfg.SaveAligned && res.Alignment != nil {
		alignedPath := filepath.Join(req.OutputDir, AlignedFileName)
		if err := trajectory.WriteFile(alignedPath, res.AlignedEstimate()); err != nil {
			return res, err
		}
		logger.Infow("aligned estimate saved", "path", alignedPath)
	}
	if cfg.Plot {
		paths, err := savePlots(req.OutputDir, res)
		if err != nil {
			logger.Warnw("unable to plot trajectories", "error", err)
		} else {
			logger.Infow("plots saved", "paths", paths)
		}
	}
	return res, nil
}

func savePlots(dir string, res *Result) ([]string, error) {
	if res.Alignment != nil {
		return plotting.SaveTrajectoryPlots(dir, plotPrefix,
			plotting.Series{Name: "Estimate (aligned)", Points: res.AlignedEstimate().Positions()},
			plotting.Series{Name: "Ground truth", Points: res.Correspondences.GroundTruth},
		)
	}
	return plotting.SaveTrajectoryPlots(dir, plotPrefix,
		plotting.Series{Name: "Estimate", Points: res.Estimated.Positions()},
	)
}
