package orbslam3eval

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	goutils "go.viam.com/utils"
	"go.viam.com/utils/pexec"

	"github.com/viamrobotics/orbslam3-eval/trajectory"
)

const (
	externalEvaluatorName = "evo"
	// key under which the external evaluator output is stored, and prefix of its artifacts.
	ateKey = "ate"
	rpeKey = "rpe"
)

// Available reports whether executable can be started, by running it once with --help.
func Available(ctx context.Context, executable string, logger golog.Logger) bool {
	ctx, span := trace.StartSpan(ctx, "orbslam3eval::Available")
	defer span.End()

	probe := pexec.NewProcessManager(logger)
	defer goutils.UncheckedErrorFunc(probe.Stop)

	if _, err := probe.AddProcessFromConfig(ctx, pexec.ProcessConfig{
		ID:      "probe_" + executable,
		Name:    executable,
		Args:    []string{"--help"},
		OneShot: true,
	}); err != nil {
		logger.Debugw("problem adding evaluator probe", "executable", executable, "error", err)
		return false
	}
	if err := probe.Start(ctx); err != nil {
		logger.Debugw("evaluator probe failed", "executable", executable, "error", err)
		return false
	}
	return true
}

// ExternalEvaluator delegates the metrics to the evo command line tools. The tools write their own
// result archives and plots into the output directory; their printed summaries are kept in the
// result and saved next to them.
type ExternalEvaluator struct {
	cfg    Config
	logger golog.Logger
}

// NewExternalEvaluator returns an evaluator running the executables named in cfg.
func NewExternalEvaluator(cfg Config, logger golog.Logger) *ExternalEvaluator {
	return &ExternalEvaluator{cfg: cfg, logger: logger}
}

// Name returns the evaluator name.
func (e *ExternalEvaluator) Name() string {
	return externalEvaluatorName
}

// GetAPEArgs returns the arguments for the absolute pose error run.
func (e *ExternalEvaluator) GetAPEArgs(req Request) []string {
	args := []string{
		"tum", req.GroundTruthPath, req.EstimatedPath,
		"--save_results", filepath.Join(req.OutputDir, ateKey+"_results.zip"),
		"--plot_mode", e.cfg.PlotMode,
		"--save_plot", filepath.Join(req.OutputDir, ateKey+"_plot.png"),
	}
	if e.cfg.Align {
		args = append(args, "--align")
	}
	return args
}

// GetRPEArgs returns the arguments for the relative pose error run, with the delta counted in frames.
func (e *ExternalEvaluator) GetRPEArgs(req Request) []string {
	args := []string{
		"tum", req.GroundTruthPath, req.EstimatedPath,
		"--save_results", filepath.Join(req.OutputDir, rpeKey+"_results.zip"),
		"--plot_mode", e.cfg.PlotMode,
		"--save_plot", filepath.Join(req.OutputDir, rpeKey+"_plot.png"),
		"--delta", strconv.Itoa(e.cfg.RPEDelta),
		"--delta_unit", "f",
	}
	if e.cfg.Align {
		args = append(args, "--align")
	}
	return args
}

// Evaluate runs the absolute and then the relative error tool. Any failure aborts the evaluation.
func (e *ExternalEvaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "orbslam3eval::ExternalEvaluator::Evaluate")
	defer span.End()

	if req.GroundTruthPath == "" {
		return nil, ErrNoGroundTruth
	}
	if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "error creating output directory %v", req.OutputDir)
	}

	// loaded for plotting; the metrics come from the tools.
	est := trajectory.Load(req.EstimatedPath, e.logger)
	res := &Result{
		Evaluator:      e.Name(),
		EstimatedPoses: len(est.Trajectory),
		SkippedLines:   est.Skipped,
		Estimated:      est.Trajectory,
		ExternalOutput: map[string]string{},
	}
	runs := []struct {
		key        string
		executable string
		args       []string
	}{
		{ateKey, e.cfg.APEExecutable, e.GetAPEArgs(req)},
		{rpeKey, e.cfg.RPEExecutable, e.GetRPEArgs(req)},
	}
	for _, run := range runs {
		out, err := e.run(ctx, run.key, run.executable, run.args)
		if err != nil {
			return nil, errors.Wrapf(err, "%v evaluation error", run.key)
		}
		e.logger.Infow("external evaluator finished", "metric", run.key, "output", out)
		res.ExternalOutput[run.key] = out

		outPath := filepath.Join(req.OutputDir, run.key+"_results.txt")
		if err := os.WriteFile(outPath, []byte(out), 0o600); err != nil {
			return nil, errors.Wrapf(err, "error saving %v output", run.key)
		}
	}
	return res, nil
}

// run executes one tool to completion through a one-shot managed process and returns what it
// printed, stdout and stderr combined.
func (e *ExternalEvaluator) run(ctx context.Context, key, executable string, args []string) (string, error) {
	e.logger.Debugw("running external evaluator", "executable", executable, "args", args)

	var out bytes.Buffer
	pm := pexec.NewProcessManager(e.logger)
	defer goutils.UncheckedErrorFunc(pm.Stop)

	if _, err := pm.AddProcessFromConfig(ctx, pexec.ProcessConfig{
		ID:        "evaluate_" + key,
		Name:      executable,
		Args:      args,
		OneShot:   true,
		LogWriter: &out,
	}); err != nil {
		return "", errors.Wrapf(err, "problem adding %v process", executable)
	}
	if err := pm.Start(ctx); err != nil {
		if out.Len() > 0 {
			return out.String(), errors.Wrapf(err, "%v: %s", executable, out.String())
		}
		return out.String(), errors.Wrap(err, executable)
	}
	return out.String(), nil
}
