// Package main evaluates an ORB_SLAM3 trajectory against ground truth from the command line.
package main

import (
	"context"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.viam.com/utils"

	orbslam3eval "github.com/viamrobotics/orbslam3-eval"
)

func main() {
	utils.ContextualMain(mainWithArgs, golog.NewLogger("evaluateTrajectory"))
}

type options struct {
	req orbslam3eval.Request
	cfg orbslam3eval.Config
}

// parseArgs reads the command line. Settings come from the defaults, then the optional config
// file, then the flags actually given.
func parseArgs(args []string, logger golog.Logger) (options, error) {
	var (
		opts       options
		configPath string
		noAlign    bool
	)
	defaults := orbslam3eval.DefaultConfig()

	fs := flag.NewFlagSet(filepath.Base(args[0]), flag.ContinueOnError)
	fs.StringVarP(&opts.req.EstimatedPath, "estimated", "e", "", "estimated trajectory file (TUM format)")
	fs.StringVarP(&opts.req.GroundTruthPath, "groundtruth", "g", "", "ground truth trajectory file (TUM format)")
	fs.StringVarP(&opts.req.OutputDir, "output", "o", "", "output directory for results")
	fs.StringVarP(&configPath, "config", "c", "", "yaml evaluation config")
	fs.BoolVar(&noAlign, "no-align", false, "disable trajectory alignment")
	forceManual := fs.Bool("force-manual", false, "use manual evaluation even if evo is available")
	maxTimeDiff := fs.Float64("max-time-diff", defaults.MaxTimeDiff, "largest timestamp gap, in seconds, accepted as a match")
	delta := fs.Int("delta", defaults.RPEDelta, "relative pose error frame delta")
	plot := fs.Bool("plot", false, "save trajectory plots")
	saveAligned := fs.Bool("save-aligned", false, "save the aligned estimate")
	if err := fs.Parse(args[1:]); err != nil {
		return opts, err
	}

	if opts.req.EstimatedPath == "" {
		return opts, errors.New("--estimated is required")
	}
	if opts.req.OutputDir == "" {
		return opts, errors.New("--output is required")
	}

	opts.cfg = defaults
	if configPath != "" {
		cfg, err := orbslam3eval.LoadConfig(configPath, logger)
		if err != nil {
			return opts, err
		}
		opts.cfg = cfg
	}
	if fs.Changed("no-align") {
		opts.cfg.Align = !noAlign
	}
	if fs.Changed("force-manual") {
		opts.cfg.ForceManual = *forceManual
	}
	if fs.Changed("max-time-diff") {
		opts.cfg.MaxTimeDiff = *maxTimeDiff
	}
	if fs.Changed("delta") {
		opts.cfg.RPEDelta = *delta
	}
	if fs.Changed("plot") {
		opts.cfg.Plot = *plot
	}
	if fs.Changed("save-aligned") {
		opts.cfg.SaveAligned = *saveAligned
	}
	return opts, opts.cfg.Validate()
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	opts, err := parseArgs(args, logger)
	if err != nil {
		return err
	}

	res, err := orbslam3eval.Run(ctx, opts.cfg, opts.req, logger)
	if err != nil {
		return err
	}
	if res.ATE != nil {
		logger.Infow("ATE", "rmse", res.ATE.RMSE, "mean", res.ATE.Mean, "std", res.ATE.Std)
	}
	if res.RPE != nil {
		logger.Infow("RPE", "rmse", res.RPE.RMSE, "mean", res.RPE.Mean, "std", res.RPE.Std)
	}
	if res.Stats != nil {
		logger.Infow("trajectory statistics",
			"poses", res.Stats.Poses, "length", res.Stats.Length, "duration", res.Stats.Duration)
	}
	return nil
}
