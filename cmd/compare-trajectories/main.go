// Package main compares the trajectories of ORB_SLAM3 runs over the same sequence, e.g. raw
// against preprocessed images.
package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.viam.com/utils"

	orbslam3eval "github.com/viamrobotics/orbslam3-eval"
	"github.com/viamrobotics/orbslam3-eval/plotting"
	"github.com/viamrobotics/orbslam3-eval/trajectory"
)

const (
	comparisonFileName = "comparison.txt"
	chartFileName      = "comparison_metrics.png"
	plotPrefix         = "comparison"
)

func main() {
	utils.ContextualMain(mainWithArgs, golog.NewLogger("compareTrajectories"))
}

type run struct {
	name, path string
}

type options struct {
	runs   []run
	output string
	plot   bool
}

func parseArgs(args []string) (options, error) {
	var (
		opts                        options
		baseline, candidate         string
		baselineName, candidateName string
		runFlags                    []string
	)
	fs := flag.NewFlagSet(filepath.Base(args[0]), flag.ContinueOnError)
	fs.StringVarP(&baseline, "baseline", "b", "", "baseline trajectory file (TUM format)")
	fs.StringVarP(&candidate, "candidate", "c", "", "candidate trajectory file (TUM format)")
	fs.StringVar(&baselineName, "baseline-name", "Raw", "label of the baseline run")
	fs.StringVar(&candidateName, "candidate-name", "CLAHE", "label of the candidate run")
	fs.StringArrayVarP(&runFlags, "run", "r", nil, "run as name=path, repeated; the first one is the baseline")
	fs.StringVarP(&opts.output, "output", "o", "", "directory for the comparison and plots; printed only when empty")
	fs.BoolVar(&opts.plot, "plot", false, "save trajectory plots and a metrics chart into the output directory")
	if err := fs.Parse(args[1:]); err != nil {
		return opts, err
	}

	switch {
	case len(runFlags) > 0 && (baseline != "" || candidate != ""):
		return opts, errors.New("use either --run or --baseline/--candidate")
	case len(runFlags) > 0:
		for _, r := range runFlags {
			name, path, ok := strings.Cut(r, "=")
			if !ok || name == "" || path == "" {
				return opts, errors.Errorf("--run %q is not name=path", r)
			}
			opts.runs = append(opts.runs, run{name: name, path: path})
		}
		if len(opts.runs) < 2 {
			return opts, errors.New("at least two --run values are needed")
		}
	case baseline == "" || candidate == "":
		return opts, errors.New("--baseline and --candidate are required")
	default:
		opts.runs = []run{{baselineName, baseline}, {candidateName, candidate}}
	}
	if opts.plot && opts.output == "" {
		return opts, errors.New("--plot needs --output")
	}
	return opts, nil
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	runs := make([]orbslam3eval.NamedTrajectory, 0, len(opts.runs))
	for _, r := range opts.runs {
		parsed := trajectory.Load(r.path, logger)
		logger.Infow("loaded trajectory", "run", r.name, "poses", len(parsed.Trajectory), "skipped_lines", parsed.Skipped)
		runs = append(runs, orbslam3eval.NamedTrajectory{Name: r.name, Trajectory: parsed.Trajectory})
	}

	var render func(io.Writer) error
	if len(runs) == 2 {
		cmp := orbslam3eval.Compare(runs[0], runs[1])
		render = func(w io.Writer) error { return orbslam3eval.WriteComparison(w, cmp) }
	} else {
		cmp := orbslam3eval.CompareAll(runs[0], runs[1:]...)
		render = func(w io.Writer) error { return orbslam3eval.WriteMultiComparison(w, cmp) }
	}

	if err := render(os.Stdout); err != nil {
		return err
	}
	if opts.output == "" {
		return nil
	}
	if err := saveComparison(opts.output, render); err != nil {
		return err
	}
	if opts.plot {
		return savePlots(opts.output, orbslam3eval.CompareAll(runs[0], runs[1:]...), runs, logger)
	}
	return nil
}

func saveComparison(dir string, render func(io.Writer) error) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrap(err, "error creating output directory")
	}
	//nolint:gosec
	f, err := os.Create(filepath.Join(dir, comparisonFileName))
	if err != nil {
		return errors.Wrap(err, "error creating comparison file")
	}
	if err := render(f); err != nil {
		utils.UncheckedError(f.Close())
		return err
	}
	return f.Close()
}

func savePlots(dir string, cmp orbslam3eval.MultiComparison, runs []orbslam3eval.NamedTrajectory, logger golog.Logger) error {
	series := make([]plotting.Series, 0, len(runs))
	for _, r := range runs {
		series = append(series, plotting.Series{Name: r.Name, Points: r.Trajectory.Positions()})
	}
	paths, err := plotting.SaveTrajectoryPlots(dir, plotPrefix, series...)
	if err != nil {
		return err
	}

	chart := filepath.Join(dir, chartFileName)
	summaries := cmp.Runs()
	groups := make([]plotting.BarGroup, 0, len(summaries))
	for _, s := range summaries {
		groups = append(groups, plotting.BarGroup{
			Name:   s.Name,
			Values: []float64{float64(s.Stats.Poses), s.Stats.Duration, s.Stats.Length, s.Rate},
		})
	}
	if err := plotting.SaveBarChart(chart, "Performance Metrics",
		[]string{"Keyframes", "Duration (s)", "Length (m)", "Rate (kf/s)"}, groups...); err != nil {
		return err
	}
	logger.Infow("plots saved", "paths", append(paths, chart))
	return nil
}
