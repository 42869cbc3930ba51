package orbslam3eval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/viamrobotics/orbslam3-eval/metrics"
)

// ReportFileName is the name of the text report written into the output directory.
const ReportFileName = "evaluation_results.txt"

var rule = strings.Repeat("=", 50)

// WriteReport renders res as the human readable evaluation report. Metrics that were unavailable
// get no section.
func WriteReport(w io.Writer, req Request, res *Result) error {
	bw := bufio.NewWriter(w)
	groundTruth := req.GroundTruthPath
	if groundTruth == "" {
		groundTruth = "None"
	}
	fmt.Fprintf(bw, "Trajectory Evaluation Results\n%s\n\n", rule)
	fmt.Fprintf(bw, "Estimated trajectory: %s\n", req.EstimatedPath)
	fmt.Fprintf(bw, "Ground truth: %s\n", groundTruth)
	fmt.Fprintf(bw, "Evaluator: %s\n\n", res.Evaluator)

	if res.ATE != nil {
		writeErrorStats(bw, "ATE (Absolute Trajectory Error)", res.ATE)
	}
	if res.RPE != nil {
		writeErrorStats(bw, "RPE (Relative Pose Error)", res.RPE)
	}
	if res.Alignment != nil && res.Evaluator == manualEvaluatorName {
		fmt.Fprintf(bw, "Alignment:\n")
		fmt.Fprintf(bw, "  Matches:     %d\n", res.Matches)
		if res.Matches < metrics.MinCorrespondences {
			fmt.Fprintf(bw, "  Fewer than %d matches, identity transform used\n", metrics.MinCorrespondences)
		}
		fmt.Fprintf(bw, "  Scale:       %.4f\n", res.Alignment.Scale)
		t := res.Alignment.Translation
		fmt.Fprintf(bw, "  Translation: %.4f %.4f %.4f m\n", t.X, t.Y, t.Z)
		fmt.Fprintf(bw, "  Rotation:    %.1f deg (not corrected)\n\n", res.FrameRotation.Degrees())
	}
	if s := res.Stats; s != nil {
		fmt.Fprintf(bw, "Trajectory Statistics:\n")
		fmt.Fprintf(bw, "  Poses:    %d\n", s.Poses)
		fmt.Fprintf(bw, "  Length:   %.3f m\n", s.Length)
		fmt.Fprintf(bw, "  Duration: %.2f s\n", s.Duration)
	}
	if len(res.ExternalOutput) > 0 {
		keys := make([]string, 0, len(res.ExternalOutput))
		for k := range res.ExternalOutput {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(bw, "%s Results (%s):\n%s\n", strings.ToUpper(k), res.Evaluator, res.ExternalOutput[k])
		}
	}
	return errors.Wrap(bw.Flush(), "error writing report")
}

func writeErrorStats(w io.Writer, title string, stats *metrics.ErrorStats) {
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "  RMSE: %.4f m\n", stats.RMSE)
	fmt.Fprintf(w, "  Mean: %.4f m\n", stats.Mean)
	fmt.Fprintf(w, "  Std:  %.4f m\n\n", stats.Std)
}

// SaveReport writes the report for res into dir and returns the file path.
func SaveReport(dir string, req Request, res *Result) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Wrapf(err, "error creating output directory %v", dir)
	}
	path := filepath.Join(dir, ReportFileName)
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "error creating report")
	}
	if err := WriteReport(f, req, res); err != nil {
		goutils.UncheckedError(f.Close())
		return "", err
	}
	return path, f.Close()
}
