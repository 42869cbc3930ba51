package orbslam3eval

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/viamrobotics/orbslam3-eval/trajectory"
)

// NamedTrajectory is a trajectory labelled with the run that produced it, e.g. "Raw" or "CLAHE".
type NamedTrajectory struct {
	Name       string
	Trajectory trajectory.Trajectory
}

// RunSummary holds the ground-truth free statistics of one run.
type RunSummary struct {
	Name  string
	Stats trajectory.Stats
	Rate  float64 // keyframes per second
}

// Comparison contrasts two runs over the same sequence. Differences are Candidate minus Baseline.
type Comparison struct {
	Baseline  RunSummary
	Candidate RunSummary

	KeyframeDiff int
	DurationDiff float64
	LengthDiff   float64
}

func summarize(run NamedTrajectory) RunSummary {
	stats := trajectory.ComputeStats(run.Trajectory)
	return RunSummary{Name: run.Name, Stats: stats, Rate: stats.Rate()}
}

// Compare summarizes two runs and the difference between them.
func Compare(baseline, candidate NamedTrajectory) Comparison {
	b, c := summarize(baseline), summarize(candidate)
	return Comparison{
		Baseline:     b,
		Candidate:    c,
		KeyframeDiff: c.Stats.Poses - b.Stats.Poses,
		DurationDiff: c.Stats.Duration - b.Stats.Duration,
		LengthDiff:   c.Stats.Length - b.Stats.Length,
	}
}

// Analysis returns one sentence per statistic saying which run did better.
func (cmp Comparison) Analysis() []string {
	b, c := cmp.Baseline, cmp.Candidate
	var lines []string
	switch {
	case cmp.KeyframeDiff > 0:
		lines = append(lines, fmt.Sprintf("%s tracked %d MORE keyframes%s", c.Name, cmp.KeyframeDiff,
			relative(c.Stats.Poses, b.Stats.Poses, "improvement")))
	case cmp.KeyframeDiff < 0:
		lines = append(lines, fmt.Sprintf("%s tracked %d MORE keyframes%s", b.Name, -cmp.KeyframeDiff,
			relative(b.Stats.Poses, c.Stats.Poses, "better")))
	default:
		lines = append(lines, "Both runs tracked the same number of keyframes")
	}
	switch {
	case cmp.DurationDiff > 0:
		lines = append(lines, fmt.Sprintf("%s maintained tracking %.1fs LONGER", c.Name, cmp.DurationDiff))
	case cmp.DurationDiff < 0:
		lines = append(lines, fmt.Sprintf("%s maintained tracking %.1fs LONGER", b.Name, -cmp.DurationDiff))
	}
	return lines
}

func relative(more, less int, word string) string {
	if less == 0 {
		return ""
	}
	return fmt.Sprintf(" (%.1f%% %s)", (float64(more)/float64(less)-1)*100, word)
}

// WriteComparison renders cmp as a table followed by the analysis.
func WriteComparison(w io.Writer, cmp Comparison) error {
	bw := bufio.NewWriter(w)
	b, c := cmp.Baseline, cmp.Candidate
	wide := strings.Repeat("=", 65)

	fmt.Fprintf(bw, "%s\n       COMPARISON: %s vs %s\n%s\n\n", wide, b.Name, c.Name, wide)
	fmt.Fprintf(bw, "%-30s %-15s %-15s %-15s\n", "Metric", b.Name, c.Name, "Diff")
	fmt.Fprintf(bw, "%s\n", strings.Repeat("-", 65))
	fmt.Fprintf(bw, "%-30s %-15d %-15d %+d\n", "Keyframes Tracked", b.Stats.Poses, c.Stats.Poses, cmp.KeyframeDiff)
	fmt.Fprintf(bw, "%-30s %-15.1f %-15.1f %+.1f\n", "Tracking Duration (s)", b.Stats.Duration, c.Stats.Duration, cmp.DurationDiff)
	fmt.Fprintf(bw, "%-30s %-15.3f %-15.3f %+.3f\n", "Trajectory Length (m)", b.Stats.Length, c.Stats.Length, cmp.LengthDiff)
	fmt.Fprintf(bw, "%-30s %-15.2f %-15.2f\n", "Keyframe Rate (kf/s)", b.Rate, c.Rate)
	fmt.Fprintf(bw, "%s\n\n>>> ANALYSIS:\n", wide)
	for _, line := range cmp.Analysis() {
		fmt.Fprintf(bw, "    %s\n", line)
	}
	return errors.Wrap(bw.Flush(), "error writing comparison")
}

// RunDelta is one run measured against the baseline of a MultiComparison.
type RunDelta struct {
	RunSummary
	KeyframeDiff int
	// Percent is the keyframe change relative to the baseline, 0 when the baseline tracked nothing.
	Percent float64
}

// MultiComparison contrasts any number of runs over the same sequence with the first one.
type MultiComparison struct {
	Baseline RunSummary
	Others   []RunDelta
	// Best indexes Runs(): the run with the most keyframes, earliest on ties.
	Best int
}

// CompareAll summarizes baseline and every other run, measuring each against baseline.
func CompareAll(baseline NamedTrajectory, others ...NamedTrajectory) MultiComparison {
	m := MultiComparison{Baseline: summarize(baseline), Others: make([]RunDelta, 0, len(others))}
	for _, run := range others {
		s := summarize(run)
		d := RunDelta{RunSummary: s, KeyframeDiff: s.Stats.Poses - m.Baseline.Stats.Poses}
		if m.Baseline.Stats.Poses > 0 {
			d.Percent = float64(d.KeyframeDiff) / float64(m.Baseline.Stats.Poses) * 100
		}
		m.Others = append(m.Others, d)
	}
	runs := m.Runs()
	for i, run := range runs {
		if run.Stats.Poses > runs[m.Best].Stats.Poses {
			m.Best = i
		}
	}
	return m
}

// Runs returns the baseline followed by the other runs.
func (m MultiComparison) Runs() []RunSummary {
	runs := make([]RunSummary, 0, len(m.Others)+1)
	runs = append(runs, m.Baseline)
	for _, d := range m.Others {
		runs = append(runs, d.RunSummary)
	}
	return runs
}

// WriteMultiComparison renders m as a keyframe and duration table, the change of every run
// against the baseline and the best run.
func WriteMultiComparison(w io.Writer, m MultiComparison) error {
	bw := bufio.NewWriter(w)
	runs := m.Runs()
	wide := strings.Repeat("=", 70)

	names := make([]string, len(runs))
	width, nameWidth := 12, 0
	for i, r := range runs {
		names[i] = r.Name
		if len(r.Name)+1 > width {
			width = len(r.Name) + 1
		}
		if len(r.Name)+1 > nameWidth {
			nameWidth = len(r.Name) + 1
		}
	}

	fmt.Fprintf(bw, "%s\n       COMPARISON: %s\n%s\n\n", wide, strings.Join(names, " vs "), wide)
	fmt.Fprintf(bw, "%-25s", "Metric")
	for _, r := range runs {
		fmt.Fprintf(bw, " %-*s", width, r.Name)
	}
	fmt.Fprintf(bw, "\n%s\n%-25s", strings.Repeat("-", 70), "Keyframes Tracked")
	for _, r := range runs {
		fmt.Fprintf(bw, " %-*d", width, r.Stats.Poses)
	}
	fmt.Fprintf(bw, "\n%-25s", "Duration (s)")
	for _, r := range runs {
		fmt.Fprintf(bw, " %-*.1f", width, r.Stats.Duration)
	}
	fmt.Fprintf(bw, "\n%s\n", wide)

	if m.Baseline.Stats.Poses > 0 && len(m.Others) > 0 {
		fmt.Fprintf(bw, "\n>>> PERFORMANCE vs %s:\n", m.Baseline.Name)
		for _, d := range m.Others {
			fmt.Fprintf(bw, "    %-*s %+.1f%% (%+d keyframes)\n", nameWidth, d.Name+":", d.Percent, d.KeyframeDiff)
		}
	}
	best := runs[m.Best]
	fmt.Fprintf(bw, "\n>>> BEST METHOD: %s (%d keyframes)\n", best.Name, best.Stats.Poses)
	return errors.Wrap(bw.Flush(), "error writing comparison")
}
