package orbslam3eval_test

import (
	"bytes"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	orbslam3eval "github.com/viamrobotics/orbslam3-eval"
	"github.com/viamrobotics/orbslam3-eval/internal/testhelper"
)

func TestCompare(t *testing.T) {
	raw := orbslam3eval.NamedTrajectory{Name: "Raw", Trajectory: testhelper.Line(11, 1, r3.Vector{X: 1})}
	clahe := orbslam3eval.NamedTrajectory{Name: "CLAHE", Trajectory: testhelper.Line(21, 1, r3.Vector{X: 1})}

	t.Run("candidate tracks longer", func(t *testing.T) {
		cmp := orbslam3eval.Compare(raw, clahe)
		test.That(t, cmp.Baseline.Stats.Poses, test.ShouldEqual, 11)
		test.That(t, cmp.Candidate.Stats.Poses, test.ShouldEqual, 21)
		test.That(t, cmp.KeyframeDiff, test.ShouldEqual, 10)
		test.That(t, cmp.DurationDiff, test.ShouldAlmostEqual, 10)
		test.That(t, cmp.LengthDiff, test.ShouldAlmostEqual, 10)
		test.That(t, cmp.Baseline.Rate, test.ShouldAlmostEqual, 1.1)
		test.That(t, cmp.Analysis(), test.ShouldResemble, []string{
			"CLAHE tracked 10 MORE keyframes (90.9% improvement)",
			"CLAHE maintained tracking 10.0s LONGER",
		})
	})

	t.Run("baseline tracks longer", func(t *testing.T) {
		cmp := orbslam3eval.Compare(clahe, raw)
		test.That(t, cmp.KeyframeDiff, test.ShouldEqual, -10)
		test.That(t, cmp.Analysis(), test.ShouldResemble, []string{
			"CLAHE tracked 10 MORE keyframes (90.9% better)",
			"CLAHE maintained tracking 10.0s LONGER",
		})
	})

	t.Run("same runs", func(t *testing.T) {
		cmp := orbslam3eval.Compare(raw, raw)
		test.That(t, cmp.Analysis(), test.ShouldResemble, []string{"Both runs tracked the same number of keyframes"})
	})

	t.Run("empty baseline", func(t *testing.T) {
		cmp := orbslam3eval.Compare(orbslam3eval.NamedTrajectory{Name: "Raw"}, clahe)
		test.That(t, cmp.Baseline.Rate, test.ShouldAlmostEqual, 0)
		test.That(t, cmp.Analysis()[0], test.ShouldEqual, "CLAHE tracked 21 MORE keyframes")
	})
}

func TestWriteComparison(t *testing.T) {
	raw := orbslam3eval.NamedTrajectory{Name: "Raw", Trajectory: testhelper.Line(5, 0.5, r3.Vector{Y: 0.25})}
	clahe := orbslam3eval.NamedTrajectory{Name: "CLAHE", Trajectory: testhelper.Line(9, 0.5, r3.Vector{Y: 0.25})}

	var buf bytes.Buffer
	test.That(t, orbslam3eval.WriteComparison(&buf, orbslam3eval.Compare(raw, clahe)), test.ShouldBeNil)
	out := buf.String()
	test.That(t, out, test.ShouldContainSubstring, "COMPARISON: Raw vs CLAHE")
	test.That(t, out, test.ShouldContainSubstring, "Keyframes Tracked              5               9               +4\n")
	test.That(t, out, test.ShouldContainSubstring, "Tracking Duration (s)          2.0             4.0             +2.0\n")
	test.That(t, out, test.ShouldContainSubstring, ">>> ANALYSIS:\n    CLAHE tracked 4 MORE keyframes (80.0% improvement)\n")
}

func TestCompareAll(t *testing.T) {
	raw := orbslam3eval.NamedTrajectory{Name: "Raw", Trajectory: testhelper.Line(40, 0.5, r3.Vector{X: 0.1})}
	clahe := orbslam3eval.NamedTrajectory{Name: "CLAHE", Trajectory: testhelper.Line(50, 0.5, r3.Vector{X: 0.1})}
	funie := orbslam3eval.NamedTrajectory{Name: "FUnIE-GAN"}

	t.Run("three runs", func(t *testing.T) {
		cmp := orbslam3eval.CompareAll(raw, clahe, funie)
		test.That(t, cmp.Runs(), test.ShouldHaveLength, 3)
		test.That(t, cmp.Others[0].KeyframeDiff, test.ShouldEqual, 10)
		test.That(t, cmp.Others[0].Percent, test.ShouldAlmostEqual, 25)
		test.That(t, cmp.Others[1].KeyframeDiff, test.ShouldEqual, -40)
		test.That(t, cmp.Others[1].Percent, test.ShouldAlmostEqual, -100)
		test.That(t, cmp.Others[1].Stats.Duration, test.ShouldAlmostEqual, 0)
		test.That(t, cmp.Runs()[cmp.Best].Name, test.ShouldEqual, "CLAHE")

		var buf bytes.Buffer
		test.That(t, orbslam3eval.WriteMultiComparison(&buf, cmp), test.ShouldBeNil)
		out := buf.String()
		test.That(t, out, test.ShouldContainSubstring, "COMPARISON: Raw vs CLAHE vs FUnIE-GAN")
		test.That(t, out, test.ShouldContainSubstring, ">>> PERFORMANCE vs Raw:\n")
		test.That(t, out, test.ShouldContainSubstring, "    CLAHE:     +25.0% (+10 keyframes)\n")
		test.That(t, out, test.ShouldContainSubstring, "    FUnIE-GAN: -100.0% (-40 keyframes)\n")
		test.That(t, out, test.ShouldEndWith, ">>> BEST METHOD: CLAHE (50 keyframes)\n")
	})

	t.Run("empty baseline", func(t *testing.T) {
		cmp := orbslam3eval.CompareAll(funie, raw, clahe)
		test.That(t, cmp.Others[0].Percent, test.ShouldAlmostEqual, 0)
		test.That(t, cmp.Runs()[cmp.Best].Name, test.ShouldEqual, "CLAHE")

		var buf bytes.Buffer
		test.That(t, orbslam3eval.WriteMultiComparison(&buf, cmp), test.ShouldBeNil)
		test.That(t, buf.String(), test.ShouldNotContainSubstring, "PERFORMANCE")
	})

	t.Run("ties keep the earliest run", func(t *testing.T) {
		cmp := orbslam3eval.CompareAll(raw, raw, funie)
		test.That(t, cmp.Best, test.ShouldEqual, 0)
	})
}
