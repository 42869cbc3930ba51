package plotting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/viamrobotics/orbslam3-eval/plotting"
	"github.com/viamrobotics/orbslam3-eval/testhelper"
)

func TestSaveTrajectoryPlots(t *testing.T) {
	dir := t.TempDir()

	t.Run("nothing to draw", func(t *testing.T) {
		_, err := plotting.SaveTrajectoryPlots(dir, "empty", plotting.Series{Name: "estimate"})
		test.That(t, errors.Is(err, plotting.ErrNoData), test.ShouldBeTrue)
	})

	t.Run("one file per projection", func(t *testing.T) {
		est := []r3.Vector{{}, {X: 1, Y: 0.5}, {X: 2, Y: 1, Z: 0.2}}
		gt := []r3.Vector{{}, {X: 1.1, Y: 0.4}, {X: 2.1, Y: 1.1, Z: 0.1}}
		paths, err := plotting.SaveTrajectoryPlots(dir, "trajectory",
			plotting.Series{Name: "estimate", Points: est},
			plotting.Series{Name: "ground truth", Points: gt},
			plotting.Series{Name: "unused"},
		)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, paths, test.ShouldResemble, []string{
			filepath.Join(dir, "trajectory_xy.png"),
			filepath.Join(dir, "trajectory_xz.png"),
			filepath.Join(dir, "trajectory_yz.png"),
		})
		testhelper.CheckResultsDirForExpectedFiles(t, dir, "trajectory_xy.png", "trajectory_xz.png", "trajectory_yz.png")
	})
}

func TestSaveBarChart(t *testing.T) {
	dir := t.TempDir()
	categories := []string{"Keyframes", "Duration (s)", "Length (m)"}

	t.Run("grouped bars", func(t *testing.T) {
		path := filepath.Join(dir, "charts", "comparison.png")
		err := plotting.SaveBarChart(path, "Performance Metrics", categories,
			plotting.BarGroup{Name: "Raw", Values: []float64{120, 45.5, 30.2}},
			plotting.BarGroup{Name: "CLAHE", Values: []float64{150, 52, 33.9}},
		)
		test.That(t, err, test.ShouldBeNil)
		_, err = os.Stat(path)
		test.That(t, err, test.ShouldBeNil)
	})

	t.Run("value count mismatch", func(t *testing.T) {
		err := plotting.SaveBarChart(filepath.Join(dir, "bad.png"), "bad", categories,
			plotting.BarGroup{Name: "Raw", Values: []float64{1}})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "1 values for 3 categories")
	})

	t.Run("no groups", func(t *testing.T) {
		err := plotting.SaveBarChart(filepath.Join(dir, "none.png"), "none", categories)
		test.That(t, errors.Is(err, plotting.ErrNoData), test.ShouldBeTrue)
	})
}
