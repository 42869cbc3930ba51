// Package testhelper builds synthetic trajectories and trajectory files for tests.
package testhelper

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/viamrobotics/orbslam3-eval/trajectory"
)

// Line returns n poses moving by step every dt seconds, starting at the origin at time 0.
func Line(n int, dt float64, step r3.Vector) trajectory.Trajectory {
	traj := make(trajectory.Trajectory, n)
	for i := range traj {
		traj[i] = trajectory.Pose{
			Time:     float64(i) * dt,
			Position: step.Mul(float64(i)),
		}
	}
	return traj
}

// Circle returns n poses evenly spread over one turn of a circle of the given radius in the
// z=0 plane, dt seconds apart.
func Circle(n int, dt, radius float64) trajectory.Trajectory {
	traj := make(trajectory.Trajectory, n)
	for i := range traj {
		theta := 2 * math.Pi * float64(i) / float64(n)
		traj[i] = trajectory.Pose{
			Time:     float64(i) * dt,
			Position: r3.Vector{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)},
		}
	}
	return traj
}

// Transform returns a copy of traj with every position scaled by scale and then shifted by offset.
// Timestamps and orientations are kept.
func Transform(traj trajectory.Trajectory, scale float64, offset r3.Vector) trajectory.Trajectory {
	out := make(trajectory.Trajectory, len(traj))
	for i, p := range traj {
		p.Position = p.Position.Mul(scale).Add(offset)
		out[i] = p
	}
	return out
}

// Shift returns a copy of traj with every timestamp moved by dt seconds.
func Shift(traj trajectory.Trajectory, dt float64) trajectory.Trajectory {
	out := make(trajectory.Trajectory, len(traj))
	for i, p := range traj {
		p.Time += dt
		out[i] = p
	}
	return out
}

// WriteTrajectory writes traj as a TUM file named name inside dir and returns its path.
func WriteTrajectory(t *testing.T, dir, name string, traj trajectory.Trajectory) string {
	t.Helper()

	path := filepath.Join(dir, name)
	test.That(t, trajectory.WriteFile(path, traj), test.ShouldBeNil)
	return path
}
