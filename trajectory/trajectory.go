// Package trajectory reads, writes and summarizes trajectories stored in the TUM text format.
package trajectory

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"gonum.org/v1/gonum/num/quat"
)

const (
	commentPrefix = "#"
	// minimum fields for a record: timestamp x y z.
	minFields = 4
	// fields for a record carrying an orientation: timestamp x y z qx qy qz qw.
	orientedFields = 8
)

// Pose is a single time-stamped position. Orientation is nil when the source line did not carry one.
type Pose struct {
	Time        float64
	Position    r3.Vector
	Orientation *quat.Number
}

// Trajectory is an ordered sequence of poses, kept in file order.
type Trajectory []Pose

// Positions returns the positions of the trajectory in order.
func (t Trajectory) Positions() []r3.Vector {
	positions := make([]r3.Vector, len(t))
	for i, p := range t {
		positions[i] = p.Position
	}
	return positions
}

// ParseResult is the outcome of parsing a trajectory source. Skipped counts lines that looked
// like records but could not be parsed; comments and blank lines are not counted.
type ParseResult struct {
	Trajectory Trajectory
	Lines      int
	Skipped    int
}

// Parse reads TUM records from r. Malformed lines are skipped and counted rather than
// reported as errors; only read failures are returned.
func Parse(r io.Reader) (*ParseResult, error) {
	res := &ParseResult{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		res.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		pose, ok := parseLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		res.Trajectory = append(res.Trajectory, pose)
	}
	if err := scanner.Err(); err != nil {
		return res, errors.Wrap(err, "error reading trajectory")
	}
	return res, nil
}

func parseLine(line string) (Pose, bool) {
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return Pose{}, false
	}
	var vals [orientedFields]float64
	for i := 0; i < minFields; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return Pose{}, false
		}
		vals[i] = v
	}
	pose := Pose{
		Time:     vals[0],
		Position: r3.Vector{X: vals[1], Y: vals[2], Z: vals[3]},
	}
	if len(fields) < orientedFields {
		return pose, true
	}
	// a bad quaternion only drops the orientation, the position is still usable
	for i := minFields; i < orientedFields; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return pose, true
		}
		vals[i] = v
	}
	pose.Orientation = &quat.Number{Real: vals[7], Imag: vals[4], Jmag: vals[5], Kmag: vals[6]}
	return pose, true
}

// ReadFile parses the trajectory stored at path.
func ReadFile(path string) (*ParseResult, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening trajectory %v", path)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	res, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing trajectory %v", path)
	}
	return res, nil
}

// Load is the lenient counterpart of ReadFile: a missing or unreadable file yields an empty
// result and a warning instead of an error.
func Load(path string, logger golog.Logger) *ParseResult {
	res, err := ReadFile(path)
	if err != nil {
		logger.Warnw("unable to load trajectory, continuing with an empty one", "path", path, "error", err)
		return &ParseResult{}
	}
	if res.Skipped > 0 {
		logger.Debugw("skipped malformed trajectory lines", "path", path, "skipped", res.Skipped, "lines", res.Lines)
	}
	return res
}

// Write writes traj to w in TUM format. Orientations are written only for poses that carry one.
func Write(w io.Writer, traj Trajectory) error {
	bw := bufio.NewWriter(w)
	for _, p := range traj {
		if _, err := fmt.Fprintf(bw, "%.6f %.6f %.6f %.6f", p.Time, p.Position.X, p.Position.Y, p.Position.Z); err != nil {
			return errors.Wrap(err, "error writing trajectory")
		}
		if q := p.Orientation; q != nil {
			if _, err := fmt.Fprintf(bw, " %.6f %.6f %.6f %.6f", q.Imag, q.Jmag, q.Kmag, q.Real); err != nil {
				return errors.Wrap(err, "error writing trajectory")
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "error writing trajectory")
		}
	}
	return errors.Wrap(bw.Flush(), "error writing trajectory")
}

// WriteFile writes traj to path, replacing any existing file.
func WriteFile(path string, traj Trajectory) error {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "error creating trajectory file %v", path)
	}
	if err := Write(f, traj); err != nil {
		goutils.UncheckedError(f.Close())
		return err
	}
	return f.Close()
}

// Stats are the ground-truth free statistics of a trajectory.
type Stats struct {
	Poses    int
	Length   float64 // meters
	Duration float64 // seconds
}

// ComputeStats returns the pose count, path length and duration of traj.
func ComputeStats(traj Trajectory) Stats {
	stats := Stats{Poses: len(traj)}
	if len(traj) < 2 {
		return stats
	}
	for i := 1; i < len(traj); i++ {
		stats.Length += traj[i].Position.Distance(traj[i-1].Position)
	}
	stats.Duration = traj[len(traj)-1].Time - traj[0].Time
	return stats
}

// Rate returns poses per second, or 0 when the duration is not positive.
func (s Stats) Rate() float64 {
	if s.Duration <= 0 || math.IsNaN(s.Duration) {
		return 0
	}
	return float64(s.Poses) / s.Duration
}
