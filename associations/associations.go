// Package associations builds and reads the association files that feed image sequences to the
// monocular tracker: one "<timestamp seconds> <image path>" line per frame.
package associations

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// ErrNoTimestampFile is returned when a sequence directory has no image timestamp csv.
var ErrNoTimestampFile = errors.New("no image timestamps csv found")

// Association ties a frame timestamp, in seconds, to its image file.
type Association struct {
	Time  float64
	Image string
}

// FindTimestampFile returns the first csv file in sequenceDir whose name contains "img",
// ignoring case.
func FindTimestampFile(sequenceDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(sequenceDir, "*.csv"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if strings.Contains(strings.ToLower(filepath.Base(m)), "img") {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrNoTimestampFile, "in %v", sequenceDir)
}

// ParseTimestamps reads "<timestamp ns>,<frame name>" rows and keeps the frames present in
// imageDir, in file order. Rows that are short or carry an unparsable timestamp are skipped.
func ParseTimestamps(r io.Reader, imageDir string) ([]Association, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var out []Association
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading timestamps")
		}
		if len(record) < 2 {
			continue
		}
		ns, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			continue
		}
		image := filepath.Join(imageDir, strings.TrimSpace(record[1]))
		if _, err := os.Stat(image); err != nil {
			continue
		}
		out = append(out, Association{Time: ns / 1e9, Image: image})
	}
}

// Write renders associations one per line with the timestamp at microsecond precision.
func Write(w io.Writer, assocs []Association) error {
	bw := bufio.NewWriter(w)
	for _, a := range assocs {
		if _, err := fmt.Fprintf(bw, "%.6f %s\n", a.Time, a.Image); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses an association file. Blank lines and lines starting with '#' are ignored.
func Read(r io.Reader) ([]Association, error) {
	var out []Association
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.Errorf("malformed association line %q", line)
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad timestamp in %q", line)
		}
		out = append(out, Association{Time: t, Image: fields[1]})
	}
	return out, errors.Wrap(scanner.Err(), "error reading associations")
}

// Generate writes the association file for one sequence: the image timestamps csv found in
// sequenceDir, restricted to the frames present in imageDir, is written to outputPath with
// absolute image paths. It returns the number of associations written.
func Generate(sequenceDir, imageDir, outputPath string, logger golog.Logger) (int, error) {
	imageDir, err := filepath.Abs(imageDir)
	if err != nil {
		return 0, err
	}
	tsFile, err := FindTimestampFile(sequenceDir)
	if err != nil {
		return 0, err
	}
	logger.Infow("using timestamps file", "path", tsFile, "images", imageDir)

	//nolint:gosec
	in, err := os.Open(tsFile)
	if err != nil {
		return 0, errors.Wrap(err, "error opening timestamps")
	}
	defer goutils.UncheckedErrorFunc(in.Close)

	assocs, err := ParseTimestamps(in, imageDir)
	if err != nil {
		return 0, err
	}

	//nolint:gosec
	out, err := os.Create(outputPath)
	if err != nil {
		return 0, errors.Wrap(err, "error creating association file")
	}
	if err := Write(out, assocs); err != nil {
		goutils.UncheckedError(out.Close())
		return 0, errors.Wrap(err, "error writing associations")
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	logger.Infow("generated associations", "count", len(assocs), "path", outputPath)
	if len(assocs) > 0 {
		logger.Infow("association time range",
			"start", fmt.Sprintf("%.3fs", assocs[0].Time),
			"end", fmt.Sprintf("%.3fs", assocs[len(assocs)-1].Time))
	}
	return len(assocs), nil
}
