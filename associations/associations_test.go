package associations_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/viamrobotics/orbslam3-eval/associations"
)

const timestamps = `#timestamp [ns],filename
1579019453002154240,img_00000.png
1579019453102154240, img_00001.png
not_a_number,img_00002.png
1579019453302154240
1579019453402154240,img_00004.png

1579019453502154240,img_00005.png
`

func setupSequence(t *testing.T) (string, string) {
	t.Helper()

	seq := t.TempDir()
	images := filepath.Join(seq, "images")
	test.That(t, os.Mkdir(images, 0o750), test.ShouldBeNil)
	for _, name := range []string{"img_00000.png", "img_00001.png", "img_00002.png", "img_00005.png"} {
		test.That(t, os.WriteFile(filepath.Join(images, name), []byte("png"), 0o600), test.ShouldBeNil)
	}
	test.That(t, os.WriteFile(filepath.Join(seq, "imu_sequence_1.csv"), []byte("1,2,3\n"), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(seq, "IMG_sequence_1.csv"), []byte(timestamps), 0o600), test.ShouldBeNil)
	return seq, images
}

func TestFindTimestampFile(t *testing.T) {
	seq, _ := setupSequence(t)
	path, err := associations.FindTimestampFile(seq)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, filepath.Base(path), test.ShouldEqual, "IMG_sequence_1.csv")

	_, err = associations.FindTimestampFile(t.TempDir())
	test.That(t, errors.Is(err, associations.ErrNoTimestampFile), test.ShouldBeTrue)
}

func TestParseTimestamps(t *testing.T) {
	_, images := setupSequence(t)
	assocs, err := associations.ParseTimestamps(strings.NewReader(timestamps), images)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, assocs, test.ShouldHaveLength, 3)
	test.That(t, assocs[0].Time, test.ShouldAlmostEqual, 1579019453.002154, 1e-5)
	test.That(t, assocs[1].Image, test.ShouldEqual, filepath.Join(images, "img_00001.png"))
	test.That(t, assocs[2].Image, test.ShouldEqual, filepath.Join(images, "img_00005.png"))
}

func TestGenerate(t *testing.T) {
	logger := golog.NewTestLogger(t)
	seq, images := setupSequence(t)
	output := filepath.Join(t.TempDir(), "associations.txt")

	n, err := associations.Generate(seq, images, output, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 3)

	f, err := os.Open(output)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	assocs, err := associations.Read(f)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, assocs, test.ShouldHaveLength, 3)
	test.That(t, assocs[0].Time, test.ShouldAlmostEqual, 1579019453.002154, 1e-5)
	test.That(t, filepath.IsAbs(assocs[0].Image), test.ShouldBeTrue)
	test.That(t, assocs[2].Image, test.ShouldEqual, filepath.Join(images, "img_00005.png"))

	t.Run("no timestamps", func(t *testing.T) {
		_, err := associations.Generate(t.TempDir(), images, output, logger)
		test.That(t, errors.Is(err, associations.ErrNoTimestampFile), test.ShouldBeTrue)
	})
}

func TestRead(t *testing.T) {
	assocs, err := associations.Read(strings.NewReader("# header\n\n1.500000 /data/a.png\n2.000000 /data/b.png\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, assocs, test.ShouldResemble, []associations.Association{
		{Time: 1.5, Image: "/data/a.png"},
		{Time: 2, Image: "/data/b.png"},
	})

	_, err = associations.Read(strings.NewReader("1.5\n"))
	test.That(t, err, test.ShouldNotBeNil)
}
