package orbslam3eval_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	orbslam3eval "github.com/viamrobotics/orbslam3-eval"
	"github.com/viamrobotics/orbslam3-eval/metrics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := orbslam3eval.DefaultConfig()
	test.That(t, cfg.MaxTimeDiff, test.ShouldEqual, 0.1)
	test.That(t, cfg.RPEDelta, test.ShouldEqual, 1)
	test.That(t, cfg.Align, test.ShouldBeTrue)
	test.That(t, cfg.ForceManual, test.ShouldBeFalse)
	test.That(t, cfg.APEExecutable, test.ShouldEqual, orbslam3eval.DefaultAPEExecutable)
	test.That(t, cfg.RPEExecutable, test.ShouldEqual, orbslam3eval.DefaultRPEExecutable)
	test.That(t, cfg.PlotMode, test.ShouldEqual, "xyz")
	test.That(t, cfg.Validate(), test.ShouldBeNil)
}

func TestLoadConfig(t *testing.T) {
	logger := golog.NewTestLogger(t)
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
		return path
	}

	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg, err := orbslam3eval.LoadConfig(write("partial.yaml", "max_time_diff: 0.02\nrpe_delta: 5\nplot: true\n"), logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.MaxTimeDiff, test.ShouldEqual, 0.02)
		test.That(t, cfg.RPEDelta, test.ShouldEqual, 5)
		test.That(t, cfg.Plot, test.ShouldBeTrue)
		test.That(t, cfg.Align, test.ShouldBeTrue)
		test.That(t, cfg.APEExecutable, test.ShouldEqual, orbslam3eval.DefaultAPEExecutable)
	})

	t.Run("marshaled config loads back", func(t *testing.T) {
		want := orbslam3eval.DefaultConfig()
		want.Align = false
		want.SaveAligned = true
		want.PlotMode = "xz"
		data, err := want.Marshal()
		test.That(t, err, test.ShouldBeNil)

		got, err := orbslam3eval.LoadConfig(write("full.yaml", string(data)), logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldResemble, want)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := orbslam3eval.LoadConfig(write("unknown.yaml", "max_time_dif: 0.2\n"), logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "Error while Unmarshaling YAML file")
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := orbslam3eval.LoadConfig(write("delta.yaml", "rpe_delta: 0\n"), logger)
		test.That(t, errors.Is(err, metrics.ErrInvalidDelta), test.ShouldBeTrue)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := orbslam3eval.LoadConfig(filepath.Join(dir, "missing.yaml"), logger)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*orbslam3eval.Config)
		msg    string
	}{
		{"zero time window", func(c *orbslam3eval.Config) { c.MaxTimeDiff = 0 }, "max_time_diff must be positive"},
		{"negative time window", func(c *orbslam3eval.Config) { c.MaxTimeDiff = -1 }, "max_time_diff must be positive"},
		{"zero delta", func(c *orbslam3eval.Config) { c.RPEDelta = 0 }, "delta"},
		{"unnamed executable", func(c *orbslam3eval.Config) { c.RPEExecutable = "" }, "executables must be named"},
		{"plot mode", func(c *orbslam3eval.Config) { c.PlotMode = "xyzw" }, "plot_mode"},
		{"rotation threshold", func(c *orbslam3eval.Config) { c.RotationWarnDegrees = -1 }, "rotation_warn_degrees"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := orbslam3eval.DefaultConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}
}
