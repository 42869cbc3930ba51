package orbslam3eval

import (
	"os"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"

	"github.com/viamrobotics/orbslam3-eval/metrics"
)

const (
	defaultRPEDelta            = 1
	defaultRotationWarnDegrees = 10
	// DefaultAPEExecutable is the external absolute error evaluator probed for.
	DefaultAPEExecutable = "evo_ape"
	// DefaultRPEExecutable is the external relative error evaluator.
	DefaultRPEExecutable = "evo_rpe"
	defaultPlotMode      = "xyz"
)

// plot projections understood by the external evaluator.
var supportedPlotModes = []string{"xy", "xz", "yx", "yz", "zx", "zy", "xyz"}

// Config parameterizes one evaluation.
type Config struct {
	MaxTimeDiff         float64 `yaml:"max_time_diff"`
	RPEDelta            int     `yaml:"rpe_delta"`
	Align               bool    `yaml:"align"`
	ForceManual         bool    `yaml:"force_manual"`
	APEExecutable       string  `yaml:"ape_executable"`
	RPEExecutable       string  `yaml:"rpe_executable"`
	RotationWarnDegrees float64 `yaml:"rotation_warn_degrees"`
	PlotMode            string  `yaml:"plot_mode"`
	Plot                bool    `yaml:"plot"`
	SaveAligned         bool    `yaml:"save_aligned"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MaxTimeDiff:         metrics.DefaultMaxTimeDiff,
		RPEDelta:            defaultRPEDelta,
		Align:               true,
		APEExecutable:       DefaultAPEExecutable,
		RPEExecutable:       DefaultRPEExecutable,
		RotationWarnDegrees: defaultRotationWarnDegrees,
		PlotMode:            defaultPlotMode,
	}
}

// LoadConfig reads a yaml configuration file. Keys missing from the file keep their default value.
func LoadConfig(path string, logger golog.Logger) (Config, error) {
	cfg := DefaultConfig()

	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "error reading config %v", path)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "Error while Unmarshaling YAML file")
	}
	logger.Debugw("loaded evaluation config", "path", path, "config", cfg)
	return cfg, cfg.Validate()
}

// Validate checks that the configuration describes a runnable evaluation.
func (cfg Config) Validate() error {
	if !(cfg.MaxTimeDiff > 0) {
		return errors.Errorf("max_time_diff must be positive, got %v", cfg.MaxTimeDiff)
	}
	if cfg.RPEDelta < 1 {
		return errors.Wrapf(metrics.ErrInvalidDelta, "rpe_delta %d", cfg.RPEDelta)
	}
	if cfg.APEExecutable == "" || cfg.RPEExecutable == "" {
		return errors.New("external evaluator executables must be named")
	}
	if !slices.Contains(supportedPlotModes, cfg.PlotMode) {
		return errors.Errorf("plot_mode %q is not one of %v", cfg.PlotMode, supportedPlotModes)
	}
	if cfg.RotationWarnDegrees < 0 {
		return errors.Errorf("rotation_warn_degrees cannot be negative, got %v", cfg.RotationWarnDegrees)
	}
	return nil
}

// Marshal renders cfg as yaml, the same layout LoadConfig reads.
func (cfg Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Error while Marshaling YAML file")
	}
	return data, nil
}
