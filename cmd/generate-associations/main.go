// Package main writes the association file for one image sequence.
package main

import (
	"context"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.viam.com/utils"

	"github.com/viamrobotics/orbslam3-eval/associations"
)

func main() {
	utils.ContextualMain(mainWithArgs, golog.NewLogger("generateAssociations"))
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var sequence, images, output string
	fs := flag.NewFlagSet(filepath.Base(args[0]), flag.ContinueOnError)
	fs.StringVarP(&sequence, "sequence", "s", "", "sequence directory holding the image timestamps csv")
	fs.StringVarP(&images, "images", "i", "", "directory holding the frames")
	fs.StringVarP(&output, "output", "o", "", "association file to write")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if sequence == "" || images == "" || output == "" {
		return errors.New("--sequence, --images and --output are required")
	}

	n, err := associations.Generate(sequence, images, output, logger)
	if err != nil {
		return err
	}
	if n == 0 {
		logger.Warnw("no frame of the timestamps file was found in the image directory", "images", images)
	}
	return nil
}
