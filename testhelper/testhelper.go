// Package testhelper provides helper functions for testing trajectory evaluation output.
package testhelper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

// CreateTempFolderArchitecture creates a new random temporary directory with the data and results
// subdirectories used by the evaluation tools.
func CreateTempFolderArchitecture() (string, error) {
	tmpDir, err := os.MkdirTemp("", "*")
	if err != nil {
		return "", err
	}
	for _, sub := range []string{"data", "results"} {
		if err := os.Mkdir(filepath.Join(tmpDir, sub), 0o750); err != nil {
			return "", errors.Wrapf(err, "error creating %v directory", sub)
		}
	}
	return tmpDir, nil
}

// ResetFolder removes all content in path and creates a new directory
// in its place.
func ResetFolder(path string) error {
	dirInfo, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !dirInfo.IsDir() {
		return errors.Errorf("the path passed ResetFolder does not point to a folder: %v", path)
	}
	if err = os.RemoveAll(path); err != nil {
		return err
	}
	return os.Mkdir(path, dirInfo.Mode())
}

// CheckResultsDirForExpectedFiles ensures every expected file exists in dir and is not empty.
func CheckResultsDirForExpectedFiles(t *testing.T, dir string, expected ...string) {
	t.Helper()

	for _, name := range expected {
		info, err := os.Stat(filepath.Join(dir, name))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
	}
}
