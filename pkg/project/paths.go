package project

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ResolvePath returns the absolute form of relPath and the folder holding it.
func ResolvePath(relPath string) (fullPath string, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", errors.Wrapf(err, "resolving %s", relPath)
	}
	return fullPath, filepath.Dir(fullPath), nil
}

// FindRoot walks up from dir to the nearest folder holding esconfig.json.
func FindRoot(dir string) (string, error) {
	full, _, err := ResolvePath(dir)
	if err != nil {
		return "", err
	}
	for {
		if exists(filepath.Join(full, ConfigFile)) {
			return full, nil
		}
		parent := filepath.Dir(full)
		if parent == full {
			return "", errors.Errorf("no %s found in %s or any parent folder", ConfigFile, dir)
		}
		full = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
