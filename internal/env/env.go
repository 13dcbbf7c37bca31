// Package env loads .env files so endpoint URLs with API keys can live
// outside the YAML config and be referenced there as ${VAR}.
package env

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultFile is read from the working directory by Load.
const DefaultFile = ".env"

// Load reads KEY=VALUE pairs from .env in the current working directory and
// exports them. Values from the file override the process environment. A
// missing file is not an error.
func Load() error {
	return LoadFiles(DefaultFile)
}

// LoadFiles applies each file in order, later files overriding earlier ones.
// Files that do not exist are skipped.
func LoadFiles(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Overload(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}
