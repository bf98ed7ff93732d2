// Package env loads credentials and settings from the process environment
// and optional dotenv files.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultFile is the dotenv file read when none is given explicitly.
const DefaultFile = ".env"

// Load reads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment are never overridden.
//
// A missing file is only an error when required is true, so the default
// .env may be absent.
func Load(path string, required bool) error {
	if path == "" {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// Lookup returns an environment variable. Set-but-empty counts as unset.
func Lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
