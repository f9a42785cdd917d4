package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every variable the overlay reads, e.g. QKHE_TARGET_DSN.
const EnvPrefix = "QKHE_"

// LoadEnvFiles loads the .env files that exist into the process
// environment and returns how many were found. Variables already set win.
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("config: load env files: %w", err)
	}
	return len(existing), nil
}

// Overlay overrides fields of r from QKHE_* variables. environ replaces the
// process environment when non-nil. Unset variables leave r untouched.
func Overlay(r *Run, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(r, opts); err != nil {
		return fmt.Errorf("config: env overlay: %w", err)
	}
	r.applyDefaults()
	return nil
}
