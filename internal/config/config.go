// Package config loads workspace settings from an optional psls.toml,
// discovered by walking up from the working directory. Missing files yield
// defaults; CLI flags and LSP client settings layer on top of the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the merged view of psls.toml plus defaults.
type Config struct {
	Folding FoldingConfig `toml:"folding"`
	Cache   CacheConfig   `toml:"cache"`

	// Path of the manifest the values came from; empty when defaults only.
	Path string `toml:"-"`
}

// FoldingConfig controls the folding engine.
type FoldingConfig struct {
	IncludeLastLine bool  `toml:"include_last_line"`
	MaxFileSize     int64 `toml:"max_file_size"`
}

// CacheConfig controls the fold result disk cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no psls.toml exists.
func Default() Config {
	return Config{
		Folding: FoldingConfig{
			IncludeLastLine: false,
			MaxFileSize:     0,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
	}
}

// FindManifest walks up from startDir to locate psls.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "psls.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads the manifest at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Discover locates and loads the nearest psls.toml above startDir. When no
// manifest exists the defaults are returned without error.
func Discover(startDir string) (Config, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}
