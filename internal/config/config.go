// Package config loads the run configuration for bracketsmith. Defaults are
// an explicit struct, not module-level path lists, so the driver stays
// testable in isolation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up from the working directory upward.
const FileName = "bracketsmith.toml"

// Config is the full run configuration.
type Config struct {
	Files  FilesConfig  `toml:"files"`
	Format FormatConfig `toml:"format"`
}

// FilesConfig controls which files the driver collects.
type FilesConfig struct {
	// Include, when non-empty, keeps only paths matching one of the glob
	// patterns. Patterns match the slash-separated path and the basename.
	Include []string `toml:"include"`
	// Exclude drops matching paths even when included.
	Exclude []string `toml:"exclude"`
	// Extensions lists the file extensions treated as PHP sources.
	Extensions []string `toml:"extensions"`
}

// FormatConfig controls the rewrite run itself.
type FormatConfig struct {
	// Jobs caps parallel file formatting; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
	// MaxPasses caps the fixed-point loop per file; 0 means the built-in
	// default.
	MaxPasses int `toml:"max_passes"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Files: FilesConfig{
			Extensions: []string{".php", ".phtml", ".inc"},
		},
		Format: FormatConfig{},
	}
}

// Load reads and validates a TOML config file. Unknown keys are rejected to
// catch typos early. Missing sections fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if len(cfg.Files.Extensions) == 0 {
		cfg.Files.Extensions = Default().Files.Extensions
	}
	if cfg.Format.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [format].jobs must be >= 0", path)
	}
	if cfg.Format.MaxPasses < 0 {
		return Config{}, fmt.Errorf("%s: [format].max_passes must be >= 0", path)
	}
	return cfg, nil
}

// Find walks from startDir upward looking for a config file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
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

// DefaultTOML is the starter config written by "bracketsmith init".
func DefaultTOML() string {
	return `# bracketsmith configuration
[files]
# include = ["src/*", "app/*"]
# exclude = ["vendor/*", "cache/*"]
extensions = [".php", ".phtml", ".inc"]

[format]
# jobs = 0        # 0 = one worker per CPU
# max_passes = 20
`
}
