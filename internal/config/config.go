package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	CacheDir  string `toml:"cache_dir"`
	LogDir    string `toml:"log_dir"` // empty disables the log file
}

// Seasons bounds the inclusive range of championship years to extract.
type Seasons struct {
	From int `toml:"from"`
	To   int `toml:"to"`
}

// Provider contains configuration for the external data sources.
type Provider struct {
	ErgastBaseURL            string `toml:"ergast_base_url"`
	LiveTimingBaseURL        string `toml:"livetiming_base_url"`
	RequestTimeoutSeconds    int    `toml:"request_timeout_seconds"`
	MinRequestIntervalMillis int    `toml:"min_request_interval_ms"`
	UserAgent                string `toml:"user_agent"`
	DisableCache             bool   `toml:"disable_cache"`
}

// Batch contains configuration for the extraction jobs.
type Batch struct {
	EventDelaySeconds int    `toml:"event_delay_seconds"`
	SessionType       string `toml:"session_type"`
	FeaturesFile      string `toml:"features_file"` // overrides the derived driver features path
	LapsFile          string `toml:"laps_file"`     // overrides the derived lap-level path
	PreviewRows       int    `toml:"preview_rows"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for racefeatures.
//
// Configuration sections:
//   - Paths: output, cache, and log directories
//   - Seasons: inclusive year range
//   - Provider: Ergast/Jolpica and live-timing endpoints, timeouts, request pacing
//   - Batch: pause between events, session type, output file overrides
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Seasons  Seasons  `toml:"seasons"`
	Provider Provider `toml:"provider"`
	Batch    Batch    `toml:"batch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	cfg.applyEnvironment()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("racefeatures.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, cache, and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.CacheDir, c.Paths.LogDir}
	if c.Batch.FeaturesFile != "" {
		dirs = append(dirs, filepath.Dir(c.Batch.FeaturesFile))
	}
	if c.Batch.LapsFile != "" {
		dirs = append(dirs, filepath.Dir(c.Batch.LapsFile))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FeaturesOutputPath returns the driver feature CSV destination.
func (c *Config) FeaturesOutputPath() string {
	if c.Batch.FeaturesFile != "" {
		return c.Batch.FeaturesFile
	}
	return filepath.Join(c.Paths.OutputDir, fmt.Sprintf("driver_features_%d_%d.csv", c.Seasons.From, c.Seasons.To))
}

// LapsOutputPath returns the lap-level CSV destination.
func (c *Config) LapsOutputPath() string {
	if c.Batch.LapsFile != "" {
		return c.Batch.LapsFile
	}
	return filepath.Join(c.Paths.OutputDir, fmt.Sprintf("lap_level_data_%d_%d.csv", c.Seasons.From, c.Seasons.To))
}

// EventDelay returns the pause applied after each processed event.
func (c *Config) EventDelay() time.Duration {
	return time.Duration(c.Batch.EventDelaySeconds) * time.Second
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Provider.RequestTimeoutSeconds) * time.Second
}

// MinRequestInterval returns the minimum spacing between uncached HTTP requests.
func (c *Config) MinRequestInterval() time.Duration {
	return time.Duration(c.Provider.MinRequestIntervalMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "racefeatures")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/racefeatures"
	}
	return filepath.Join(home, ".cache", "racefeatures")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
