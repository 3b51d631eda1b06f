package config

import (
	"fmt"
	"os"
	"strings"

	"racefeatures/internal/race"
)

const (
	envCacheDir      = "RACEFEATURES_CACHE_DIR"
	envErgastBaseURL = "ERGAST_BASE_URL"
)

// applyEnvironment overlays environment values on the defaults. Values in
// the config file still win.
func (c *Config) applyEnvironment() {
	if value := envValue(envCacheDir); value != "" {
		c.Paths.CacheDir = value
	}
	if value := envValue(envErgastBaseURL); value != "" {
		c.Provider.ErgastBaseURL = value
	}
}

func envValue(key string) string {
	value, _ := os.LookupEnv(key)
	return strings.TrimSpace(value)
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProvider()
	if err := c.normalizeBatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		if value := envValue(envCacheDir); value != "" {
			c.Paths.CacheDir = value
		} else {
			c.Paths.CacheDir = defaultCacheDir()
		}
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProvider() {
	c.Provider.ErgastBaseURL = strings.TrimSpace(c.Provider.ErgastBaseURL)
	if c.Provider.ErgastBaseURL == "" {
		if value := envValue(envErgastBaseURL); value != "" {
			c.Provider.ErgastBaseURL = value
		} else {
			c.Provider.ErgastBaseURL = defaultErgastBaseURL
		}
	}
	c.Provider.ErgastBaseURL = strings.TrimRight(c.Provider.ErgastBaseURL, "/")
	c.Provider.LiveTimingBaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.LiveTimingBaseURL), "/")
	if c.Provider.LiveTimingBaseURL == "" {
		c.Provider.LiveTimingBaseURL = defaultLiveTimingBaseURL
	}
	if c.Provider.RequestTimeoutSeconds == 0 {
		c.Provider.RequestTimeoutSeconds = defaultRequestTimeout
	}
	c.Provider.UserAgent = strings.TrimSpace(c.Provider.UserAgent)
	if c.Provider.UserAgent == "" {
		c.Provider.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeBatch() error {
	kind, ok := race.ParseSessionKind(c.Batch.SessionType)
	if !ok {
		return fmt.Errorf("batch.session_type: unsupported value %q", c.Batch.SessionType)
	}
	c.Batch.SessionType = string(kind)
	var err error
	if c.Batch.FeaturesFile, err = expandPath(strings.TrimSpace(c.Batch.FeaturesFile)); err != nil {
		return fmt.Errorf("batch.features_file: %w", err)
	}
	if c.Batch.LapsFile, err = expandPath(strings.TrimSpace(c.Batch.LapsFile)); err != nil {
		return fmt.Errorf("batch.laps_file: %w", err)
	}
	if c.Batch.PreviewRows < 0 {
		c.Batch.PreviewRows = 0
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
