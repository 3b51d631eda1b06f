package testsupport

import (
	"path/filepath"
	"testing"

	"racefeatures/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Network endpoints point at an unroutable address unless overridden.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = ""
	cfgVal.Provider.ErgastBaseURL = "http://127.0.0.1:0/ergast"
	cfgVal.Provider.LiveTimingBaseURL = "http://127.0.0.1:0/static"
	cfgVal.Provider.MinRequestIntervalMillis = 0
	cfgVal.Batch.EventDelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSeasons sets the season range.
func WithSeasons(from, to int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Seasons.From = from
		b.cfg.Seasons.To = to
	}
}

// WithServer points both provider base URLs at baseURL ("/ergast" and
// "/static" suffixes).
func WithServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Provider.ErgastBaseURL = baseURL + "/ergast"
		b.cfg.Provider.LiveTimingBaseURL = baseURL + "/static"
	}
}

// WithLogDir enables the JSON log file under the test's temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}
