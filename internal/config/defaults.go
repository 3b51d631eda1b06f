package config

import "racefeatures/internal/race"

const (
	defaultConfigPath           = "~/.config/racefeatures/config.toml"
	defaultOutputDir            = "data/features"
	defaultErgastBaseURL        = "https://api.jolpi.ca/ergast/f1"
	defaultLiveTimingBaseURL    = "https://livetiming.formula1.com/static"
	defaultRequestTimeout       = 30
	defaultMinRequestIntervalMs = 250
	defaultUserAgent            = "racefeatures/dev"
	defaultEventDelaySeconds    = 3
	defaultSessionType          = "R"
	defaultPreviewRows          = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			CacheDir:  defaultCacheDir(),
		},
		Seasons: Seasons{
			From: race.DefaultFirstSeason,
			To:   race.DefaultLastSeason,
		},
		Provider: Provider{
			ErgastBaseURL:            defaultErgastBaseURL,
			LiveTimingBaseURL:        defaultLiveTimingBaseURL,
			RequestTimeoutSeconds:    defaultRequestTimeout,
			MinRequestIntervalMillis: defaultMinRequestIntervalMs,
			UserAgent:                defaultUserAgent,
		},
		Batch: Batch{
			EventDelaySeconds: defaultEventDelaySeconds,
			SessionType:       defaultSessionType,
			PreviewRows:       defaultPreviewRows,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
