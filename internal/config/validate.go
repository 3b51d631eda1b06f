package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"racefeatures/internal/race"
)

// earliestSeason is the first year the live-timing archive and the lap
// endpoints both cover.
const earliestSeason = 2018

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSeasons(); err != nil {
		return err
	}
	if err := c.validateProvider(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSeasons() error {
	if c.Seasons.From < earliestSeason {
		return fmt.Errorf("seasons.from must be >= %d", earliestSeason)
	}
	if c.Seasons.To < c.Seasons.From {
		return errors.New("seasons.to must be >= seasons.from")
	}
	return nil
}

func (c *Config) validateProvider() error {
	for key, value := range map[string]string{
		"provider.ergast_base_url":     c.Provider.ErgastBaseURL,
		"provider.livetiming_base_url": c.Provider.LiveTimingBaseURL,
	} {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
		}
	}
	if c.Provider.RequestTimeoutSeconds <= 0 {
		return errors.New("provider.request_timeout_seconds must be positive")
	}
	if c.Provider.MinRequestIntervalMillis < 0 {
		return errors.New("provider.min_request_interval_ms must be >= 0")
	}
	if !c.Provider.DisableCache && strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set unless provider.disable_cache is true")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.EventDelaySeconds < 0 {
		return errors.New("batch.event_delay_seconds must be >= 0")
	}
	// lap timings are only published for races
	if c.Batch.SessionType != string(race.SessionRace) {
		return fmt.Errorf("batch.session_type %q is not supported; only R carries lap data", c.Batch.SessionType)
	}
	return nil
}
