// Package provider loads season schedules and race sessions by combining the
// Ergast-compatible results API with the live-timing archive.
package provider

import (
	"context"
	"log/slog"
	"time"

	"racefeatures/internal/config"
	"racefeatures/internal/logging"
	"racefeatures/internal/provider/ergast"
	"racefeatures/internal/provider/fetch"
	"racefeatures/internal/provider/httpcache"
	"racefeatures/internal/provider/livetiming"
	"racefeatures/internal/race"
)

// Provider supplies schedules and loaded sessions.
type Provider interface {
	Schedule(ctx context.Context, season int) ([]race.Event, error)
	LoadSession(ctx context.Context, event race.Event, kind race.SessionKind) (*race.Session, error)
}

// Config holds everything needed to construct a Client. There is no
// package-level state; each Client owns its cache handle.
type Config struct {
	CacheDir           string
	ErgastBaseURL      string
	LiveTimingBaseURL  string
	RequestTimeout     time.Duration
	MinRequestInterval time.Duration
	UserAgent          string
	DisableCache       bool
}

// ConfigFrom extracts provider settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		CacheDir:           cfg.Paths.CacheDir,
		ErgastBaseURL:      cfg.Provider.ErgastBaseURL,
		LiveTimingBaseURL:  cfg.Provider.LiveTimingBaseURL,
		RequestTimeout:     cfg.RequestTimeout(),
		MinRequestInterval: cfg.MinRequestInterval(),
		UserAgent:          cfg.Provider.UserAgent,
		DisableCache:       cfg.Provider.DisableCache,
	}
}

// Client implements Provider over HTTP.
type Client struct {
	ergast  *ergast.Client
	live    *livetiming.Client
	fetcher *fetch.Fetcher
	cache   *httpcache.Store
	logger  *slog.Logger
}

// New opens the response cache (unless disabled) and wires both API clients.
// Callers must Close the client to release the cache lock.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	logger = logging.NewComponentLogger(logger, "provider")
	var store *httpcache.Store
	if !cfg.DisableCache {
		var err error
		store, err = httpcache.Open(ctx, cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("response cache opened", logging.String("path", store.Path()))
	}
	fetcher := fetch.New(fetch.Options{
		Timeout:     cfg.RequestTimeout,
		MinInterval: cfg.MinRequestInterval,
		UserAgent:   cfg.UserAgent,
		Cache:       store,
		Logger:      logger,
	})
	return &Client{
		ergast:  ergast.New(cfg.ErgastBaseURL, fetcher),
		live:    livetiming.New(cfg.LiveTimingBaseURL, fetcher),
		fetcher: fetcher,
		cache:   store,
		logger:  logger,
	}, nil
}

// Close releases the response cache.
func (c *Client) Close() error {
	if c == nil || c.cache == nil {
		return nil
	}
	hits, misses := c.fetcher.Counts()
	c.logger.Debug("closing response cache", logging.Int("cache_hits", hits), logging.Int("cache_misses", misses))
	return c.cache.Close()
}
