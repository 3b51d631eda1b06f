// Package fetch issues rate-limited, cached GET requests for the provider
// clients.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"racefeatures/internal/logging"
	"racefeatures/internal/provider/httpcache"
	"racefeatures/internal/services"
)

// Getter retrieves the body of a URL.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Fetcher.
type Options struct {
	Timeout     time.Duration
	MinInterval time.Duration
	UserAgent   string
	Cache       *httpcache.Store // nil disables caching
	Logger      *slog.Logger
}

// Fetcher performs GET requests through resty, consulting the cache first
// and spacing network requests at least MinInterval apart.
type Fetcher struct {
	client      *resty.Client
	cache       *httpcache.Store
	minInterval time.Duration
	logger      *slog.Logger

	mu       sync.Mutex
	lastCall time.Time
	hits     int
	misses   int
}

// New constructs a Fetcher.
func New(opts Options) *Fetcher {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.SetHeader("Accept", "application/json, text/plain, */*")
	return &Fetcher{
		client:      client,
		cache:       opts.Cache,
		minInterval: opts.MinInterval,
		logger:      logging.NewComponentLogger(opts.Logger, "fetch"),
	}
}

// Get returns the response body for url, from the cache when possible.
// Non-2xx responses are errors; 404 carries services.ErrNotFound.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		entry, err := f.cache.Get(ctx, url)
		if err != nil {
			f.logger.Warn("cache lookup failed", logging.String("url", url), logging.Error(err))
		} else if entry != nil {
			f.count(true)
			f.logger.Debug("cache hit", logging.String("url", url))
			return entry.Body, nil
		}
	}
	f.count(false)

	if err := f.waitForWindow(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(url)
	f.markCall()
	if err != nil {
		return nil, services.Wrap(services.ErrProvider, "fetch", "get", url, err)
	}
	status := resp.StatusCode()
	f.logger.Debug("fetched",
		logging.String("url", url),
		logging.Int("status", status),
		logging.Duration("elapsed", time.Since(start)),
	)
	switch {
	case status == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "fetch", "get", url, nil)
	case status < 200 || status > 299:
		return nil, services.Wrap(services.ErrProvider, "fetch", "get", fmt.Sprintf("%s: unexpected status %d", url, status), nil)
	}

	body := resp.Body()
	if f.cache != nil {
		if err := f.cache.Put(ctx, url, status, body); err != nil {
			f.logger.Warn("cache store failed", logging.String("url", url), logging.Error(err))
		}
	}
	return body, nil
}

// Counts returns the number of cache hits and misses so far.
func (f *Fetcher) Counts() (hits, misses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits, f.misses
}

func (f *Fetcher) count(hit bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if hit {
		f.hits++
	} else {
		f.misses++
	}
}

func (f *Fetcher) waitForWindow(ctx context.Context) error {
	f.mu.Lock()
	last := f.lastCall
	f.mu.Unlock()
	if last.IsZero() || f.minInterval <= 0 {
		return nil
	}
	elapsed := time.Since(last)
	if elapsed >= f.minInterval {
		return nil
	}
	return services.SleepWithContext(ctx, f.minInterval-elapsed)
}

func (f *Fetcher) markCall() {
	f.mu.Lock()
	f.lastCall = time.Now()
	f.mu.Unlock()
}
