// Package batch drives an extraction job across seasons and events: it walks
// each season's schedule, loads race sessions, flattens them and accumulates
// rows, pausing between processed events.
package batch

import (
	"context"
	"log/slog"
	"time"

	"racefeatures/internal/features"
	"racefeatures/internal/logging"
	"racefeatures/internal/provider"
	"racefeatures/internal/race"
	"racefeatures/internal/services"
)

// Job describes how to turn a session into rows.
type Job[R any] struct {
	Name           string
	RequireResults bool
	Extract        func(*race.Session) []R
	// Finalize runs once over the accumulated rows.
	Finalize func([]R) []R
}

// FeaturesJob builds one row per driver per race.
var FeaturesJob = Job[features.DriverRaceRow]{
	Name:           "features",
	RequireResults: true,
	Extract:        features.DriverFeatures,
	Finalize:       features.DropTesting[features.DriverRaceRow],
}

// LapsJob builds one row per lap.
var LapsJob = Job[features.LapRow]{
	Name:     "laps",
	Extract:  features.Laps,
	Finalize: features.DropTesting[features.LapRow],
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options controls a run.
type Options struct {
	Seasons []int
	Session race.SessionKind
	// Delay is the pause after each processed event.
	Delay  time.Duration
	Sleep  SleepFunc
	Logger *slog.Logger
}

// Run executes job over every season. Season and event failures are logged
// and skipped; only cancellation of ctx aborts the run, in which case no rows
// are returned.
func Run[R any](ctx context.Context, p provider.Provider, job Job[R], opts Options) ([]R, Summary, error) {
	r := runner[R]{
		provider: p,
		job:      job,
		opts:     opts,
		logger:   logging.NewComponentLogger(opts.Logger, "batch"),
		summary:  Summary{Job: job.Name},
	}
	if r.opts.Sleep == nil {
		r.opts.Sleep = services.SleepWithContext
	}
	if r.opts.Session == "" {
		r.opts.Session = race.SessionRace
	}
	ctx = services.WithJob(ctx, job.Name)

	var rows []R
	for _, season := range opts.Seasons {
		seasonRows, err := r.season(ctx, season)
		if err != nil {
			return nil, r.summary, err
		}
		rows = append(rows, seasonRows...)
	}
	if job.Finalize != nil {
		rows = job.Finalize(rows)
	}
	r.summary.Rows = len(rows)
	r.logSummary(ctx)
	return rows, r.summary, nil
}

type runner[R any] struct {
	provider     provider.Provider
	job          Job[R]
	opts         Options
	logger       *slog.Logger
	summary      Summary
	pausePending bool
}

func (r *runner[R]) season(ctx context.Context, season int) ([]R, error) {
	r.summary.Seasons++
	ctx = services.WithSeason(ctx, season)
	logger := logging.WithContext(ctx, r.logger)

	if err := r.pause(ctx); err != nil {
		return nil, err
	}
	events, err := r.provider.Schedule(ctx, season)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.summary.SeasonsFailed++
		logging.WarnWithContext(logger, "could not load schedule", "season_failed",
			logging.Error(err),
			logging.String("error_kind", services.Kind(err)),
			logging.String(logging.FieldImpact, "season contributes no rows"),
		)
		return nil, nil
	}
	logger.Info("schedule loaded", logging.Int("events", len(events)))

	var rows []R
	for _, event := range events {
		eventRows, outcome, err := r.event(ctx, event)
		if err != nil {
			return nil, err
		}
		r.summary.record(outcome)
		rows = append(rows, eventRows...)
	}
	return rows, nil
}

func (r *runner[R]) event(ctx context.Context, event race.Event) ([]R, Outcome, error) {
	ctx = services.WithEvent(ctx, event.Name)
	logger := logging.WithContext(ctx, r.logger)

	if event.IsTesting() {
		logger.Info("skipped: testing event", logging.String(logging.FieldEventType, SkipTesting.String()))
		return nil, Outcome{Kind: SkipTesting}, nil
	}
	if err := r.pause(ctx); err != nil {
		return nil, Outcome{}, err
	}

	logger.Info("processing event", logging.Int(logging.FieldRound, event.Round))
	rows, outcome := ProcessEvent(ctx, r.provider, r.job, event, r.opts.Session)
	switch outcome.Kind {
	case Processed:
		logger.Info("event processed", logging.Int("rows", outcome.Rows))
		r.pausePending = true
	case SkipNoLaps:
		logger.Info("skipped: no laps data", logging.String(logging.FieldEventType, outcome.Kind.String()))
	case SkipNoResults:
		logger.Info("skipped: no results data", logging.String(logging.FieldEventType, outcome.Kind.String()))
	case Failed:
		if ctx.Err() != nil {
			return nil, outcome, ctx.Err()
		}
		logging.WarnWithContext(logger, "could not process event", "event_failed",
			logging.Error(outcome.Err),
			logging.String("error_kind", services.Kind(outcome.Err)),
		)
	}
	return rows, outcome, nil
}

// pause waits out the delay owed by the previous processed event before the
// next provider request.
func (r *runner[R]) pause(ctx context.Context) error {
	if !r.pausePending {
		return nil
	}
	r.pausePending = false
	if r.opts.Delay <= 0 {
		return nil
	}
	return r.opts.Sleep(ctx, r.opts.Delay)
}

func (r *runner[R]) logSummary(ctx context.Context) {
	s := r.summary
	logging.WithContext(ctx, r.logger).Info("run complete",
		logging.Int("seasons", s.Seasons),
		logging.Int("seasons_failed", s.SeasonsFailed),
		logging.Int("events_processed", s.EventsProcessed),
		logging.Int("skipped_testing", s.SkippedTesting),
		logging.Int("skipped_no_laps", s.SkippedNoLaps),
		logging.Int("skipped_no_results", s.SkippedNoResults),
		logging.Int("events_failed", s.EventsFailed),
		logging.Int("rows", s.Rows),
	)
}

// ProcessEvent loads one event's session and flattens it with job.
func ProcessEvent[R any](ctx context.Context, p provider.Provider, job Job[R], event race.Event, kind race.SessionKind) ([]R, Outcome) {
	if event.IsTesting() {
		return nil, Outcome{Kind: SkipTesting}
	}
	session, err := p.LoadSession(ctx, event, kind)
	if err != nil {
		return nil, Outcome{Kind: Failed, Err: err}
	}
	if !session.HasLaps() {
		return nil, Outcome{Kind: SkipNoLaps}
	}
	if job.RequireResults && !session.HasResults() {
		return nil, Outcome{Kind: SkipNoResults}
	}
	rows := job.Extract(session)
	return rows, Outcome{Kind: Processed, Rows: len(rows)}
}
