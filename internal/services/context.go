package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	seasonKey contextKey = "season"
	eventKey  contextKey = "event"
	jobKey    contextKey = "job"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSeason annotates context with the season being processed.
func WithSeason(ctx context.Context, season int) context.Context {
	return context.WithValue(ctx, seasonKey, season)
}

// SeasonFromContext extracts the season if present.
func SeasonFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(seasonKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithEvent annotates context with the event name being processed.
func WithEvent(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, eventKey, name)
}

// EventFromContext returns the event name if present.
func EventFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(eventKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithJob annotates context with the batch job name (features, laps).
func WithJob(ctx context.Context, job string) context.Context {
	if job == "" {
		return ctx
	}
	return context.WithValue(ctx, jobKey, job)
}

// JobFromContext returns the job name if present.
func JobFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(jobKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
