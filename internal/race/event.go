package race

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Default season range used when no configuration overrides it.
const (
	DefaultFirstSeason = 2018
	DefaultLastSeason  = 2024
)

// SessionKind identifies a session within a race weekend.
type SessionKind string

const (
	SessionPractice1  SessionKind = "FP1"
	SessionPractice2  SessionKind = "FP2"
	SessionPractice3  SessionKind = "FP3"
	SessionQualifying SessionKind = "Q"
	SessionSprint     SessionKind = "S"
	SessionRace       SessionKind = "R"
)

// ParseSessionKind maps a user supplied identifier onto a SessionKind.
func ParseSessionKind(value string) (SessionKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "R", "RACE", "":
		return SessionRace, true
	case "Q", "QUALIFYING":
		return SessionQualifying, true
	case "S", "SPRINT":
		return SessionSprint, true
	case "FP1", "PRACTICE 1":
		return SessionPractice1, true
	case "FP2", "PRACTICE 2":
		return SessionPractice2, true
	case "FP3", "PRACTICE 3":
		return SessionPractice3, true
	default:
		return "", false
	}
}

// LiveTimingName returns the session name used by the live-timing archive.
func (k SessionKind) LiveTimingName() string {
	switch k {
	case SessionPractice1:
		return "Practice 1"
	case SessionPractice2:
		return "Practice 2"
	case SessionPractice3:
		return "Practice 3"
	case SessionQualifying:
		return "Qualifying"
	case SessionSprint:
		return "Sprint"
	default:
		return "Race"
	}
}

// Seasons returns the inclusive range of years [from, to].
func Seasons(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for year := from; year <= to; year++ {
		out = append(out, year)
	}
	return out
}

// Event is one entry of a season schedule.
type Event struct {
	Season   int
	Round    int       // 0 when the event has no classified round (e.g. testing)
	Name     string    // EventName, e.g. "Bahrain Grand Prix"
	RaceDate time.Time // zero when unknown
	// SessionPaths maps session names (e.g. "Race") to live-timing archive paths.
	SessionPaths map[string]string
}

// IsTesting reports whether the event is a testing event.
func (e Event) IsTesting() bool {
	return IsTestingName(e.Name)
}

// SessionPath returns the live-timing archive path for the session kind.
func (e Event) SessionPath(kind SessionKind) (string, bool) {
	path, ok := e.SessionPaths[kind.LiveTimingName()]
	if !ok || strings.TrimSpace(path) == "" {
		return "", false
	}
	return path, true
}

var folder = cases.Fold()

// IsTestingName is the single predicate deciding whether an event name denotes
// a testing event: "Testing" anywhere in the name, compared case-folded.
func IsTestingName(name string) bool {
	return strings.Contains(folder.String(name), "testing")
}
