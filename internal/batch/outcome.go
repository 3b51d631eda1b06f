package batch

import "fmt"

// OutcomeKind classifies what happened to one event.
type OutcomeKind int

const (
	Processed OutcomeKind = iota
	SkipTesting
	SkipNoLaps
	SkipNoResults
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Processed:
		return "processed"
	case SkipTesting:
		return "skipped_testing"
	case SkipNoLaps:
		return "skipped_no_laps"
	case SkipNoResults:
		return "skipped_no_results"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of processing one event.
type Outcome struct {
	Kind OutcomeKind
	Rows int
	Err  error // set when Kind is Failed
}

// Summary tallies a whole run.
type Summary struct {
	Job              string
	Seasons          int
	SeasonsFailed    int
	EventsProcessed  int
	SkippedTesting   int
	SkippedNoLaps    int
	SkippedNoResults int
	EventsFailed     int
	Rows             int
}

func (s *Summary) record(o Outcome) {
	switch o.Kind {
	case Processed:
		s.EventsProcessed++
	case SkipTesting:
		s.SkippedTesting++
	case SkipNoLaps:
		s.SkippedNoLaps++
	case SkipNoResults:
		s.SkippedNoResults++
	case Failed:
		s.EventsFailed++
	}
}
