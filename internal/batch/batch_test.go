package batch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"racefeatures/internal/batch"
	"racefeatures/internal/logging"
	"racefeatures/internal/race"
	"racefeatures/internal/testsupport"
)

type sleepRecorder struct {
	calls []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

func options(seasons []int, rec *sleepRecorder) batch.Options {
	return batch.Options{
		Seasons: seasons,
		Session: race.SessionRace,
		Delay:   3 * time.Second,
		Sleep:   rec.sleep,
		Logger:  logging.NewNop(),
	}
}

func TestFeaturesSkipTestingEvents(t *testing.T) {
	fake := testsupport.NewFakeProvider()
	fake.AddSession(testsupport.RaceSession(2023, 0, "Pre-Season Testing", map[string][]float64{"VER": {100}}))
	fake.AddSession(testsupport.RaceSession(2023, 1, "Bahrain Grand Prix", map[string][]float64{"VER": {91}, "LEC": {92}}))

	rec := &sleepRecorder{}
	rows, summary, err := batch.Run(context.Background(), fake, batch.FeaturesJob, options([]int{2023}, rec))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if race.IsTestingName(row.Race) {
			t.Fatalf("testing event leaked into output: %+v", row)
		}
	}
	if summary.SkippedTesting != 1 || summary.EventsProcessed != 1 || summary.Rows != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	for _, call := range fake.SessionCalls {
		if call == testsupport.SessionKey(2023, "Pre-Season Testing") {
			t.Fatal("testing session should not be loaded")
		}
	}
}

func TestFailingScheduleSkipsSeasonOnly(t *testing.T) {
	fake := testsupport.NewFakeProvider()
	fake.ScheduleErrs[2019] = errors.New("schedule unavailable")
	fake.AddSession(testsupport.RaceSession(2018, 1, "Australian Grand Prix", map[string][]float64{"HAM": {90}}))
	fake.AddSession(testsupport.RaceSession(2020, 1, "Austrian Grand Prix", map[string][]float64{"BOT": {70}}))

	rec := &sleepRecorder{}
	rows, summary, err := batch.Run(context.Background(), fake, batch.FeaturesJob, options([]int{2018, 2019, 2020}, rec))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 2 || rows[0].Season != 2018 || rows[1].Season != 2020 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if summary.SeasonsFailed != 1 || summary.Seasons != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(fake.ScheduleCalls) != 3 {
		t.Fatalf("expected every season to be attempted, got %v", fake.ScheduleCalls)
	}
}

func TestEventWithoutLapsContributesNothing(t *testing.T) {
	fake := testsupport.NewFakeProvider()
	empty := testsupport.RaceSession(2021, 1, "Belgian Grand Prix", nil)
	empty.Results = []race.Result{{Driver: "VER"}}
	fake.AddSession(empty)
	fake.AddSession(testsupport.RaceSession(2021, 2, "Dutch Grand Prix", map[string][]float64{"VER": {72, 73}}))

	for _, tc := range []struct {
		name string
		run  func() (int, batch.Summary, error)
	}{
		{"features", func() (int, batch.Summary, error) {
			rows, s, err := batch.Run(context.Background(), fake, batch.FeaturesJob, options([]int{2021}, &sleepRecorder{}))
			for _, r := range rows {
				if r.Race == "Belgian Grand Prix" {
					t.Fatalf("lapless event produced a row: %+v", r)
				}
			}
			return len(rows), s, err
		}},
		{"laps", func() (int, batch.Summary, error) {
			rows, s, err := batch.Run(context.Background(), fake, batch.LapsJob, options([]int{2021}, &sleepRecorder{}))
			for _, r := range rows {
				if r.Race == "Belgian Grand Prix" {
					t.Fatalf("lapless event produced a row: %+v", r)
				}
			}
			return len(rows), s, err
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			n, summary, err := tc.run()
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if summary.SkippedNoLaps != 1 || summary.EventsProcessed != 1 {
				t.Fatalf("unexpected summary %+v", summary)
			}
			if n == 0 {
				t.Fatal("expected rows from the second event")
			}
		})
	}
}

func TestResultsRequiredOnlyForFeatures(t *testing.T) {
	fake := testsupport.NewFakeProvider()
	noResults := testsupport.RaceSession(2022, 1, "Bahrain Grand Prix", map[string][]float64{"LEC": {95, 96}})
	noResults.Results = nil
	fake.AddSession(noResults)

	_, featureSummary, err := batch.Run(context.Background(), fake, batch.FeaturesJob, options([]int{2022}, &sleepRecorder{}))
	if err != nil {
		t.Fatalf("Run features: %v", err)
	}
	if featureSummary.SkippedNoResults != 1 || featureSummary.Rows != 0 {
		t.Fatalf("unexpected features summary %+v", featureSummary)
	}

	laps, lapSummary, err := batch.Run(context.Background(), fake, batch.LapsJob, options([]int{2022}, &sleepRecorder{}))
	if err != nil {
		t.Fatalf("Run laps: %v", err)
	}
	if len(laps) != 2 || lapSummary.EventsProcessed != 1 {
		t.Fatalf("unexpected laps %d / %+v", len(laps), lapSummary)
	}
	if laps[0].Season != 2022 || laps[0].Race != "Bahrain Grand Prix" {
		t.Fatalf("season and race not attached: %+v", laps[0])
	}
}

func TestPauseOnlyAfterProcessedEvents(t *testing.T) {
	fake := testsupport.NewFakeProvider()
	fake.AddSession(testsupport.RaceSession(2023, 1, "Bahrain Grand Prix", map[string][]float64{"VER": {91}}))
	fake.AddEvent(race.Event{Season: 2023, Round: 2, Name: "Saudi Arabian Grand Prix"})
	fake.SessionErrs[testsupport.SessionKey(2023, "Saudi Arabian Grand Prix")] = errors.New("boom")
	fake.AddSession(testsupport.RaceSession(2023, 3, "Australian Grand Prix", nil))
	fake.AddSession(testsupport.RaceSession(2023, 4, "Azerbaijan Grand Prix", map[string][]float64{"PER": {105}}))
	fake.AddSession(testsupport.RaceSession(2023, 5, "Miami Grand Prix", map[string][]float64{"VER": {92}}))

	rec := &sleepRecorder{}
	_, summary, err := batch.Run(context.Background(), fake, batch.FeaturesJob, options([]int{2023}, rec))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.EventsProcessed != 3 || summary.EventsFailed != 1 || summary.SkippedNoLaps != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	// Bahrain and Azerbaijan each owe a pause before the next request; the
	// final event's pause is never needed.
	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 pauses, got %v", rec.calls)
	}
	for _, d := range rec.calls {
		if d != 3*time.Second {
			t.Fatalf("unexpected pause %v", d)
		}
	}
}

func TestCancellationAbortsRun(t *testing.T) {
	fake := testsupport.NewFakeProvider()
	fake.AddSession(testsupport.RaceSession(2023, 1, "Bahrain Grand Prix", map[string][]float64{"VER": {91}}))
	fake.AddSession(testsupport.RaceSession(2023, 2, "Saudi Arabian Grand Prix", map[string][]float64{"VER": {90}}))

	rec := &sleepRecorder{err: context.Canceled}
	rows, _, err := batch.Run(context.Background(), fake, batch.FeaturesJob, options([]int{2023}, rec))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if rows != nil {
		t.Fatalf("expected no rows on cancellation, got %d", len(rows))
	}
}

func TestProcessEventOutcomes(t *testing.T) {
	fake := testsupport.NewFakeProvider()
	ok := testsupport.RaceSession(2023, 1, "Bahrain Grand Prix", map[string][]float64{"VER": {91}, "LEC": {92}})
	fake.AddSession(ok)
	fake.SessionErrs[testsupport.SessionKey(2023, "Broken Grand Prix")] = errors.New("decode failure")

	cases := []struct {
		event race.Event
		want  batch.OutcomeKind
		rows  int
	}{
		{ok.Event, batch.Processed, 2},
		{race.Event{Season: 2023, Name: "Pre-Season Testing"}, batch.SkipTesting, 0},
		{race.Event{Season: 2023, Round: 9, Name: "Broken Grand Prix"}, batch.Failed, 0},
		{race.Event{Season: 2023, Round: 10, Name: "Empty Grand Prix"}, batch.SkipNoLaps, 0},
	}
	for _, tc := range cases {
		rows, outcome := batch.ProcessEvent(context.Background(), fake, batch.FeaturesJob, tc.event, race.SessionRace)
		if outcome.Kind != tc.want || len(rows) != tc.rows || outcome.Rows != tc.rows {
			t.Errorf("%s: got %v with %d rows, want %v with %d", tc.event.Name, outcome.Kind, len(rows), tc.want, tc.rows)
		}
		if (outcome.Kind == batch.Failed) != (outcome.Err != nil) {
			t.Errorf("%s: error presence mismatch: %v", tc.event.Name, outcome.Err)
		}
	}
}

func TestDuplicateEventsBothAppear(t *testing.T) {
	fake := testsupport.NewFakeProvider()
	session := testsupport.RaceSession(2023, 1, "Bahrain Grand Prix", map[string][]float64{"VER": {91}})
	fake.AddSession(session)
	fake.AddEvent(session.Event)

	rows, _, err := batch.Run(context.Background(), fake, batch.FeaturesJob, options([]int{2023}, &sleepRecorder{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 2 || rows[0] != rows[1] {
		t.Fatalf("expected two identical rows, got %+v", rows)
	}
}
