package testsupport

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"racefeatures/internal/race"
)

// FakeProvider serves canned schedules and sessions.
type FakeProvider struct {
	mu sync.Mutex

	Schedules     map[int][]race.Event
	ScheduleErrs  map[int]error
	Sessions      map[string]*race.Session // keyed by SessionKey
	SessionErrs   map[string]error
	SessionCalls  []string
	ScheduleCalls []int
}

// NewFakeProvider returns an empty fake.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Schedules:    make(map[int][]race.Event),
		ScheduleErrs: make(map[int]error),
		Sessions:     make(map[string]*race.Session),
		SessionErrs:  make(map[string]error),
	}
}

// SessionKey identifies an event within the fake.
func SessionKey(season int, name string) string {
	return fmt.Sprintf("%d/%s", season, name)
}

// AddSession registers the session for its event and appends the event to
// the season schedule.
func (f *FakeProvider) AddSession(s *race.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Schedules[s.Event.Season] = append(f.Schedules[s.Event.Season], s.Event)
	f.Sessions[SessionKey(s.Event.Season, s.Event.Name)] = s
}

// AddEvent appends an event without a session.
func (f *FakeProvider) AddEvent(ev race.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Schedules[ev.Season] = append(f.Schedules[ev.Season], ev)
}

func (f *FakeProvider) Schedule(_ context.Context, season int) ([]race.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ScheduleCalls = append(f.ScheduleCalls, season)
	if err := f.ScheduleErrs[season]; err != nil {
		return nil, err
	}
	return append([]race.Event(nil), f.Schedules[season]...), nil
}

func (f *FakeProvider) LoadSession(_ context.Context, ev race.Event, _ race.SessionKind) (*race.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := SessionKey(ev.Season, ev.Name)
	f.SessionCalls = append(f.SessionCalls, key)
	if err := f.SessionErrs[key]; err != nil {
		return nil, err
	}
	if s, ok := f.Sessions[key]; ok {
		return s, nil
	}
	return &race.Session{Event: ev, Kind: race.SessionRace}, nil
}

// RaceSession builds a minimal race session where every driver completes the
// given lap times and has a classified result.
func RaceSession(season, round int, name string, lapTimes map[string][]float64) *race.Session {
	s := &race.Session{
		Event:    race.Event{Season: season, Round: round, Name: name},
		Kind:     race.SessionRace,
		PitStops: race.Some([]race.PitStop{}),
	}
	drivers := make([]string, 0, len(lapTimes))
	for driver := range lapTimes {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	for pos, driver := range drivers {
		for i, t := range lapTimes[driver] {
			s.Laps = append(s.Laps, race.Lap{Driver: driver, LapNumber: i + 1, LapTime: race.Some(t)})
		}
		s.Results = append(s.Results, race.Result{Driver: driver, Team: "Team " + driver, Grid: pos + 1, Position: pos + 1})
	}
	return s
}
