package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"racefeatures/internal/logging"
	"racefeatures/internal/provider/ergast"
	"racefeatures/internal/provider/livetiming"
	"racefeatures/internal/race"
)

var nameFolder = cases.Fold()

// Schedule lists every event of season: the championship rounds from Ergast
// plus meetings that only appear in the live-timing index, such as
// pre-season testing. An unavailable index leaves the Ergast list as is.
func (c *Client) Schedule(ctx context.Context, season int) ([]race.Event, error) {
	races, err := c.ergast.Races(ctx, season)
	if err != nil {
		return nil, err
	}
	idx, err := c.live.Index(ctx, season)
	if err != nil {
		logging.WarnWithContext(c.logger, "live-timing index unavailable", "schedule_degraded",
			logging.Int(logging.FieldSeason, season),
			logging.Error(err),
			logging.String(logging.FieldImpact, "weather and tyre data missing for this season"),
			logging.String(logging.FieldErrorHint, "check provider.livetiming_base_url"),
		)
		idx = &livetiming.Index{Year: season}
	}
	return mergeSchedule(season, races, idx.Meetings), nil
}

func mergeSchedule(season int, races []ergast.Race, meetings []livetiming.Meeting) []race.Event {
	used := make([]bool, len(meetings))
	events := make([]race.Event, 0, len(races)+2)
	for _, r := range races {
		ev := race.Event{Season: season, Round: r.Round, Name: r.Name, RaceDate: r.Date}
		if i := matchMeeting(r, meetings, used); i >= 0 {
			used[i] = true
			ev.SessionPaths = sessionPaths(meetings[i])
		}
		events = append(events, ev)
	}
	for i, m := range meetings {
		if used[i] || !race.IsTestingName(m.Name) {
			continue
		}
		events = append(events, race.Event{
			Season:       season,
			Name:         strings.TrimSpace(m.Name),
			RaceDate:     firstSessionStart(m),
			SessionPaths: sessionPaths(m),
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].RaceDate, events[j].RaceDate
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Before(b)
	})
	return events
}

// matchMeeting finds the meeting for r by case-folded name, then by a race
// session starting within a day of the race date.
func matchMeeting(r ergast.Race, meetings []livetiming.Meeting, used []bool) int {
	name := nameFolder.String(strings.TrimSpace(r.Name))
	for i, m := range meetings {
		if !used[i] && nameFolder.String(strings.TrimSpace(m.Name)) == name {
			return i
		}
	}
	if r.Date.IsZero() {
		return -1
	}
	for i, m := range meetings {
		if used[i] {
			continue
		}
		for _, s := range m.Sessions {
			if s.Name != race.SessionRace.LiveTimingName() {
				continue
			}
			start := s.Start()
			if start.IsZero() {
				continue
			}
			if diff := start.Sub(r.Date); diff < 36*time.Hour && diff > -36*time.Hour {
				return i
			}
		}
	}
	return -1
}

func sessionPaths(m livetiming.Meeting) map[string]string {
	paths := make(map[string]string, len(m.Sessions))
	for _, s := range m.Sessions {
		if s.Name != "" && s.Path != "" {
			paths[s.Name] = s.Path
		}
	}
	return paths
}

func firstSessionStart(m livetiming.Meeting) time.Time {
	var first time.Time
	for _, s := range m.Sessions {
		start := s.Start()
		if start.IsZero() {
			continue
		}
		if first.IsZero() || start.Before(first) {
			first = start
		}
	}
	return first
}
