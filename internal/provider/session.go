package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"racefeatures/internal/logging"
	"racefeatures/internal/provider/ergast"
	"racefeatures/internal/provider/livetiming"
	"racefeatures/internal/race"
	"racefeatures/internal/services"
)

// LoadSession loads the race session of event. Results and laps are required
// and their errors are returned; pit stops, weather and tyre stints are
// best-effort and left absent or empty when unavailable.
func (c *Client) LoadSession(ctx context.Context, event race.Event, kind race.SessionKind) (*race.Session, error) {
	if kind != race.SessionRace {
		return nil, services.Wrap(services.ErrConfiguration, "provider", "load session",
			fmt.Sprintf("session type %q has no lap timings", kind), nil)
	}
	if event.Round <= 0 {
		return nil, services.Wrap(services.ErrNotFound, "provider", "load session",
			fmt.Sprintf("%q has no championship round", event.Name), nil)
	}
	logger := logging.WithContext(ctx, c.logger)

	results, err := c.ergast.Results(ctx, event.Season, event.Round)
	if err != nil {
		return nil, err
	}
	timings, err := c.ergast.Laps(ctx, event.Season, event.Round)
	if err != nil {
		return nil, err
	}

	pitStops := race.None[[]ergast.PitStop]()
	if stops, err := c.ergast.PitStops(ctx, event.Season, event.Round); err != nil {
		logger.Debug("pit stops unavailable", logging.Error(err))
	} else {
		pitStops = race.Some(stops)
	}

	var weather []race.WeatherSample
	var stints map[string][]livetiming.Stint
	if path, ok := event.SessionPath(kind); ok {
		if weather, err = c.live.Weather(ctx, path); err != nil {
			logger.Debug("weather unavailable", logging.Error(err))
		}
		if stints, err = c.live.Stints(ctx, path); err != nil {
			logger.Debug("tyre stints unavailable", logging.Error(err))
		}
	} else {
		logger.Debug("no live-timing path for session", logging.String("session", kind.LiveTimingName()))
	}

	return assembleSession(event, kind, results, timings, pitStops, weather, stints), nil
}

func assembleSession(
	event race.Event,
	kind race.SessionKind,
	results []ergast.Result,
	timings []ergast.Timing,
	pitStops race.Opt[[]ergast.PitStop],
	weather []race.WeatherSample,
	stints map[string][]livetiming.Stint,
) *race.Session {
	drivers := newDriverDirectory(results)

	session := &race.Session{
		Event:   event,
		Kind:    kind,
		Weather: weather,
		Results: make([]race.Result, 0, len(results)),
	}
	for _, res := range results {
		session.Results = append(session.Results, race.Result{
			Driver:       drivers.abbreviation(res.DriverID),
			DriverID:     res.DriverID,
			DriverNumber: res.Number,
			FullName:     strings.TrimSpace(res.GivenName + " " + res.FamilyName),
			Team:         res.Team,
			Grid:         res.Grid,
			Position:     res.Position,
			Status:       res.Status,
		})
	}

	stopsByDriver := make(map[string][]ergast.PitStop)
	if stops, ok := pitStops.Get(); ok {
		for _, stop := range stops {
			stopsByDriver[stop.DriverID] = append(stopsByDriver[stop.DriverID], stop)
		}
		converted := make([]race.PitStop, 0, len(stops))
		for _, stop := range stops {
			compound := race.Compound("")
			driverStints := stints[drivers.number(stop.DriverID)]
			// stop N fits the tyres of stint index N
			if stop.Stop > 0 && stop.Stop < len(driverStints) {
				compound = driverStints[stop.Stop].Compound
			}
			converted = append(converted, race.PitStop{
				Driver:   drivers.abbreviation(stop.DriverID),
				Lap:      stop.Lap,
				Stop:     stop.Stop,
				Duration: stop.Duration,
				Compound: compound,
			})
		}
		session.PitStops = race.Some(converted)
	}

	session.Laps = buildLaps(timings, drivers, stopsByDriver, stints)
	return session
}

// buildLaps groups timings per driver in order of first appearance, sorted by
// lap number, and decorates them with stint and pit information.
func buildLaps(
	timings []ergast.Timing,
	drivers driverDirectory,
	stopsByDriver map[string][]ergast.PitStop,
	stints map[string][]livetiming.Stint,
) []race.Lap {
	order := make([]string, 0)
	byDriver := make(map[string][]ergast.Timing)
	for _, t := range timings {
		if _, seen := byDriver[t.DriverID]; !seen {
			order = append(order, t.DriverID)
		}
		byDriver[t.DriverID] = append(byDriver[t.DriverID], t)
	}

	laps := make([]race.Lap, 0, len(timings))
	for _, id := range order {
		driverTimings := byDriver[id]
		sort.SliceStable(driverTimings, func(i, j int) bool { return driverTimings[i].Lap < driverTimings[j].Lap })

		pitIn := make(map[int]bool)
		for _, stop := range stopsByDriver[id] {
			pitIn[stop.Lap] = true
		}
		plan := newStintPlan(stints[drivers.number(id)])

		for _, t := range driverTimings {
			lap := race.Lap{
				Driver:       drivers.abbreviation(id),
				DriverNumber: drivers.number(id),
				LapNumber:    t.Lap,
				LapTime:      t.Time,
				Position:     t.Position,
				PitInLap:     pitIn[t.Lap],
				PitOutLap:    pitIn[t.Lap-1],
			}
			lap.Stint, lap.Compound, lap.TyreLife = plan.at(t.Lap)
			laps = append(laps, lap)
		}
	}
	return laps
}

// stintPlan maps lap numbers onto consecutive tyre stints by their lengths.
type stintPlan struct {
	stints []livetiming.Stint
	ends   []int // last lap number of each stint
}

func newStintPlan(stints []livetiming.Stint) stintPlan {
	plan := stintPlan{stints: stints, ends: make([]int, len(stints))}
	cumulative := 0
	for i, s := range stints {
		cumulative += s.Laps()
		plan.ends[i] = cumulative
	}
	return plan
}

// at returns the 1-based stint, its compound and the tyre age on lap.
// Laps past the recorded stints belong to the final stint.
func (p stintPlan) at(lap int) (int, race.Compound, int) {
	if len(p.stints) == 0 || lap <= 0 {
		return 0, "", 0
	}
	start := 0
	for i, end := range p.ends {
		if lap <= end || i == len(p.ends)-1 {
			s := p.stints[i]
			return i + 1, s.Compound, s.StartLaps + lap - start
		}
		start = end
	}
	return 0, "", 0
}

// driverDirectory resolves Ergast driver ids to abbreviations and racing
// numbers using the race classification.
type driverDirectory map[string]ergast.Result

func newDriverDirectory(results []ergast.Result) driverDirectory {
	dir := make(driverDirectory, len(results))
	for _, res := range results {
		if _, ok := dir[res.DriverID]; !ok {
			dir[res.DriverID] = res
		}
	}
	return dir
}

func (d driverDirectory) abbreviation(driverID string) string {
	if res, ok := d[driverID]; ok {
		if code := strings.TrimSpace(res.Code); code != "" {
			return strings.ToUpper(code)
		}
		if family := []rune(strings.TrimSpace(res.FamilyName)); len(family) > 0 {
			return strings.ToUpper(string(family[:min(3, len(family))]))
		}
	}
	return strings.ToUpper(driverID)
}

func (d driverDirectory) number(driverID string) string {
	return d[driverID].Number
}
