package features

import (
	"strconv"
	"strings"

	"racefeatures/internal/race"
)

// Weather is the session-level weather aggregate.
type Weather struct {
	AirTemp   race.Opt[float64]
	TrackTemp race.Opt[float64]
	Humidity  race.Opt[float64]
	Rainfall  race.Opt[bool]
}

// SummarizeWeather averages each reading over the samples that carry it.
// Rainfall is true when any sample reports a positive value. Every field is
// absent when there are no samples.
func SummarizeWeather(samples []race.WeatherSample) Weather {
	var air, track, humidity mean
	rain := race.None[bool]()
	for _, s := range samples {
		air.add(s.AirTemp)
		track.add(s.TrackTemp)
		humidity.add(s.Humidity)
		if v, ok := s.Rainfall.Get(); ok {
			rain = race.Some(rain.Value || v > 0)
		}
	}
	return Weather{
		AirTemp:   air.value(),
		TrackTemp: track.value(),
		Humidity:  humidity.value(),
		Rainfall:  rain,
	}
}

// PitSummary describes one driver's stops.
type PitSummary struct {
	Count       int
	Laps        string
	Compounds   string
	AvgDuration race.Opt[float64]
}

// SummarizePits filters stops to driver and summarises them in provider
// order. Compounds are de-duplicated and empty compounds dropped.
func SummarizePits(stops []race.PitStop, driver string) PitSummary {
	var (
		laps      []string
		compounds []string
		seen      = make(map[race.Compound]bool)
		duration  mean
		count     int
	)
	for _, stop := range stops {
		if stop.Driver != driver {
			continue
		}
		count++
		laps = append(laps, strconv.Itoa(stop.Lap))
		duration.add(stop.Duration)
		if stop.Compound != "" && !seen[stop.Compound] {
			seen[stop.Compound] = true
			compounds = append(compounds, string(stop.Compound))
		}
	}
	return PitSummary{
		Count:       count,
		Laps:        strings.Join(laps, ","),
		Compounds:   strings.Join(compounds, ","),
		AvgDuration: duration.value(),
	}
}

// MeanLapTime averages the known lap times of laps.
func MeanLapTime(laps []race.Lap) race.Opt[float64] {
	var m mean
	for _, lap := range laps {
		m.add(lap.LapTime)
	}
	return m.value()
}

// DriverFeatures flattens a session into one row per driver, in order of each
// driver's first lap. Drivers without a result row are skipped. A session
// lacking laps or results yields nothing.
func DriverFeatures(session *race.Session) []DriverRaceRow {
	if !session.HasLaps() || !session.HasResults() {
		return nil
	}
	weather := SummarizeWeather(session.Weather)
	stops, hasStops := session.PitStops.Get()

	order, byDriver := groupLaps(session.Laps)
	rows := make([]DriverRaceRow, 0, len(order))
	for _, driver := range order {
		laps := byDriver[driver]
		if len(laps) == 0 {
			continue
		}
		result, ok := session.ResultFor(driver)
		if !ok {
			continue
		}
		pits := PitSummary{}
		if hasStops {
			pits = SummarizePits(stops, driver)
		}
		rows = append(rows, DriverRaceRow{
			Season:             session.Event.Season,
			Race:               session.Event.Name,
			Driver:             driver,
			Team:               result.Team,
			Grid:               result.Grid,
			Position:           result.Position,
			MeanLapTime:        MeanLapTime(laps),
			AirTemp:            weather.AirTemp,
			TrackTemp:          weather.TrackTemp,
			Humidity:           weather.Humidity,
			Rainfall:           weather.Rainfall,
			NumPitstops:        pits.Count,
			PitStopLaps:        pits.Laps,
			PitCompounds:       pits.Compounds,
			AvgPitStopDuration: pits.AvgDuration,
		})
	}
	return rows
}

// Laps copies every lap of a session and attaches its season and race name.
func Laps(session *race.Session) []LapRow {
	if !session.HasLaps() {
		return nil
	}
	rows := make([]LapRow, 0, len(session.Laps))
	for _, lap := range session.Laps {
		rows = append(rows, LapRow{Lap: lap, Season: session.Event.Season, Race: session.Event.Name})
	}
	return rows
}

// DropTesting removes rows whose race is a testing event.
func DropTesting[R interface{ raceName() string }](rows []R) []R {
	kept := rows[:0:0]
	for _, row := range rows {
		if !race.IsTestingName(row.raceName()) {
			kept = append(kept, row)
		}
	}
	return kept
}

func (r DriverRaceRow) raceName() string { return r.Race }

func (r LapRow) raceName() string { return r.Race }

func groupLaps(laps []race.Lap) ([]string, map[string][]race.Lap) {
	order := make([]string, 0)
	byDriver := make(map[string][]race.Lap)
	for _, lap := range laps {
		if _, seen := byDriver[lap.Driver]; !seen {
			order = append(order, lap.Driver)
		}
		byDriver[lap.Driver] = append(byDriver[lap.Driver], lap)
	}
	return order, byDriver
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v race.Opt[float64]) {
	if f, ok := v.Get(); ok {
		m.sum += f
		m.n++
	}
}

func (m mean) value() race.Opt[float64] {
	if m.n == 0 {
		return race.None[float64]()
	}
	return race.Some(m.sum / float64(m.n))
}
