package features

import (
	"strconv"

	"racefeatures/internal/race"
)

// DriverFeatureColumns is the header of the driver-feature table.
var DriverFeatureColumns = []string{
	"Season", "Race", "Driver", "Team", "Grid", "Position", "MeanLapTime",
	"AirTemp", "TrackTemp", "Humidity", "Rainfall",
	"NumPitstops", "PitStopLaps", "PitCompounds", "AvgPitStopDuration",
}

// DriverRaceRow summarises one driver's race.
type DriverRaceRow struct {
	Season             int
	Race               string
	Driver             string
	Team               string
	Grid               int
	Position           int
	MeanLapTime        race.Opt[float64]
	AirTemp            race.Opt[float64]
	TrackTemp          race.Opt[float64]
	Humidity           race.Opt[float64]
	Rainfall           race.Opt[bool]
	NumPitstops        int
	PitStopLaps        string // comma-joined lap numbers
	PitCompounds       string // comma-joined unique compounds
	AvgPitStopDuration race.Opt[float64]
}

// Record renders the row in DriverFeatureColumns order. Absent values are
// empty cells.
func (r DriverRaceRow) Record() []string {
	return []string{
		strconv.Itoa(r.Season),
		r.Race,
		r.Driver,
		r.Team,
		strconv.Itoa(r.Grid),
		strconv.Itoa(r.Position),
		formatFloat(r.MeanLapTime),
		formatFloat(r.AirTemp),
		formatFloat(r.TrackTemp),
		formatFloat(r.Humidity),
		formatBool(r.Rainfall),
		strconv.Itoa(r.NumPitstops),
		r.PitStopLaps,
		r.PitCompounds,
		formatFloat(r.AvgPitStopDuration),
	}
}

// LapColumns is the header of the lap-level table.
var LapColumns = []string{
	"Driver", "DriverNumber", "LapNumber", "LapTime", "Position",
	"Stint", "Compound", "TyreLife", "PitInLap", "PitOutLap",
	"Season", "Race",
}

// LapRow is one raw lap with its season and race attached.
type LapRow struct {
	race.Lap
	Season int
	Race   string
}

// Record renders the row in LapColumns order. A lap without stint data has
// empty stint, compound and tyre-life cells.
func (r LapRow) Record() []string {
	stint, tyreLife := "", ""
	if r.Stint > 0 {
		stint = strconv.Itoa(r.Stint)
		tyreLife = strconv.Itoa(r.TyreLife)
	}
	position := ""
	if r.Position > 0 {
		position = strconv.Itoa(r.Position)
	}
	return []string{
		r.Driver,
		r.DriverNumber,
		strconv.Itoa(r.LapNumber),
		formatFloat(r.LapTime),
		position,
		stint,
		string(r.Compound),
		tyreLife,
		formatBool(race.Some(r.PitInLap)),
		formatBool(race.Some(r.PitOutLap)),
		strconv.Itoa(r.Season),
		r.Race,
	}
}

func formatFloat(v race.Opt[float64]) string {
	f, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(v race.Opt[bool]) string {
	b, ok := v.Get()
	switch {
	case !ok:
		return ""
	case b:
		return "True"
	default:
		return "False"
	}
}
