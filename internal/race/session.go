package race

import "time"

// Lap is one timed lap completed by one driver.
type Lap struct {
	Driver       string // three-letter abbreviation, e.g. "VER"
	DriverNumber string
	LapNumber    int
	LapTime      Opt[float64] // seconds
	Position     int
	Stint        int // 1-based; 0 when stint data is unavailable
	Compound     Compound
	TyreLife     int
	PitInLap     bool
	PitOutLap    bool
}

// Result is one classified row of a session result table.
type Result struct {
	Driver       string // abbreviation
	DriverID     string // provider driver identifier
	DriverNumber string
	FullName     string
	Team         string
	Grid         int
	Position     int
	Status       string
}

// WeatherSample is one weather reading taken during a session.
type WeatherSample struct {
	SessionTime   time.Duration
	AirTemp       Opt[float64]
	TrackTemp     Opt[float64]
	Humidity      Opt[float64]
	Pressure      Opt[float64]
	Rainfall      Opt[float64]
	WindSpeed     Opt[float64]
	WindDirection Opt[float64]
}

// PitStop is one recorded stop in the pit lane.
type PitStop struct {
	Driver   string
	Lap      int
	Stop     int
	Duration Opt[float64] // seconds in the pit lane
	Compound Compound     // compound fitted at this stop; empty when unknown
}

// Session is a loaded session for one event.
type Session struct {
	Event    Event
	Kind     SessionKind
	Laps     []Lap
	Results  []Result
	Weather  []WeatherSample
	PitStops Opt[[]PitStop] // absent when the provider has no pit-stop data
}

// HasLaps reports whether the session carries any lap data.
func (s *Session) HasLaps() bool {
	return s != nil && len(s.Laps) > 0
}

// HasResults reports whether the session carries any result rows.
func (s *Session) HasResults() bool {
	return s != nil && len(s.Results) > 0
}

// ResultFor returns the first result row whose abbreviation equals driver.
func (s *Session) ResultFor(driver string) (Result, bool) {
	if s == nil {
		return Result{}, false
	}
	for _, result := range s.Results {
		if result.Driver == driver {
			return result, true
		}
	}
	return Result{}, false
}
