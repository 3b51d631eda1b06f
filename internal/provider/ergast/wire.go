package ergast

// Wire types for the Ergast-compatible JSON API. Numeric fields arrive as
// strings.

type envelope struct {
	MRData mrData `json:"MRData"`
}

type mrData struct {
	Limit     string    `json:"limit"`
	Offset    string    `json:"offset"`
	Total     string    `json:"total"`
	RaceTable raceTable `json:"RaceTable"`
}

type raceTable struct {
	Season string     `json:"season"`
	Races  []wireRace `json:"Races"`
}

type wireRace struct {
	Season   string        `json:"season"`
	Round    string        `json:"round"`
	RaceName string        `json:"raceName"`
	Date     string        `json:"date"`
	Time     string        `json:"time"`
	Circuit  wireCircuit   `json:"Circuit"`
	Results  []wireResult  `json:"Results"`
	Laps     []wireLap     `json:"Laps"`
	PitStops []wirePitStop `json:"PitStops"`
}

type wireCircuit struct {
	CircuitID   string `json:"circuitId"`
	CircuitName string `json:"circuitName"`
}

type wireResult struct {
	Number      string          `json:"number"`
	Position    string          `json:"position"`
	Grid        string          `json:"grid"`
	Laps        string          `json:"laps"`
	Status      string          `json:"status"`
	Driver      wireDriver      `json:"Driver"`
	Constructor wireConstructor `json:"Constructor"`
}

type wireDriver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
}

type wireConstructor struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
}

type wireLap struct {
	Number  string       `json:"number"`
	Timings []wireTiming `json:"Timings"`
}

type wireTiming struct {
	DriverID string `json:"driverId"`
	Position string `json:"position"`
	Time     string `json:"time"`
}

type wirePitStop struct {
	DriverID string `json:"driverId"`
	Lap      string `json:"lap"`
	Stop     string `json:"stop"`
	Time     string `json:"time"`
	Duration string `json:"duration"`
}
