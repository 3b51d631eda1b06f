package livetiming

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"racefeatures/internal/race"
)

// weatherPayload mirrors WeatherData entries; every value is a string.
type weatherPayload struct {
	AirTemp       string `json:"AirTemp"`
	Humidity      string `json:"Humidity"`
	Pressure      string `json:"Pressure"`
	Rainfall      string `json:"Rainfall"`
	TrackTemp     string `json:"TrackTemp"`
	WindDirection string `json:"WindDirection"`
	WindSpeed     string `json:"WindSpeed"`
}

// Weather returns the weather samples recorded for the session at path.
// Entries that fail to decode are dropped.
func (c *Client) Weather(ctx context.Context, path string) ([]race.WeatherSample, error) {
	lines, err := c.stream(ctx, path, "WeatherData")
	if err != nil {
		return nil, err
	}
	samples := make([]race.WeatherSample, 0, len(lines))
	for _, line := range lines {
		var p weatherPayload
		if err := json.Unmarshal(line.Payload, &p); err != nil {
			continue
		}
		samples = append(samples, race.WeatherSample{
			SessionTime:   line.At,
			AirTemp:       parseReading(p.AirTemp),
			TrackTemp:     parseReading(p.TrackTemp),
			Humidity:      parseReading(p.Humidity),
			Pressure:      parseReading(p.Pressure),
			Rainfall:      parseReading(p.Rainfall),
			WindSpeed:     parseReading(p.WindSpeed),
			WindDirection: parseReading(p.WindDirection),
		})
	}
	return samples, nil
}

func parseReading(raw string) race.Opt[float64] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return race.None[float64]()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return race.None[float64]()
	}
	return race.Some(v)
}
