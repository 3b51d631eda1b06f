// Package ergast reads season schedules, classified results, lap timings and
// pit stops from an Ergast-compatible JSON API such as jolpica-f1.
package ergast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"racefeatures/internal/provider/fetch"
	"racefeatures/internal/race"
	"racefeatures/internal/services"
)

// DefaultBaseURL is the jolpica-f1 mirror of the retired Ergast API.
const DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"

// PageLimit is the largest page size the API accepts.
const PageLimit = 100

// Race is one scheduled championship round.
type Race struct {
	Season  int
	Round   int
	Name    string
	Circuit string
	Date    time.Time // race start in UTC; date only when no time is published
}

// Result is one classified finisher (or retirement) of a race.
type Result struct {
	DriverID   string
	Code       string
	Number     string
	GivenName  string
	FamilyName string
	Team       string
	Grid       int
	Position   int
	Laps       int
	Status     string
}

// Timing is one driver's time on one lap.
type Timing struct {
	Lap      int
	DriverID string
	Position int
	Time     race.Opt[float64]
}

// PitStop is one stop as published by the API.
type PitStop struct {
	DriverID string
	Lap      int
	Stop     int
	Duration race.Opt[float64]
}

// Client queries an Ergast-compatible API.
type Client struct {
	baseURL string
	getter  fetch.Getter
}

// New returns a client for baseURL using getter for transport.
func New(baseURL string, getter fetch.Getter) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{baseURL: base, getter: getter}
}

// Races lists the rounds of a season in round order.
func (c *Client) Races(ctx context.Context, season int) ([]Race, error) {
	var out []Race
	err := c.paginate(ctx, "races", fmt.Sprintf("%d/races.json", season), func(page []wireRace) error {
		for _, wr := range page {
			r, err := convertRace(wr)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// Results returns the classification of a race.
func (c *Client) Results(ctx context.Context, season, round int) ([]Result, error) {
	var out []Result
	err := c.paginate(ctx, "results", fmt.Sprintf("%d/%d/results.json", season, round), func(page []wireRace) error {
		for _, wr := range page {
			for _, res := range wr.Results {
				out = append(out, Result{
					DriverID:   res.Driver.DriverID,
					Code:       res.Driver.Code,
					Number:     res.Number,
					GivenName:  res.Driver.GivenName,
					FamilyName: res.Driver.FamilyName,
					Team:       res.Constructor.Name,
					Grid:       atoiOrZero(res.Grid),
					Position:   atoiOrZero(res.Position),
					Laps:       atoiOrZero(res.Laps),
					Status:     res.Status,
				})
			}
		}
		return nil
	})
	return out, err
}

// Laps returns every lap timing of a race flattened in published order. A lap
// whose timings straddle a page boundary simply continues on the next page.
func (c *Client) Laps(ctx context.Context, season, round int) ([]Timing, error) {
	var out []Timing
	err := c.paginate(ctx, "laps", fmt.Sprintf("%d/%d/laps.json", season, round), func(page []wireRace) error {
		for _, wr := range page {
			for _, lap := range wr.Laps {
				number, err := strconv.Atoi(lap.Number)
				if err != nil {
					return services.Wrap(services.ErrDecode, "ergast", "laps", fmt.Sprintf("lap number %q", lap.Number), err)
				}
				for _, timing := range lap.Timings {
					out = append(out, Timing{
						Lap:      number,
						DriverID: timing.DriverID,
						Position: atoiOrZero(timing.Position),
						Time:     ParseDuration(timing.Time),
					})
				}
			}
		}
		return nil
	})
	return out, err
}

// PitStops returns the pit stops of a race in the order published.
func (c *Client) PitStops(ctx context.Context, season, round int) ([]PitStop, error) {
	var out []PitStop
	err := c.paginate(ctx, "pitstops", fmt.Sprintf("%d/%d/pitstops.json", season, round), func(page []wireRace) error {
		for _, wr := range page {
			for _, stop := range wr.PitStops {
				out = append(out, PitStop{
					DriverID: stop.DriverID,
					Lap:      atoiOrZero(stop.Lap),
					Stop:     atoiOrZero(stop.Stop),
					Duration: ParseDuration(stop.Duration),
				})
			}
		}
		return nil
	})
	return out, err
}

// paginate walks limit/offset pages until the reported total is reached.
func (c *Client) paginate(ctx context.Context, operation, path string, visit func([]wireRace) error) error {
	offset := 0
	for {
		endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, path, url.Values{
			"limit":  {strconv.Itoa(PageLimit)},
			"offset": {strconv.Itoa(offset)},
		}.Encode())
		body, err := c.getter.Get(ctx, endpoint)
		if err != nil {
			return services.Wrap(services.ErrProvider, "ergast", operation, "request failed", err)
		}
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return services.Wrap(services.ErrDecode, "ergast", operation, "decode response", err)
		}
		if err := visit(env.MRData.RaceTable.Races); err != nil {
			return err
		}

		total := atoiOrZero(env.MRData.Total)
		limit := atoiOrZero(env.MRData.Limit)
		if limit <= 0 {
			limit = PageLimit
		}
		offset = atoiOrZero(env.MRData.Offset) + limit
		if offset >= total || len(env.MRData.RaceTable.Races) == 0 {
			return nil
		}
	}
}

func convertRace(wr wireRace) (Race, error) {
	season, err := strconv.Atoi(wr.Season)
	if err != nil {
		return Race{}, services.Wrap(services.ErrDecode, "ergast", "races", fmt.Sprintf("season %q", wr.Season), err)
	}
	round, err := strconv.Atoi(wr.Round)
	if err != nil {
		return Race{}, services.Wrap(services.ErrDecode, "ergast", "races", fmt.Sprintf("round %q", wr.Round), err)
	}
	return Race{
		Season:  season,
		Round:   round,
		Name:    strings.TrimSpace(wr.RaceName),
		Circuit: wr.Circuit.CircuitName,
		Date:    parseRaceDate(wr.Date, wr.Time),
	}, nil
}

func parseRaceDate(date, clock string) time.Time {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}
	}
	if clock = strings.TrimSpace(clock); clock != "" {
		if ts, err := time.Parse(time.RFC3339, date+"T"+clock); err == nil {
			return ts.UTC()
		}
	}
	ts, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// ParseDuration converts "1:31.234", "22.123" or "1:02:03.5" into seconds.
// Empty or malformed input is absent.
func ParseDuration(raw string) race.Opt[float64] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return race.None[float64]()
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return race.None[float64]()
	}
	total := 0.0
	for i, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil || value < 0 {
			return race.None[float64]()
		}
		// all but the last component are whole minutes/hours below 60
		if i < len(parts)-1 && (value != float64(int(value)) || (i > 0 && value >= 60)) {
			return race.None[float64]()
		}
		total = total*60 + value
	}
	return race.Some(total)
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
