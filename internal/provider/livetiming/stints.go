package livetiming

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"racefeatures/internal/race"
)

// Stint is one tyre stint of a driver, merged from every TimingAppData update.
type Stint struct {
	Compound  race.Compound
	New       bool
	StartLaps int // tyre age in laps when fitted
	TotalLaps int // tyre age in laps at the end of the stint
}

// Laps returns how many racing laps the stint covered.
func (s Stint) Laps() int {
	if n := s.TotalLaps - s.StartLaps; n > 0 {
		return n
	}
	return 0
}

// timingAppPayload lines are keyed by racing number; bookkeeping keys such
// as "_kf" carry non-object values and are skipped.
type timingAppPayload struct {
	Lines map[string]json.RawMessage `json:"Lines"`
}

type driverAppData struct {
	Stints stintUpdates `json:"Stints"`
}

// stintUpdates holds stint patches keyed by stint index. The first message
// of a stream carries a list; later messages carry an index-keyed object.
type stintUpdates map[int]stintPatch

func (s *stintUpdates) UnmarshalJSON(data []byte) error {
	keyed := make(map[string]stintPatch)
	if err := json.Unmarshal(data, &keyed); err == nil {
		out := make(stintUpdates, len(keyed))
		for k, v := range keyed {
			idx, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			out[idx] = v
		}
		*s = out
		return nil
	}
	var list []stintPatch
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(stintUpdates, len(list))
	for i, v := range list {
		out[i] = v
	}
	*s = out
	return nil
}

type stintPatch struct {
	Compound  *string `json:"Compound"`
	New       *string `json:"New"`
	StartLaps *int    `json:"StartLaps"`
	TotalLaps *int    `json:"TotalLaps"`
}

func (p stintPatch) apply(s *Stint) {
	if p.Compound != nil {
		s.Compound = race.NormalizeCompound(*p.Compound)
	}
	if p.New != nil {
		s.New = *p.New == "true"
	}
	if p.StartLaps != nil {
		s.StartLaps = *p.StartLaps
	}
	if p.TotalLaps != nil {
		s.TotalLaps = *p.TotalLaps
	}
}

// Stints returns the tyre stints of every driver in the session at path,
// keyed by racing number and ordered by stint index.
func (c *Client) Stints(ctx context.Context, path string) (map[string][]Stint, error) {
	lines, err := c.stream(ctx, path, "TimingAppData")
	if err != nil {
		return nil, err
	}
	return mergeStints(lines), nil
}

func mergeStints(lines []streamLine) map[string][]Stint {
	merged := make(map[string]map[int]*Stint)
	for _, line := range lines {
		var payload timingAppPayload
		if err := json.Unmarshal(line.Payload, &payload); err != nil {
			continue
		}
		for number, raw := range payload.Lines {
			if _, err := strconv.Atoi(number); err != nil {
				continue
			}
			var data driverAppData
			if err := json.Unmarshal(raw, &data); err != nil {
				continue
			}
			byIndex, ok := merged[number]
			if !ok {
				byIndex = make(map[int]*Stint)
				merged[number] = byIndex
			}
			for idx, patch := range data.Stints {
				st, ok := byIndex[idx]
				if !ok {
					st = &Stint{}
					byIndex[idx] = st
				}
				patch.apply(st)
			}
		}
	}

	out := make(map[string][]Stint, len(merged))
	for number, byIndex := range merged {
		indexes := make([]int, 0, len(byIndex))
		for idx := range byIndex {
			indexes = append(indexes, idx)
		}
		sort.Ints(indexes)
		stints := make([]Stint, 0, len(indexes))
		for _, idx := range indexes {
			stints = append(stints, *byIndex[idx])
		}
		out[number] = stints
	}
	return out
}
