// Package livetiming reads the static archive of the Formula 1 live-timing
// service: the per-season meeting index and recorded session streams.
package livetiming

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"racefeatures/internal/provider/fetch"
	"racefeatures/internal/services"
)

// DefaultBaseURL serves the static live-timing archive.
const DefaultBaseURL = "https://livetiming.formula1.com/static"

var byteOrderMark = []byte("\ufeff")

// Client reads archive documents.
type Client struct {
	baseURL string
	getter  fetch.Getter
}

// New returns a client rooted at baseURL.
func New(baseURL string, getter fetch.Getter) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{baseURL: base, getter: getter}
}

// Index is the meeting list published for one season.
type Index struct {
	Year     int       `json:"Year"`
	Meetings []Meeting `json:"Meetings"`
}

// Meeting is one race weekend or test in the index.
type Meeting struct {
	Key          int       `json:"Key"`
	Name         string    `json:"Name"`
	OfficialName string    `json:"OfficialName"`
	Location     string    `json:"Location"`
	Sessions     []Session `json:"Sessions"`
}

// Session is one archived session of a meeting.
type Session struct {
	Key       int    `json:"Key"`
	Type      string `json:"Type"`
	Name      string `json:"Name"`
	StartDate string `json:"StartDate"`
	GmtOffset string `json:"GmtOffset"`
	Path      string `json:"Path"` // relative to the base URL, ends with "/"
}

// Start parses the session's local start date. Zero when unparseable.
func (s Session) Start() time.Time {
	ts, err := time.Parse("2006-01-02T15:04:05", strings.TrimSpace(s.StartDate))
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Index fetches the meeting index for season.
func (c *Client) Index(ctx context.Context, season int) (*Index, error) {
	body, err := c.getter.Get(ctx, fmt.Sprintf("%s/%d/Index.json", c.baseURL, season))
	if err != nil {
		return nil, services.Wrap(services.ErrProvider, "livetiming", "index", "request failed", err)
	}
	var idx Index
	if err := json.Unmarshal(bytes.TrimPrefix(body, byteOrderMark), &idx); err != nil {
		return nil, services.Wrap(services.ErrDecode, "livetiming", "index", "decode index", err)
	}
	return &idx, nil
}

func (c *Client) stream(ctx context.Context, path, topic string) ([]streamLine, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, services.Wrap(services.ErrNotFound, "livetiming", topic, "session path missing", nil)
	}
	body, err := c.getter.Get(ctx, fmt.Sprintf("%s/%s/%s.jsonStream", c.baseURL, path, topic))
	if err != nil {
		return nil, services.Wrap(services.ErrProvider, "livetiming", topic, "request failed", err)
	}
	lines, err := parseStream(body)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "livetiming", topic, "parse stream", err)
	}
	return lines, nil
}

// streamLine is one "HH:MM:SS.fff{json}" entry of a .jsonStream document.
type streamLine struct {
	At      time.Duration
	Payload json.RawMessage
}

func parseStream(body []byte) ([]streamLine, error) {
	scanner := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(body, byteOrderMark)))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var out []streamLine
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := bytes.TrimSpace(bytes.TrimPrefix(scanner.Bytes(), byteOrderMark))
		if len(line) == 0 {
			continue
		}
		brace := bytes.IndexByte(line, '{')
		if brace < 0 {
			return nil, fmt.Errorf("line %d: no payload", lineNo)
		}
		at, err := parseClock(string(line[:brace]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		payload := make(json.RawMessage, len(line)-brace)
		copy(payload, line[brace:])
		out = append(out, streamLine{At: at, Payload: payload})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseClock converts "HH:MM:SS.fff" into a duration.
func parseClock(raw string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes >= 60 {
		return 0, fmt.Errorf("invalid minutes in %q", raw)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds >= 60 {
		return 0, fmt.Errorf("invalid seconds in %q", raw)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second)), nil
}
