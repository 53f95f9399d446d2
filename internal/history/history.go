// Package history turns raw streaming-history exports into normalized play
// events.
package history

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrNoFiles is returned by LoadFiles when no paths are given.
var ErrNoFiles = errors.New("no history files given")

// TrackKeySeparator joins artist and track names into a track key.
const TrackKeySeparator = " — "

// MaxMsPlayed caps a single play (about 278 years) so that sums over a
// million plays still fit in an int64.
const MaxMsPlayed = math.MaxInt64 >> 20

// PlayEvent is one validated play. It is never mutated after Normalize
// returns it.
type PlayEvent struct {
	EndTime    time.Time `json:"endTime" yaml:"end_time"`
	MsPlayed   int64     `json:"msPlayed" yaml:"ms_played"`
	ArtistName string    `json:"artistName" yaml:"artist_name"`
	TrackName  string    `json:"trackName" yaml:"track_name"`
	TrackKey   string    `json:"trackKey" yaml:"track_key"`
	Year       int       `json:"year" yaml:"year"`
	Month      string    `json:"month" yaml:"month"`
	Hour       int       `json:"hour" yaml:"hour"`
	Date       string    `json:"date" yaml:"date"`
}

// Timestamp layouts accepted for endTime, tried in order. Export files use
// the first one; the seconds component is filled in as :00 when missing.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Normalize converts a sequence of records into play events. It accepts
// decoded JSON ([]any of map[string]any), []map[string]any and
// []RawRecord. Anything that is not a sequence yields an empty result, and
// malformed elements are dropped. Order follows the input. Naive
// timestamps are interpreted in loc; nil means time.Local.
func Normalize(raw any, loc *time.Location) []PlayEvent {
	var records []any
	switch val := raw.(type) {
	case []any:
		records = val
	case []map[string]any:
		records = make([]any, len(val))
		for i, r := range val {
			records[i] = r
		}
	case []RawRecord:
		records = make([]any, len(val))
		for i, r := range val {
			records[i] = r
		}
	default:
		return []PlayEvent{}
	}
	if loc == nil {
		loc = time.Local
	}

	events := make([]PlayEvent, 0, len(records))
	for _, r := range records {
		var record map[string]any
		switch val := r.(type) {
		case map[string]any:
			record = val
		case RawRecord:
			record = val.fields()
		default:
			continue
		}
		event, ok := normalizeRecord(record, loc)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events
}

func normalizeRecord(record map[string]any, loc *time.Location) (PlayEvent, bool) {
	artist := strings.TrimSpace(stringify(record["artistName"]))
	track := strings.TrimSpace(stringify(record["trackName"]))
	if artist == "" || track == "" {
		return PlayEvent{}, false
	}

	endTime, err := parseEndTime(stringify(record["endTime"]), loc)
	if err != nil {
		return PlayEvent{}, false
	}

	return PlayEvent{
		EndTime:    endTime,
		MsPlayed:   coerceMs(record["msPlayed"]),
		ArtistName: artist,
		TrackName:  track,
		TrackKey:   artist + TrackKeySeparator + track,
		Year:       endTime.Year(),
		Month:      endTime.Format("2006-01"),
		Hour:       endTime.Hour(),
		Date:       endTime.Format("2006-01-02"),
	}, true
}

func parseEndTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty endTime")
	}
	// "2006-01-02 15:04" has exactly one colon; add the seconds.
	if strings.Count(s, ":") == 1 {
		s += ":00"
	}

	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parsing endTime %q: %w", s, lastErr)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// coerceMs maps msPlayed to a whole number of milliseconds in
// [0, MaxMsPlayed]. Missing and non-numeric values become 0.
func coerceMs(v any) int64 {
	var ms float64
	switch val := v.(type) {
	case float64:
		ms = val
	case int:
		ms = float64(val)
	case int64:
		ms = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		ms = f
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		ms = f
	case bool:
		if val {
			ms = 1
		}
	default:
		return 0
	}

	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
		return 0
	}
	if ms >= MaxMsPlayed {
		return MaxMsPlayed
	}
	return int64(ms)
}

// Parse decodes one export file's contents. Invalid JSON is an error; a
// valid document that isn't an array yields no events.
func Parse(data []byte, loc *time.Location) ([]PlayEvent, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return Normalize(raw, loc), nil
}

// LoadFiles reads and normalizes each export file, concatenating events in
// argument order.
func LoadFiles(paths []string, loc *time.Location) ([]PlayEvent, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	var events []PlayEvent
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		parsed, err := Parse(data, loc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		events = append(events, parsed...)
	}
	return events, nil
}

// Between keeps events whose end time falls in [start, end).
func Between(events []PlayEvent, start, end time.Time) []PlayEvent {
	var out []PlayEvent
	for _, e := range events {
		if e.EndTime.Before(start) || !e.EndTime.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}
