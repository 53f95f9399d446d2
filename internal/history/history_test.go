package history

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func record(endTime, artist, track string, ms any) map[string]any {
	return map[string]any{
		"endTime":    endTime,
		"artistName": artist,
		"trackName":  track,
		"msPlayed":   ms,
	}
}

func TestNormalize(t *testing.T) {
	raw := []any{
		record("2024-03-05 23:15", "  Artist A ", "Track X", float64(40000)),
	}

	events := Normalize(raw, time.UTC)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	e := events[0]
	want := time.Date(2024, 3, 5, 23, 15, 0, 0, time.UTC)
	if !e.EndTime.Equal(want) {
		t.Errorf("EndTime = %v, want %v", e.EndTime, want)
	}
	if e.ArtistName != "Artist A" {
		t.Errorf("ArtistName = %q, want trimmed %q", e.ArtistName, "Artist A")
	}
	if e.TrackKey != "Artist A — Track X" {
		t.Errorf("TrackKey = %q", e.TrackKey)
	}
	if e.MsPlayed != 40000 {
		t.Errorf("MsPlayed = %d, want 40000", e.MsPlayed)
	}
	if e.Year != 2024 || e.Month != "2024-03" || e.Date != "2024-03-05" || e.Hour != 23 {
		t.Errorf("derived fields wrong: %+v", e)
	}
}

func TestNormalizeDropsMalformedRecords(t *testing.T) {
	raw := []any{
		record("2024-01-01 10:00", "", "Track", float64(1000)),
		record("2024-01-01 10:00", "Artist", "   ", float64(1000)),
		record("not a date", "Artist", "Track", float64(1000)),
		record("", "Artist", "Track", float64(1000)),
		map[string]any{"artistName": "Artist", "trackName": "Track"},
		"just a string",
		nil,
		record("2024-01-01 10:00", "Artist", "Track", float64(1000)),
	}

	events := Normalize(raw, time.UTC)
	if len(events) != 1 {
		t.Fatalf("expected only the valid record to survive, got %d: %+v", len(events), events)
	}
	for _, e := range events {
		if e.ArtistName == "" || e.TrackName == "" || e.EndTime.IsZero() {
			t.Errorf("invalid event produced: %+v", e)
		}
	}
}

func TestNormalizeNonSequence(t *testing.T) {
	for _, raw := range []any{nil, "text", float64(3), map[string]any{"endTime": "2024-01-01 10:00"}} {
		events := Normalize(raw, time.UTC)
		if events == nil || len(events) != 0 {
			t.Errorf("Normalize(%v) = %v, want empty slice", raw, events)
		}
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	raw := []any{
		record("2024-01-02 10:00", "B", "2", float64(1)),
		record("2024-01-01 10:00", "A", "1", float64(1)),
		record("2024-01-03 10:00", "C", "3", float64(1)),
	}
	events := Normalize(raw, time.UTC)
	got := []string{events[0].ArtistName, events[1].ArtistName, events[2].ArtistName}
	want := []string{"B", "A", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestNormalizeTypedSequences(t *testing.T) {
	end := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  any
	}{
		{"raw records", []RawRecord{
			NewRawRecord(end, "A", "X", 40000),
			{EndTime: "", ArtistName: "B", TrackName: "Y", MsPlayed: 1},
		}},
		{"maps", []map[string]any{
			record("2024-01-01 10:00", "A", "X", float64(40000)),
			record("2024-01-01 10:00", "", "Y", float64(1)),
		}},
	}

	for _, tc := range tests {
		events := Normalize(tc.raw, time.UTC)
		if len(events) != 1 {
			t.Fatalf("%s: got %d events, want 1", tc.name, len(events))
		}
		e := events[0]
		if !e.EndTime.Equal(end) || e.TrackKey != "A — X" || e.MsPlayed != 40000 {
			t.Errorf("%s: event = %+v", tc.name, e)
		}
	}
}

func TestCoerceMs(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"float", float64(1234), 1234},
		{"fraction truncated", 1234.9, 1234},
		{"missing", nil, 0},
		{"numeric string", "5000", 5000},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"negative", float64(-10), 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"huge float", 1e20, MaxMsPlayed},
		{"huge int", int64(math.MaxInt64), MaxMsPlayed},
		{"huge string", "9e18", MaxMsPlayed},
		{"true", true, 1},
		{"object", map[string]any{}, 0},
	}

	for _, tc := range tests {
		if got := coerceMs(tc.in); got != tc.want {
			t.Errorf("%s: coerceMs(%v) = %d, want %d", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestParseEndTimeFormats(t *testing.T) {
	want := time.Date(2023, 12, 31, 8, 5, 0, 0, time.UTC)
	for _, s := range []string{"2023-12-31 08:05", "2023-12-31 08:05:00", "2023-12-31T08:05", " 2023-12-31 08:05 "} {
		got, err := parseEndTime(s, time.UTC)
		if err != nil {
			t.Errorf("parseEndTime(%q): %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseEndTime(%q) = %v, want %v", s, got, want)
		}
	}

	if _, err := parseEndTime("2023-13-45 99:99", time.UTC); err == nil {
		t.Errorf("expected error for out of range timestamp")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`[
		{"endTime": "2024-01-01 10:00", "artistName": "A", "trackName": "X", "msPlayed": 40000},
		{"endTime": "2024-01-01 10:05", "artistName": "A", "trackName": "X", "msPlayed": 40000}
	]`)
	events, err := Parse(data, time.UTC)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	events, err = Parse([]byte(`{"not": "an array"}`), time.UTC)
	if err != nil {
		t.Fatalf("Parse of object should not error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events from object, got %d", len(events))
	}

	if _, err := Parse([]byte(`[{`), time.UTC); err == nil {
		t.Errorf("expected error for invalid JSON")
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "StreamingHistory0.json")
	second := filepath.Join(dir, "StreamingHistory1.json")
	if err := os.WriteFile(first, []byte(`[{"endTime": "2024-01-01 10:00", "artistName": "A", "trackName": "X", "msPlayed": 1}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte(`[{"endTime": "2024-01-02 10:00", "artistName": "B", "trackName": "Y", "msPlayed": 2}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	events, err := LoadFiles([]string{first, second}, time.UTC)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if len(events) != 2 || events[0].ArtistName != "A" || events[1].ArtistName != "B" {
		t.Errorf("unexpected events: %+v", events)
	}

	if _, err := LoadFiles(nil, time.UTC); !errors.Is(err, ErrNoFiles) {
		t.Errorf("LoadFiles(nil) error = %v, want ErrNoFiles", err)
	}
	if _, err := LoadFiles([]string{filepath.Join(dir, "missing.json")}, time.UTC); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestBetween(t *testing.T) {
	events := Normalize([]any{
		record("2023-12-31 23:59", "A", "X", float64(1)),
		record("2024-01-01 00:00", "B", "X", float64(1)),
		record("2024-01-31 12:00", "C", "X", float64(1)),
		record("2024-02-01 00:00", "D", "X", float64(1)),
	}, time.UTC)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	got := Between(events, start, end)
	if len(got) != 2 || got[0].ArtistName != "B" || got[1].ArtistName != "C" {
		t.Errorf("Between = %+v, want B and C", got)
	}
}

func TestWriteRecordsRoundTrip(t *testing.T) {
	when := time.Date(2024, 3, 9, 23, 41, 0, 0, time.UTC)
	records := []RawRecord{
		NewRawRecord(when, "Artist", "Song", 150000),
		NewRawRecord(when.Add(time.Hour), "Other", "Tune", 1000),
	}

	var buf bytes.Buffer
	if err := WriteRecords(&buf, records); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	if records[0].EndTime != "2024-03-09 23:41" {
		t.Errorf("EndTime = %q", records[0].EndTime)
	}

	events, err := Parse(buf.Bytes(), time.UTC)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}
	if !events[0].EndTime.Equal(when) || events[0].MsPlayed != 150000 || events[0].TrackKey != "Artist — Song" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Date != "2024-03-10" || events[1].Hour != 0 {
		t.Errorf("events[1] = %+v", events[1])
	}

	buf.Reset()
	if err := WriteRecords(&buf, nil); err != nil {
		t.Fatalf("WriteRecords(nil): %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty output = %q", buf.String())
	}
}
