package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/history"
)

// writeTestHistory writes a small export file and points the config at it.
func writeTestHistory(t *testing.T) string {
	t.Helper()
	at := func(s string) time.Time {
		ts, err := time.ParseInLocation(history.ExportTimeLayout, s, time.UTC)
		if err != nil {
			t.Fatalf("parsing %q: %v", s, err)
		}
		return ts
	}
	records := []history.RawRecord{
		history.NewRawRecord(at("2023-01-10 09:00"), "Test Artist", "Test Track", 200000),
		history.NewRawRecord(at("2023-01-10 09:05"), "Test Artist", "Test Track", 200000),
		history.NewRawRecord(at("2023-01-15 23:30"), "Other <Artist>", "Night Song", 120000),
		history.NewRawRecord(at("2023-02-03 01:00"), "Other <Artist>", "Night Song", 60000),
		history.NewRawRecord(at("2023-02-04 12:00"), "Skipper", "Nope", 3000),
	}

	path := filepath.Join(t.TempDir(), "StreamingHistory0.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating history: %v", err)
	}
	defer f.Close()
	if err := history.WriteRecords(f, records); err != nil {
		t.Fatalf("writing history: %v", err)
	}

	viper.Reset()
	viper.Set("history", []string{path})
	viper.Set("location", "UTC")
	viper.Set("min_ms", 30000)
	return path
}

func testEvents(t *testing.T) []history.PlayEvent {
	t.Helper()
	path := writeTestHistory(t)
	events, err := history.LoadFiles([]string{path}, time.UTC)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	return events
}
