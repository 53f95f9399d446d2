package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/not-wrapped/internal/analysis"
)

func TestRunReportYAML(t *testing.T) {
	writeTestHistory(t)
	out := new(bytes.Buffer)
	if err := runReport(out, "yaml", nil); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("report isn't YAML: %v\n%s", err, out)
	}
	if decoded["ok"] != true {
		t.Errorf("ok = %v", decoded["ok"])
	}
	totals, ok := decoded["totals"].(map[string]any)
	if !ok || totals["unique_artists"] != 2 || totals["days_active"] != 3 {
		t.Errorf("totals = %v", decoded["totals"])
	}
	if !strings.Contains(out.String(), "biggest_artist_binge:") {
		t.Errorf("missing highlights:\n%s", out)
	}
}

func TestRunReportJSON(t *testing.T) {
	writeTestHistory(t)
	out := new(bytes.Buffer)
	if err := runReport(out, "json", []string{"2023-02"}); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	var report analysis.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("report isn't JSON: %v\n%s", err, out)
	}
	if !report.OK || report.Totals.UniqueArtists != 1 || report.TopArtists[0].Name != "Other <Artist>" {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Highlights.MostMicroSkipped == nil || report.Highlights.MostMicroSkipped.Name != "Skipper — Nope" {
		t.Errorf("MostMicroSkipped = %+v", report.Highlights.MostMicroSkipped)
	}
}

func TestRunReportNoPlays(t *testing.T) {
	writeTestHistory(t)
	out := new(bytes.Buffer)
	err := runReport(out, "yaml", []string{"2019"})
	if !errors.Is(err, analysis.ErrNoPlays) {
		t.Fatalf("runReport error = %v, want ErrNoPlays", err)
	}
	if !strings.Contains(out.String(), "ok: false") || !strings.Contains(out.String(), analysis.NoPlaysError) {
		t.Errorf("failed report should still be written:\n%s", out)
	}
}

func TestReportAnalysis(t *testing.T) {
	report := analysis.GenerateReport(testEvents(t), analysis.DefaultMinMs)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := reportAnalysis(report, start, end)
	rows := make(map[string]string)
	for _, row := range a.results[1:] {
		rows[row[0]] = row[1]
	}
	want := map[string]string{
		"Max loop":           "Test Artist — Test Track x2 on 2023-01-10",
		"Days active":        "3",
		"Hours in 2023":      "0.2",
		"Most micro-skipped": "Skipper — Nope (1)",
		"Artist #1":          "Test Artist (6.7 min)",
	}
	for stat, value := range want {
		if rows[stat] != value {
			t.Errorf("%s = %q, want %q", stat, rows[stat], value)
		}
	}
	if a.summary != "Plays of at least 30000 ms from 2023-01-01 to 2024-01-01" {
		t.Errorf("summary = %q", a.summary)
	}

	failed := reportAnalysis(analysis.GenerateReport(nil, 0), start, end)
	if len(failed.results) != 1 || failed.summary != analysis.NoPlaysError {
		t.Errorf("failed report analysis = %+v", failed)
	}
}

func TestWriteReportFormats(t *testing.T) {
	report := analysis.GenerateReport(testEvents(t), analysis.DefaultMinMs)

	out := new(bytes.Buffer)
	if err := writeReport(out, "table", report, time.Time{}, time.Time{}); err != nil {
		t.Fatalf("writeReport(table): %v", err)
	}
	if !strings.Contains(out.String(), "Plays of at least 30000 ms") {
		t.Errorf("table missing summary:\n%s", out)
	}

	if err := writeReport(new(bytes.Buffer), "xml", report, time.Time{}, time.Time{}); err == nil {
		t.Errorf("expected error for unknown format")
	}
}
