/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestGenerateEmailContent(t *testing.T) {
	events := testEvents(t)
	user := "testuser"
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	config := SendEmailConfig{
		User:       user,
		ReportName: "Monthly Report",
		Events:     events,
		Start:      start,
		End:        end,
	}

	actions := []Analyser{
		TopArtistsAnalyzer{}.SetConfig(AnalyserConfig{20, 30000}),
	}

	subject, body, err := generateEmailContent(config, actions)
	if err != nil {
		t.Fatalf("generateEmailContent failed: %v", err)
	}

	// Verify Subject
	expectedSubject := fmt.Sprintf("Listening report for %s %s to %s: %s", user, start.Format("2006-01-02"), end.Format("2006-01-02"), config.ReportName)
	if subject != expectedSubject {
		t.Errorf("Subject mismatch.\nGot: %s\nWant: %s", subject, expectedSubject)
	}

	// Verify Body content
	if !strings.Contains(body, "<h2>Top artists for testuser 2023-01-01 to 2023-02-01:</h2>") {
		t.Error("Body missing correct header with dates")
	}
	if !strings.Contains(body, "<table>") {
		t.Error("Body missing table")
	}
	if !strings.Contains(body, "<td>Other &lt;Artist&gt;</td>") {
		t.Error("Body should escape cell contents")
	}
	if strings.Contains(body, "No plays found") {
		t.Error("Body incorrectly reports 'No plays found'")
	}
}

func TestGenerateEmailContentNoData(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)

	config := SendEmailConfig{
		Start: start,
		End:   end,
	}

	actions := []Analyser{
		TopArtistsAnalyzer{}.SetConfig(AnalyserConfig{20, 0}),
		&ReportAnalyzer{},
	}

	subject, body, err := generateEmailContent(config, actions)
	if err != nil {
		t.Fatalf("generateEmailContent failed: %v", err)
	}

	// Verify Subject (no suffix)
	expectedSubject := fmt.Sprintf("Listening report for me %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if subject != expectedSubject {
		t.Errorf("Subject mismatch.\nGot: %s\nWant: %s", subject, expectedSubject)
	}

	// Verify Body
	if strings.Count(body, "<div>No plays found.</div>") != 2 {
		t.Error("Body missing 'No plays found' message")
	}
	if !strings.Contains(body, "No plays found after filtering") {
		t.Error("Body missing the report's error")
	}
	if strings.Contains(body, "<table>") {
		t.Error("Body should not contain a table")
	}
}

func TestSendEmailDryRun(t *testing.T) {
	events := testEvents(t)
	config := SendEmailConfig{
		To:     "test@example.com",
		Types:  []string{"top-artists", "report"},
		Params: []map[string]string{{"n": "1"}, {}},
		DryRun: true,
		Events: events,
	}
	if err := sendEmail(config); err != nil {
		t.Fatalf("sendEmail: %v", err)
	}

	config.Types = []string{"forgotten"}
	config.Params = nil
	if err := sendEmail(config); err == nil || !strings.Contains(err.Error(), "Invalid analysis_name") {
		t.Errorf("expected invalid analysis error, got %v", err)
	}

	config.Types = []string{"top-artists"}
	config.Params = []map[string]string{{"n": "x"}}
	if err := sendEmail(config); err == nil {
		t.Errorf("expected configure error")
	}
}

func TestSendEmailRequiresAPIKey(t *testing.T) {
	config := SendEmailConfig{
		To:    "test@example.com",
		Types: []string{"clock"},
	}
	err := sendEmail(config)
	if err == nil || !strings.Contains(err.Error(), "sendgrid_api_key") {
		t.Errorf("expected missing key error, got %v", err)
	}
}

func TestSplitDateArgs(t *testing.T) {
	tests := []struct {
		args      []string
		wantRest  []string
		wantDates []string
	}{
		{[]string{"top-artists"}, []string{"top-artists"}, nil},
		{[]string{"top-artists", "2023-01"}, []string{"top-artists"}, []string{"2023-01"}},
		{[]string{"report", "clock", "2023", "2024-06"}, []string{"report", "clock"}, []string{"2023", "2024-06"}},
		{[]string{"clock", "2021", "2022", "2023"}, []string{"clock", "2021"}, []string{"2022", "2023"}},
		{[]string{"30d"}, []string{}, []string{"30d"}},
	}
	for _, tt := range tests {
		rest, dates := splitDateArgs(tt.args)
		if !reflect.DeepEqual(rest, tt.wantRest) || !reflect.DeepEqual(dates, tt.wantDates) {
			t.Errorf("splitDateArgs(%v) = %v, %v; want %v, %v", tt.args, rest, dates, tt.wantRest, tt.wantDates)
		}
	}
}

func TestParseParams(t *testing.T) {
	got := parseParams([]string{"n=20,min_ms=1000", ""}, 3)
	want := []map[string]string{{"n": "20", "min_ms": "1000"}, {}, nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseParams = %v, want %v", got, want)
	}
}

func TestEmailRequiresFrom(t *testing.T) {
	viper.Reset()
	err := emailCmd.PreRunE(emailCmd, []string{"test@example.com", "report"})
	if err == nil || err.Error() != "required flag(s) \"from\" not set" {
		t.Errorf("Expected 'required flag(s) \"from\" not set', got %v", err)
	}

	viper.Set("from", "me@example.com")
	if err := emailCmd.PreRunE(emailCmd, []string{"test@example.com", "report"}); err != nil {
		t.Errorf("Expected nil when from is set, got %v", err)
	}
}
