package cmd

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	for _, name := range []string{"", "Local"} {
		loc, err := loadLocation(name)
		if err != nil || loc != time.Local {
			t.Errorf("loadLocation(%q) = %v, %v", name, loc, err)
		}
	}

	loc, err := loadLocation("UTC")
	if err != nil || loc.String() != "UTC" {
		t.Errorf("loadLocation(UTC) = %v, %v", loc, err)
	}

	if _, err := loadLocation("Not/AZone"); err == nil {
		t.Errorf("expected error for unknown zone")
	}
}

func TestLoadEventsFrom(t *testing.T) {
	path := writeTestHistory(t)

	sel, err := loadEventsFrom([]string{path}, time.UTC, nil)
	if err != nil {
		t.Fatalf("loadEventsFrom: %v", err)
	}
	if len(sel.Events) != 5 {
		t.Errorf("got %d events, want 5", len(sel.Events))
	}
	if !sel.Start.Equal(time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)) || !sel.End.Equal(time.Date(2023, 2, 4, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("period = %v to %v", sel.Start, sel.End)
	}

	sel, err = loadEventsFrom([]string{path}, time.UTC, []string{"2023-01-15", "2023-02-04"})
	if err != nil {
		t.Fatalf("loadEventsFrom with range: %v", err)
	}
	if len(sel.Events) != 2 {
		t.Errorf("got %d events in range, want 2", len(sel.Events))
	}
	if !sel.Start.Equal(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", sel.Start)
	}

	if _, err := loadEventsFrom([]string{path}, time.UTC, []string{"nope"}); err == nil {
		t.Errorf("expected error for invalid date")
	}
}
