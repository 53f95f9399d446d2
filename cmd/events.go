package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/history"
)

// EventSelection is the play events a command works on, and the period
// they were selected from.
type EventSelection struct {
	Events []history.PlayEvent
	Start  time.Time
	End    time.Time
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("--location: %w", err)
	}
	return loc, nil
}

// loadEvents reads the configured history files and, when dateArgs is not
// empty, keeps only the plays inside that date range. Without a range the
// period is the span of the history itself.
func loadEvents(dateArgs []string) (EventSelection, error) {
	loc, err := loadLocation(viper.GetString("location"))
	if err != nil {
		return EventSelection{}, err
	}
	return loadEventsFrom(viper.GetStringSlice("history"), loc, dateArgs)
}

func loadEventsFrom(paths []string, loc *time.Location, dateArgs []string) (EventSelection, error) {
	events, err := history.LoadFiles(paths, loc)
	if err != nil {
		return EventSelection{}, fmt.Errorf("loading history (set --history or 'history' in the config file): %w", err)
	}
	log.Debug().Strs("files", paths).Int("events", len(events)).Msg("loaded history")

	if len(dateArgs) == 0 {
		sel := EventSelection{Events: events}
		for i, e := range events {
			if i == 0 || e.EndTime.Before(sel.Start) {
				sel.Start = e.EndTime
			}
			if i == 0 || e.EndTime.After(sel.End) {
				sel.End = e.EndTime
			}
		}
		return sel, nil
	}

	start, end, err := parseDateRangeFromArgs(dateArgs, loc)
	if err != nil {
		return EventSelection{}, err
	}
	selected := history.Between(events, start, end)
	log.Debug().Time("start", start).Time("end", end).Int("events", len(selected)).Msg("selected date range")
	return EventSelection{Events: selected, Start: start, End: end}, nil
}
