package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ParsedDate is a datestring resolved to the start of the period it names.
// Exactly one of the flags is set.
type ParsedDate struct {
	Date     time.Time
	Year     bool
	Month    bool
	Day      bool
	Relative bool
}

var relativeDate = regexp.MustCompile(`^(\d+)([dwmy])$`)

// now is swapped out in tests.
var now = time.Now

func parseDateRangeFromArgs(args []string, loc *time.Location) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 1:
		start, end, err = getImplicitDateRange(args[0], loc)

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1], loc)

	default:
		err = fmt.Errorf("Expected one or two date arguments")
	}
	return
}

func getImplicitDateRange(ds string, loc *time.Location) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds, loc)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = start.AddDate(1, 0, 0)

	case date.Month:
		end = start.AddDate(0, 1, 0)

	case date.Day:
		end = start.AddDate(0, 0, 1)

	case date.Relative:
		end = now().In(start.Location())

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}

	return
}

func getExplicitDateRange(startString, endString string, loc *time.Location) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString, loc)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString, loc)
	if err != nil {
		return
	}
	end = endParsed.Date

	if !end.After(start) {
		err = fmt.Errorf("Date range is empty: %s is not after %s", endString, startString)
	}
	return
}

// parseSingleDatestring accepts yyyy, yyyy-mm, yyyy-mm-dd, or a relative
// offset from now such as 30d, 12w, 6m or 1y. Nil loc means time.Local.
func parseSingleDatestring(ds string, loc *time.Location) (date ParsedDate, err error) {
	if loc == nil {
		loc = time.Local
	}

	if m := relativeDate.FindStringSubmatch(ds); m != nil {
		var amount int
		amount, err = strconv.Atoi(m[1])
		if err != nil {
			err = fmt.Errorf("Parsing datestring as relative: %w", err)
			return
		}
		t := now().In(loc)
		switch m[2] {
		case "d":
			date.Date = t.AddDate(0, 0, -amount)
		case "w":
			date.Date = t.AddDate(0, 0, -amount*7)
		case "m":
			date.Date = t.AddDate(0, -amount, 0)
		case "y":
			date.Date = t.AddDate(-amount, 0, 0)
		}
		date.Relative = true
		return
	}

	layouts := []struct {
		pattern *regexp.Regexp
		layout  string
		name    string
		set     func(*ParsedDate)
	}{
		{regexp.MustCompile(`^\d{4}$`), "2006", "year", func(d *ParsedDate) { d.Year = true }},
		{regexp.MustCompile(`^\d{4}-\d{2}$`), "2006-01", "month", func(d *ParsedDate) { d.Month = true }},
		{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02", "day", func(d *ParsedDate) { d.Day = true }},
	}
	for _, l := range layouts {
		if !l.pattern.MatchString(ds) {
			continue
		}
		date.Date, err = time.ParseInLocation(l.layout, ds, loc)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as %s: %w", l.name, err)
			return
		}
		l.set(&date)
		return
	}

	err = fmt.Errorf("Invalid format: %q", ds)
	return
}
