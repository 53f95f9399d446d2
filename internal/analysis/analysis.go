// Package analysis computes listening reports from normalized play events.
// Every entry point is a pure function of its arguments: each call filters
// the events itself and allocates its own working state.
package analysis

import (
	"cmp"
	"slices"
	"time"

	"github.com/ademuri/not-wrapped/internal/history"
)

const (
	// DefaultMinMs is the shortest play counted as a real listen.
	DefaultMinMs = 30000

	// MicroSkipMs is the cut-off below which a play is a micro-skip,
	// independent of the analysis threshold.
	MicroSkipMs = 10000

	// DefaultTopN is the length of the artist and track rankings.
	DefaultTopN = 10

	// Hours 0 through lastNightHour count as night listening.
	lastNightHour = 5
)

// GenerateReport builds the primary report from events played for at least
// minMs. If nothing survives the filter the report carries NoPlaysError.
func GenerateReport(events []history.PlayEvent, minMs int64) Report {
	rows := filterMinMs(events, minMs)
	if len(rows) == 0 {
		return Report{OK: false, Error: NoPlaysError}
	}

	totalMs := sumMs(rows)
	report := Report{
		OK:         true,
		Meta:       reportMeta(rows, minMs),
		Totals:     reportTotals(rows, totalMs),
		Highlights: reportHighlights(rows, events),
		YearSplit:  yearSplit(rows),
		TopArtists: topNBySum(rows, byArtist, DefaultTopN),
		TopTracks:  topNBySum(rows, byTrack, DefaultTopN),
	}
	return report
}

func reportMeta(rows []history.PlayEvent, minMs int64) *Meta {
	start, end := rows[0].EndTime, rows[0].EndTime
	for _, r := range rows[1:] {
		if r.EndTime.Before(start) {
			start = r.EndTime
		}
		if r.EndTime.After(end) {
			end = r.EndTime
		}
	}
	return &Meta{
		StartISO: start.Format(time.RFC3339),
		EndISO:   end.Format(time.RFC3339),
		MinMs:    minMs,
	}
}

func reportTotals(rows []history.PlayEvent, totalMs int64) *Totals {
	days := make(map[string]struct{})
	artists := make(map[string]struct{})
	tracks := make(map[string]struct{})
	var nightMs int64
	for _, r := range rows {
		days[r.Date] = struct{}{}
		artists[r.ArtistName] = struct{}{}
		tracks[r.TrackKey] = struct{}{}
		if r.Hour >= 0 && r.Hour <= lastNightHour {
			nightMs = addMs(nightMs, r.MsPlayed)
		}
	}

	// A filtered set can still be all zero-length plays when minMs is 0.
	nightShare := 0.0
	if totalMs > 0 {
		nightShare = float64(nightMs) / float64(totalMs)
	}

	return &Totals{
		Hours:         msToHours(totalMs),
		Minutes:       msToMinutes(totalMs),
		DaysActive:    len(days),
		UniqueArtists: len(artists),
		UniqueTracks:  len(tracks),
		NightShare:    nightShare,
	}
}

// reportHighlights computes the behavioral highlights. Micro-skips are
// measured over all events, not just rows.
func reportHighlights(rows, all []history.PlayEvent) *Highlights {
	h := &Highlights{}

	byHour := sumMsBy(rows, func(e history.PlayEvent) int { return e.Hour })
	if peak, ok := byHour.max(cmp.Compare[int]); ok {
		h.PeakHour = PeakHour{Hour: peak.Key, Minutes: msToMinutes(peak.Value)}
	}

	h.MostDiverseDay = mostDiverseDay(rows)

	binges := sumMsBy(rows, func(e history.PlayEvent) dayArtist {
		return dayArtist{date: e.Date, artist: e.ArtistName}
	})
	if b, ok := binges.max(compareDayArtist); ok {
		h.BiggestArtistBinge = Binge{Date: b.Key.date, Artist: b.Key.artist, Minutes: msToMinutes(b.Value)}
	}

	if l, ok := sameDayPlays(rows).max(compareDayTrack); ok {
		h.MaxLoop = Loop{Date: l.Key.date, TrackKey: l.Key.trackKey, Plays: int(l.Value)}
	}

	var skips []history.PlayEvent
	for _, e := range all {
		if e.MsPlayed < MicroSkipMs {
			skips = append(skips, e)
		}
	}
	h.MicroSkipRate = float64(len(skips)) / float64(max(1, len(all)))
	if most, ok := countBy(skips, byTrack).max(cmp.Compare[string]); ok {
		h.MostMicroSkipped = &NamedCount{Name: most.Key, Count: int(most.Value)}
	}

	return h
}

func mostDiverseDay(rows []history.PlayEvent) DiverseDay {
	artistsByDay := make(map[string]map[string]struct{})
	for _, r := range rows {
		set, ok := artistsByDay[r.Date]
		if !ok {
			set = make(map[string]struct{})
			artistsByDay[r.Date] = set
		}
		set[r.ArtistName] = struct{}{}
	}

	var best DiverseDay
	for date, set := range artistsByDay {
		n := len(set)
		if best.Date == "" || n > best.UniqueArtists || (n == best.UniqueArtists && date < best.Date) {
			best = DiverseDay{Date: date, UniqueArtists: n}
		}
	}
	return best
}

func yearSplit(rows []history.PlayEvent) []YearHours {
	byYear := sumMsBy(rows, func(e history.PlayEvent) int { return e.Year })

	out := make([]YearHours, 0, byYear.size())
	for _, year := range byYear.order {
		out = append(out, YearHours{Year: year, Hours: msToHours(byYear.values[year])})
	}
	slices.SortFunc(out, func(a, b YearHours) int { return cmp.Compare(a.Year, b.Year) })
	return out
}

// TopArtists ranks artists by listening time over plays of at least minMs.
// n <= 0 returns every artist.
func TopArtists(events []history.PlayEvent, minMs int64, n int) []NamedMinutes {
	return topNBySum(filterMinMs(events, minMs), byArtist, n)
}

// TopTracks ranks tracks the same way as TopArtists.
func TopTracks(events []history.PlayEvent, minMs int64, n int) []NamedMinutes {
	return topNBySum(filterMinMs(events, minMs), byTrack, n)
}
