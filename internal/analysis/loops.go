package analysis

import (
	"cmp"

	"github.com/ademuri/not-wrapped/internal/history"
)

// dayTrack identifies one track on one calendar day.
type dayTrack struct {
	date     string
	trackKey string
}

// dayArtist identifies one artist on one calendar day.
type dayArtist struct {
	date   string
	artist string
}

func compareDayTrack(a, b dayTrack) int {
	if c := cmp.Compare(a.date, b.date); c != 0 {
		return c
	}
	return cmp.Compare(a.trackKey, b.trackKey)
}

func compareDayArtist(a, b dayArtist) int {
	if c := cmp.Compare(a.date, b.date); c != 0 {
		return c
	}
	return cmp.Compare(a.artist, b.artist)
}

// sameDayPlays counts plays of each track per day.
func sameDayPlays(events []history.PlayEvent) *tally[dayTrack] {
	return countBy(events, func(e history.PlayEvent) dayTrack {
		return dayTrack{date: e.Date, trackKey: e.TrackKey}
	})
}

// maxRepeatsByTrack returns, per track, the most plays it got on any
// single day. Keys come back in first-seen order.
func maxRepeatsByTrack(events []history.PlayEvent) ([]string, map[string]int) {
	plays := sameDayPlays(events)

	var order []string
	repeats := make(map[string]int)
	for _, k := range plays.order {
		n := int(plays.values[k])
		prev, seen := repeats[k.trackKey]
		if !seen {
			order = append(order, k.trackKey)
		}
		if n > prev {
			repeats[k.trackKey] = n
		}
	}
	return order, repeats
}
