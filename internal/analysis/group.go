package analysis

import (
	"cmp"
	"math"
	"slices"

	"github.com/ademuri/not-wrapped/internal/history"
)

const (
	msPerMinute = 60000
	msPerHour   = 3600000
)

// tally accumulates an integer per key and remembers the order in which
// keys were first seen.
type tally[K comparable] struct {
	order  []K
	values map[K]int64
}

type entry[K comparable] struct {
	Key   K
	Value int64
}

func newTally[K comparable]() *tally[K] {
	return &tally[K]{values: make(map[K]int64)}
}

func (t *tally[K]) add(k K, v int64) {
	if _, ok := t.values[k]; !ok {
		t.order = append(t.order, k)
	}
	t.values[k] = addMs(t.values[k], v)
}

func (t *tally[K]) size() int {
	return len(t.order)
}

// ranked returns every entry by value, largest first. Equal values keep
// first-seen order.
func (t *tally[K]) ranked() []entry[K] {
	out := make([]entry[K], 0, len(t.order))
	for _, k := range t.order {
		out = append(out, entry[K]{Key: k, Value: t.values[k]})
	}
	slices.SortStableFunc(out, func(a, b entry[K]) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}

// max returns the entry with the largest value. Ties go to the key that
// sorts first under keyCmp, so the result doesn't depend on input order.
func (t *tally[K]) max(keyCmp func(a, b K) int) (entry[K], bool) {
	var best entry[K]
	found := false
	for _, k := range t.order {
		v := t.values[k]
		if !found || v > best.Value || (v == best.Value && keyCmp(k, best.Key) < 0) {
			best = entry[K]{Key: k, Value: v}
			found = true
		}
	}
	return best, found
}

// sumMsBy totals msPlayed per key.
func sumMsBy[K comparable](events []history.PlayEvent, key func(history.PlayEvent) K) *tally[K] {
	t := newTally[K]()
	for _, e := range events {
		t.add(key(e), e.MsPlayed)
	}
	return t
}

// countBy counts events per key.
func countBy[K comparable](events []history.PlayEvent, key func(history.PlayEvent) K) *tally[K] {
	t := newTally[K]()
	for _, e := range events {
		t.add(key(e), 1)
	}
	return t
}

// topNBySum ranks keys by summed listening time. n <= 0 returns all keys.
func topNBySum(events []history.PlayEvent, key func(history.PlayEvent) string, n int) []NamedMinutes {
	ranked := sumMsBy(events, key).ranked()
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]NamedMinutes, 0, len(ranked))
	for _, e := range ranked {
		out = append(out, NamedMinutes{Name: e.Key, Minutes: msToMinutes(e.Value)})
	}
	return out
}

func sumMs(events []history.PlayEvent) int64 {
	var total int64
	for _, e := range events {
		total = addMs(total, e.MsPlayed)
	}
	return total
}

// filterMinMs returns a new slice holding the events played for at least
// minMs.
func filterMinMs(events []history.PlayEvent, minMs int64) []history.PlayEvent {
	out := make([]history.PlayEvent, 0, len(events))
	for _, e := range events {
		if e.MsPlayed >= minMs {
			out = append(out, e)
		}
	}
	return out
}

// addMs adds two non-negative durations, saturating at math.MaxInt64.
func addMs(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func msToMinutes(ms int64) float64 {
	return float64(ms) / msPerMinute
}

func msToHours(ms int64) float64 {
	return float64(ms) / msPerHour
}

func byArtist(e history.PlayEvent) string { return e.ArtistName }

func byTrack(e history.PlayEvent) string { return e.TrackKey }
