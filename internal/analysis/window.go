package analysis

import (
	"fmt"
	"math"
	"slices"

	"github.com/ademuri/not-wrapped/internal/history"
)

const (
	DefaultWindowPct = 0.25
	MinWindowPct     = 0.10
	MaxWindowPct     = 0.50

	// Rank movement lists are cut to this many artists.
	maxRankMoves = 12

	// Sort position for an artist missing from one window.
	absentRank = 999
)

// TimeWindowSummary describes one slice of the time-ordered plays.
type TimeWindowSummary struct {
	Label      string         `json:"label" yaml:"label"`
	TopArtists []NamedMinutes `json:"topArtists" yaml:"top_artists"`
	Count      int            `json:"count" yaml:"count"`
}

// WindowComparison holds the early and late windows and the merged rank
// movement between them.
type WindowComparison struct {
	Early TimeWindowSummary `json:"early" yaml:"early"`
	Late  TimeWindowSummary `json:"late" yaml:"late"`
	Moves []RankMove        `json:"moves" yaml:"moves"`
}

// RankMove is an artist's position in each window. A rank of 0 means the
// artist isn't in that window's list.
type RankMove struct {
	Name         string  `json:"name" yaml:"name"`
	EarlyRank    int     `json:"earlyRank,omitempty" yaml:"early_rank,omitempty"`
	LateRank     int     `json:"lateRank,omitempty" yaml:"late_rank,omitempty"`
	EarlyMinutes float64 `json:"earlyMinutes" yaml:"early_minutes"`
	LateMinutes  float64 `json:"lateMinutes" yaml:"late_minutes"`
}

// Delta is EarlyRank - LateRank, so positive means the artist climbed. It
// is only defined when the artist is ranked in both windows.
func (m RankMove) Delta() (int, bool) {
	if m.EarlyRank == 0 || m.LateRank == 0 {
		return 0, false
	}
	return m.EarlyRank - m.LateRank, true
}

// Improved reports whether the artist has a better rank late than early.
func (m RankMove) Improved() bool {
	d, ok := m.Delta()
	return ok && d > 0
}

// Direction is a short marker for renderers: up, down, same, new or gone.
func (m RankMove) Direction() string {
	d, ok := m.Delta()
	switch {
	case !ok && m.LateRank != 0:
		return "new"
	case !ok:
		return "gone"
	case d > 0:
		return "up"
	case d < 0:
		return "down"
	default:
		return "same"
	}
}

func (m RankMove) bestRank() int {
	early, late := m.EarlyRank, m.LateRank
	if early == 0 {
		early = absentRank
	}
	if late == 0 {
		late = absentRank
	}
	return min(early, late)
}

// ClampPct limits a window fraction to [MinWindowPct, MaxWindowPct]. NaN
// falls back to DefaultWindowPct.
func ClampPct(pct float64) float64 {
	if math.IsNaN(pct) {
		return DefaultWindowPct
	}
	return math.Max(MinWindowPct, math.Min(MaxWindowPct, pct))
}

// CompareWindows sorts the plays of at least minMs by time and compares
// the top artists of the first and last pct of them. pct is clamped with
// ClampPct; topN <= 0 means DefaultTopN. An empty filtered set gives two
// empty windows.
func CompareWindows(events []history.PlayEvent, minMs int64, pct float64, topN int) WindowComparison {
	pct = ClampPct(pct)
	if topN <= 0 {
		topN = DefaultTopN
	}

	rows := filterMinMs(events, minMs)
	slices.SortStableFunc(rows, func(a, b history.PlayEvent) int {
		return a.EndTime.Compare(b.EndTime)
	})
	early, late := splitWindows(rows, pct)

	percent := int(math.Round(pct * 100))
	out := WindowComparison{
		Early: summarizeWindow(fmt.Sprintf("First %d%%", percent), early, topN),
		Late:  summarizeWindow(fmt.Sprintf("Last %d%%", percent), late, topN),
	}
	out.Moves = MergeRanks(out.Early.TopArtists, out.Late.TopArtists)
	return out
}

// splitWindows takes floor(n*pct) rows from each end of sorted. With pct
// above 0.5 the windows overlap.
func splitWindows(sorted []history.PlayEvent, pct float64) (early, late []history.PlayEvent) {
	n := len(sorted)
	k := int(math.Floor(float64(n) * pct))
	k = max(0, min(n, k))
	return sorted[:k], sorted[n-k:]
}

func summarizeWindow(label string, rows []history.PlayEvent, topN int) TimeWindowSummary {
	return TimeWindowSummary{
		Label:      label,
		TopArtists: topNBySum(rows, byArtist, topN),
		Count:      len(rows),
	}
}

// MergeRanks unions two ranked artist lists by name, orders the result by
// each artist's best rank in either list and keeps the first 12.
func MergeRanks(early, late []NamedMinutes) []RankMove {
	index := make(map[string]int)
	var moves []RankMove

	for i, a := range early {
		index[a.Name] = len(moves)
		moves = append(moves, RankMove{Name: a.Name, EarlyRank: i + 1, EarlyMinutes: a.Minutes})
	}
	for i, a := range late {
		if j, ok := index[a.Name]; ok {
			moves[j].LateRank = i + 1
			moves[j].LateMinutes = a.Minutes
			continue
		}
		index[a.Name] = len(moves)
		moves = append(moves, RankMove{Name: a.Name, LateRank: i + 1, LateMinutes: a.Minutes})
	}

	slices.SortStableFunc(moves, func(a, b RankMove) int {
		return a.bestRank() - b.bestRank()
	})
	if len(moves) > maxRankMoves {
		moves = moves[:maxRankMoves]
	}
	if moves == nil {
		moves = []RankMove{}
	}
	return moves
}
