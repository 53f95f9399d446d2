package analysis

import (
	"cmp"
	"math"
	"slices"

	"github.com/ademuri/not-wrapped/internal/history"
)

// DefaultMoodPoints is how many tracks the mood map keeps.
const DefaultMoodPoints = 40

// Quadrant names for normalized mood coordinates, split at 50.
const (
	QuadrantZenZone         = "Zen Zone"
	QuadrantFocusedLoop     = "Focused Loop"
	QuadrantBackgroundDrift = "Background Drift"
	QuadrantChaosGoblin     = "Chaos Goblin"
)

// MoodScale holds the constants of the calm/chaos heuristic. They are
// tuning knobs, not measurements.
type MoodScale struct {
	// UnitMs converts average play length to seconds for calm and floors it
	// for chaos.
	UnitMs float64
	// ReferenceMs is the play length against which shortness raises chaos.
	ReferenceMs float64
}

// DefaultMoodScale reproduces the published calm/chaos scores.
var DefaultMoodScale = MoodScale{UnitMs: 1000, ReferenceMs: 180000}

// MoodPoint places one track in calm/chaos space. Calm and Chaos are raw
// log-scale scores; CalmN and ChaosN are scaled to [0, 100] across the
// returned points only.
type MoodPoint struct {
	TrackKey   string  `json:"trackKey" yaml:"track_key"`
	Calm       float64 `json:"calm" yaml:"calm"`
	Chaos      float64 `json:"chaos" yaml:"chaos"`
	CalmN      float64 `json:"calmN" yaml:"calm_n"`
	ChaosN     float64 `json:"chaosN" yaml:"chaos_n"`
	Minutes    float64 `json:"minutes" yaml:"minutes"`
	MaxRepeats int     `json:"maxRepeats" yaml:"max_repeats"`
	AvgMs      float64 `json:"avgMs" yaml:"avg_ms"`
}

func (p MoodPoint) Quadrant() string {
	calm, chaos := p.CalmN >= 50, p.ChaosN >= 50
	switch {
	case calm && !chaos:
		return QuadrantZenZone
	case calm && chaos:
		return QuadrantFocusedLoop
	case !calm && !chaos:
		return QuadrantBackgroundDrift
	default:
		return QuadrantChaosGoblin
	}
}

// ComputeMoodMap scores tracks with DefaultMoodScale.
func ComputeMoodMap(events []history.PlayEvent, minMs int64, maxPoints int) []MoodPoint {
	return DefaultMoodScale.Project(events, minMs, maxPoints)
}

type trackTotals struct {
	ms    int64
	plays int
}

// Project scores every track played for at least minMs, keeps the
// maxPoints tracks with the most listening time and normalizes both axes
// over them. maxPoints <= 0 means DefaultMoodPoints. The result doesn't
// depend on event order.
func (s MoodScale) Project(events []history.PlayEvent, minMs int64, maxPoints int) []MoodPoint {
	if maxPoints <= 0 {
		maxPoints = DefaultMoodPoints
	}
	rows := filterMinMs(events, minMs)

	totals := make(map[string]*trackTotals)
	for _, r := range rows {
		t, ok := totals[r.TrackKey]
		if !ok {
			t = &trackTotals{}
			totals[r.TrackKey] = t
		}
		t.ms = addMs(t.ms, r.MsPlayed)
		t.plays++
	}
	_, repeats := maxRepeatsByTrack(rows)

	type scored struct {
		point MoodPoint
		ms    int64
	}
	all := make([]scored, 0, len(totals))
	for key, t := range totals {
		avgMs := float64(t.ms) / float64(max(1, t.plays))
		minutes := msToMinutes(t.ms)
		all = append(all, scored{
			ms: t.ms,
			point: MoodPoint{
				TrackKey:   key,
				Calm:       math.Log(1+avgMs/s.UnitMs) + math.Log(1+minutes),
				Chaos:      math.Log(1+float64(repeats[key])) + math.Log(1+s.ReferenceMs/math.Max(s.UnitMs, avgMs)),
				Minutes:    minutes,
				MaxRepeats: repeats[key],
				AvgMs:      avgMs,
			},
		})
	}

	slices.SortFunc(all, func(a, b scored) int {
		if c := cmp.Compare(b.ms, a.ms); c != 0 {
			return c
		}
		return cmp.Compare(a.point.TrackKey, b.point.TrackKey)
	})
	if len(all) > maxPoints {
		all = all[:maxPoints]
	}

	points := make([]MoodPoint, len(all))
	for i, sc := range all {
		points[i] = sc.point
	}
	normalizeAxis(points, func(p *MoodPoint) (float64, *float64) { return p.Calm, &p.CalmN })
	normalizeAxis(points, func(p *MoodPoint) (float64, *float64) { return p.Chaos, &p.ChaosN })
	return points
}

// normalizeAxis min-max scales one axis to [0, 100]. A flat axis maps every
// point to 0.
func normalizeAxis(points []MoodPoint, axis func(*MoodPoint) (float64, *float64)) {
	if len(points) == 0 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range points {
		v, _ := axis(&points[i])
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	den := hi - lo
	if den == 0 {
		den = 1
	}
	for i := range points {
		v, out := axis(&points[i])
		*out = (v - lo) / den * 100
	}
}
