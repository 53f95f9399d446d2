package analysis

import (
	"cmp"
	"slices"

	"github.com/ademuri/not-wrapped/internal/history"
)

const loopMonsterCount = 10

type HourMinutes struct {
	Hour    int     `json:"hour" yaml:"hour"`
	Minutes float64 `json:"minutes" yaml:"minutes"`
}

type MonthMinutes struct {
	Month   string  `json:"month" yaml:"month"`
	Minutes float64 `json:"minutes" yaml:"minutes"`
}

// LoopMonster is a track and the most times it was played on one day.
type LoopMonster struct {
	TrackKey string `json:"trackKey" yaml:"track_key"`
	Repeats  int    `json:"repeats" yaml:"repeats"`
}

// Patterns is the listening clock, monthly curve and loop ranking for the
// plays that pass the threshold.
type Patterns struct {
	HourlyMinutes  []HourMinutes  `json:"hourlyMinutes" yaml:"hourly_minutes"`
	MonthlyMinutes []MonthMinutes `json:"monthlyMinutes" yaml:"monthly_minutes"`
	LoopMonsters   []LoopMonster  `json:"loopMonsters" yaml:"loop_monsters"`
	TotalMinutes   float64        `json:"totalMinutes" yaml:"total_minutes"`
}

func ComputePatterns(events []history.PlayEvent, minMs int64) Patterns {
	rows := filterMinMs(events, minMs)

	var byHour [24]int64
	for _, r := range rows {
		if r.Hour >= 0 && r.Hour < len(byHour) {
			byHour[r.Hour] = addMs(byHour[r.Hour], r.MsPlayed)
		}
	}
	hourly := make([]HourMinutes, len(byHour))
	for hour, ms := range byHour {
		hourly[hour] = HourMinutes{Hour: hour, Minutes: msToMinutes(ms)}
	}

	byMonth := sumMsBy(rows, func(e history.PlayEvent) string { return e.Month })
	monthly := make([]MonthMinutes, 0, byMonth.size())
	for _, month := range byMonth.order {
		monthly = append(monthly, MonthMinutes{Month: month, Minutes: msToMinutes(byMonth.values[month])})
	}
	slices.SortFunc(monthly, func(a, b MonthMinutes) int { return cmp.Compare(a.Month, b.Month) })

	return Patterns{
		HourlyMinutes:  hourly,
		MonthlyMinutes: monthly,
		LoopMonsters:   loopMonsters(rows, loopMonsterCount),
		TotalMinutes:   msToMinutes(sumMs(rows)),
	}
}

// loopMonsters ranks tracks by their highest single-day play count, ties
// broken by track key.
func loopMonsters(rows []history.PlayEvent, n int) []LoopMonster {
	order, repeats := maxRepeatsByTrack(rows)

	out := make([]LoopMonster, 0, len(order))
	for _, key := range order {
		out = append(out, LoopMonster{TrackKey: key, Repeats: repeats[key]})
	}
	slices.SortFunc(out, func(a, b LoopMonster) int {
		if c := cmp.Compare(b.Repeats, a.Repeats); c != 0 {
			return c
		}
		return cmp.Compare(a.TrackKey, b.TrackKey)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
