package analysis

import "errors"

// NoPlaysError is the message reported when nothing survives the
// minimum-duration filter.
const NoPlaysError = "No plays found after filtering. Lower threshold or check file."

// ErrNoPlays is the error form of NoPlaysError, returned by Report.Err.
var ErrNoPlays = errors.New(NoPlaysError)

// Report is the top-level structure handed to renderers. When OK is false
// only Error is set.
type Report struct {
	OK         bool           `json:"ok" yaml:"ok"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	Meta       *Meta          `json:"meta,omitempty" yaml:"meta,omitempty"`
	Totals     *Totals        `json:"totals,omitempty" yaml:"totals,omitempty"`
	Highlights *Highlights    `json:"highlights,omitempty" yaml:"highlights,omitempty"`
	YearSplit  []YearHours    `json:"yearSplit,omitempty" yaml:"year_split,omitempty"`
	TopArtists []NamedMinutes `json:"topArtists,omitempty" yaml:"top_artists,omitempty"`
	TopTracks  []NamedMinutes `json:"topTracks,omitempty" yaml:"top_tracks,omitempty"`
}

// Err returns nil for a successful report and ErrNoPlays otherwise.
func (r Report) Err() error {
	if r.OK {
		return nil
	}
	if r.Error == NoPlaysError {
		return ErrNoPlays
	}
	return errors.New(r.Error)
}

type Meta struct {
	StartISO string `json:"startISO" yaml:"start_iso"`
	EndISO   string `json:"endISO" yaml:"end_iso"`
	MinMs    int64  `json:"minMs" yaml:"min_ms"`
}

type Totals struct {
	Hours         float64 `json:"hours" yaml:"hours"`
	Minutes       float64 `json:"minutes" yaml:"minutes"`
	DaysActive    int     `json:"daysActive" yaml:"days_active"`
	UniqueArtists int     `json:"uniqueArtists" yaml:"unique_artists"`
	UniqueTracks  int     `json:"uniqueTracks" yaml:"unique_tracks"`
	// NightShare is the fraction of listening time between 00:00 and 05:59.
	NightShare float64 `json:"nightShare" yaml:"night_share"`
}

type Highlights struct {
	PeakHour           PeakHour    `json:"peakHour" yaml:"peak_hour"`
	MostDiverseDay     DiverseDay  `json:"mostDiverseDay" yaml:"most_diverse_day"`
	BiggestArtistBinge Binge       `json:"biggestArtistBinge" yaml:"biggest_artist_binge"`
	MaxLoop            Loop        `json:"maxLoop" yaml:"max_loop"`
	MicroSkipRate      float64     `json:"microSkipRate" yaml:"micro_skip_rate"`
	MostMicroSkipped   *NamedCount `json:"mostMicroSkipped" yaml:"most_micro_skipped"`
}

type PeakHour struct {
	Hour    int     `json:"hour" yaml:"hour"`
	Minutes float64 `json:"minutes" yaml:"minutes"`
}

type DiverseDay struct {
	Date          string `json:"date" yaml:"date"`
	UniqueArtists int    `json:"uniqueArtists" yaml:"unique_artists"`
}

type Binge struct {
	Date    string  `json:"date" yaml:"date"`
	Artist  string  `json:"artist" yaml:"artist"`
	Minutes float64 `json:"minutes" yaml:"minutes"`
}

type Loop struct {
	Date     string `json:"date" yaml:"date"`
	TrackKey string `json:"trackKey" yaml:"track_key"`
	Plays    int    `json:"plays" yaml:"plays"`
}

type YearHours struct {
	Year  int     `json:"year" yaml:"year"`
	Hours float64 `json:"hours" yaml:"hours"`
}

// NamedMinutes is one row of a ranking by listening time.
type NamedMinutes struct {
	Name    string  `json:"name" yaml:"name"`
	Minutes float64 `json:"minutes" yaml:"minutes"`
}

type NamedCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}
