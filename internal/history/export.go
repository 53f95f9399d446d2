package history

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
)

// ExportTimeLayout is the endTime format of streaming-history exports.
const ExportTimeLayout = "2006-01-02 15:04"

// RawRecord is one entry of a streaming-history export file.
type RawRecord struct {
	EndTime    string `json:"endTime"`
	ArtistName string `json:"artistName"`
	TrackName  string `json:"trackName"`
	MsPlayed   int64  `json:"msPlayed"`
}

// NewRawRecord formats a play the way exports do, in t's location.
func NewRawRecord(endTime time.Time, artist, track string, msPlayed int64) RawRecord {
	return RawRecord{
		EndTime:    endTime.Format(ExportTimeLayout),
		ArtistName: artist,
		TrackName:  track,
		MsPlayed:   msPlayed,
	}
}

func (r RawRecord) fields() map[string]any {
	return map[string]any{
		"endTime":    r.EndTime,
		"artistName": r.ArtistName,
		"trackName":  r.TrackName,
		"msPlayed":   r.MsPlayed,
	}
}

// WriteRecords writes records as an indented JSON array that Parse and
// LoadFiles accept.
func WriteRecords(w io.Writer, records []RawRecord) error {
	if records == nil {
		records = []RawRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("writing history records: %w", err)
	}
	return nil
}
