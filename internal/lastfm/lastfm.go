// Package lastfm converts last.fm scrobbles into streaming-history records
// so last.fm listening can be analysed like an export file.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ademuri/not-wrapped/internal/history"
)

// EstimatedMsPlayed stands in for play length. Scrobbles don't record how
// long a track played, only that it passed last.fm's scrobble point.
const EstimatedMsPlayed = 150000

const pageSize = 200

// RecentTracksGetter is the part of the last.fm API the importer uses.
type RecentTracksGetter interface {
	GetRecentTracks(args lastfm.P) (lastfm.UserGetRecentTracks, error)
}

type userClient struct {
	api *lastfm.Api
}

func (c userClient) GetRecentTracks(args lastfm.P) (lastfm.UserGetRecentTracks, error) {
	return c.api.User.GetRecentTracks(args)
}

// NewClient returns a last.fm client for the given credentials.
func NewClient(apiKey, secret string) RecentTracksGetter {
	api := lastfm.New(apiKey, secret)
	api.SetUserAgent("not-wrapped/1.0")
	return userClient{api: api}
}

type Config struct {
	// Limiter paces page requests. Nil means one per second.
	Limiter    *rate.Limiter
	Attempts   uint
	RetryDelay time.Duration
	// Location formats endTime. Nil means time.Local.
	Location *time.Location
}

type Importer struct {
	client     RecentTracksGetter
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
	loc        *time.Location
}

func NewImporter(client RecentTracksGetter, cfg Config) *Importer {
	if cfg.Limiter == nil {
		cfg.Limiter = rate.NewLimiter(rate.Every(1*time.Second), 1)
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Importer{
		client:     client,
		limiter:    cfg.Limiter,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		loc:        cfg.Location,
	}
}

// Fetch pages through the user's scrobbles between from and to and returns
// them oldest first. A zero from or to leaves that end open. The track
// playing right now has no timestamp and is skipped.
func (im *Importer) Fetch(ctx context.Context, user string, from, to time.Time) ([]history.RawRecord, error) {
	user = strings.ToLower(user)
	if user == "" {
		return nil, errors.New("fetching recent tracks: no last.fm user")
	}

	var records []history.RawRecord
	page := 1 // First page is 1
	pages := 0
	for {
		if err := im.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetching recent tracks: %w", err)
		}

		recentTracks, err := im.getPage(ctx, user, page, from, to)
		if err != nil {
			return nil, fmt.Errorf("fetching recent tracks (page %d): %w", page, err)
		}
		if pages == 0 {
			pages = recentTracks.TotalPages
		}

		for _, t := range recentTracks.Tracks {
			if t.Date.Uts == "" {
				continue
			}
			uts, err := strconv.ParseInt(t.Date.Uts, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing date %q: %w", t.Date.Uts, err)
			}
			played := time.Unix(uts, 0).In(im.loc)
			records = append(records, history.NewRawRecord(played, t.Artist.Name, t.Name, EstimatedMsPlayed))
		}

		log.Info().Int("page", page).Int("pages", pages).Int("records", len(records)).Msg("downloaded scrobbles")
		page += 1
		if page > pages || len(recentTracks.Tracks) == 0 {
			break
		}
	}

	// last.fm returns newest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (im *Importer) getPage(ctx context.Context, user string, page int, from, to time.Time) (lastfm.UserGetRecentTracks, error) {
	params := lastfm.P{
		"limit": pageSize,
		"page":  page,
		"user":  user,
	}
	if !from.IsZero() {
		params["from"] = from.Unix()
	}
	if !to.IsZero() {
		params["to"] = to.Unix()
	}

	var recentTracks lastfm.UserGetRecentTracks
	err := retry.Do(
		func() error {
			var err error
			recentTracks, err = im.client.GetRecentTracks(params)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(im.attempts),
		retry.Delay(im.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if lerr, ok := err.(*lastfm.LastfmError); ok {
				if lerr.Code/100 == 5 {
					log.Warn().Err(lerr).Int("page", page).Msg("last.fm errored, retrying")
					return true
				}
			}
			return false
		}),
	)
	return recentTracks, err
}
