/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package lastfmsource serves remote snapshots from the last.fm API.
package lastfmsource

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

	"github.com/ademuri/listen-stats/internal/history"
	"github.com/ademuri/listen-stats/internal/snapshot"
)

const (
	userAgent = "listen-stats/1.0"
	// maxLimit is the largest page last.fm serves.
	maxLimit = 200

	errInvalidParameters = 6
	errServiceOffline    = 11
	errTemporary         = 16
	errRateLimited       = 29
)

// Client reads one user's listening data. Calls are limited to one per
// second and retried on server errors.
type Client struct {
	api     *lastfm.Api
	user    string
	limiter *rate.Limiter
	retries uint
	delay   time.Duration
}

func New(apiKey, secret, user string) *Client {
	api := lastfm.New(apiKey, secret)
	api.SetUserAgent(userAgent)
	return &Client{
		api:     api,
		user:    strings.ToLower(user),
		limiter: rate.NewLimiter(rate.Every(1*time.Second), 1),
		retries: 3,
		delay:   2 * time.Second,
	}
}

var (
	_ snapshot.Source         = (*Client)(nil)
	_ snapshot.DurationLookup = (*Client)(nil)
)

func (c *Client) call(ctx context.Context, method string, fn func() error) error {
	err := retry.Do(
		func() error {
			// Not a last.fm error, so retryable rejects it.
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			return fn()
		},
		retry.Attempts(c.retries),
		retry.Delay(c.delay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Str("method", method).Uint("attempt", n+1).Msg("last.fm errored, retrying")
		}),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// retryable reports whether err is a transient last.fm failure.
func retryable(err error) bool {
	var lerr *lastfm.LastfmError
	if !errors.As(err, &lerr) {
		return false
	}
	switch lerr.Code {
	case errServiceOffline, errTemporary, errRateLimited:
		return true
	}
	return lerr.Code/100 == 5
}

// period maps a time range onto the closest last.fm period.
func period(r snapshot.TimeRange) string {
	switch r {
	case snapshot.MediumTerm:
		return "6month"
	case snapshot.LongTerm:
		return "overall"
	default:
		return "1month"
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLimit {
		return maxLimit
	}
	return limit
}

// atoi parses a numeric field of a last.fm response. last.fm leaves fields
// empty when it has no value, which reads as 0.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// RecentlyPlayed returns the user's latest scrobbles, newest first. The
// track currently playing is skipped. last.fm doesn't record how long a
// track was played, so MsPlayed is 0.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]history.PlayEvent, error) {
	var recent lastfm.UserGetRecentTracks
	err := c.call(ctx, "user.getRecentTracks", func() error {
		var err error
		recent, err = c.api.User.GetRecentTracks(lastfm.P{
			"user":  c.user,
			"limit": clampLimit(limit),
			"page":  1,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	events := make([]history.PlayEvent, 0, len(recent.Tracks))
	for _, t := range recent.Tracks {
		if t.NowPlaying == "true" {
			continue
		}
		uts, err := strconv.ParseInt(t.Date.Uts, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing date of %q: %w", t.Name, err)
		}
		events = append(events, history.PlayEvent{
			EndTime:    time.Unix(uts, 0).UTC(),
			ArtistName: t.Artist.Name,
			TrackName:  t.Name,
			ArtistID:   t.Artist.Mbid,
			TrackID:    t.Mbid,
		})
	}
	log.Debug().Str("user", c.user).Int("plays", len(events)).Msg("Fetched recent tracks")
	return events, nil
}

// TopArtists returns the user's top artists for r. Popularity is the
// user's play count.
func (c *Client) TopArtists(ctx context.Context, r snapshot.TimeRange, limit int) ([]snapshot.TopArtist, error) {
	var top lastfm.UserGetTopArtists
	err := c.call(ctx, "user.getTopArtists", func() error {
		var err error
		top, err = c.api.User.GetTopArtists(lastfm.P{
			"user":   c.user,
			"period": period(r),
			"limit":  clampLimit(limit),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	artists := make([]snapshot.TopArtist, 0, len(top.Artists))
	for i, a := range top.Artists {
		rank := atoi(a.Rank)
		if rank == 0 {
			rank = i + 1
		}
		artists = append(artists, snapshot.TopArtist{
			Rank:       rank,
			ID:         a.Mbid,
			Name:       a.Name,
			Popularity: atoi(a.PlayCount),
		})
	}
	return artists, nil
}

// TopTracks returns the user's top tracks for r. Popularity is the user's
// play count.
func (c *Client) TopTracks(ctx context.Context, r snapshot.TimeRange, limit int) ([]snapshot.TopTrack, error) {
	var top lastfm.UserGetTopTracks
	err := c.call(ctx, "user.getTopTracks", func() error {
		var err error
		top, err = c.api.User.GetTopTracks(lastfm.P{
			"user":   c.user,
			"period": period(r),
			"limit":  clampLimit(limit),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	tracks := make([]snapshot.TopTrack, 0, len(top.Tracks))
	for i, t := range top.Tracks {
		rank := atoi(t.Rank)
		if rank == 0 {
			rank = i + 1
		}
		tracks = append(tracks, snapshot.TopTrack{
			Rank:       rank,
			ID:         t.Mbid,
			Name:       t.Name,
			ArtistID:   t.Artist.Mbid,
			ArtistName: t.Artist.Name,
			// user.getTopTracks reports seconds.
			DurationMs: int64(atoi(t.Duration)) * 1000,
			Popularity: atoi(t.PlayCount),
		})
	}
	return tracks, nil
}

// TrackDurations looks up each track with track.getInfo. last.fm has no
// batch endpoint, so a batch is a run of single calls; the first failure
// other than an unknown track fails the whole batch.
func (c *Client) TrackDurations(ctx context.Context, refs []snapshot.TrackRef) (map[snapshot.TrackRef]int64, error) {
	durations := make(map[snapshot.TrackRef]int64, len(refs))
	for _, ref := range refs {
		var info lastfm.TrackGetInfo
		err := c.call(ctx, "track.getInfo", func() error {
			var err error
			info, err = c.api.Track.GetInfo(trackParams(ref))
			return err
		})
		if err != nil {
			var lerr *lastfm.LastfmError
			if errors.As(err, &lerr) && lerr.Code == errInvalidParameters {
				log.Debug().Str("artist", ref.Artist).Str("track", ref.Name).Msg("Track not found")
				continue
			}
			return nil, err
		}
		// track.getInfo reports milliseconds.
		if ms := atoi(info.Duration); ms > 0 {
			durations[ref] = int64(ms)
		}
	}
	return durations, nil
}

func trackParams(ref snapshot.TrackRef) lastfm.P {
	if ref.ID != "" {
		return lastfm.P{"mbid": ref.ID}
	}
	return lastfm.P{"artist": ref.Artist, "track": ref.Name, "autocorrect": 1}
}
