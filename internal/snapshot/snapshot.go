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

// Package snapshot combines the ranked top lists served by a remote
// listening service into an artist-scoped view.
package snapshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/ademuri/listen-stats/internal/history"
)

// TimeRange is the horizon a remote service ranks its top lists over.
type TimeRange int

const (
	ShortTerm TimeRange = iota
	MediumTerm
	LongTerm
)

func (r TimeRange) String() string {
	switch r {
	case MediumTerm:
		return "medium"
	case LongTerm:
		return "long"
	default:
		return "short"
	}
}

func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "short_term", "s", "":
		return ShortTerm, nil
	case "medium", "medium_term", "m":
		return MediumTerm, nil
	case "long", "long_term", "l":
		return LongTerm, nil
	}
	return ShortTerm, fmt.Errorf("Invalid time range: %q", s)
}

// TopArtist is one entry of a remote top-artists list. Rank is the remote
// position, starting at 1.
type TopArtist struct {
	Rank       int
	ID         string
	Name       string
	Popularity int
}

// TopTrack is one entry of a remote top-tracks list. DurationMs is 0 when
// the service doesn't know it.
type TopTrack struct {
	Rank       int
	ID         string
	Name       string
	ArtistID   string
	ArtistName string
	DurationMs int64
	Popularity int
}

// Source is a remote listening service.
type Source interface {
	// RecentlyPlayed returns up to limit of the latest plays. MsPlayed is
	// usually unknown and left as 0.
	RecentlyPlayed(ctx context.Context, limit int) ([]history.PlayEvent, error)
	TopArtists(ctx context.Context, r TimeRange, limit int) ([]TopArtist, error)
	TopTracks(ctx context.Context, r TimeRange, limit int) ([]TopTrack, error)
}

// TrackRef identifies a track for a duration lookup. ID may be empty, in
// which case the service resolves the track by name.
type TrackRef struct {
	ID     string
	Artist string
	Name   string
}

// DurationLookup resolves track lengths in milliseconds. Tracks the
// service doesn't know are left out of the result.
type DurationLookup interface {
	TrackDurations(ctx context.Context, refs []TrackRef) (map[TrackRef]int64, error)
}

// Status reports whether every remote call behind a result succeeded.
type Status int

const (
	StatusOK Status = iota
	// StatusPartial means some remote calls failed and the result holds
	// only what the rest returned.
	StatusPartial
)

func (s Status) String() string {
	if s == StatusPartial {
		return "partial"
	}
	return "ok"
}
