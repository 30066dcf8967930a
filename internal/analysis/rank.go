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
package analysis

import (
	"cmp"
	"slices"

	"github.com/ademuri/listen-stats/internal/history"
)

// RankedArtist is one row of TopArtists.
type RankedArtist struct {
	Rank    int    `yaml:"rank"`
	Name    string `yaml:"name"`
	Minutes int64  `yaml:"minutes"`
}

// RankedTrack is one row of TopTracks. Tracks are scoped to their artist.
type RankedTrack struct {
	Rank    int    `yaml:"rank"`
	Artist  string `yaml:"artist"`
	Name    string `yaml:"name"`
	Minutes int64  `yaml:"minutes"`
}

// ArtistTrack is one row of TopTracksPerTopArtist. Rank is the track's
// position within its artist.
type ArtistTrack struct {
	ArtistRank int    `yaml:"artist_rank"`
	Rank       int    `yaml:"rank"`
	Artist     string `yaml:"artist"`
	Name       string `yaml:"name"`
	Minutes    int64  `yaml:"minutes"`
}

type trackKey struct {
	artist string
	track  string
}

func compareTrackKeys(a, b trackKey) int {
	if c := cmp.Compare(a.artist, b.artist); c != 0 {
		return c
	}
	return cmp.Compare(a.track, b.track)
}

type total[K comparable] struct {
	key K
	ms  int64
}

// groupSum sums MsPlayed per key, keeping only events accepted by keep.
func groupSum[K comparable](events []history.PlayEvent, key func(history.PlayEvent) K, keep func(history.PlayEvent) bool) map[K]int64 {
	sums := make(map[K]int64)
	for _, ev := range events {
		if keep != nil && !keep(ev) {
			continue
		}
		sums[key(ev)] += ev.MsPlayed
	}
	return sums
}

// rank orders totals by ms descending, breaking ties with tieBreak, and keeps
// the first n. n <= 0 keeps everything.
func rank[K comparable](sums map[K]int64, tieBreak func(a, b K) int, n int) []total[K] {
	totals := make([]total[K], 0, len(sums))
	for k, ms := range sums {
		totals = append(totals, total[K]{key: k, ms: ms})
	}
	slices.SortFunc(totals, func(a, b total[K]) int {
		if c := cmp.Compare(b.ms, a.ms); c != 0 {
			return c
		}
		return tieBreak(a.key, b.key)
	})
	if n > 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

func artistOf(ev history.PlayEvent) string { return ev.ArtistName }

func trackOf(ev history.PlayEvent) trackKey {
	return trackKey{artist: ev.ArtistName, track: ev.TrackName}
}

// TopArtists ranks artists by summed play time.
func TopArtists(events []history.PlayEvent, n int) []RankedArtist {
	totals := rank(groupSum(events, artistOf, nil), cmp.Compare[string], n)

	result := make([]RankedArtist, 0, len(totals))
	for i, t := range totals {
		result = append(result, RankedArtist{Rank: i + 1, Name: t.key, Minutes: roundMinutes(t.ms)})
	}
	return result
}

// TopTracks ranks (artist, track) pairs by summed play time.
func TopTracks(events []history.PlayEvent, n int) []RankedTrack {
	totals := rank(groupSum(events, trackOf, nil), compareTrackKeys, n)

	result := make([]RankedTrack, 0, len(totals))
	for i, t := range totals {
		result = append(result, RankedTrack{
			Rank:    i + 1,
			Artist:  t.key.artist,
			Name:    t.key.track,
			Minutes: roundMinutes(t.ms),
		})
	}
	return result
}

// TopTracksPerTopArtist returns the top nTracks tracks of each of the top
// nArtists artists. Rows are grouped by artist in the artists' rank order,
// regardless of how the minutes compare across artists.
func TopTracksPerTopArtist(events []history.PlayEvent, nArtists, nTracks int) []ArtistTrack {
	artists := TopArtists(events, nArtists)
	if len(artists) == 0 {
		return []ArtistTrack{}
	}

	artistRank := make(map[string]int, len(artists))
	for _, a := range artists {
		artistRank[a.Name] = a.Rank
	}

	sums := groupSum(events, trackOf, func(ev history.PlayEvent) bool {
		_, ok := artistRank[ev.ArtistName]
		return ok
	})

	byArtist := make(map[string]map[trackKey]int64, len(artists))
	for k, ms := range sums {
		if byArtist[k.artist] == nil {
			byArtist[k.artist] = make(map[trackKey]int64)
		}
		byArtist[k.artist][k] = ms
	}

	result := make([]ArtistTrack, 0, len(artists)*max(nTracks, 1))
	for _, a := range artists {
		for i, t := range rank(byArtist[a.Name], compareTrackKeys, nTracks) {
			result = append(result, ArtistTrack{
				ArtistRank: a.Rank,
				Rank:       i + 1,
				Artist:     a.Name,
				Name:       t.key.track,
				Minutes:    roundMinutes(t.ms),
			})
		}
	}
	return result
}

// TracksForArtist picks the rows of one artist out of a
// TopTracksPerTopArtist result.
func TracksForArtist(rows []ArtistTrack, artist string) []ArtistTrack {
	var result []ArtistTrack
	for _, r := range rows {
		if r.Artist == artist {
			result = append(result, r)
		}
	}
	return result
}
