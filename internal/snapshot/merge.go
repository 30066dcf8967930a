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
package snapshot

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ademuri/listen-stats/internal/analysis"
)

// Caveat is shown next to merged artist minutes.
const Caveat = "Artist minutes are summed from the artist's tracks in the top-tracks list, " +
	"which is itself truncated. They are a lower bound, not total listening time."

// MergedArtist is a remote top artist re-ranked by approximate listening
// time.
type MergedArtist struct {
	Rank     int
	Artist   TopArtist
	ApproxMs int64
	Minutes  int64
}

// Merged is the result of Merge. Approximate is always true; it is carried
// so that renderers can't forget the Caveat.
type Merged struct {
	Artists     []MergedArtist
	Approximate bool
	Caveat      string
}

// Merge approximates each artist's listening time by summing the durations
// of their tracks in tracks, and re-ranks artists by it. Ties go to the
// higher popularity, then to the lower remote rank.
//
// A track belongs to an artist when their IDs match. When either side has
// no ID the artist names are compared case-insensitively.
func Merge(artists []TopArtist, tracks []TopTrack) Merged {
	byID := make(map[string]int, len(artists))
	byName := make(map[string]int, len(artists))
	for i, a := range artists {
		if a.ID != "" {
			if _, ok := byID[a.ID]; !ok {
				byID[a.ID] = i
			}
		}
		name := strings.ToLower(a.Name)
		if _, ok := byName[name]; !ok {
			byName[name] = i
		}
	}

	approx := make([]int64, len(artists))
	for _, t := range tracks {
		if i, ok := artistFor(artists, byID, byName, t); ok {
			approx[i] += t.DurationMs
		}
	}

	merged := make([]MergedArtist, len(artists))
	for i, a := range artists {
		merged[i] = MergedArtist{Artist: a, ApproxMs: approx[i], Minutes: analysis.Minutes(approx[i])}
	}
	slices.SortStableFunc(merged, func(a, b MergedArtist) int {
		if c := cmp.Compare(b.Minutes, a.Minutes); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Artist.Popularity, a.Artist.Popularity); c != 0 {
			return c
		}
		return cmp.Compare(a.Artist.Rank, b.Artist.Rank)
	})
	for i := range merged {
		merged[i].Rank = i + 1
	}

	return Merged{Artists: merged, Approximate: true, Caveat: Caveat}
}

func artistFor(artists []TopArtist, byID, byName map[string]int, t TopTrack) (int, bool) {
	if t.ArtistID != "" {
		if i, ok := byID[t.ArtistID]; ok {
			return i, true
		}
	}
	i, ok := byName[strings.ToLower(t.ArtistName)]
	if !ok {
		return 0, false
	}
	// Two different IDs are two different artists, whatever the names say.
	if t.ArtistID != "" && artists[i].ID != "" {
		return 0, false
	}
	return i, true
}

// Match says how a Selection was made.
type Match int

const (
	MatchByID Match = iota
	// MatchByName compares artist names by substring, so it can pick up
	// other artists ("Queen" in "Queens of the Stone Age") or miss renamed
	// ones.
	MatchByName
)

func (m Match) String() string {
	if m == MatchByName {
		return "name"
	}
	return "id"
}

// Selection is the part of a top-tracks list that belongs to one artist.
type Selection struct {
	Tracks []TopTrack
	Match  Match
}

// TracksForArtist returns up to n tracks of artist, most popular first.
// n <= 0 returns all of them.
func TracksForArtist(tracks []TopTrack, artist TopArtist, n int) Selection {
	sel := Selection{Tracks: []TopTrack{}, Match: MatchByID}

	var keep func(TopTrack) bool
	if artist.ID != "" {
		keep = func(t TopTrack) bool { return t.ArtistID == artist.ID }
	} else {
		sel.Match = MatchByName
		name := strings.ToLower(artist.Name)
		if name == "" {
			return sel
		}
		keep = func(t TopTrack) bool { return strings.Contains(strings.ToLower(t.ArtistName), name) }
	}

	for _, t := range tracks {
		if keep(t) {
			sel.Tracks = append(sel.Tracks, t)
		}
	}
	slices.SortStableFunc(sel.Tracks, func(a, b TopTrack) int {
		if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
			return c
		}
		return cmp.Compare(a.Rank, b.Rank)
	})
	if n > 0 && len(sel.Tracks) > n {
		sel.Tracks = sel.Tracks[:n]
	}
	return sel
}
