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
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ademuri/listen-stats/internal/history"
)

// DefaultBatchSize is the number of tracks per duration lookup.
const DefaultBatchSize = 50

// Snapshot is everything fetched from a Source for one time range.
type Snapshot struct {
	Range    TimeRange
	Artists  []TopArtist
	Tracks   []TopTrack
	Recent   []history.PlayEvent
	Status   Status
	Warnings []string
}

// Fetch loads the top lists for r and the recent plays from src. A failed
// call leaves its list empty, marks the snapshot partial and adds a
// warning. Fetch only fails when neither top list could be loaded.
func Fetch(ctx context.Context, src Source, r TimeRange, limit int) (Snapshot, error) {
	snap := Snapshot{Range: r}

	var (
		wg                               sync.WaitGroup
		artistsErr, tracksErr, recentErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		snap.Artists, artistsErr = src.TopArtists(ctx, r, limit)
	}()
	go func() {
		defer wg.Done()
		snap.Tracks, tracksErr = src.TopTracks(ctx, r, limit)
	}()
	go func() {
		defer wg.Done()
		snap.Recent, recentErr = src.RecentlyPlayed(ctx, limit)
	}()
	wg.Wait()

	if artistsErr != nil && tracksErr != nil {
		return Snapshot{}, fmt.Errorf("fetching %s term top lists: %w", r, errors.Join(artistsErr, tracksErr))
	}

	for _, f := range []struct {
		what string
		err  error
	}{
		{"top artists", artistsErr},
		{"top tracks", tracksErr},
		{"recently played", recentErr},
	} {
		if f.err == nil {
			continue
		}
		log.Warn().Err(f.err).Str("range", r.String()).Msgf("Fetching %s failed", f.what)
		snap.Status = StatusPartial
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s unavailable: %v", f.what, f.err))
	}

	if snap.Artists == nil {
		snap.Artists = []TopArtist{}
	}
	if snap.Tracks == nil {
		snap.Tracks = []TopTrack{}
	}
	return snap, nil
}

// Enriched is the result of Enrich.
type Enriched struct {
	Events   []history.PlayEvent
	Status   Status
	Warnings []string
}

// Enrich fills in MsPlayed for events that don't have it, using track
// durations looked up batchSize tracks at a time. A failed batch leaves
// its events unchanged and marks the result partial. The input slice is
// not modified.
func Enrich(ctx context.Context, lookup DurationLookup, events []history.PlayEvent, batchSize int) Enriched {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	result := Enriched{Events: slices.Clone(events)}

	seen := make(map[TrackRef]bool)
	var refs []TrackRef
	for _, ev := range events {
		if ev.MsPlayed != 0 {
			continue
		}
		ref := refOf(ev)
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	durations := make(map[TrackRef]int64, len(refs))
	for start := 0; start < len(refs); start += batchSize {
		batch := refs[start:min(start+batchSize, len(refs))]
		got, err := lookup.TrackDurations(ctx, batch)
		if err != nil {
			log.Warn().Err(err).Int("offset", start).Int("size", len(batch)).Msg("Duration lookup failed")
			result.Status = StatusPartial
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("durations for %d tracks unavailable: %v", len(batch), err))
			continue
		}
		for ref, ms := range got {
			durations[ref] = ms
		}
	}

	for i, ev := range result.Events {
		if ev.MsPlayed != 0 {
			continue
		}
		if ms, ok := durations[refOf(ev)]; ok && ms > 0 {
			result.Events[i].MsPlayed = ms
		}
	}
	log.Debug().Int("tracks", len(refs)).Int("resolved", len(durations)).Msg("Enriched recent plays")
	return result
}

func refOf(ev history.PlayEvent) TrackRef {
	return TrackRef{ID: ev.TrackID, Artist: ev.ArtistName, Name: ev.TrackName}
}
