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
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/listen-stats/internal/history"
	"github.com/ademuri/listen-stats/internal/snapshot"
)

type fakeRemote struct {
	tracksErr   error
	lookupErr   error
	extraTracks int
}

func (f *fakeRemote) RecentlyPlayed(ctx context.Context, limit int) ([]history.PlayEvent, error) {
	end := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []history.PlayEvent{
		{EndTime: end, ArtistName: "Queen", TrackName: "Radio"},
		{EndTime: end.Add(-5 * time.Minute), ArtistName: "Queen", TrackName: "Radio"},
	}, nil
}

func (f *fakeRemote) TopArtists(ctx context.Context, r snapshot.TimeRange, limit int) ([]snapshot.TopArtist, error) {
	return []snapshot.TopArtist{
		{Rank: 1, Name: "Queens of the Stone Age", Popularity: 40},
		{Rank: 2, Name: "Queen", Popularity: 30},
	}, nil
}

func (f *fakeRemote) TopTracks(ctx context.Context, r snapshot.TimeRange, limit int) ([]snapshot.TopTrack, error) {
	if f.tracksErr != nil {
		return nil, f.tracksErr
	}
	tracks := []snapshot.TopTrack{
		{Rank: 1, Name: "Radio", ArtistName: "Queen", DurationMs: 300000, Popularity: 20},
		{Rank: 2, Name: "No One Knows", ArtistName: "Queens of the Stone Age", DurationMs: 240000, Popularity: 10},
	}
	for i := 0; i < f.extraTracks; i++ {
		tracks = append(tracks, snapshot.TopTrack{
			Rank: len(tracks) + 1, Name: fmt.Sprintf("Filler %d", len(tracks)+1), ArtistName: "Session Band", Popularity: 1,
		})
	}
	return tracks, nil
}

func (f *fakeRemote) TrackDurations(ctx context.Context, refs []snapshot.TrackRef) (map[snapshot.TrackRef]int64, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	got := make(map[snapshot.TrackRef]int64)
	for _, r := range refs {
		got[r] = 300000
	}
	return got, nil
}

func TestPrintWrapped(t *testing.T) {
	remote := &fakeRemote{}
	out := new(bytes.Buffer)
	if err := printWrapped(context.Background(), out, remote, remote, wrappedOptions{timeRange: snapshot.MediumTerm, limit: 50}); err != nil {
		t.Fatalf("printWrapped: %v", err)
	}

	got := out.String()
	// Queen has the longer top track, so it moves ahead of its last.fm rank.
	if strings.Index(got, "Queen ") > strings.Index(got, "Queens of the Stone Age") {
		t.Errorf("Expected Queen to be ranked first:\n%s", got)
	}
	for _, want := range []string{
		"medium term",
		"lower bound",
		"Top tracks, medium term.",
		"No One Knows",
		"2025-03-01 10:00",
		"Saturday",
		"Last 2 plays: about 0 days :0 hrs :10 mins",
		"Total duration of your top tracks: 9 minutes",
		"does not expose total listening time",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "incomplete") {
		t.Errorf("Did not expect a partial result:\n%s", got)
	}
}

func TestPrintWrappedPartial(t *testing.T) {
	remote := &fakeRemote{tracksErr: errors.New("timeout"), lookupErr: errors.New("503")}
	out := new(bytes.Buffer)
	if err := printWrapped(context.Background(), out, remote, remote, wrappedOptions{timeRange: snapshot.ShortTerm, limit: 50}); err != nil {
		t.Fatalf("printWrapped: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Queens of the Stone Age",
		"incomplete",
		"top tracks unavailable",
		"Warning: durations",
		"No track data for the short term",
		"Not enough data to estimate listening time.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output:\n%s", want, got)
		}
	}
}

func TestPrintWrappedTopTracksList(t *testing.T) {
	remote := &fakeRemote{extraTracks: 5}

	out := new(bytes.Buffer)
	if err := printWrapped(context.Background(), out, remote, remote, wrappedOptions{timeRange: snapshot.ShortTerm, limit: 50}); err != nil {
		t.Fatalf("printWrapped: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Filler 5") || strings.Contains(got, "Filler 6") {
		t.Errorf("Expected only the first 5 top tracks:\n%s", got)
	}
	if !strings.Contains(got, "Showing 5 of 7, use --full for the rest.") {
		t.Errorf("Expected a note about the hidden tracks:\n%s", got)
	}

	out.Reset()
	if err := printWrapped(context.Background(), out, remote, remote, wrappedOptions{timeRange: snapshot.ShortTerm, limit: 50, full: true}); err != nil {
		t.Fatalf("printWrapped: %v", err)
	}
	got = out.String()
	if !strings.Contains(got, "Filler 7") || strings.Contains(got, "Showing 5") {
		t.Errorf("Expected the full top tracks list:\n%s", got)
	}
}

func TestPrintWrappedArtistByName(t *testing.T) {
	remote := &fakeRemote{}
	out := new(bytes.Buffer)
	if err := printWrapped(context.Background(), out, remote, remote, wrappedOptions{timeRange: snapshot.LongTerm, limit: 50, artist: "queen"}); err != nil {
		t.Fatalf("printWrapped: %v", err)
	}

	got := out.String()
	// Without ids, "Queen" also matches "Queens of the Stone Age".
	if !strings.Contains(got, "No One Knows") || !strings.Contains(got, "Matched by artist name") {
		t.Errorf("Expected a flagged name match:\n%s", got)
	}
}

func TestWrappedRequiresCredentials(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("api_key", "key")
	err := wrappedCmd.PreRunE(wrappedCmd, []string{})
	if err == nil {
		t.Fatal("Expected error when secret and user are missing, got nil")
	}
	if err.Error() != `required flag(s) "secret", "user" not set` {
		t.Errorf("Unexpected error: %v", err)
	}

	viper.Set("secret", "secret")
	viper.Set("user", "testuser")
	if err := wrappedCmd.PreRunE(wrappedCmd, []string{}); err != nil {
		t.Errorf("Expected nil when every credential is set, got %v", err)
	}
}
