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
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ademuri/listen-stats/internal/history"
)

func play(end string, artist, track string, ms int64) history.PlayEvent {
	t, err := history.ParseTime(end)
	if err != nil {
		panic(err)
	}
	return history.PlayEvent{EndTime: t, ArtistName: artist, TrackName: track, MsPlayed: ms}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0 days :0 hrs :0 mins"},
		{59999, "0 days :0 hrs :0 mins"},
		{60000, "0 days :0 hrs :1 mins"},
		{90000000, "1 days :1 hrs :0 mins"},
		{3*24*msPerHour + 23*msPerHour + 59*msPerMinute + 59999, "3 days :23 hrs :59 mins"},
	}
	for _, tc := range tests {
		got, err := FormatDuration(tc.ms)
		if err != nil {
			t.Errorf("FormatDuration(%d): %v", tc.ms, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}

	if _, err := FormatDuration(-1); !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("FormatDuration(-1): expected ErrNegativeDuration, got %v", err)
	}
}

func TestRoundMinutes(t *testing.T) {
	tests := []struct {
		ms   int64
		want int64
	}{
		{0, 0},
		{29999, 0},
		{30000, 0}, // 0.5 rounds to even
		{30001, 1},
		{90000, 2}, // 1.5 rounds to even
		{150000, 2},
		{120000, 2},
	}
	for _, tc := range tests {
		if got := roundMinutes(tc.ms); got != tc.want {
			t.Errorf("roundMinutes(%d) = %d, want %d", tc.ms, got, tc.want)
		}
	}
}

func TestTotalListening(t *testing.T) {
	events := []history.PlayEvent{
		play("2025-01-01 10:00", "A", "X", 45*msPerMinute),
		play("2025-01-02 10:00", "B", "Y", 25*msPerHour),
	}
	ms, formatted := TotalListening(events)
	if ms != 25*msPerHour+45*msPerMinute {
		t.Errorf("unexpected total %d", ms)
	}
	if formatted != "1 days :1 hrs :45 mins" {
		t.Errorf("unexpected formatted total %q", formatted)
	}

	ms, formatted = TotalListening(nil)
	if ms != 0 || formatted != "0 days :0 hrs :0 mins" {
		t.Errorf("TotalListening(nil) = %d, %q", ms, formatted)
	}
}

func TestTopArtistsScenario(t *testing.T) {
	events := []history.PlayEvent{
		play("2025-01-01 10:00", "A", "X", 120000),
		play("2025-01-01 11:00", "A", "Y", 60000),
		play("2025-01-01 12:00", "B", "Z", 300000),
	}

	got := TopArtists(events, 5)
	want := []RankedArtist{
		{Rank: 1, Name: "B", Minutes: 5},
		{Rank: 2, Name: "A", Minutes: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopArtists = %+v, want %+v", got, want)
	}
}

func TestTopArtistsTruncatesAndBreaksTiesByName(t *testing.T) {
	events := []history.PlayEvent{
		play("2025-01-01 10:00", "Charlie", "c", 60000),
		play("2025-01-01 10:00", "alpha", "a", 60000),
		play("2025-01-01 10:00", "Bravo", "b", 60000),
		play("2025-01-01 10:00", "Delta", "d", 240000),
	}

	got := TopArtists(events, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	names := []string{got[0].Name, got[1].Name, got[2].Name}
	want := []string{"Delta", "Bravo", "Charlie"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected order %v, got %v", want, names)
	}
	for i, r := range got {
		if r.Rank != i+1 {
			t.Errorf("row %d has rank %d", i, r.Rank)
		}
	}

	if all := TopArtists(events, 0); len(all) != 4 {
		t.Errorf("n=0 should return every artist, got %d", len(all))
	}
}

func TestTopTracksScopedToArtist(t *testing.T) {
	events := []history.PlayEvent{
		play("2025-01-01 10:00", "A", "Intro", 60000),
		play("2025-01-01 10:00", "B", "Intro", 120000),
		play("2025-01-01 10:00", "A", "Intro", 30000),
		play("2025-01-01 10:00", "A", "Outro", 600000),
	}

	got := TopTracks(events, 5)
	want := []RankedTrack{
		{Rank: 1, Artist: "A", Name: "Outro", Minutes: 10},
		{Rank: 2, Artist: "B", Name: "Intro", Minutes: 2},
		{Rank: 3, Artist: "A", Name: "Intro", Minutes: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopTracks = %+v, want %+v", got, want)
	}
}

func TestTopTracksPerTopArtistOrderedByArtistRank(t *testing.T) {
	events := []history.PlayEvent{
		// A has the most total time, spread over many short plays.
		play("2025-01-01 10:00", "A", "a1", 4*msPerMinute),
		play("2025-01-01 10:00", "A", "a2", 4*msPerMinute),
		play("2025-01-01 10:00", "A", "a3", 4*msPerMinute),
		// B has less in total but one much longer track.
		play("2025-01-01 10:00", "B", "b1", 10*msPerMinute),
		play("2025-01-01 10:00", "B", "b2", 1*msPerMinute),
		play("2025-01-01 10:00", "C", "c1", 1*msPerMinute),
	}

	got := TopTracksPerTopArtist(events, 2, 2)
	want := []ArtistTrack{
		{ArtistRank: 1, Rank: 1, Artist: "A", Name: "a1", Minutes: 4},
		{ArtistRank: 1, Rank: 2, Artist: "A", Name: "a2", Minutes: 4},
		{ArtistRank: 2, Rank: 1, Artist: "B", Name: "b1", Minutes: 10},
		{ArtistRank: 2, Rank: 2, Artist: "B", Name: "b2", Minutes: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopTracksPerTopArtist = %+v, want %+v", got, want)
	}

	b := TracksForArtist(got, "B")
	if len(b) != 2 || b[0].Name != "b1" {
		t.Errorf("TracksForArtist(B) = %+v", b)
	}
	if none := TracksForArtist(got, "C"); len(none) != 0 {
		t.Errorf("C is not a top artist, got %+v", none)
	}
}

func TestAggregationsOnEmptyInput(t *testing.T) {
	if got := TopArtists(nil, 5); got == nil || len(got) != 0 {
		t.Errorf("TopArtists(nil) = %#v", got)
	}
	if got := TopTracks(nil, 5); got == nil || len(got) != 0 {
		t.Errorf("TopTracks(nil) = %#v", got)
	}
	if got := TopTracksPerTopArtist(nil, 5, 5); got == nil || len(got) != 0 {
		t.Errorf("TopTracksPerTopArtist(nil) = %#v", got)
	}
	if got := WeekdayDistribution(nil); got == nil || len(got) != 0 {
		t.Errorf("WeekdayDistribution(nil) = %#v", got)
	}
}

func TestAggregationsAreDeterministic(t *testing.T) {
	var events []history.PlayEvent
	for i, name := range []string{"e", "d", "c", "b", "a", "f", "g"} {
		events = append(events, play("2025-03-01 10:00", name, "t", int64(60000*(i%3+1))))
	}

	first := TopArtists(events, 5)
	for i := 0; i < 20; i++ {
		if again := TopArtists(events, 5); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestWeekdayDistribution(t *testing.T) {
	events := []history.PlayEvent{
		// Two Mondays: 2h total and 1h total -> mean 1.5h.
		play("2025-01-06 08:00", "A", "X", msPerHour),
		play("2025-01-06 20:00", "A", "X", msPerHour),
		play("2025-01-13 09:00", "A", "X", msPerHour),
		// One Saturday with 45 minutes.
		play("2025-01-11 12:00", "A", "X", 45*msPerMinute),
		// One Sunday with 20 minutes.
		play("2025-01-12 12:00", "A", "X", 20*msPerMinute),
	}

	got := WeekdayDistribution(events)
	want := []WeekdayStat{
		{Weekday: time.Sunday, Name: "Sunday", AverageHours: 0.33},
		{Weekday: time.Monday, Name: "Monday", AverageHours: 1.5},
		{Weekday: time.Saturday, Name: "Saturday", AverageHours: 0.75},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WeekdayDistribution = %+v, want %+v", got, want)
	}
	for _, s := range got {
		if s.AverageHours == 0 {
			t.Errorf("weekday %s reported with zero average", s.Name)
		}
	}
}
