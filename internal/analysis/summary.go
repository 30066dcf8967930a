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
	"fmt"
	"sync"

	"github.com/ademuri/listen-stats/internal/history"
)

// SummaryConfig sets the sizes of the ranked lists in a Summary.
type SummaryConfig struct {
	Artists         int
	Tracks          int
	TracksPerArtist int
}

// DefaultSummaryConfig is the top-5 layout.
var DefaultSummaryConfig = SummaryConfig{Artists: 5, Tracks: 5, TracksPerArtist: 5}

// Summary is everything shown for one window.
type Summary struct {
	Window       string         `yaml:"window"`
	Status       string         `yaml:"status"`
	Start        string         `yaml:"start,omitempty"`
	End          string         `yaml:"end"`
	Plays        int            `yaml:"plays"`
	TotalMs      int64          `yaml:"total_ms"`
	TotalTime    string         `yaml:"total_time"`
	TopArtists   []RankedArtist `yaml:"top_artists"`
	TopTracks    []RankedTrack  `yaml:"top_tracks"`
	ArtistTracks []ArtistTrack  `yaml:"artist_tracks"`
	Weekdays     []WeekdayStat  `yaml:"weekdays"`

	empty bool
}

// Empty reports whether the window held no plays.
func (s *Summary) Empty() bool { return s.empty }

// Summarize filters events to w and computes every statistic over the
// result.
func Summarize(events []history.PlayEvent, w Window, config SummaryConfig) (*Summary, error) {
	filtered, err := FilterWindow(events, w)
	if err != nil {
		return nil, fmt.Errorf("filtering %s: %w", w, err)
	}

	const dateFormat = "2006-01-02"
	s := &Summary{
		Window: w.String(),
		Status: filtered.Status.String(),
		End:    filtered.End.Format(dateFormat),
		Plays:  len(filtered.Events),
		empty:  filtered.Status == StatusEmptyWindow,
	}
	if !filtered.Start.IsZero() {
		s.Start = filtered.Start.Format(dateFormat)
	}

	s.TotalMs, s.TotalTime = TotalListening(filtered.Events)
	s.TopArtists = TopArtists(filtered.Events, config.Artists)
	s.TopTracks = TopTracks(filtered.Events, config.Tracks)
	s.ArtistTracks = TopTracksPerTopArtist(filtered.Events, config.Artists, config.TracksPerArtist)
	s.Weekdays = WeekdayDistribution(filtered.Events)
	return s, nil
}

type memoKey struct {
	source string
	window Window
}

// Memo caches summaries per (source, window). It is owned by the caller;
// nothing in this package keeps one.
type Memo struct {
	mu      sync.Mutex
	entries map[memoKey]*Summary
	hits    int
}

func NewMemo() *Memo {
	return &Memo{entries: make(map[memoKey]*Summary)}
}

// Summary returns the cached summary for (source, w), calling compute on
// a miss. Errors are not cached.
func (m *Memo) Summary(source string, w Window, compute func() (*Summary, error)) (*Summary, error) {
	key := memoKey{source: source, window: w}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.entries[key]; ok {
		m.hits++
		return s, nil
	}

	s, err := compute()
	if err != nil {
		return nil, err
	}
	m.entries[key] = s
	return s, nil
}

// Hits is the number of lookups served from the cache.
func (m *Memo) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// Forget drops every entry for source.
func (m *Memo) Forget(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if k.source == source {
			delete(m.entries, k)
		}
	}
}
