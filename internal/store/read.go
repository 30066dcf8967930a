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
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ademuri/listen-stats/internal/history"
)

// SourceInfo describes one import.
type SourceInfo struct {
	ID       string
	Name     string
	Digest   string
	Imported time.Time
	Plays    int
}

// Sources lists imports, oldest first.
func (s *Store) Sources() ([]SourceInfo, error) {
	rows, err := s.db.Query("SELECT id, name, digest, imported, plays FROM Source ORDER BY imported, id")
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceInfo
	for rows.Next() {
		var info SourceInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Digest, &info.Imported, &info.Plays); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, info)
	}
	return sources, rows.Err()
}

// Events returns every stored play in import order.
func (s *Store) Events() ([]history.PlayEvent, error) {
	query := `
		SELECT p.end_time, t.artist, t.name, p.ms_played, a.mbid, t.mbid
		FROM Play p
		JOIN Track t ON p.track = t.id
		JOIN Artist a ON t.artist = a.name
		ORDER BY p.id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying plays: %w", err)
	}
	defer rows.Close()

	var events []history.PlayEvent
	for rows.Next() {
		var ev history.PlayEvent
		var endTime string
		if err := rows.Scan(&endTime, &ev.ArtistName, &ev.TrackName, &ev.MsPlayed, &ev.ArtistID, &ev.TrackID); err != nil {
			return nil, fmt.Errorf("scanning play: %w", err)
		}
		ev.EndTime, err = time.Parse(time.RFC3339Nano, endTime)
		if err != nil {
			return nil, fmt.Errorf("parsing end time %q: %w", endTime, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// LoadEvents is Events, but fails with history.ErrNoData when nothing has
// been imported.
func (s *Store) LoadEvents() ([]history.PlayEvent, error) {
	events, err := s.Events()
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("reading database: %w", history.ErrNoData)
	}
	return events, nil
}

// LatestPlay returns the end time of the most recent play, or the zero
// time if there are none.
func (s *Store) LatestPlay() (time.Time, error) {
	row := s.db.QueryRow("SELECT end_time FROM Play ORDER BY end_unix DESC, id DESC LIMIT 1")
	var endTime string
	err := row.Scan(&endTime)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("scanning latest play: %w", err)
	}
	return time.Parse(time.RFC3339Nano, endTime)
}

// Digest identifies the current set of imports. It changes whenever a
// source is imported or deleted.
func (s *Store) Digest() (string, error) {
	sources, err := s.Sources()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, src := range sources {
		h.Write([]byte(src.ID))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
