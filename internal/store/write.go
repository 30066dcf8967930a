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
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ademuri/listen-stats/internal/history"
)

// ImportEvents stores events as one import named name. digest identifies
// the content of the import; importing the same digest twice returns
// ErrAlreadyImported. Events within an import are kept as given, repeats
// included. Returns the id of the new import.
func (s *Store) ImportEvents(name, digest string, events []history.PlayEvent) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRow("SELECT id FROM Source WHERE digest = ?", digest).Scan(&existing)
	if err == nil {
		return existing, fmt.Errorf("importing %q: %w (id %s)", name, ErrAlreadyImported, existing)
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("checking source %q: %w", name, err)
	}

	id := uuid.NewString()
	_, err = tx.Exec("INSERT INTO Source (id, name, digest, imported, plays) VALUES (?, ?, ?, ?, ?)",
		id, name, digest, time.Now().UTC(), len(events))
	if err != nil {
		return "", fmt.Errorf("inserting source %q: %w", name, err)
	}

	tracks := make(map[trackKey]int64)
	for _, ev := range events {
		key := trackKey{artist: ev.ArtistName, name: ev.TrackName}
		trackID, ok := tracks[key]
		if !ok {
			if err := createArtist(tx, ev.ArtistName, ev.ArtistID); err != nil {
				return "", err
			}
			trackID, err = createTrack(tx, ev.ArtistName, ev.TrackName, ev.TrackID)
			if err != nil {
				return "", err
			}
			tracks[key] = trackID
		}
		if err := createPlay(tx, id, trackID, ev); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	log.Info().Str("source", name).Str("id", id).Int("plays", len(events)).Msg("Imported plays")
	return id, nil
}

type trackKey struct {
	artist string
	name   string
}

func createArtist(tx *sql.Tx, name, mbid string) error {
	_, err := tx.Exec("INSERT OR IGNORE INTO Artist (name) VALUES (?)", name)
	if err != nil {
		return fmt.Errorf("inserting artist %q: %w", name, err)
	}
	if mbid != "" {
		_, err = tx.Exec("UPDATE Artist SET mbid = ? WHERE name = ? AND mbid = ''", mbid, name)
		if err != nil {
			return fmt.Errorf("setting mbid of artist %q: %w", name, err)
		}
	}
	return nil
}

func createTrack(tx *sql.Tx, artist, name, mbid string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM Track WHERE artist = ? AND name = ?", artist, name).Scan(&id)
	if err == nil {
		if mbid != "" {
			if _, err := tx.Exec("UPDATE Track SET mbid = ? WHERE id = ? AND mbid = ''", mbid, id); err != nil {
				return 0, fmt.Errorf("setting mbid of track %q: %w", name, err)
			}
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking track %q: %w", name, err)
	}

	res, err := tx.Exec("INSERT INTO Track (artist, name, mbid) VALUES (?, ?, ?)", artist, name, mbid)
	if err != nil {
		return 0, fmt.Errorf("inserting track %q: %w", name, err)
	}
	return res.LastInsertId()
}

func createPlay(tx *sql.Tx, source string, trackID int64, ev history.PlayEvent) error {
	_, err := tx.Exec("INSERT INTO Play (source, track, end_time, end_unix, ms_played) VALUES (?, ?, ?, ?, ?)",
		source, trackID, ev.EndTime.Format(time.RFC3339Nano), ev.EndTime.Unix(), ev.MsPlayed)
	if err != nil {
		return fmt.Errorf("inserting play of %q: %w", ev.TrackName, err)
	}
	return nil
}

// DeleteSource removes an import and all of its plays.
func (s *Store) DeleteSource(id string) error {
	res, err := s.db.Exec("DELETE FROM Source WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting source %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting source %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting source %s: %w", id, ErrNoSuchSource)
	}
	return nil
}
