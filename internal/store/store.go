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

// Package store keeps a local SQLite copy of imported play events.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrAlreadyImported is returned when a source with the same content has
// been imported before.
var ErrAlreadyImported = errors.New("source already imported")

// ErrNoSuchSource is returned when deleting an unknown import.
var ErrNoSuchSource = errors.New("no such source")

const createTables = `
CREATE TABLE IF NOT EXISTS Source (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  digest TEXT NOT NULL UNIQUE,
  imported DATETIME NOT NULL,
  plays INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS Artist (
  name TEXT PRIMARY KEY,
  mbid TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS Track (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist TEXT NOT NULL,
  name TEXT NOT NULL,
  mbid TEXT NOT NULL DEFAULT '',
  FOREIGN KEY (artist) REFERENCES Artist(name),
  UNIQUE (artist, name)
);

CREATE TABLE IF NOT EXISTS Play (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  track INTEGER NOT NULL,
  end_time TEXT NOT NULL,
  end_unix INTEGER NOT NULL,
  ms_played INTEGER NOT NULL,
  FOREIGN KEY (source) REFERENCES Source(id) ON DELETE CASCADE,
  FOREIGN KEY (track) REFERENCES Track(id)
);

CREATE INDEX IF NOT EXISTS PlayEndUnix ON Play (end_unix);
CREATE INDEX IF NOT EXISTS PlaySource ON Play (source);
`

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(createTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
