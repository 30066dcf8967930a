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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ademuri/listen-stats/internal/analysis"
	"github.com/ademuri/listen-stats/internal/history"
	"github.com/ademuri/listen-stats/internal/store"
)

// parseWindowFromArgs reads an optional window argument. Multi-word
// windows may be passed unquoted ("3 months").
func parseWindowFromArgs(args []string) (analysis.Window, error) {
	if len(args) == 0 {
		return analysis.AllTime, nil
	}
	return analysis.ParseWindow(strings.Join(args, " "))
}

// loadedEvents is the listening history a command works on. key changes
// whenever the underlying data does.
type loadedEvents struct {
	events []history.PlayEvent
	key    string
}

// loadEvents reads the history from dataDir when it is set, otherwise from
// the database at dbPath.
func loadEvents(dataDir string, dbPath string) (loadedEvents, error) {
	if dataDir != "" {
		sources, err := history.DirSources(dataDir)
		if err != nil {
			return loadedEvents{}, err
		}
		events, err := history.Load(sources...)
		if err != nil {
			return loadedEvents{}, fmt.Errorf("loading %s: %w", dataDir, err)
		}
		key, err := history.Fingerprint(sources...)
		if err != nil {
			return loadedEvents{}, err
		}
		log.Debug().Str("dir", dataDir).Int("files", len(sources)).Int("plays", len(events)).Msg("Loaded history")
		return loadedEvents{events: events, key: key}, nil
	}

	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return loadedEvents{}, fmt.Errorf("Database doesn't exist - run import first.")
	}
	db, err := store.New(dbPath)
	if err != nil {
		return loadedEvents{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	events, err := db.LoadEvents()
	if err != nil {
		return loadedEvents{}, err
	}
	key, err := db.Digest()
	if err != nil {
		return loadedEvents{}, err
	}
	log.Debug().Str("database", dbPath).Int("plays", len(events)).Msg("Loaded history")
	return loadedEvents{events: events, key: key}, nil
}
