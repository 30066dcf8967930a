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
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-stats/internal/history"
	"github.com/ademuri/listen-stats/internal/store"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file or directory>...",
	Short: "Copies JSON streaming history into the database",
	Long: `Reads streaming history files (a JSON array of records with endTime,
artistName, trackName and msPlayed) and stores them in a local SQLite
database. Directories are searched for *.json files. A file whose content
was imported before is skipped.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := importHistory(os.Stdout, viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importHistory(out io.Writer, dbPath string, paths []string) error {
	var sources []history.Source
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			sources = append(sources, history.FileSource(path))
			continue
		}
		found, err := history.DirSources(path)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			log.Warn().Str("dir", path).Msg("No *.json files found")
		}
		sources = append(sources, found...)
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	imported, skipped, duplicates := 0, 0, 0
	for i, src := range sources {
		events, err := history.Load(src)
		if errors.Is(err, history.ErrNoData) {
			log.Warn().Str("source", src.Name()).Msg("No plays in file")
			skipped++
			continue
		}
		if err != nil {
			return err
		}

		digest, err := history.Fingerprint(src)
		if err != nil {
			return err
		}
		id, err := db.ImportEvents(src.Name(), digest, events)
		if errors.Is(err, store.ErrAlreadyImported) {
			fmt.Fprintf(out, "[%d/%d] %s was already imported as %s\n", i+1, len(sources), src.Name(), id)
			skipped++
			duplicates++
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[%d/%d] Imported %d plays from %s as %s\n", i+1, len(sources), len(events), src.Name(), id)
		imported++
	}

	// Files that were already imported still count as data.
	if imported == 0 && duplicates == 0 {
		return fmt.Errorf("importing: %w", history.ErrNoData)
	}
	latest, err := db.LatestPlay()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d files, skipped %d. Latest play: %s\n",
		imported, skipped, latest.Format("2006-01-02 15:04"))
	return nil
}
