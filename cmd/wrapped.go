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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-stats/internal/analysis"
	"github.com/ademuri/listen-stats/internal/history"
	"github.com/ademuri/listen-stats/internal/lastfmsource"
	"github.com/ademuri/listen-stats/internal/snapshot"
)

var (
	wrappedLimit  int
	wrappedArtist string
	wrappedFull   bool
)

var wrappedCmd = &cobra.Command{
	Use:   "wrapped [short|medium|long]",
	Short: "Summarizes the top lists last.fm keeps for a user",
	Long: `Fetches the user's top artists and top tracks from last.fm for a time
range (short: 1 month, medium: 6 months, long: all time) and re-ranks the
artists by the listening time of their top tracks. Also lists the top
tracks and the most recent plays, and estimates listening time from the
top tracks' durations.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		var missing []string
		for _, name := range []string{"api_key", "secret", "user"} {
			if viper.GetString(name) == "" {
				missing = append(missing, strconv.Quote(name))
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		timeRange := snapshot.ShortTerm
		if len(args) > 0 {
			var err error
			timeRange, err = snapshot.ParseTimeRange(args[0])
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		client := lastfmsource.New(viper.GetString("api_key"), viper.GetString("secret"), viper.GetString("user"))
		err := printWrapped(ctx, os.Stdout, client, client, wrappedOptions{
			timeRange: timeRange,
			limit:     wrappedLimit,
			artist:    wrappedArtist,
			full:      wrappedFull,
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(wrappedCmd)

	wrappedCmd.Flags().IntVarP(&wrappedLimit, "limit", "l", 50, "Size of each top list")
	wrappedCmd.Flags().StringVar(&wrappedArtist, "artist", "", "Show the top tracks of this artist")
	wrappedCmd.Flags().BoolVar(&wrappedFull, "full", false, "Show every fetched row of the top lists")
}

// topListSize is how many rows of each top list are shown without --full.
const topListSize = 5

type wrappedOptions struct {
	timeRange snapshot.TimeRange
	limit     int
	artist    string
	// full shows every fetched row instead of the first topListSize.
	full bool
}

func printWrapped(ctx context.Context, out io.Writer, src snapshot.Source, lookup snapshot.DurationLookup, opts wrappedOptions) error {
	snap, err := snapshot.Fetch(ctx, src, opts.timeRange, opts.limit)
	if err != nil {
		return err
	}
	merged := snapshot.Merge(snap.Artists, snap.Tracks)

	if opts.artist != "" {
		printArtistSelection(out, snap, merged, opts.artist)
	} else {
		printTopArtistsTable(out, snap, merged, opts.full)
	}
	printTopTracksTable(out, snap, opts.full)
	printRecentPlays(ctx, out, lookup, snap.Recent)
	printTopTracksTotal(out, snap)

	if snap.Status == snapshot.StatusPartial {
		fmt.Fprintln(out, "Some data could not be fetched; results are incomplete:")
		for _, w := range snap.Warnings {
			fmt.Fprintf(out, "  %s\n", w)
		}
	}
	return nil
}

func printTopArtistsTable(out io.Writer, snap snapshot.Snapshot, merged snapshot.Merged, full bool) {
	artists := Analysis{results: [][]string{{"Rank", "Artist", "~Minutes", "Plays", "last.fm rank"}}}
	for _, a := range shown(merged.Artists, full) {
		artists.results = append(artists.results, []string{
			strconv.Itoa(a.Rank), a.Artist.Name, strconv.FormatInt(a.Minutes, 10),
			strconv.Itoa(a.Artist.Popularity), strconv.Itoa(a.Artist.Rank),
		})
	}
	artists.summary = fmt.Sprintf("Top artists, %s term.", snap.Range)
	if merged.Approximate {
		artists.summary += " " + merged.Caveat
	}
	fmt.Fprintln(out, artists)
}

func printTopTracksTable(out io.Writer, snap snapshot.Snapshot, full bool) {
	if len(snap.Tracks) == 0 {
		fmt.Fprintf(out, "No track data for the %s term\n", snap.Range)
		return
	}
	tracks := Analysis{results: [][]string{{"Rank", "Song", "Artist", "Minutes", "Plays"}}}
	for i, t := range shown(snap.Tracks, full) {
		tracks.results = append(tracks.results, []string{
			strconv.Itoa(i + 1), t.Name, t.ArtistName, tenthsOfMinutes(t.DurationMs), strconv.Itoa(t.Popularity),
		})
	}
	tracks.summary = fmt.Sprintf("Top tracks, %s term.", snap.Range)
	if !full && len(snap.Tracks) > topListSize {
		tracks.summary += fmt.Sprintf(" Showing %d of %d, use --full for the rest.", topListSize, len(snap.Tracks))
	}
	fmt.Fprintln(out, tracks)
}

func printRecentPlays(ctx context.Context, out io.Writer, lookup snapshot.DurationLookup, recent []history.PlayEvent) {
	if len(recent) == 0 {
		fmt.Fprintln(out, "No recent plays available.")
		return
	}

	enriched := snapshot.Enrich(ctx, lookup, recent, snapshot.DefaultBatchSize)
	plays := Analysis{results: [][]string{{"Played at", "Artist", "Song", "Minutes", "Weekday"}}}
	for _, ev := range enriched.Events {
		plays.results = append(plays.results, []string{
			ev.EndTime.Format("2006-01-02 15:04"), ev.ArtistName, ev.TrackName,
			tenthsOfMinutes(ev.MsPlayed), ev.EndTime.Weekday().String(),
		})
	}
	_, total := analysis.TotalListening(enriched.Events)
	plays.summary = fmt.Sprintf("Last %d plays: about %s", len(enriched.Events), total)
	fmt.Fprintln(out, plays)
	for _, w := range enriched.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
}

func printTopTracksTotal(out io.Writer, snap snapshot.Snapshot) {
	if len(snap.Tracks) == 0 {
		fmt.Fprintln(out, "Not enough data to estimate listening time.")
		return
	}
	var totalMs int64
	for _, t := range snap.Tracks {
		totalMs += t.DurationMs
	}
	fmt.Fprintf(out, "Total duration of your top tracks: %d minutes\n", analysis.Minutes(totalMs))
	fmt.Fprintf(out, "This sums the durations of the %d top tracks last.fm returned for the %s term. "+
		"last.fm does not expose total listening time; import a streaming history for exact figures.\n",
		len(snap.Tracks), snap.Range)
}

func shown[T any](rows []T, full bool) []T {
	if full {
		return rows
	}
	return rows[:min(len(rows), topListSize)]
}

// tenthsOfMinutes formats ms as minutes with one decimal.
func tenthsOfMinutes(ms int64) string {
	return strconv.FormatFloat(float64(ms)/60000, 'f', 1, 64)
}

func printArtistSelection(out io.Writer, snap snapshot.Snapshot, merged snapshot.Merged, name string) {
	target := snapshot.TopArtist{Name: name}
	for _, a := range merged.Artists {
		if strings.EqualFold(a.Artist.Name, name) {
			target = a.Artist
			break
		}
	}

	sel := snapshot.TracksForArtist(snap.Tracks, target, 0)
	if len(sel.Tracks) == 0 {
		fmt.Fprintf(out, "No top tracks by %s in the %s term\n", name, snap.Range)
		return
	}

	tracks := Analysis{results: [][]string{{"Track", "Artist", "Plays", "Minutes"}}}
	for _, t := range sel.Tracks {
		tracks.results = append(tracks.results, []string{
			t.Name, t.ArtistName, strconv.Itoa(t.Popularity), strconv.FormatInt(analysis.Minutes(t.DurationMs), 10),
		})
	}
	tracks.summary = fmt.Sprintf("Top tracks by %s, %s term.", name, snap.Range)
	if sel.Match == snapshot.MatchByName {
		tracks.summary += " Matched by artist name, so other artists with similar names may be included."
	}
	fmt.Fprintln(out, tracks)
}
