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
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-stats/internal/analysis"
	"github.com/ademuri/listen-stats/internal/history"
)

var (
	artistTracksArtists int
	artistTracksTracks  int
	artistTracksArtist  string
)

var artistTracksCmd = &cobra.Command{
	Use:   "artist-tracks [window]",
	Short: "Gets the top tracks of each top artist",
	Long: `Lists the top tracks of each of the top artists, grouped by artist in
the artists' rank order. With --artist, shows only that artist.

` + windowHelp,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		analyser := ArtistTracksAnalyzer{
			Artists:         artistTracksArtists,
			TracksPerArtist: artistTracksTracks,
			Artist:          artistTracksArtist,
		}
		err := runAnalyser(os.Stdout, analyser, viper.GetString("data"), viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(artistTracksCmd)

	artistTracksCmd.Flags().IntVar(&artistTracksArtists, "artists", 5, "Number of top artists")
	artistTracksCmd.Flags().IntVar(&artistTracksTracks, "tracks", 5, "Number of tracks per artist")
	artistTracksCmd.Flags().StringVar(&artistTracksArtist, "artist", "", "Only show this artist")
}

type ArtistTracksAnalyzer struct {
	Artists         int
	TracksPerArtist int
	// Artist restricts the output to one of the top artists.
	Artist string
}

func (t ArtistTracksAnalyzer) GetName() string {
	return "Top tracks per artist"
}

func (t ArtistTracksAnalyzer) GetResults(events []history.PlayEvent, window analysis.Window) (Analysis, error) {
	filtered, result, err := filterForAnalysis(events, window)
	if err != nil || result.empty {
		return result, err
	}

	rows := analysis.TopTracksPerTopArtist(filtered.Events, t.Artists, t.TracksPerArtist)
	if t.Artist != "" {
		rows = analysis.TracksForArtist(rows, t.Artist)
		if len(rows) == 0 {
			result.empty = true
			result.summary = fmt.Sprintf("%q is not one of the top %d artists in the last %s", t.Artist, t.Artists, window)
			return result, nil
		}
	}

	result.results = [][]string{{"Artist rank", "Artist", "Rank", "Track", "Minutes"}}
	for _, r := range rows {
		result.results = append(result.results, []string{
			strconv.Itoa(r.ArtistRank), r.Artist, strconv.Itoa(r.Rank), r.Name, strconv.FormatInt(r.Minutes, 10),
		})
	}
	result.summary = fmt.Sprintf("%d plays %s", len(filtered.Events), describeRange(filtered))
	return result, nil
}
