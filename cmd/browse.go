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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-stats/internal/analysis"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browses summaries by window",
	Long: `Reads commands from stdin, one per line:

  <window>        show the summary for a window, e.g. '3 months' or 12m
  artist <name>   show the top tracks of one of the current window's top artists
  quit            exit

Summaries are computed once per window and reused.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		loaded, err := loadEvents(viper.GetString("data"), viper.GetString("database"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		b := newBrowser(os.Stdout, loaded, analysis.DefaultSummaryConfig)
		if err := b.run(os.Stdin); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

type browser struct {
	out    io.Writer
	loaded loadedEvents
	config analysis.SummaryConfig
	memo   *analysis.Memo
	window analysis.Window
}

func newBrowser(out io.Writer, loaded loadedEvents, config analysis.SummaryConfig) *browser {
	return &browser{
		out:    out,
		loaded: loaded,
		config: config,
		memo:   analysis.NewMemo(),
		window: analysis.OneMonth,
	}
}

func (b *browser) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	b.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "quit" || line == "q" || line == "exit":
			return nil
		case strings.HasPrefix(line, "artist "):
			if err := b.showArtist(strings.TrimSpace(strings.TrimPrefix(line, "artist "))); err != nil {
				return err
			}
		default:
			window, err := analysis.ParseWindow(line)
			if err != nil {
				fmt.Fprintln(b.out, err)
				break
			}
			b.window = window
			if err := b.showSummary(); err != nil {
				return err
			}
		}
		b.prompt()
	}
	return scanner.Err()
}

func (b *browser) prompt() {
	fmt.Fprintf(b.out, "[%s] window, 'artist <name>' or 'quit'> ", b.window)
}

func (b *browser) summary() (*analysis.Summary, error) {
	return b.memo.Summary(b.loaded.key, b.window, func() (*analysis.Summary, error) {
		log.Debug().Str("window", b.window.String()).Msg("Computing summary")
		return analysis.Summarize(b.loaded.events, b.window, b.config)
	})
}

func (b *browser) showSummary() error {
	s, err := b.summary()
	if err != nil {
		return err
	}
	fmt.Fprintln(b.out)
	if s.Empty() {
		fmt.Fprintf(b.out, "No plays in the last %s\n", s.Window)
		return nil
	}
	for _, a := range summaryAnalyses(s) {
		fmt.Fprintln(b.out, a)
	}
	return nil
}

func (b *browser) showArtist(name string) error {
	s, err := b.summary()
	if err != nil {
		return err
	}
	rows := analysis.TracksForArtist(s.ArtistTracks, name)
	if len(rows) == 0 {
		fmt.Fprintf(b.out, "%q is not one of the top %d artists in the last %s\n", name, b.config.Artists, s.Window)
		return nil
	}

	a := Analysis{results: [][]string{{"Rank", "Track", "Minutes"}}}
	for _, r := range rows {
		a.results = append(a.results, []string{strconv.Itoa(r.Rank), r.Name, strconv.FormatInt(r.Minutes, 10)})
	}
	a.summary = fmt.Sprintf("Top tracks by %s (#%d artist in the last %s)", name, rows[0].ArtistRank, s.Window)
	fmt.Fprintln(b.out, a)
	return nil
}

// summaryAnalyses renders the parts of a summary as tables.
func summaryAnalyses(s *analysis.Summary) []Analysis {
	header := fmt.Sprintf("%s: %d plays, listened for %s", s.Window, s.Plays, s.TotalTime)

	artists := Analysis{results: [][]string{{"Rank", "Artist", "Minutes"}}, summary: header}
	for _, a := range s.TopArtists {
		artists.results = append(artists.results, []string{strconv.Itoa(a.Rank), a.Name, strconv.FormatInt(a.Minutes, 10)})
	}

	tracks := Analysis{results: [][]string{{"Rank", "Track", "Artist", "Minutes"}}}
	for _, t := range s.TopTracks {
		tracks.results = append(tracks.results, []string{strconv.Itoa(t.Rank), t.Name, t.Artist, strconv.FormatInt(t.Minutes, 10)})
	}

	weekdays := Analysis{results: [][]string{{"Weekday", "Average hours"}}}
	for _, w := range s.Weekdays {
		weekdays.results = append(weekdays.results, []string{w.Name, strconv.FormatFloat(w.AverageHours, 'f', 2, 64)})
	}

	return []Analysis{artists, tracks, weekdays}
}
