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
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-stats/internal/analysis"
	"github.com/ademuri/listen-stats/internal/history"
)

var topTracksNumber int
var topTracksCmd = &cobra.Command{
	Use:   "top-tracks [window]",
	Short: "Gets the top tracks by listening time",
	Long:  windowHelp,
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printTopTracks(os.Stdout, viper.GetString("data"), viper.GetString("database"), topTracksNumber, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topTracksCmd)

	topTracksCmd.Flags().IntVarP(&topTracksNumber, "number", "n", 5, "number of results to return")
}

func printTopTracks(out io.Writer, dataDir string, dbPath string, numToReturn int, args []string) error {
	config := AnalyserConfig{NumToReturn: numToReturn}
	return runAnalyser(out, TopTracksAnalyzer{Config: config}, dataDir, dbPath, args)
}

type TopTracksAnalyzer struct {
	Config AnalyserConfig
}

func (t TopTracksAnalyzer) GetName() string {
	return "Top tracks"
}

func (t TopTracksAnalyzer) GetResults(events []history.PlayEvent, window analysis.Window) (Analysis, error) {
	filtered, result, err := filterForAnalysis(events, window)
	if err != nil || result.empty {
		return result, err
	}

	result.results = [][]string{{"Rank", "Track", "Artist", "Minutes"}}
	for _, tr := range analysis.TopTracks(filtered.Events, t.Config.NumToReturn) {
		result.results = append(result.results, []string{
			strconv.Itoa(tr.Rank), tr.Name, tr.Artist, strconv.FormatInt(tr.Minutes, 10),
		})
	}
	result.summary = fmt.Sprintf("%d plays %s", len(filtered.Events), describeRange(filtered))
	return result, nil
}
