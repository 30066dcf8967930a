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

const windowHelp = `The window is one of '1 month', '3 months', '12 months' or 'all time'
(short forms: 1m, 3m, 12m, all), counted back from the latest play. The
default is all time.`

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists [window]",
	Short: "Gets the top artists by listening time",
	Long:  windowHelp,
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printTopArtists(os.Stdout, viper.GetString("data"), viper.GetString("database"), topArtistsNumber, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", 5, "number of results to return")
}

func printTopArtists(out io.Writer, dataDir string, dbPath string, numToReturn int, args []string) error {
	config := AnalyserConfig{NumToReturn: numToReturn}
	return runAnalyser(out, TopArtistsAnalyzer{}.SetConfig(config), dataDir, dbPath, args)
}

type TopArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t TopArtistsAnalyzer) SetConfig(config AnalyserConfig) TopArtistsAnalyzer {
	t.Config = config
	return t
}

func (t TopArtistsAnalyzer) GetName() string {
	return "Top artists"
}

func (t TopArtistsAnalyzer) GetResults(events []history.PlayEvent, window analysis.Window) (Analysis, error) {
	filtered, result, err := filterForAnalysis(events, window)
	if err != nil || result.empty {
		return result, err
	}

	result.results = [][]string{{"Rank", "Artist", "Minutes"}}
	for _, a := range analysis.TopArtists(filtered.Events, t.Config.NumToReturn) {
		result.results = append(result.results, []string{
			strconv.Itoa(a.Rank), a.Name, strconv.FormatInt(a.Minutes, 10),
		})
	}

	_, total := analysis.TotalListening(filtered.Events)
	result.summary = fmt.Sprintf("%d plays %s, listened for %s",
		len(filtered.Events), describeRange(filtered), total)
	return result, nil
}
