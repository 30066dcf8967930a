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

var totalCmd = &cobra.Command{
	Use:   "total [window]",
	Short: "Shows the total listening time",
	Long:  windowHelp,
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(os.Stdout, TotalAnalyzer{}, viper.GetString("data"), viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(totalCmd)
}

type TotalAnalyzer struct{}

func (TotalAnalyzer) GetName() string {
	return "Total listening time"
}

func (TotalAnalyzer) GetResults(events []history.PlayEvent, window analysis.Window) (Analysis, error) {
	filtered, result, err := filterForAnalysis(events, window)
	if err != nil || result.empty {
		return result, err
	}

	ms, formatted := analysis.TotalListening(filtered.Events)
	result.results = [][]string{
		{"Window", "Plays", "Milliseconds", "Total"},
		{window.String(), strconv.Itoa(len(filtered.Events)), strconv.FormatInt(ms, 10), formatted},
	}
	result.summary = fmt.Sprintf("Plays %s", describeRange(filtered))
	return result, nil
}
