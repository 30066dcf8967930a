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

var weekdaysCmd = &cobra.Command{
	Use:   "weekdays [window]",
	Short: "Shows the average listening time per weekday",
	Long: `For each weekday, averages the listening time of the days that had any
plays. Weekdays without plays are left out.

` + windowHelp,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(os.Stdout, WeekdaysAnalyzer{}, viper.GetString("data"), viper.GetString("database"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(weekdaysCmd)
}

type WeekdaysAnalyzer struct{}

func (WeekdaysAnalyzer) GetName() string {
	return "Listening by weekday"
}

func (WeekdaysAnalyzer) GetResults(events []history.PlayEvent, window analysis.Window) (Analysis, error) {
	filtered, result, err := filterForAnalysis(events, window)
	if err != nil || result.empty {
		return result, err
	}

	stats := analysis.WeekdayDistribution(filtered.Events)
	result.results = [][]string{{"Weekday", "Average hours"}}
	for _, s := range stats {
		result.results = append(result.results, []string{s.Name, strconv.FormatFloat(s.AverageHours, 'f', 2, 64)})
	}
	result.summary = fmt.Sprintf("%d of 7 weekdays with plays %s", len(stats), describeRange(filtered))
	return result, nil
}
