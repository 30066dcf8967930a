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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/listen-stats/internal/analysis"
)

var reportConfig = analysis.DefaultSummaryConfig

var reportCmd = &cobra.Command{
	Use:   "report [window]",
	Short: "Generates a YAML summary of listening history",
	Long: `Summarizes the listening history as YAML: total listening time, top
artists, top tracks, top tracks per top artist and the weekday distribution.
Without a window, every window is reported.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(os.Stdout, viper.GetString("data"), viper.GetString("database"), reportConfig, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportConfig.Artists, "artists", reportConfig.Artists, "Number of top artists")
	reportCmd.Flags().IntVar(&reportConfig.Tracks, "tracks", reportConfig.Tracks, "Number of top tracks")
	reportCmd.Flags().IntVar(&reportConfig.TracksPerArtist, "tracks-per-artist", reportConfig.TracksPerArtist, "Number of tracks per top artist")
}

type Report struct {
	Summaries []*analysis.Summary `yaml:"summaries"`
}

func runReport(out io.Writer, dataDir string, dbPath string, config analysis.SummaryConfig, args []string) error {
	windows := analysis.Windows
	if len(args) > 0 {
		window, err := parseWindowFromArgs(args)
		if err != nil {
			return err
		}
		windows = []analysis.Window{window}
	}

	loaded, err := loadEvents(dataDir, dbPath)
	if err != nil {
		return err
	}

	var report Report
	for _, w := range windows {
		summary, err := analysis.Summarize(loaded.events, w, config)
		if err != nil {
			return fmt.Errorf("analyzing data: %w", err)
		}
		report.Summaries = append(report.Summaries, summary)
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}
