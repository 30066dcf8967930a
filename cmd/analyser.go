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
	"bytes"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/listen-stats/internal/analysis"
	"github.com/ademuri/listen-stats/internal/history"
)

type Analysis struct {
	results [][]string
	summary string
	// empty is set when the window held no plays; results is then unset.
	empty bool
}

type AnalyserConfig struct {
	// Number of results to return, default is all results.
	NumToReturn int
}

type Analyser interface {
	GetResults(events []history.PlayEvent, window analysis.Window) (Analysis, error)

	GetName() string
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if a.empty || len(a.results) == 0 {
		fmt.Fprintf(out, "%s\n", a.summary)
		return out.String()
	}

	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

// filterForAnalysis applies window and fills in the summary for an empty
// result, so analysers only have to handle data.
func filterForAnalysis(events []history.PlayEvent, window analysis.Window) (analysis.WindowResult, Analysis, error) {
	filtered, err := analysis.FilterWindow(events, window)
	if err != nil {
		return filtered, Analysis{}, err
	}
	if filtered.Status == analysis.StatusEmptyWindow {
		return filtered, Analysis{
			empty:   true,
			summary: fmt.Sprintf("No plays in the last %s", window),
		}, nil
	}
	return filtered, Analysis{}, nil
}

func describeRange(filtered analysis.WindowResult) string {
	const dateFormat = "2006-01-02"
	if filtered.Start.IsZero() {
		return fmt.Sprintf("up to %s", filtered.End.Format(dateFormat))
	}
	return fmt.Sprintf("from %s to %s", filtered.Start.Format(dateFormat), filtered.End.Format(dateFormat))
}

// runAnalyser loads the history, runs a over the window named by args and
// prints the result.
func runAnalyser(out io.Writer, a Analyser, dataDir string, dbPath string, args []string) error {
	window, err := parseWindowFromArgs(args)
	if err != nil {
		return err
	}

	loaded, err := loadEvents(dataDir, dbPath)
	if err != nil {
		return err
	}

	result, err := a.GetResults(loaded.events, window)
	if err != nil {
		return fmt.Errorf("%s: %w", a.GetName(), err)
	}
	fmt.Fprintln(out, result)
	return nil
}
