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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ademuri/listen-stats/internal/analysis"
	"github.com/ademuri/listen-stats/internal/history"
	"github.com/ademuri/listen-stats/internal/store"
)

const testHistory = `[
  {"endTime": "2024-01-01 09:00", "artistName": "C", "trackName": "W", "msPlayed": 600000},
  {"endTime": "2025-03-01 10:00", "artistName": "A", "trackName": "X", "msPlayed": 120000},
  {"endTime": "2025-03-01 11:00", "artistName": "A", "trackName": "Y", "msPlayed": 60000},
  {"endTime": "2025-03-02 12:00", "artistName": "B", "trackName": "Z", "msPlayed": 300000}
]`

func writeHistory(t *testing.T, dir string, name string, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func createTestDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeHistory(t, dir, "StreamingHistory0.json", testHistory)
	return dir
}

func TestParseWindowFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want analysis.Window
	}{
		{nil, analysis.AllTime},
		{[]string{"3", "months"}, analysis.ThreeMonths},
		{[]string{"12 months"}, analysis.TwelveMonths},
		{[]string{"1m"}, analysis.OneMonth},
	}
	for _, tc := range tests {
		got, err := parseWindowFromArgs(tc.args)
		if err != nil {
			t.Errorf("parseWindowFromArgs(%q): %v", tc.args, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseWindowFromArgs(%q) = %v, want %v", tc.args, got, tc.want)
		}
	}

	_, err := parseWindowFromArgs([]string{"derp"})
	if err == nil || !strings.Contains(err.Error(), "Invalid window") {
		t.Fatalf("Should have errored with an invalid window: %v", err)
	}
}

func TestPrintTopArtistsDatabaseDoesntExist(t *testing.T) {
	err := printTopArtists(new(bytes.Buffer), "", filepath.Join(t.TempDir(), "listen-stats.db"), 5, []string{"1m"})
	if err == nil {
		t.Fatalf("printTopArtists should have errored with no database")
	}
	if !strings.Contains(err.Error(), "doesn't exist") {
		t.Fatalf("printTopArtists should have said the db doesn't exist: %v", err)
	}
}

func TestPrintTopArtistsInvalidWindow(t *testing.T) {
	err := printTopArtists(new(bytes.Buffer), createTestDataDir(t), "", 5, []string{"derp"})
	if err == nil {
		t.Fatalf("printTopArtists should have errored with an invalid window")
	}
}

func TestPrintTopArtistsFromDataDir(t *testing.T) {
	dir := createTestDataDir(t)

	out := new(bytes.Buffer)
	if err := printTopArtists(out, dir, "", 5, []string{"1", "month"}); err != nil {
		t.Fatalf("printTopArtists: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "B") || !strings.Contains(got, "A") {
		t.Errorf("Expected artists A and B in output:\n%s", got)
	}
	if strings.Contains(got, " C ") {
		t.Errorf("Artist C is outside the window:\n%s", got)
	}
	if !strings.Contains(got, "3 plays from 2025-02-02 to 2025-03-02") {
		t.Errorf("Unexpected summary:\n%s", got)
	}
	if !strings.Contains(got, "0 days :0 hrs :8 mins") {
		t.Errorf("Expected the total listening time:\n%s", got)
	}
}

func TestAnalysersOnEmptyDataDir(t *testing.T) {
	err := printTopTracks(new(bytes.Buffer), t.TempDir(), "", 5, nil)
	if err == nil || !strings.Contains(err.Error(), "no play events") {
		t.Fatalf("Expected a no data error, got %v", err)
	}
}

func TestAnalysers(t *testing.T) {
	dir := createTestDataDir(t)
	loaded, err := loadEvents(dir, "")
	if err != nil {
		t.Fatalf("loadEvents: %v", err)
	}

	tests := []struct {
		analyser Analyser
		window   analysis.Window
		rows     int
		contains string
	}{
		{TopArtistsAnalyzer{}, analysis.AllTime, 3, "C"},
		{TopTracksAnalyzer{Config: AnalyserConfig{NumToReturn: 2}}, analysis.AllTime, 2, "W"},
		{ArtistTracksAnalyzer{Artists: 2, TracksPerArtist: 1}, analysis.ThreeMonths, 2, "Z"},
		{WeekdaysAnalyzer{}, analysis.OneMonth, 2, "Saturday"},
		{TotalAnalyzer{}, analysis.TwelveMonths, 1, "0 days :0 hrs :8 mins"},
	}
	for _, tc := range tests {
		result, err := tc.analyser.GetResults(loaded.events, tc.window)
		if err != nil {
			t.Errorf("%s: %v", tc.analyser.GetName(), err)
			continue
		}
		if len(result.results)-1 != tc.rows {
			t.Errorf("%s: expected %d rows, got %v", tc.analyser.GetName(), tc.rows, result.results)
		}
		if !strings.Contains(result.String(), tc.contains) {
			t.Errorf("%s: expected %q in\n%s", tc.analyser.GetName(), tc.contains, result)
		}
	}
}

func TestArtistTracksForOneArtist(t *testing.T) {
	loaded, err := loadEvents(createTestDataDir(t), "")
	if err != nil {
		t.Fatalf("loadEvents: %v", err)
	}

	result, err := ArtistTracksAnalyzer{Artists: 5, TracksPerArtist: 5, Artist: "A"}.GetResults(loaded.events, analysis.OneMonth)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if len(result.results) != 3 {
		t.Errorf("Expected 2 tracks by A, got %v", result.results)
	}

	result, err = ArtistTracksAnalyzer{Artists: 5, TracksPerArtist: 5, Artist: "C"}.GetResults(loaded.events, analysis.OneMonth)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if !result.empty || !strings.Contains(result.String(), "not one of the top") {
		t.Errorf("C has no plays in the last month: %s", result)
	}
}

func TestImportThenAnalyse(t *testing.T) {
	dir := createTestDataDir(t)
	dbPath := filepath.Join(t.TempDir(), "test.db")

	out := new(bytes.Buffer)
	if err := importHistory(out, dbPath, []string{dir}); err != nil {
		t.Fatalf("importHistory: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 4 plays") {
		t.Errorf("Unexpected import output:\n%s", out)
	}

	// Importing the same file again is a no-op.
	out.Reset()
	if err := importHistory(out, dbPath, []string{filepath.Join(dir, "StreamingHistory0.json")}); err != nil {
		t.Fatalf("importHistory (repeat): %v", err)
	}
	if !strings.Contains(out.String(), "already imported") {
		t.Errorf("Expected the repeat import to be skipped:\n%s", out)
	}

	loaded, err := loadEvents("", dbPath)
	if err != nil {
		t.Fatalf("loadEvents: %v", err)
	}
	if len(loaded.events) != 4 {
		t.Errorf("Expected 4 stored plays, got %d", len(loaded.events))
	}

	out.Reset()
	if err := listSources(out, dbPath); err != nil {
		t.Fatalf("listSources: %v", err)
	}
	if !strings.Contains(out.String(), "StreamingHistory0.json") {
		t.Errorf("Expected the imported file to be listed:\n%s", out)
	}

	out.Reset()
	if err := printTopArtists(out, "", dbPath, 1, nil); err != nil {
		t.Fatalf("printTopArtists: %v", err)
	}
	if !strings.Contains(out.String(), "C") {
		t.Errorf("Expected C to be the top artist of all time:\n%s", out)
	}
}

func TestForgetSource(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := importHistory(new(bytes.Buffer), dbPath, []string{createTestDataDir(t)}); err != nil {
		t.Fatalf("importHistory: %v", err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	sources, err := db.Sources()
	db.Close()
	if err != nil || len(sources) != 1 {
		t.Fatalf("Expected one source, got %v (%v)", sources, err)
	}

	out := new(bytes.Buffer)
	if err := forgetSource(out, dbPath, sources[0].ID); err != nil {
		t.Fatalf("forgetSource: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted source "+sources[0].ID) {
		t.Errorf("Unexpected output: %s", out)
	}

	if _, err := loadEvents("", dbPath); err == nil || !strings.Contains(err.Error(), "no play events") {
		t.Errorf("Expected no plays after forgetting the only source, got %v", err)
	}
	if err := forgetSource(out, dbPath, sources[0].ID); err == nil || !strings.Contains(err.Error(), "no such source") {
		t.Errorf("Expected an error forgetting the source twice, got %v", err)
	}
}

func TestImportOnlyEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeHistory(t, dir, "StreamingHistory0.json", "[]")
	writeHistory(t, dir, "StreamingHistory1.json", "")

	err := importHistory(new(bytes.Buffer), filepath.Join(t.TempDir(), "test.db"), []string{dir})
	if !errors.Is(err, history.ErrNoData) {
		t.Fatalf("Expected ErrNoData when no file has plays, got %v", err)
	}
}

func TestImportMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeHistory(t, dir, "bad.json", `[{"endTime": "2025-03-01 10:00", "artistName": "A", "msPlayed": 1}]`)

	err := importHistory(new(bytes.Buffer), filepath.Join(dir, "test.db"), []string{path})
	if err == nil || !strings.Contains(err.Error(), "trackName") {
		t.Fatalf("Expected a malformed record error, got %v", err)
	}
}

func TestRunReport(t *testing.T) {
	dir := createTestDataDir(t)

	out := new(bytes.Buffer)
	if err := runReport(out, dir, "", analysis.DefaultSummaryConfig, nil); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	var report struct {
		Summaries []struct {
			Window     string `yaml:"window"`
			Plays      int    `yaml:"plays"`
			TotalTime  string `yaml:"total_time"`
			TopArtists []struct {
				Name string `yaml:"name"`
			} `yaml:"top_artists"`
		} `yaml:"summaries"`
	}
	if err := yaml.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Unmarshal report: %v\n%s", err, out)
	}
	if len(report.Summaries) != len(analysis.Windows) {
		t.Fatalf("Expected one summary per window, got %d", len(report.Summaries))
	}
	if report.Summaries[0].Window != "1 month" || report.Summaries[0].Plays != 3 {
		t.Errorf("Unexpected first summary: %+v", report.Summaries[0])
	}
	last := report.Summaries[len(report.Summaries)-1]
	if last.Window != "all time" || last.Plays != 4 || last.TopArtists[0].Name != "C" {
		t.Errorf("Unexpected all time summary: %+v", last)
	}
}

func TestBrowse(t *testing.T) {
	loaded, err := loadEvents(createTestDataDir(t), "")
	if err != nil {
		t.Fatalf("loadEvents: %v", err)
	}

	out := new(bytes.Buffer)
	b := newBrowser(out, loaded, analysis.DefaultSummaryConfig)
	in := strings.NewReader("1m\n1 month\nartist A\nartist Nobody\nforever\nall\nquit\nignored\n")
	if err := b.run(in); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"1 month: 3 plays",
		"Top tracks by A",
		`"Nobody" is not one of the top 5 artists`,
		"Invalid window",
		"all time: 4 plays",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output:\n%s", want, got)
		}
	}

	// The second "1 month" and both artist lookups reuse the first summary.
	if hits := b.memo.Hits(); hits != 3 {
		t.Errorf("Expected 3 memo hits, got %d", hits)
	}
	if b.window != analysis.AllTime {
		t.Errorf("Expected the browser to end on all time, got %s", b.window)
	}
}
