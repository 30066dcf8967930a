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
package analysis

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ademuri/listen-stats/internal/history"
)

// Window is a trailing calendar period anchored at the latest event.
type Window int

const (
	AllTime Window = iota
	OneMonth
	ThreeMonths
	TwelveMonths
)

// Windows lists every window in display order.
var Windows = []Window{OneMonth, ThreeMonths, TwelveMonths, AllTime}

func (w Window) String() string {
	switch w {
	case OneMonth:
		return "1 month"
	case ThreeMonths:
		return "3 months"
	case TwelveMonths:
		return "12 months"
	default:
		return "all time"
	}
}

// Months is the length of the window, or 0 for AllTime.
func (w Window) Months() int {
	switch w {
	case OneMonth:
		return 1
	case ThreeMonths:
		return 3
	case TwelveMonths:
		return 12
	default:
		return 0
	}
}

// ParseWindow accepts "1 month", "3 months", "12 months", "all time" and
// the short forms "1m", "3m", "12m", "all".
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "1 month", "1m", "1":
		return OneMonth, nil
	case "3 months", "3m", "3":
		return ThreeMonths, nil
	case "12 months", "12m", "12", "1y":
		return TwelveMonths, nil
	case "all time", "all", "":
		return AllTime, nil
	}
	return AllTime, fmt.Errorf("Invalid window: %q", s)
}

// Status tells the caller whether a result has data worth rendering.
type Status int

const (
	StatusOK Status = iota
	// StatusEmptyWindow means data exists but none of it falls in the window.
	StatusEmptyWindow
)

func (s Status) String() string {
	if s == StatusEmptyWindow {
		return "no data in window"
	}
	return "ok"
}

// ErrEmptyInput is returned when there is nothing to filter.
var ErrEmptyInput = errors.New("no play events to filter")

// WindowResult is the outcome of FilterWindow.
type WindowResult struct {
	Window Window
	Events []history.PlayEvent
	// Start is the first included date; zero for AllTime.
	Start time.Time
	// End is the date of the latest event.
	End    time.Time
	Status Status
}

// FilterWindow keeps the events whose date is on or after the latest
// event's date minus the window. AllTime returns events unchanged.
func FilterWindow(events []history.PlayEvent, w Window) (WindowResult, error) {
	if len(events) == 0 {
		return WindowResult{}, ErrEmptyInput
	}

	latest := events[0].EndTime
	for _, ev := range events[1:] {
		if ev.EndTime.After(latest) {
			latest = ev.EndTime
		}
	}
	maxDate := truncateDay(latest)

	result := WindowResult{Window: w, End: maxDate}
	if w.Months() == 0 {
		result.Events = events
		return result, nil
	}

	result.Start = subtractMonths(maxDate, w.Months())
	// Each event's date is read in its own offset, so compare dates, not instants.
	start := dateOfTime(result.Start)
	filtered := make([]history.PlayEvent, 0, len(events))
	for _, ev := range events {
		if !dateOf(ev).before(start) {
			filtered = append(filtered, ev)
		}
	}
	result.Events = filtered
	if len(filtered) == 0 {
		result.Status = StatusEmptyWindow
	}
	return result, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// subtractMonths moves back n calendar months, clamping the day to the
// last day of the target month (March 31 - 1 month = February 28/29).
func subtractMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
