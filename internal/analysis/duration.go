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

// Package analysis computes listening statistics over play events. Every
// function here is pure: it reads its input and returns fresh values.
package analysis

import (
	"errors"
	"fmt"

	"github.com/ademuri/listen-stats/internal/history"
)

// ErrNegativeDuration is returned when a duration to format is negative.
var ErrNegativeDuration = errors.New("negative duration")

const (
	msPerMinute = 60 * 1000
	msPerHour   = 60 * msPerMinute
)

// FormatDuration renders ms as "<days> days :<hours> hrs :<minutes> mins".
// Seconds are truncated.
func FormatDuration(ms int64) (string, error) {
	if ms < 0 {
		return "", fmt.Errorf("formatting %d ms: %w", ms, ErrNegativeDuration)
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	return fmt.Sprintf("%d days :%d hrs :%d mins", days, hours%24, minutes%60), nil
}

// TotalListening returns the summed play time of events and its display
// string.
func TotalListening(events []history.PlayEvent) (int64, string) {
	var total int64
	for _, ev := range events {
		total += ev.MsPlayed
	}
	// Ingestion rejects negative durations, so the sum can't be negative.
	formatted, _ := FormatDuration(total)
	return total, formatted
}

// roundMinutes converts ms to whole minutes, rounding half to even.
func roundMinutes(ms int64) int64 {
	q, r := ms/msPerMinute, ms%msPerMinute
	switch {
	case 2*r > msPerMinute:
		q++
	case 2*r == msPerMinute && q%2 == 1:
		q++
	}
	return q
}

// Minutes converts ms to whole minutes the same way the rankings do.
func Minutes(ms int64) int64 {
	return roundMinutes(ms)
}
