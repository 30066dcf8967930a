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
	"math"
	"time"

	"github.com/ademuri/listen-stats/internal/history"
)

// WeekdayStat is the typical daily listening time on one weekday.
type WeekdayStat struct {
	Weekday      time.Weekday `yaml:"-"`
	Name         string       `yaml:"weekday"`
	AverageHours float64      `yaml:"average_hours"`
}

// WeekdayDistribution averages the per-day listening totals of each
// weekday. A weekday is reported only if at least one day in events falls
// on it. Rows are ordered Sunday to Saturday.
func WeekdayDistribution(events []history.PlayEvent) []WeekdayStat {
	daily := groupSum(events, dateOf, nil)

	var sums [7]int64
	var days [7]int
	for day, ms := range daily {
		wd := day.weekday()
		sums[wd] += ms
		days[wd]++
	}

	result := make([]WeekdayStat, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if days[wd] == 0 {
			continue
		}
		mean := float64(sums[wd]) / float64(days[wd])
		result = append(result, WeekdayStat{
			Weekday:      wd,
			Name:         wd.String(),
			AverageHours: roundHundredths(mean / msPerHour),
		})
	}
	return result
}

// date is a calendar day. time.Time values can't be used as map keys
// because equal instants may carry different *Location pointers.
type date struct {
	year  int
	month time.Month
	day   int
}

func dateOf(ev history.PlayEvent) date {
	return dateOfTime(ev.EndTime)
}

func dateOfTime(t time.Time) date {
	y, m, d := t.Date()
	return date{year: y, month: m, day: d}
}

func (d date) before(o date) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

func (d date) weekday() time.Weekday {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC).Weekday()
}

func roundHundredths(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
