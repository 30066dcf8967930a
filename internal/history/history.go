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

// Package history loads streaming-history play events from exported JSON.
package history

import (
	"errors"
	"fmt"
	"time"
)

// PlayEvent is one record of a track being played.
type PlayEvent struct {
	EndTime    time.Time
	ArtistName string
	TrackName  string
	MsPlayed   int64

	// Only set when the event came from a remote source that exposes
	// stable identifiers.
	ArtistID string
	TrackID  string
}

var (
	// ErrNoData is returned when no source yields any record.
	ErrNoData = errors.New("no play events found")

	// ErrMalformedRecord matches every *MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")
)

// MalformedRecordError describes a record that failed validation.
type MalformedRecordError struct {
	Source string
	Index  int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: record %d: %s: %s", e.Source, e.Index, e.Field, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseTime parses an endTime value. Values without a zone are UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing time %q: unrecognized format", s)
}
