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
package history

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source is one collection of play event records, e.g. a single export file.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type fileSource string

// FileSource reads records from the JSON file at path.
func FileSource(path string) Source {
	return fileSource(path)
}

func (f fileSource) Name() string { return string(f) }

func (f fileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

type readerSource struct {
	name string
	data []byte
}

// ReaderSource buffers r so the source can be opened more than once.
func ReaderSource(name string, r io.Reader) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return readerSource{name: name, data: data}, nil
}

func (r readerSource) Name() string { return r.name }

func (r readerSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(r.data)), nil
}

// DirSources lists the *.json files in dir in lexical order.
func DirSources(dir string) ([]Source, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, FileSource(m))
	}
	return sources, nil
}

// LoadDir loads every *.json file in dir.
func LoadDir(dir string) ([]PlayEvent, error) {
	sources, err := DirSources(dir)
	if err != nil {
		return nil, err
	}
	return Load(sources...)
}

// Load concatenates the records of all sources. Duplicates across sources
// are kept.
func Load(sources ...Source) ([]PlayEvent, error) {
	var events []PlayEvent
	for _, src := range sources {
		loaded, err := loadOne(src)
		if err != nil {
			return nil, err
		}
		events = append(events, loaded...)
	}

	if len(events) == 0 {
		return nil, ErrNoData
	}
	return events, nil
}

func loadOne(src Source) ([]PlayEvent, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src.Name(), err)
	}
	defer rc.Close()

	return Decode(src.Name(), rc)
}

type rawRecord struct {
	EndTime    *string `json:"endTime"`
	ArtistName *string `json:"artistName"`
	TrackName  *string `json:"trackName"`
	MsPlayed   *int64  `json:"msPlayed"`
}

// Decode reads a JSON array of records. name is used in error messages.
func Decode(name string, r io.Reader) ([]PlayEvent, error) {
	var records []rawRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	events := make([]PlayEvent, 0, len(records))
	for i, rec := range records {
		ev, err := rec.toEvent(name, i)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (rec rawRecord) toEvent(source string, index int) (PlayEvent, error) {
	malformed := func(field, reason string) error {
		return &MalformedRecordError{Source: source, Index: index, Field: field, Reason: reason}
	}

	switch {
	case rec.EndTime == nil:
		return PlayEvent{}, malformed("endTime", "missing")
	case rec.ArtistName == nil:
		return PlayEvent{}, malformed("artistName", "missing")
	case rec.TrackName == nil:
		return PlayEvent{}, malformed("trackName", "missing")
	case rec.MsPlayed == nil:
		return PlayEvent{}, malformed("msPlayed", "missing")
	case *rec.MsPlayed < 0:
		return PlayEvent{}, malformed("msPlayed", fmt.Sprintf("negative value %d", *rec.MsPlayed))
	}

	end, err := ParseTime(strings.TrimSpace(*rec.EndTime))
	if err != nil {
		return PlayEvent{}, malformed("endTime", err.Error())
	}

	return PlayEvent{
		EndTime:    end,
		ArtistName: *rec.ArtistName,
		TrackName:  *rec.TrackName,
		MsPlayed:   *rec.MsPlayed,
	}, nil
}

// Fingerprint identifies a set of sources by name and content, for use as
// a cache key.
func Fingerprint(sources ...Source) (string, error) {
	h := sha256.New()
	for _, src := range sources {
		rc, err := src.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", src.Name(), err)
		}
		fmt.Fprintf(h, "%s\x00", src.Name())
		_, err = io.Copy(h, rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("hashing %s: %w", src.Name(), err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
