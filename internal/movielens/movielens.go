// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package movielens reads the MovieLens 100K files u.item and u.data.
//
// Both files are ISO-8859-1 encoded. u.item is pipe separated with the
// movie id and title in the first two columns; u.data is whitespace
// separated "user item rating timestamp". Ratings are returned keyed by
// item (movie) so they feed item-to-item similarity directly; use
// ratings.Transpose for the by-user view.
package movielens

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"golang.org/x/text/encoding/charmap"
)

const (
	// ItemsFile is the movie catalogue file name.
	ItemsFile = "u.item"
	// RatingsFile is the ratings file name.
	RatingsFile = "u.data"
)

// ErrMalformed is returned for a line that cannot be parsed.
var ErrMalformed = errors.New("malformed line")

// Data is a loaded MovieLens directory.
type Data struct {
	// Titles maps movie id to title.
	Titles map[int64]string
	// ByItem holds ratings keyed by movie, then user.
	ByItem *ratings.MapDataset[int64]
}

// Title returns the title for id, or the numeric id when unknown.
func (d *Data) Title(id int64) string {
	if t, ok := d.Titles[id]; ok {
		return t
	}
	return strconv.FormatInt(id, 10)
}

// LoadDir reads u.item and u.data from dir. Ratings for movies missing from
// u.item are rejected.
func LoadDir(dir string) (*Data, error) {
	titles, err := readFile(filepath.Join(dir, ItemsFile), ParseItems)
	if err != nil {
		return nil, err
	}
	byItem, err := readFile(filepath.Join(dir, RatingsFile), ParseRatings)
	if err != nil {
		return nil, err
	}
	for _, item := range byItem.Keys() {
		if _, ok := titles[item]; !ok {
			return nil, fmt.Errorf("%s: rating for unknown movie %d", RatingsFile, item)
		}
	}
	return &Data{Titles: titles, ByItem: byItem}, nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return v, nil
}

// ParseItems reads u.item content into a movie id to title map.
func ParseItems(r io.Reader) (map[int64]string, error) {
	titles := make(map[int64]string)
	err := scanLines(r, func(n int, line string) error {
		fields := strings.SplitN(line, "|", 3)
		if len(fields) < 2 {
			return fmt.Errorf("line %d: %w: want id|title", n, ErrMalformed)
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w: movie id %q", n, ErrMalformed, fields[0])
		}
		titles[id] = fields[1]
		return nil
	})
	return titles, err
}

// ParseRatings reads u.data content into ratings keyed by item, then user.
func ParseRatings(r io.Reader) (*ratings.MapDataset[int64], error) {
	b := ratings.NewBuilder[int64](0)
	err := scanLines(r, func(n int, line string) error {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return fmt.Errorf("line %d: %w: want 4 fields, got %d", n, ErrMalformed, len(fields))
		}
		var ids [2]int64
		for i := range ids {
			id, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w: id %q", n, ErrMalformed, fields[i])
			}
			ids[i] = id
		}
		rating, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("line %d: %w: rating %q", n, ErrMalformed, fields[2])
		}
		user, item := ids[0], ids[1]
		b.Set(item, user, rating)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// scanLines decodes ISO-8859-1 and calls fn for each non-blank line with its
// 1-based number.
func scanLines(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(r))
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}
