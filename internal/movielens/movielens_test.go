// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package movielens

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleItems = "1|Toy Story (1995)|01-Jan-1995||http://us.imdb.com/M/title-exact?Toy%20Story%20(1995)|0|0\n" +
	"2|GoldenEye (1995)|01-Jan-1995||http://us.imdb.com/M/title-exact?GoldenEye%20(1995)|0|1\n" +
	"3|Cit\xe9 des enfants perdus, La (1995)|01-Jan-1995||x|0\n"

const sampleRatings = "196\t1\t3\t881250949\n" +
	"186\t1\t4\t891717742\n" +
	"196\t2\t5\t878887116\n" +
	"\n" +
	"22\t3\t1\t878887116\n"

func TestParseItems(t *testing.T) {
	titles, err := ParseItems(strings.NewReader(sampleItems))
	if err != nil {
		t.Fatalf("ParseItems() error = %v", err)
	}
	if len(titles) != 3 {
		t.Fatalf("ParseItems() returned %d titles, want 3", len(titles))
	}
	if titles[1] != "Toy Story (1995)" {
		t.Errorf("titles[1] = %q", titles[1])
	}
	if titles[3] != "Cité des enfants perdus, La (1995)" {
		t.Errorf("titles[3] = %q, want ISO-8859-1 decoded title", titles[3])
	}
}

func TestParseRatings(t *testing.T) {
	ds, err := ParseRatings(strings.NewReader(sampleRatings))
	if err != nil {
		t.Fatalf("ParseRatings() error = %v", err)
	}

	if ds.Len() != 3 {
		t.Errorf("Len() = %d, want 3 items", ds.Len())
	}
	tests := []struct {
		item, user int64
		want       float64
	}{
		{1, 196, 3},
		{1, 186, 4},
		{2, 196, 5},
		{3, 22, 1},
		{2, 186, 0},
	}
	for _, tt := range tests {
		if got := ds.Profile(tt.item).Get(tt.user); got != tt.want {
			t.Errorf("Profile(%d).Get(%d) = %v, want %v", tt.item, tt.user, got, tt.want)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		parse    func() error
		wantLine string
	}{
		{
			name: "ratings wrong field count",
			parse: func() error {
				_, err := ParseRatings(strings.NewReader("1 2 3 4\n1 2 3\n"))
				return err
			},
			wantLine: "line 2",
		},
		{
			name: "ratings non numeric",
			parse: func() error {
				_, err := ParseRatings(strings.NewReader("1 x 3 4\n"))
				return err
			},
			wantLine: "line 1",
		},
		{
			name: "items missing title",
			parse: func() error {
				_, err := ParseItems(strings.NewReader("1|A\n2\n"))
				return err
			},
			wantLine: "line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse()
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("error = %v, want ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), tt.wantLine) {
				t.Errorf("error = %q, want it to name %s", err, tt.wantLine)
			}
		})
	}
}

func writeDir(t *testing.T, items, data string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ItemsFile), []byte(items), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, RatingsFile), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	data, err := LoadDir(writeDir(t, sampleItems, sampleRatings))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if data.Title(2) != "GoldenEye (1995)" {
		t.Errorf("Title(2) = %q", data.Title(2))
	}
	if data.Title(99) != "99" {
		t.Errorf("Title(99) = %q, want id fallback", data.Title(99))
	}
	if data.ByItem.Len() != 3 {
		t.Errorf("ByItem.Len() = %d, want 3", data.ByItem.Len())
	}
}

func TestLoadDir_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := LoadDir(filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Error("LoadDir() error = nil, want open error")
		}
	})

	t.Run("rating for unknown movie", func(t *testing.T) {
		_, err := LoadDir(writeDir(t, "1|A\n", "5 1 3 0\n5 7 2 0\n"))
		if err == nil || !strings.Contains(err.Error(), "unknown movie 7") {
			t.Errorf("LoadDir() error = %v, want unknown movie 7", err)
		}
	})
}

func TestScanLines_CRLF(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("1|A\r\n2|B\r\n")
	titles, err := ParseItems(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if titles[2] != "B" {
		t.Errorf("titles[2] = %q, want B", titles[2])
	}
}
