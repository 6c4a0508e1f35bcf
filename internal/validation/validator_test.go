// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() = nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() returned different instances")
	}
}

type engineSettings struct {
	Metric string `validate:"simmetric"`
	Mode   string `validate:"recmode"`
	TopK   int    `validate:"gte=0"`
}

type interaction struct {
	UserID int64  `validate:"gt=0"`
	ItemID int64  `validate:"gt=0"`
	Kind   string `validate:"oneof=view favorite anonymous_view"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		wantTags []string
	}{
		{
			name:  "valid settings",
			input: &engineSettings{Metric: "pearson", Mode: "raw_sum"},
		},
		{
			name:     "unknown metric",
			input:    &engineSettings{Metric: "jaccard", Mode: "raw_sum"},
			wantTags: []string{"simmetric"},
		},
		{
			name:     "unknown mode and negative top_k",
			input:    &engineSettings{Metric: "cosine", Mode: "median", TopK: -1},
			wantTags: []string{"recmode", "gte"},
		},
		{
			name:  "valid interaction",
			input: &interaction{UserID: 1, ItemID: 2, Kind: "favorite"},
		},
		{
			name:     "bad interaction",
			input:    &interaction{UserID: 0, ItemID: 2, Kind: "like"},
			wantTags: []string{"gt", "oneof"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if len(tt.wantTags) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v, want nil", err)
				}
				return
			}

			var verrs *Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("ValidateStruct() error = %v, want *Errors", err)
			}
			if len(verrs.Errors()) != len(tt.wantTags) {
				t.Fatalf("ValidateStruct() returned %d errors, want %d: %v", len(verrs.Errors()), len(tt.wantTags), err)
			}
			for i, fe := range verrs.Errors() {
				if fe.Tag() != tt.wantTags[i] {
					t.Errorf("error[%d].Tag() = %q, want %q", i, fe.Tag(), tt.wantTags[i])
				}
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := ValidateStruct(&engineSettings{Metric: "x", Mode: "raw_sum", TopK: -2})
	msg := err.Error()

	for _, want := range []string{
		"engineSettings.Metric must name a similarity metric",
		"engineSettings.TopK must be greater than or equal to 0",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}

func TestNewFieldError(t *testing.T) {
	errOrder := errors.New("pair keys out of order")
	err := NewFieldError("pair", "canonical", "(3, 1)", errOrder)

	if !errors.Is(err, errOrder) {
		t.Error("errors.Is(NewFieldError(...), cause) = false")
	}
	if err.Field() != "pair" || err.Tag() != "canonical" || err.Value() != "(3, 1)" {
		t.Errorf("NewFieldError() = %+v", err)
	}
	if got, want := err.Error(), "pair: pair keys out of order"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := &Errors{errors: []*ValidationError{err}}
	if !errors.Is(wrapped, errOrder) {
		t.Error("errors.Is(*Errors, cause) = false")
	}

	if got := NewFieldError("k", "gt", 0, nil).Error(); got != "k failed gt validation" {
		t.Errorf("Error() without cause = %q", got)
	}
}
