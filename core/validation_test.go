package core

import (
	"errors"
	"testing"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		k       int
		wantErr error
	}{
		{
			name:    "valid query",
			query:   "five ways of attack",
			k:       3,
			wantErr: nil,
		},
		{
			name:    "k of one",
			query:   "leader",
			k:       1,
			wantErr: nil,
		},
		{
			name:    "empty query",
			query:   "",
			k:       3,
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "whitespace-only query",
			query:   " \t\n ",
			k:       3,
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "zero k",
			query:   "fire",
			k:       0,
			wantErr: ErrNonPositiveK,
		},
		{
			name:    "negative k",
			query:   "fire",
			k:       -2,
			wantErr: ErrNonPositiveK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query, tt.k)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateQuery() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ValidateQuery() error should wrap ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidateVectors(t *testing.T) {
	tests := []struct {
		name      string
		vectors   [][]float32
		expectDim int
		wantDim   int
		wantErr   bool
	}{
		{
			name:      "consistent vectors, derived dim",
			vectors:   [][]float32{{1, 2, 3}, {4, 5, 6}},
			expectDim: 0,
			wantDim:   3,
		},
		{
			name:      "consistent vectors, explicit dim",
			vectors:   [][]float32{{1, 2}, {3, 4}},
			expectDim: 2,
			wantDim:   2,
		},
		{
			name:      "ragged vectors",
			vectors:   [][]float32{{1, 2, 3}, {4, 5}},
			expectDim: 0,
			wantErr:   true,
		},
		{
			name:      "explicit dim violated",
			vectors:   [][]float32{{1, 2, 3}},
			expectDim: 4,
			wantErr:   true,
		},
		{
			name:      "no vectors",
			vectors:   nil,
			expectDim: 3,
			wantErr:   true,
		},
		{
			name:      "zero-length vector",
			vectors:   [][]float32{{}},
			expectDim: 0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dim, err := ValidateVectors(tt.vectors, tt.expectDim)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ValidateVectors() expected error, got nil")
				}
				if !errors.Is(err, ErrDimensionMismatch) {
					t.Errorf("error should wrap ErrDimensionMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateVectors() unexpected error: %v", err)
			}
			if dim != tt.wantDim {
				t.Errorf("ValidateVectors() dim = %d, want %d", dim, tt.wantDim)
			}
		})
	}
}
