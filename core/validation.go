// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateQuery validates caller-supplied query parameters.
//
// Validation rules:
//   - query must contain at least one non-whitespace character
//   - k must be greater than zero
//
// Both failures wrap ErrValidation; they are rejected before the embedding
// capability is ever invoked.
func ValidateQuery(query string, k int) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyQuery)
	}
	if k <= 0 {
		return fmt.Errorf("%w: %w: got %d", ErrValidation, ErrNonPositiveK, k)
	}
	return nil
}

// ValidateVectors checks that every vector in a batch has the expected
// dimensionality. A zero expected dimension adopts the first vector's
// length. Returns the validated dimensionality.
func ValidateVectors(vectors [][]float32, expectDim int) (int, error) {
	if len(vectors) == 0 {
		return 0, fmt.Errorf("%w: no vectors", ErrDimensionMismatch)
	}
	dim := expectDim
	if dim == 0 {
		dim = len(vectors[0])
	}
	if dim == 0 {
		return 0, fmt.Errorf("%w: zero-length vector", ErrDimensionMismatch)
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				ErrDimensionMismatch, i, len(vec), dim)
		}
	}
	return dim, nil
}
