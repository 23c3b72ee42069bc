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

import "errors"

// Error kinds. Every failure surfaced by the retrieval engine wraps exactly
// one of these, so callers can route on the category with errors.Is while
// still matching the specific cause below.
var (
	// ErrValidation indicates malformed caller input, rejected before any
	// side effect.
	ErrValidation = errors.New("validation error")

	// ErrBuild indicates the build phase could not produce a servable
	// snapshot. Previously persisted artifacts remain untouched.
	ErrBuild = errors.New("build error")

	// ErrIntegrity indicates the index/corpus pair in use is mismatched,
	// corrupt, or desynchronized. Fatal for the operation in progress.
	ErrIntegrity = errors.New("integrity error")

	// ErrCapability indicates the embedding capability is unavailable or
	// returned a result of unexpected shape.
	ErrCapability = errors.New("capability error")

	// ErrNotLoaded indicates no snapshot has been built or loaded yet.
	ErrNotLoaded = errors.New("no snapshot loaded")
)

// Specific causes, always wrapped together with their kind.
var (
	// ErrEmptyQuery indicates an empty or whitespace-only query string.
	ErrEmptyQuery = errors.New("query text is empty")

	// ErrNonPositiveK indicates a non-positive result count was requested.
	ErrNonPositiveK = errors.New("k must be greater than zero")

	// ErrNoUnits indicates no text unit survived segmentation.
	ErrNoUnits = errors.New("no text units survived segmentation")

	// ErrDimensionMismatch indicates an embedding vector's dimensionality
	// disagrees with the configured index dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimensionality mismatch")

	// ErrCountMismatch indicates the index entry count and corpus length
	// disagree.
	ErrCountMismatch = errors.New("index and corpus entry counts disagree")

	// ErrUnitOutOfRange indicates a unit id outside the corpus range.
	ErrUnitOutOfRange = errors.New("unit id out of range")

	// ErrSnapshotCorrupt indicates a persisted artifact failed its checksum
	// or could not be decoded.
	ErrSnapshotCorrupt = errors.New("snapshot artifact corrupt")

	// ErrFingerprintMismatch indicates the loaded index and corpus artifacts
	// come from different builds.
	ErrFingerprintMismatch = errors.New("artifact fingerprints disagree")
)
