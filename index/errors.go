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


package index

import "errors"

var (
	// ErrEmptyBuild is returned when Build is called with no vectors.
	ErrEmptyBuild = errors.New("no vectors to index")

	// ErrRaggedVectors is returned when Build input vectors disagree on
	// dimensionality.
	ErrRaggedVectors = errors.New("inconsistent vector dimensionality")

	// ErrDimMismatch is returned when a query vector's dimensionality does
	// not match the indexed vectors.
	ErrDimMismatch = errors.New("query dimensionality mismatch")

	// ErrInvalidK is returned when Search is called with k <= 0.
	ErrInvalidK = errors.New("k must be greater than zero")

	// ErrNotBuilt is returned when Search is called before Build.
	ErrNotBuilt = errors.New("index not built")

	// ErrUnknownMetric is returned when a metric name cannot be parsed.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrBadBlob is returned when a serialized index cannot be decoded:
	// truncated payload, bad magic, or an unsupported version.
	ErrBadBlob = errors.New("malformed index blob")
)
