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


// Package index defines the nearest-neighbor index contract shared by the
// retrieval engine's index backends.
//
// An Index holds one embedding vector per corpus unit, addressed by unit id,
// and answers k-nearest-neighbor queries under a configurable distance
// metric. Two implementations are provided:
//
//   - index/flat: exact exhaustive scan, bit-reproducible results.
//   - index/vptree: vantage-point tree with pruned search, faster on large
//     corpora at a recall trade-off.
//
// All implementations serialize through one shared binary layout, so a blob
// written by one backend can be loaded by another.
package index
