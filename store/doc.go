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


// Package store provides snapshot persistence for the retrieval engine.
//
// A snapshot is the output of one build: serialized index, serialized
// corpus, and metadata binding the two together through a shared build
// fingerprint and per-artifact checksums. The SnapshotStore interface
// decouples the engine from the persistence backend; all backends commit
// the pair atomically so a loader never observes a mix of two builds.
//
// # Backends
//
//   - store/fs: one directory per build generation plus a CURRENT pointer
//     repointed via write-temp-then-rename.
//   - store/badger: the three artifacts under three keys written in a
//     single BadgerDB transaction.
//   - store/sqlite: the three artifacts as rows replaced in a single SQL
//     transaction.
//
// # Constructor Return Type Pattern
//
// Backend constructors return concrete types; the engine accepts the
// SnapshotStore interface. This keeps backend-specific helpers (in-memory
// test stores, maintenance hooks) reachable without type assertions.
//
// # Serialization
//
// Artifacts are encoded in MUS format. The serializers live in this
// package so every backend stores byte-identical artifacts; what differs
// per backend is only the commit strategy.
package store
