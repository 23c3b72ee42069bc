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


// Package embed defines the embedding capability consumed by the retrieval
// engine.
//
// The engine depends on the Embedder interface only; concrete clients live
// in sub-packages:
//
//   - embed/openai: production client for OpenAI-compatible APIs
//   - embed/mock: deterministic test double, no external dependencies
//
// Public constructors in the implementation packages return the Embedder
// interface to keep callers decoupled from the concrete client; the mock
// package returns its concrete type so tests can inject behavior and
// inspect call counts.
package embed
