// Package engine orchestrates the retrieval lifecycle over one document.
//
// The Engine type ties the other packages together:
//   - Build segments a document, embeds the units through a worker pool,
//     constructs the index and corpus, and persists them as one snapshot
//   - Load restores and verifies a persisted snapshot
//   - Query answers ranked nearest-neighbor searches against the serving
//     snapshot
//
// The serving snapshot is swapped atomically, so queries run lock-free and
// a rebuild never disturbs in-flight reads. Embedding calls are retried
// with exponential backoff; every other failure is surfaced immediately
// under the error kinds defined in package core.
package engine
