package embed

import "context"

// Embedder generates vector embeddings from text for nearest-neighbor
// retrieval. Implementations must be thread-safe for concurrent use and
// must produce vectors of a fixed dimensionality for the lifetime of the
// instance.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// one batch. The returned slice contains embeddings in the same order
	// as the input texts. Returns an error if any embedding generation
	// fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
