package ai

import "context"

// Embedder turns a text into a fixed-length numeric vector. A single instance
// is loaded once per process and shared across all similarity calls, so
// implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
