package match

import (
	"context"
	"fmt"
	"math"

	"github.com/spigell/jobmatch/internal/ai"
)

// Scorer computes semantic similarity between two texts through a shared
// embedding backend.
type Scorer struct {
	embedder ai.Embedder
}

func NewScorer(embedder ai.Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// Similarity returns the cosine similarity of the two texts, clipped to
// [0, 1]. An empty text on either side short-circuits to exactly 0 without
// calling the backend.
func (s *Scorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	if a == "" || b == "" {
		return 0, nil
	}

	va, err := s.embedder.Embed(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("embedding first text: %w", err)
	}

	vb, err := s.embedder.Embed(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("embedding second text: %w", err)
	}

	return clamp01(cosine(va, vb)), nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}

	var na, nb float64
	for _, v := range a {
		na += float64(v) * float64(v)
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// clamp01 guards against backends returning values marginally outside the
// range for near-identical inputs.
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
