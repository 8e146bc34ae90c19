package gemini

import (
	"context"
	"testing"
)

func TestNewEmbedderRequiresAPIKey(t *testing.T) {
	if _, err := NewEmbedder(context.Background(), "   ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestEmbedRejectsUninitializedEmbedder(t *testing.T) {
	var e *Embedder
	if _, err := e.Embed(context.Background(), "some text"); err == nil {
		t.Fatalf("expected error for uninitialized embedder")
	}
}

func TestModelDefaulting(t *testing.T) {
	e, err := NewEmbedder(context.Background(), "test-key", " ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.Model() != defaultModel {
		t.Fatalf("expected default model %q, got %q", defaultModel, e.Model())
	}
}
