// Package embed provides pluggable text-embedding providers for the content
// index.
package embed

import (
	"context"
	"errors"
	"strings"
)

// Embedder is a pluggable text-embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by providers that can embed a whole document
// batch in one call. Ingestion prefers it when available.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrNotSupported is returned by providers that do not offer embeddings in
// the current build.
var ErrNotSupported = errors.New("embeddings not supported by this provider")

const hashingDim = 768

// HashingEmbedder is a deterministic, dependency-free embedder. It is not a
// semantic model; it exists so the index behaves identically across runs in
// tests and offline deployments.
type HashingEmbedder struct{}

func (HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return HashingEmbedding(text), nil
}

// HashingEmbedding maps text onto a fixed-size vector by byte position.
func HashingEmbedding(text string) []float32 {
	vec := make([]float32, hashingDim)
	for i, ch := range []byte(text) {
		vec[i%hashingDim] += float32(ch) / 255.0
	}
	return vec
}

// New selects a provider by name: "openai", "fastembed", or "hashing".
// Unknown or empty names fall back to the hashing embedder.
func New(provider, model, apiKey string) Embedder {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		if e, err := NewOpenAIEmbedder(apiKey, model); err == nil {
			return e
		}
	case "fastembed":
		if e, err := NewFastEmbedder(context.Background()); err == nil {
			return e
		}
	}
	return HashingEmbedder{}
}
