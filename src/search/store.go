package search

import (
	"context"

	"github.com/edspark/coach/src/content"
)

// Document is one embedded content item ready for indexing.
type Document struct {
	ID        string
	Item      content.Item
	Embedding []float32
}

// Store is the contract for vector-search backends.
type Store interface {
	Add(ctx context.Context, docs []Document) error
	Search(ctx context.Context, embedding []float32, limit int) ([]content.ScoredItem, error)
	Count(ctx context.Context) (int, error)
}
