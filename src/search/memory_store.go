package search

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/edspark/coach/src/content"
)

// MemoryStore implements Store for tests and lightweight deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
	return nil
}

func (s *MemoryStore) Search(_ context.Context, embedding []float32, limit int) ([]content.ScoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}

	scored := make([]content.ScoredItem, 0, len(s.docs))
	for _, doc := range s.docs {
		scored = append(scored, content.ScoredItem{
			Item:  doc.Item,
			Score: cosineSimilarity(embedding, doc.Embedding),
		})
	}
	// Stable sort keeps insertion order for ties, so identical queries against
	// an unchanged store return identical sequences.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
