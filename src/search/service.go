// Package search implements the content-similarity service: a vector index
// seeded from the lesson-content CSV, queried with free text.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/edspark/coach/src/content"
	"github.com/edspark/coach/src/search/embed"
)

// Service embeds documents into a Store and answers ranked queries.
type Service struct {
	store    Store
	embedder embed.Embedder
	log      *zap.Logger
}

func NewService(store Store, embedder embed.Embedder, log *zap.Logger) *Service {
	if embedder == nil {
		embedder = embed.HashingEmbedder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, embedder: embedder, log: log}
}

// Index embeds the items and adds them to the backing store. Items are
// immutable once ingested; re-indexing appends rather than mutates.
func (s *Service) Index(ctx context.Context, items []content.Item) error {
	if len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = documentText(item)
	}

	vecs, err := s.embedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	docs := make([]Document, len(items))
	for i, item := range items {
		docs[i] = Document{Item: item, Embedding: vecs[i]}
	}
	if err := s.store.Add(ctx, docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	s.log.Info("content indexed", zap.Int("items", len(items)))
	return nil
}

// Query returns up to limit items ranked by similarity to the query text.
func (s *Service) Query(ctx context.Context, text string, limit int) ([]content.ScoredItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is empty")
	}
	if limit <= 0 {
		limit = content.DefaultLimit
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.store.Search(ctx, vec, limit)
}

// Search satisfies content.Searcher so the lookup client can run in-process.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]content.ScoredItem, error) {
	return s.Query(ctx, query, limit)
}

// Count reports the number of indexed documents.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *Service) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if batcher, ok := s.embedder.(embed.BatchEmbedder); ok {
		if vecs, err := batcher.EmbedBatch(ctx, texts); err == nil && len(vecs) == len(texts) {
			return vecs, nil
		}
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// documentText composes the searchable text for an item. The descriptive
// fields are folded in so a "{skill} for {age} focused on {goal}" query has
// something to match beyond the bare title.
func documentText(item content.Item) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{item.Title, item.Skill, item.Age, item.Goal} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " | ")
}
