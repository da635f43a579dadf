package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edspark/coach/src/content"
)

// QdrantStore keeps the content index in a Qdrant collection, reached over
// its REST API.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

func NewQdrantStore(baseURL, collection, apiKey string) *QdrantStore {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	return &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// qdrantStatus supports both `status: "ok"` and `status: {"error":"..."}`.
type qdrantStatus struct {
	State string
	Error string
}

func (s *qdrantStatus) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

type qdrantEnvelope[T any] struct {
	Status qdrantStatus `json:"status"`
	Result T            `json:"result"`
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type qdrantCountResult struct {
	Count int `json:"count"`
}

// EnsureCollection creates the collection with a cosine-distance vector space
// of the given dimension. Recreating an existing collection is a no-op.
func (qs *QdrantStore) EnsureCollection(ctx context.Context, dim int) error {
	if qs.collection == "" {
		return errors.New("qdrant collection is empty")
	}
	req := map[string]any{
		"vectors": map[string]any{"size": dim, "distance": "Cosine"},
	}
	err := qs.do(ctx, http.MethodPut, "/collections/"+url.PathEscape(qs.collection), req, nil)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return nil
	}
	return err
}

func (qs *QdrantStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	points := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}
		points = append(points, map[string]any{
			"id":     id,
			"vector": doc.Embedding,
			"payload": map[string]any{
				"contentId":    doc.Item.ID,
				"contentName":  doc.Item.Title,
				"contentURL":   doc.Item.URL,
				"contentType":  doc.Item.Type,
				"contentGoal":  doc.Item.Goal,
				"contentAge":   doc.Item.Age,
				"contentLevel": doc.Item.Level,
				"contentSkill": doc.Item.Skill,
			},
		})
	}

	var resp qdrantEnvelope[json.RawMessage]
	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(qs.collection))
	if err := qs.do(ctx, http.MethodPut, path, map[string]any{"points": points}, &resp); err != nil {
		return err
	}
	if resp.Status.Error != "" {
		return errors.New(resp.Status.Error)
	}
	return nil
}

func (qs *QdrantStore) Search(ctx context.Context, embedding []float32, limit int) ([]content.ScoredItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       embedding,
		"limit":        limit,
		"with_payload": true,
	}
	var resp qdrantEnvelope[[]qdrantPoint]
	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(qs.collection))
	if err := qs.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}

	results := make([]content.ScoredItem, 0, len(resp.Result))
	for _, point := range resp.Result {
		results = append(results, content.ScoredItem{
			Item:  itemFromPayload(point.Payload),
			Score: point.Score,
		})
	}
	return results, nil
}

func (qs *QdrantStore) Count(ctx context.Context) (int, error) {
	var resp qdrantEnvelope[qdrantCountResult]
	path := fmt.Sprintf("/collections/%s/points/count", url.PathEscape(qs.collection))
	if err := qs.do(ctx, http.MethodPost, path, map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func itemFromPayload(payload map[string]any) content.Item {
	str := func(key string) string {
		v, _ := payload[key].(string)
		return v
	}
	return content.Item{
		ID:    str("contentId"),
		Title: str("contentName"),
		URL:   str("contentURL"),
		Type:  str("contentType"),
		Goal:  str("contentGoal"),
		Age:   str("contentAge"),
		Level: str("contentLevel"),
		Skill: str("contentSkill"),
	}
}

func (qs *QdrantStore) do(ctx context.Context, method, path string, body any, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, qs.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if qs.apiKey != "" {
		req.Header.Set("api-key", qs.apiKey)
	}

	resp, err := qs.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("qdrant %s %s -> http %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return err
		}
	}
	return nil
}
