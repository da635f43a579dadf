// Package content implements the lesson-content lookup client: one query per
// call against the vector search service, no retries, no side effects beyond
// the call itself.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors surfaced to the orchestration core.
var (
	// ErrInvalidQuery means one of the lookup parameters was empty.
	ErrInvalidQuery = errors.New("content: invalid query")

	// ErrUnavailable means the search service could not be reached or answered
	// with a non-success status.
	ErrUnavailable = errors.New("content: search service unavailable")
)

// DefaultLimit caps the number of returned items per lookup.
const DefaultLimit = 5

// Searcher is the search-service operation the client depends on. It is
// implemented remotely by HTTPSearcher and in-process by search.Service.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]ScoredItem, error)
}

// Client turns (skill, ageGroup, goal) triples into ranked content metadata.
type Client struct {
	searcher Searcher
	limit    int
}

func NewClient(searcher Searcher, limit int) *Client {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Client{searcher: searcher, limit: limit}
}

// Lookup concatenates the three parameters into one free-text query and
// returns at most the configured number of items, ordered by the search
// service's relevance ranking. Retry policy, if any, belongs to the caller.
func (c *Client) Lookup(ctx context.Context, skill, ageGroup, goal string) ([]Item, error) {
	skill = strings.TrimSpace(skill)
	ageGroup = strings.TrimSpace(ageGroup)
	goal = strings.TrimSpace(goal)
	if skill == "" || ageGroup == "" || goal == "" {
		return nil, fmt.Errorf("%w: skill, age group and goal must all be set", ErrInvalidQuery)
	}

	query := fmt.Sprintf("%s for %s focused on %s", skill, ageGroup, goal)
	scored, err := c.searcher.Search(ctx, query, c.limit)
	if err != nil {
		return nil, err
	}

	if len(scored) > c.limit {
		scored = scored[:c.limit]
	}
	items := make([]Item, len(scored))
	for i, s := range scored {
		items[i] = s.Item
	}
	return items, nil
}

// HTTPSearcher queries a remote search service over its POST /query endpoint.
type HTTPSearcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSearcher(baseURL string) *HTTPSearcher {
	return &HTTPSearcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type queryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type queryResponse struct {
	Results []ScoredItem `json:"results"`
}

// Search posts the query text and decodes the ranked results. Transport
// failures and non-2xx statuses both map to ErrUnavailable.
func (h *HTTPSearcher) Search(ctx context.Context, query string, limit int) ([]ScoredItem, error) {
	body, err := json.Marshal(queryRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var out queryResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	return out.Results, nil
}
