package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/clintables/codefinder/pkg/errors"
)

// Client calls a cross-encoder scoring service (text-embeddings-inference
// style /rerank endpoint). Scores are raw model logits, unbounded; the
// caller normalizes them.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a reranker client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
	// RawScores asks the service to skip its own normalization.
	RawScores bool `json:"raw_scores"`
}

type rerankEntry struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// ScorePairs scores each (query, candidate) pair, returning one raw score
// per candidate in input order.
func (c *Client) ScorePairs(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Query: query, Texts: candidates, RawScores: true})
	if err != nil {
		return nil, apperrors.NewCapabilityError("encoding rerank request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewCapabilityError("building rerank request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewCapabilityError("rerank request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewCapabilityError("rerank request failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	var entries []rerankEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, apperrors.NewCapabilityError("decoding rerank response", err)
	}

	scores := make([]float64, len(candidates))
	for _, e := range entries {
		if e.Index < 0 || e.Index >= len(scores) {
			return nil, apperrors.NewCapabilityError("rerank response index out of range", nil)
		}
		scores[e.Index] = e.Score
	}
	return scores, nil
}
