// Package proxy provides the server-mediated rerank backend. Scoring
// requests go to the app server's rerank endpoint, so server-held
// model credentials are used instead of a client-side key.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
	"github.com/tessera-labs/recall/internal/logger"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// DefaultTimeout is the request timeout when none is configured.
const DefaultTimeout = 60 * time.Second

// Config holds configuration for the proxied reranker.
type Config struct {
	// BaseURL is the app server base URL (required).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Reranker scores candidates through the app server.
type Reranker struct {
	client  *http.Client
	baseURL string
}

// rerankRequest is the app server rerank request format.
type rerankRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
	TopK       int      `json:"top_k,omitempty"`
}

// rerankResponse is the app server rerank response format.
type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Error string `json:"error,omitempty"`
}

// New creates a new proxied reranker.
func New(cfg Config) (*Reranker, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("proxy: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Reranker{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Rerank submits the query and candidate texts in one batched call.
func (r *Reranker) Rerank(
	ctx context.Context, query string, candidates []domain.RerankCandidate, cfg domain.RerankConfig,
) ([]domain.RerankResult, error) {
	if len(candidates) == 0 {
		return []domain.RerankResult{}, nil
	}
	cfg = cfg.Normalised()

	texts := make([]string, len(candidates))
	for i, cand := range candidates {
		texts[i] = cand.Text
	}

	payload, err := json.Marshal(rerankRequest{
		Query:      query,
		Candidates: texts,
		TopK:       cfg.TopK,
	})
	if err != nil {
		return nil, fmt.Errorf("proxy: marshal request: %w", err)
	}

	url := r.baseURL + "/v1/rerank"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("proxy: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy: rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("proxy: rerank returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("proxy: decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("proxy: rerank error: %s", parsed.Error)
	}

	results := make([]domain.RerankResult, 0, len(parsed.Results))
	for _, item := range parsed.Results {
		if item.Index < 0 || item.Index >= len(candidates) {
			return nil, fmt.Errorf("proxy: result index %d out of range for %d candidates", item.Index, len(candidates))
		}
		if item.RelevanceScore < cfg.Threshold {
			continue
		}
		results = append(results, domain.RerankResult{
			ID:             candidates[item.Index].ID,
			Text:           candidates[item.Index].Text,
			RelevanceScore: item.RelevanceScore,
			Rank:           len(results) + 1,
		})
		if len(results) >= cfg.TopK {
			break
		}
	}

	logger.Debug("Proxied rerank: %d candidates in, %d results out", len(candidates), len(results))
	return results, nil
}

// Backend identifies the implementation.
func (r *Reranker) Backend() domain.RerankBackend {
	return domain.RerankBackendProxy
}
