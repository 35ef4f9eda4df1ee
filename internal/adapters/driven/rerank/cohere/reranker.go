// Package cohere provides a cross-encoder rerank backend using the
// Cohere rerank API. All candidates are scored in one batched call.
package cohere

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

// Default configuration values.
const (
	DefaultBaseURL = "https://api.cohere.com"
	DefaultModel   = "rerank-v3.5"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Cohere reranker.
type Config struct {
	// APIKey is the Cohere API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.cohere.com).
	BaseURL string

	// Model is the rerank model to use (default: rerank-v3.5).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Reranker scores candidates with the Cohere cross-encoder.
type Reranker struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// rerankRequest is the Cohere v2/rerank request format.
type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

// rerankResponse is the Cohere v2/rerank response format.
type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Message string `json:"message,omitempty"`
}

// New creates a new Cohere reranker.
func New(cfg Config) (*Reranker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Reranker{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Rerank submits the query and all candidate texts in one call and
// maps the returned indices back to candidate IDs, truncated to topK
// and filtered by the relevance threshold.
func (r *Reranker) Rerank(
	ctx context.Context, query string, candidates []domain.RerankCandidate, cfg domain.RerankConfig,
) ([]domain.RerankResult, error) {
	if len(candidates) == 0 {
		return []domain.RerankResult{}, nil
	}
	cfg = cfg.Normalised()

	documents := make([]string, len(candidates))
	for i, cand := range candidates {
		documents[i] = cand.Text
	}

	payload, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
		TopN:      cfg.TopK,
	})
	if err != nil {
		return nil, fmt.Errorf("cohere: marshal request: %w", err)
	}

	url := r.baseURL + "/v2/rerank"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("cohere: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere: rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cohere: rerank returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("cohere: decode response: %w", err)
	}

	results := make([]domain.RerankResult, 0, len(parsed.Results))
	for _, item := range parsed.Results {
		if item.Index < 0 || item.Index >= len(candidates) {
			return nil, fmt.Errorf("cohere: result index %d out of range for %d candidates", item.Index, len(candidates))
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

	logger.Debug("Cohere rerank: %d candidates in, %d results out", len(candidates), len(results))
	return results, nil
}

// Backend identifies the implementation.
func (r *Reranker) Backend() domain.RerankBackend {
	return domain.RerankBackendCohere
}
