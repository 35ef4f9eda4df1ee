// Package llmscore provides a rerank backend that uses a general
// chat-completion model as a relevance scorer. Each candidate is
// scored by its own model call, issued concurrently, against a fixed
// numeric rubric so responses stay parseable.
package llmscore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
	"github.com/tessera-labs/recall/internal/logger"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// scorePrompt pins the model to a deterministic numeric rubric.
// Temperature 0 minimises variance; the output contract (a bare
// number, two decimals) keeps parsing trivial.
const scorePrompt = `You are a relevance judge. Score how relevant the document is to the query on a scale from 0.00 to 1.00:
- 1.00: directly and completely answers the query
- 0.70-0.99: highly relevant, covers the main topic
- 0.40-0.69: partially relevant, related topic
- 0.10-0.39: tangentially related
- 0.00-0.09: unrelated

Query: %s

Document: %s

Respond with ONLY the numeric score with two decimals, e.g. 0.75`

// maxScoreTokens bounds the completion; a score needs very few.
const maxScoreTokens = 8

// Reranker scores candidates with per-candidate chat-model calls.
type Reranker struct {
	llm driven.LLMService
}

// New creates an LLM-scorer reranker over the given chat service.
func New(llm driven.LLMService) (*Reranker, error) {
	if llm == nil {
		return nil, fmt.Errorf("llmscore: LLM service is required")
	}
	return &Reranker{llm: llm}, nil
}

// Rerank fans out one scoring call per candidate, waits for all of
// them, then sorts, truncates to topK and filters by threshold.
// A call that fails or returns an unparseable score degrades to 0 for
// that one candidate rather than failing the batch.
func (r *Reranker) Rerank(
	ctx context.Context, query string, candidates []domain.RerankCandidate, cfg domain.RerankConfig,
) ([]domain.RerankResult, error) {
	if len(candidates) == 0 {
		return []domain.RerankResult{}, nil
	}
	cfg = cfg.Normalised()

	scores := make([]float64, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, cand := range candidates {
		g.Go(func() error {
			scores[i] = r.scoreOne(gctx, query, cand.Text)
			return nil
		})
	}
	// Workers never return errors; per-candidate failures become
	// score 0. Wait only synchronises the fan-in.
	_ = g.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i := range candidates {
		ranked[i] = scored{index: i, score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	results := make([]domain.RerankResult, 0, cfg.TopK)
	for _, item := range ranked {
		if item.score < cfg.Threshold {
			continue
		}
		results = append(results, domain.RerankResult{
			ID:             candidates[item.index].ID,
			Text:           candidates[item.index].Text,
			RelevanceScore: item.score,
			Rank:           len(results) + 1,
		})
		if len(results) >= cfg.TopK {
			break
		}
	}

	logger.Debug("LLM rerank: %d candidates in, %d results out", len(candidates), len(results))
	return results, nil
}

// scoreOne runs one rubric-constrained scoring call.
func (r *Reranker) scoreOne(ctx context.Context, query, text string) float64 {
	prompt := fmt.Sprintf(scorePrompt, query, text)
	response, err := r.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   maxScoreTokens,
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("LLM scoring call failed: %v (scoring 0)", err)
		return 0
	}
	return ParseScore(response)
}

// ParseScore extracts a relevance score from a model response.
// Anything that does not parse as a number in [0,1] scores 0; a
// malformed response for one candidate must never abort the batch.
func ParseScore(response string) float64 {
	fields := strings.Fields(strings.TrimSpace(response))
	if len(fields) == 0 {
		return 0
	}

	score, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "."), 64)
	if err != nil || score < 0 || score > 1 {
		return 0
	}
	return score
}

// Backend identifies the implementation.
func (r *Reranker) Backend() domain.RerankBackend {
	return domain.RerankBackendLLM
}
