// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/tessera-labs/recall/internal/adapters/driven/embedding/cached"
	ollamaembed "github.com/tessera-labs/recall/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/tessera-labs/recall/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/tessera-labs/recall/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/tessera-labs/recall/internal/adapters/driven/llm/ollama"
	openaillm "github.com/tessera-labs/recall/internal/adapters/driven/llm/openai"
	"github.com/tessera-labs/recall/internal/adapters/driven/rerank/cohere"
	"github.com/tessera-labs/recall/internal/adapters/driven/rerank/llmscore"
	"github.com/tessera-labs/recall/internal/adapters/driven/rerank/noop"
	"github.com/tessera-labs/recall/internal/adapters/driven/rerank/proxy"
	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
	"github.com/tessera-labs/recall/internal/core/services"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the configured embedding provider,
// wrapped in an in-process LRU cache. Returns nil (no error) when the
// provider is not configured; the pipeline then runs lexical-only.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	var inner driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderOllama:
		inner = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		inner = svc

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	wrapped, err := cached.New(inner, 0)
	if err != nil {
		return inner, nil
	}
	return wrapped, nil
}

// CreateLLMService creates the configured chat-model provider.
// Returns nil if the provider is not configured.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateReranker instantiates the backend chosen by the selection
// policy. The llm parameter backs the chat-model scorer and may be
// nil. Construction failures fall through to pass-through so a
// misconfigured backend never breaks search.
func CreateReranker(settings domain.RerankSettings, llm driven.LLMService) driven.Reranker {
	backend := services.SelectRerankBackend(settings, llm != nil)

	switch backend {
	case domain.RerankBackendCohere:
		if r, err := cohere.New(cohere.Config{
			APIKey: settings.CohereAPIKey,
			Model:  settings.CohereModel,
		}); err == nil {
			return r
		}

	case domain.RerankBackendProxy:
		if r, err := proxy.New(proxy.Config{BaseURL: settings.ProxyURL}); err == nil {
			return r
		}

	case domain.RerankBackendLLM:
		if r, err := llmscore.New(llm); err == nil {
			return r
		}

	case domain.RerankBackendNone:
	}

	return noop.New()
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for use in the settings flow to validate credentials on configuration.
func ValidateEmbeddingConfig(settings domain.EmbeddingSettings) error {
	if !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings domain.LLMSettings) error {
	if !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
