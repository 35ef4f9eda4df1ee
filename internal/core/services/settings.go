package services

import (
	"fmt"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
)

// Config keys recognised by the settings service. Defaults live here,
// stated once, rather than being merged at call sites.
const (
	keyEmbeddingProvider = "embedding.provider"
	keyEmbeddingModel    = "embedding.model"
	keyEmbeddingBaseURL  = "embedding.base_url"
	keyEmbeddingAPIKey   = "embedding.api_key"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyRerankBackend   = "rerank.backend"
	keyRerankCohereKey = "rerank.cohere_api_key"
	keyRerankCohereMod = "rerank.cohere_model"
	keyRerankProxyURL  = "rerank.proxy_url"
	keyRerankThreshold = "rerank.threshold"

	keySearchTopK      = "search.top_k"
	keySearchThreshold = "search.min_threshold"
	keySearchRerank    = "search.rerank"
)

// SettingsService maps the persistent config store onto typed
// settings, applying defaults in one place.
type SettingsService struct {
	config driven.ConfigStore
}

// NewSettingsService creates a settings service.
func NewSettingsService(config driven.ConfigStore) *SettingsService {
	return &SettingsService{config: config}
}

// Embedding returns the embedding provider settings.
func (s *SettingsService) Embedding() domain.EmbeddingSettings {
	return domain.EmbeddingSettings{
		Provider: domain.AIProvider(s.config.GetString(keyEmbeddingProvider)),
		Model:    s.config.GetString(keyEmbeddingModel),
		BaseURL:  s.config.GetString(keyEmbeddingBaseURL),
		APIKey:   s.config.GetString(keyEmbeddingAPIKey),
	}
}

// LLM returns the chat-model provider settings.
func (s *SettingsService) LLM() domain.LLMSettings {
	return domain.LLMSettings{
		Provider: domain.AIProvider(s.config.GetString(keyLLMProvider)),
		Model:    s.config.GetString(keyLLMModel),
		BaseURL:  s.config.GetString(keyLLMBaseURL),
		APIKey:   s.config.GetString(keyLLMAPIKey),
	}
}

// Rerank returns the reranking settings.
func (s *SettingsService) Rerank() domain.RerankSettings {
	settings := domain.RerankSettings{
		Backend:      domain.RerankBackend(s.config.GetString(keyRerankBackend)),
		CohereAPIKey: s.config.GetString(keyRerankCohereKey),
		CohereModel:  s.config.GetString(keyRerankCohereMod),
		ProxyURL:     s.config.GetString(keyRerankProxyURL),
		Threshold:    s.config.GetFloat(keyRerankThreshold),
	}
	if settings.Threshold <= 0 {
		settings.Threshold = domain.DefaultRerankThreshold
	}
	return settings
}

// Search returns the default search behaviour.
func (s *SettingsService) Search() domain.SearchSettings {
	settings := domain.SearchSettings{
		TopK:         s.config.GetInt(keySearchTopK),
		MinThreshold: s.config.GetFloat(keySearchThreshold),
		Rerank:       s.config.GetBool(keySearchRerank),
	}
	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultTopK
	}
	if settings.MinThreshold <= 0 {
		settings.MinThreshold = domain.DefaultMinThreshold
	}
	return settings
}

// SetEmbeddingProvider stores the embedding provider choice.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: provider %q", domain.ErrInvalidInput, provider)
	}
	if err := s.config.Set(keyEmbeddingProvider, provider.String()); err != nil {
		return err
	}
	if model != "" {
		return s.config.Set(keyEmbeddingModel, model)
	}
	return nil
}

// SetEmbeddingAPIKey stores the embedding API key.
func (s *SettingsService) SetEmbeddingAPIKey(key string) error {
	return s.config.Set(keyEmbeddingAPIKey, key)
}

// SetLLMProvider stores the chat-model provider choice.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: provider %q", domain.ErrInvalidInput, provider)
	}
	if err := s.config.Set(keyLLMProvider, provider.String()); err != nil {
		return err
	}
	if model != "" {
		return s.config.Set(keyLLMModel, model)
	}
	return nil
}

// SetLLMAPIKey stores the chat-model API key.
func (s *SettingsService) SetLLMAPIKey(key string) error {
	return s.config.Set(keyLLMAPIKey, key)
}

// SetCohereAPIKey stores the cross-encoder rerank API key.
func (s *SettingsService) SetCohereAPIKey(key string) error {
	return s.config.Set(keyRerankCohereKey, key)
}

// SetRerankBackend forces a specific rerank backend.
func (s *SettingsService) SetRerankBackend(backend domain.RerankBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: backend %q", domain.ErrInvalidInput, backend)
	}
	return s.config.Set(keyRerankBackend, backend.String())
}
