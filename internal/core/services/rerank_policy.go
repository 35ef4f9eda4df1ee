package services

import "github.com/tessera-labs/recall/internal/core/domain"

// SelectRerankBackend chooses the rerank backend from what is
// configured. Precedence, absent an explicit choice: the purpose-built
// cross-encoder service, then the server-mediated chat-model scorer
// (server-held credentials), then a client-held chat-model credential,
// then pass-through. The policy exists so a misconfigured backend can
// never reach a scoring call; it degrades to pass-through instead.
func SelectRerankBackend(settings domain.RerankSettings, llmConfigured bool) domain.RerankBackend {
	if settings.Backend != "" && settings.Backend.IsValid() {
		return settings.Backend
	}

	switch {
	case settings.CohereAPIKey != "":
		return domain.RerankBackendCohere
	case settings.ProxyURL != "":
		return domain.RerankBackendProxy
	case llmConfigured:
		return domain.RerankBackendLLM
	default:
		return domain.RerankBackendNone
	}
}
