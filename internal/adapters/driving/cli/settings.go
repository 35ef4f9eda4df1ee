package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tessera-labs/recall/internal/adapters/driven/ai"
	"github.com/tessera-labs/recall/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure embedding, LLM and reranking providers.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider for semantic search.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the chat-model provider used for LLM reranking.`,
	RunE:  runSettingsLLM,
}

var settingsRerankCmd = &cobra.Command{
	Use:   "rerank",
	Short: "Configure reranking",
	Long: `Configure the rerank backend.

Available backends:
  none    - Skip reranking (fused order is final)
  cohere  - Cohere cross-encoder (requires API key)
  llm     - Score candidates with the configured chat model
  proxy   - Delegate scoring to the app server

Leave the backend unset to auto-select based on available credentials.`,
	RunE: runSettingsRerank,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsRerankCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	embedding := settingsService.Embedding()
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", embedding.Model)
	if embedding.Provider.IsLocal() && embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", embedding.BaseURL)
	}
	if embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskOrUnset(embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(embedding.IsConfigured()))
	cmd.Println()

	llm := settingsService.LLM()
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", llm.Provider.Description())
	cmd.Printf("  Model: %s\n", llm.Model)
	if llm.Provider.IsLocal() && llm.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", llm.BaseURL)
	}
	if llm.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskOrUnset(llm.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(llm.IsConfigured()))
	cmd.Println()

	rerank := settingsService.Rerank()
	cmd.Println("[Rerank]")
	backend := rerank.Backend
	if backend == "" {
		backend = "(auto)"
	}
	cmd.Printf("  Backend: %s\n", backend)
	cmd.Printf("  Cohere API Key: %s\n", maskOrUnset(rerank.CohereAPIKey))
	if rerank.ProxyURL != "" {
		cmd.Printf("  Proxy URL: %s\n", rerank.ProxyURL)
	}
	cmd.Printf("  Threshold: %.2f\n", rerank.Threshold)
	cmd.Println()

	search := settingsService.Search()
	cmd.Println("[Search]")
	cmd.Printf("  Top K: %d\n", search.TopK)
	cmd.Printf("  Min Threshold: %.2f\n", search.MinThreshold)
	cmd.Printf("  Rerank by default: %t\n", search.Rerank)

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	defaults := domain.DefaultEmbeddingModels()
	var providers []domain.AIProvider
	for _, p := range domain.AllAIProviders() {
		// Only providers with an embedding endpoint.
		if _, ok := defaults[p]; ok {
			providers = append(providers, p)
		}
	}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selected := providers[idx-1]

	defaultModel := defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if err := settingsService.SetEmbeddingProvider(selected, model); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey := readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
		if err := settingsService.SetEmbeddingAPIKey(apiKey); err != nil {
			return fmt.Errorf("failed to store API key: %w", err)
		}
	}

	// Ping the provider so a typo surfaces now, not on first index.
	if err := ai.ValidateEmbeddingConfig(settingsService.Embedding()); err != nil {
		cmd.Printf("Warning: provider not reachable: %v\n", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select LLM Provider")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if err := settingsService.SetLLMProvider(selected, model); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey := readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
		if err := settingsService.SetLLMAPIKey(apiKey); err != nil {
			return fmt.Errorf("failed to store API key: %w", err)
		}
	}

	if err := ai.ValidateLLMConfig(settingsService.LLM()); err != nil {
		cmd.Printf("Warning: provider not reachable: %v\n", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

func runSettingsRerank(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Rerank Backend")
	backends := domain.AllRerankBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b)
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(backends), 1)
	selected := backends[idx-1]

	if err := settingsService.SetRerankBackend(selected); err != nil {
		return fmt.Errorf("failed to set rerank backend: %w", err)
	}

	if selected == domain.RerankBackendCohere {
		cmd.Print("Enter Cohere API key: ")
		apiKey := readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for the cohere backend")
		}
		if err := settingsService.SetCohereAPIKey(apiKey); err != nil {
			return fmt.Errorf("failed to store API key: %w", err)
		}
	}

	cmd.Printf("Rerank backend set to: %s\n", selected)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
