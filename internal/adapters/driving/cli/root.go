// Package cli implements the recall command-line interface.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
	"github.com/tessera-labs/recall/internal/core/services"
	"github.com/tessera-labs/recall/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Services wired in by main before Execute runs.
var (
	searchServices  map[domain.Corpus]driving.SearchService
	indexService    driving.IndexService
	settingsService *services.SettingsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Local hybrid search over notes, documents and chat history",
	Long: `Recall indexes notes, documents and chat transcripts locally and
searches them with combined keyword and semantic retrieval.

All data stays on this machine. Embedding and reranking providers are
optional; without them search degrades to keyword-only.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the application services. Must be called before
// Execute.
func SetServices(
	search map[domain.Corpus]driving.SearchService,
	index driving.IndexService,
	settings *services.SettingsService,
) {
	searchServices = search
	indexService = index
	settingsService = settings
}

// Execute runs the root command.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// searchServiceFor returns the search service for a corpus, or nil.
func searchServiceFor(corpus domain.Corpus) driving.SearchService {
	if searchServices == nil {
		return nil
	}
	return searchServices[corpus]
}
