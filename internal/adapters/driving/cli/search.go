package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessera-labs/recall/internal/core/domain"
)

var (
	searchCorpus    string
	searchLimit     int
	searchThreshold float64
	searchRerank    bool
	searchParent    string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an indexed corpus",
	Long: `Performs hybrid search over one corpus.
Combines keyword (BM25) and semantic (vector) retrieval; results can
optionally pass through a reranking stage.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCorpus, "corpus", "c", "knowledge",
		"corpus to search (knowledge, documents, chats)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum semantic score")
	searchCmd.Flags().BoolVar(&searchRerank, "rerank", false, "enable reranking")
	searchCmd.Flags().StringVar(&searchParent, "parent", "", "restrict search to one source ID")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	corpus := domain.Corpus(searchCorpus)
	if !corpus.IsValid() {
		return fmt.Errorf("%w: corpus %q", domain.ErrInvalidCorpus, searchCorpus)
	}

	service := searchServiceFor(corpus)
	if service == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		TopK:         searchLimit,
		MinThreshold: searchThreshold,
		Rerank:       searchRerank,
		ParentID:     searchParent,
	}

	// Stored search settings fill in whatever the flags left unset.
	if settingsService != nil {
		defaults := settingsService.Search()
		if opts.TopK == 0 {
			opts.TopK = defaults.TopK
		}
		if opts.MinThreshold == 0 {
			opts.MinThreshold = defaults.MinThreshold
		}
		if !cmd.Flags().Changed("rerank") {
			opts.Rerank = defaults.Rerank
		}
	}

	results, err := service.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Title
		if title == "" {
			title = results[i].SourceID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].ChunkText))
		if len(results[i].MatchedTerms) > 0 {
			cmd.Printf("      Matched: %s\n", strings.Join(results[i].MatchedTerms, ", "))
		}
		cmd.Println()
	}

	return nil
}

// snippet trims a chunk down to one display line.
func snippet(text string) string {
	const maxLen = 120

	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
