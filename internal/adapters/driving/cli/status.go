package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessera-labs/recall/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [corpus]",
	Short: "Show index records",
	Long: `List the records of one corpus, or of all corpora when no
corpus is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	corpora := domain.AllCorpora()
	if len(args) == 1 {
		corpus := domain.Corpus(args[0])
		if !corpus.IsValid() {
			return fmt.Errorf("%w: corpus %q", domain.ErrInvalidCorpus, args[0])
		}
		corpora = []domain.Corpus{corpus}
	}

	for _, corpus := range corpora {
		records, err := indexService.List(cmd.Context(), corpus)
		if err != nil {
			return fmt.Errorf("listing %s: %w", corpus, err)
		}

		cmd.Printf("[%s] %d record(s)\n", corpus, len(records))
		for _, record := range records {
			line := fmt.Sprintf("  %s  %-10s  %d chunks  %s",
				record.ID, record.Status, record.ChunkCount, record.Title)
			if record.Status == domain.IndexStatusError && record.Error != "" {
				line += "  (" + record.Error + ")"
			}
			cmd.Println(line)
		}
		cmd.Println()
	}

	return nil
}
