package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/ingest"
)

var (
	indexCorpus string
	indexTitle  string
	indexID     string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the local index",
	Long:  `Index files and chat transcripts, inspect records, and remove them.`,
}

var indexFileCmd = &cobra.Command{
	Use:   "file [path]",
	Short: "Index a text or markdown file",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexFile,
}

var indexChatCmd = &cobra.Command{
	Use:   "chat [path]",
	Short: "Index a chat transcript",
	Long: `Index a chat transcript into the chats corpus.

The file must be a JSON array of turns:
  [{"role": "user", "content": "..."}, {"role": "assistant", "content": "..."}]`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexChat,
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete [corpus] [id]",
	Short: "Remove a record and its chunks",
	Args:  cobra.ExactArgs(2),
	RunE:  runIndexDelete,
}

func init() {
	indexFileCmd.Flags().StringVarP(&indexCorpus, "corpus", "c", "documents",
		"target corpus (knowledge, documents)")
	indexFileCmd.Flags().StringVar(&indexTitle, "title", "", "record title (defaults to file name)")
	indexFileCmd.Flags().StringVar(&indexID, "id", "", "record ID (defaults to a new UUID)")
	indexChatCmd.Flags().StringVar(&indexTitle, "title", "", "record title (defaults to file name)")
	indexChatCmd.Flags().StringVar(&indexID, "id", "", "record ID (defaults to a new UUID)")

	indexCmd.AddCommand(indexFileCmd)
	indexCmd.AddCommand(indexChatCmd)
	indexCmd.AddCommand(indexDeleteCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexFile(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	corpus := domain.Corpus(indexCorpus)
	if corpus != domain.CorpusKnowledge && corpus != domain.CorpusDocuments {
		return fmt.Errorf("%w: corpus %q", domain.ErrInvalidCorpus, indexCorpus)
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(content)
	title := indexTitle
	if ingest.IsMarkdown(path) {
		if title == "" {
			title = ingest.TitleFromMarkdown(text, path)
		}
		text = ingest.StripMarkdown(text)
	}

	record := &domain.IndexRecord{
		ID:     recordIDOrNew(indexID),
		Corpus: corpus,
		Title:  titleOrBase(title, path),
	}

	progress := make(chan domain.IndexProgress, 16)
	done := reportProgress(cmd, progress)

	err = indexService.IndexText(cmd.Context(), record, text, progress)
	<-done
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %s into %s (%d chunks, id %s)\n",
		path, corpus, record.ChunkCount, record.ID)
	return nil
}

// transcriptTurn is the on-disk transcript format.
type transcriptTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func runIndexChat(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var turns []transcriptTurn
	if err := json.Unmarshal(content, &turns); err != nil {
		return fmt.Errorf("parsing transcript: %w", err)
	}

	messages := make([]domain.Message, len(turns))
	for i, turn := range turns {
		messages[i] = domain.Message{
			Role:    domain.MessageRole(strings.ToLower(turn.Role)),
			Content: turn.Content,
		}
	}

	record := &domain.IndexRecord{
		ID:     recordIDOrNew(indexID),
		Corpus: domain.CorpusChats,
		Title:  titleOrBase(indexTitle, path),
	}

	progress := make(chan domain.IndexProgress, 16)
	done := reportProgress(cmd, progress)

	err = indexService.IndexConversation(cmd.Context(), record, messages, progress)
	<-done
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %s into chats (%d chunks, id %s)\n",
		path, record.ChunkCount, record.ID)
	return nil
}

func runIndexDelete(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	corpus := domain.Corpus(args[0])
	if !corpus.IsValid() {
		return fmt.Errorf("%w: corpus %q", domain.ErrInvalidCorpus, args[0])
	}

	if err := indexService.Delete(cmd.Context(), corpus, args[1]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted %s from %s\n", args[1], corpus)
	return nil
}

// reportProgress drains a progress channel to the command output.
// The returned channel closes when the progress stream ends.
func reportProgress(cmd *cobra.Command, progress <-chan domain.IndexProgress) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			if p.Message != "" && verbose {
				cmd.Printf("  [%d/%d] %s\n", p.Current, p.Total, p.Message)
			}
		}
	}()
	return done
}

func recordIDOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func titleOrBase(title, path string) string {
	if title != "" {
		return title
	}
	return filepath.Base(path)
}
