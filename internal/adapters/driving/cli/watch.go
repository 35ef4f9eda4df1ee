package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessera-labs/recall/internal/adapters/driven/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a notes directory and keep it indexed",
	Long: `Watch a directory of markdown or text notes and re-index files
into the knowledge corpus as they change. Existing files are indexed
on startup. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"quiet period before a changed file is re-indexed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	watcher, err := watch.New(indexService, args[0], watchDebounce)
	if err != nil {
		return err
	}

	err = watcher.Run(cmd.Context())
	if errors.Is(err, cmd.Context().Err()) {
		return nil
	}
	return err
}
