// Package watch re-indexes a notes directory as its files change.
// A filesystem watcher feeds a debounce loop so a burst of editor
// writes results in a single re-index per file.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
	"github.com/tessera-labs/recall/internal/ingest"
	"github.com/tessera-labs/recall/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is
// re-indexed.
const DefaultDebounce = 2 * time.Second

// watchedExtensions lists file types treated as notes.
var watchedExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

// Watcher mirrors a directory of note files into the knowledge corpus.
type Watcher struct {
	indexer  driving.IndexService
	dir      string
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher over the given directory. The directory must
// exist.
func New(indexer driving.IndexService, dir string, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, domain.ErrInvalidInput
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		indexer:  indexer,
		dir:      dir,
		debounce: debounce,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Run watches until the context is cancelled. Existing files are
// indexed once on startup so the corpus matches the directory.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}

	if err := w.indexExisting(ctx); err != nil {
		return err
	}

	logger.Info("Watching %s for note changes", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// handleEvent routes one filesystem event.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		w.cancelFile(event.Name)
		if err := w.indexer.Delete(ctx, domain.CorpusKnowledge, recordID(event.Name)); err != nil {
			logger.Warn("Failed to remove %s from index: %v", event.Name, err)
		}

	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		w.scheduleIndex(ctx, event.Name)
	}
}

// scheduleIndex (re)starts the debounce timer for a file.
func (w *Watcher) scheduleIndex(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if err := w.indexFile(ctx, path); err != nil {
			logger.Warn("Failed to index %s: %v", path, err)
		}
	})
}

// indexExisting indexes every watched file already in the directory.
func (w *Watcher) indexExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !watchedExtensions[strings.ToLower(filepath.Ext(path))] {
			continue
		}
		if err := w.indexFile(ctx, path); err != nil {
			logger.Warn("Failed to index %s: %v", path, err)
		}
	}
	return nil
}

// indexFile reads one note file and indexes it into the knowledge
// corpus.
func (w *Watcher) indexFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	text := string(content)
	title := ingest.TitleFromFilename(path)
	if ingest.IsMarkdown(path) {
		title = ingest.TitleFromMarkdown(text, path)
		text = ingest.StripMarkdown(text)
	}

	record := &domain.IndexRecord{
		ID:     recordID(path),
		Corpus: domain.CorpusKnowledge,
		Title:  title,
	}
	return w.indexer.IndexText(ctx, record, text, nil)
}

// cancelFile stops any pending timer for one path.
func (w *Watcher) cancelFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

// cancelPending stops all outstanding debounce timers.
func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// recordID derives a stable record ID from a file path. The base name
// keeps IDs readable; notes directories are flat.
func recordID(path string) string {
	return "note:" + filepath.Base(path)
}
