package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driving"
)

func testPorts() *Ports {
	search := make(map[domain.Corpus]driving.SearchService)
	for _, corpus := range domain.AllCorpora() {
		search[corpus] = &stubSearchService{corpus: corpus}
	}
	return &Ports{Search: search}
}

func TestNewApp(t *testing.T) {
	t.Run("creates app with valid ports", func(t *testing.T) {
		app, err := NewApp(testPorts())

		require.NoError(t, err)
		require.NotNil(t, app)
		assert.False(t, app.Ready())
	})

	t.Run("rejects missing search services", func(t *testing.T) {
		app, err := NewApp(&Ports{})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingSearchService)
		assert.Nil(t, app)
	})
}

func TestAppWithContext(t *testing.T) {
	app, err := NewApp(testPorts())
	require.NoError(t, err)

	ctx := context.Background()
	result := app.WithContext(ctx)

	assert.Same(t, app, result)
}

func TestAppWindowSize(t *testing.T) {
	app, err := NewApp(testPorts())
	require.NoError(t, err)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Nil(t, cmd)
	updated, ok := model.(*App)
	require.True(t, ok)
	assert.True(t, updated.Ready())
}

func TestAppQuit(t *testing.T) {
	t.Run("ctrl+c quits", func(t *testing.T) {
		app, err := NewApp(testPorts())
		require.NoError(t, err)

		_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	})

	t.Run("quit message quits", func(t *testing.T) {
		app, err := NewApp(testPorts())
		require.NoError(t, err)

		_, cmd := app.Update(messages.Quit{})

		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	})
}

func TestAppCorpusCycling(t *testing.T) {
	app, err := NewApp(testPorts())
	require.NoError(t, err)
	app.SetDimensions(100, 40)

	assert.Equal(t, domain.CorpusKnowledge, app.Corpus())

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(*App)
	assert.Equal(t, domain.CorpusDocuments, app.Corpus())

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(*App)
	assert.Equal(t, domain.CorpusChats, app.Corpus())

	// Wraps back to the first corpus
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(*App)
	assert.Equal(t, domain.CorpusKnowledge, app.Corpus())
}

func TestAppSearchCompleted(t *testing.T) {
	t.Run("stores results", func(t *testing.T) {
		app, err := NewApp(testPorts())
		require.NoError(t, err)
		app.SetDimensions(100, 40)

		results := []domain.SearchResult{
			{SourceID: "doc-1", Title: "First", ChunkText: "alpha", Score: 0.91},
			{SourceID: "doc-2", Title: "Second", ChunkText: "beta", Score: 0.55},
		}

		model, _ := app.Update(messages.SearchCompleted{
			Corpus:  domain.CorpusKnowledge,
			Results: results,
		})
		app = model.(*App)

		assert.Len(t, app.Results(), 2)
		assert.Equal(t, 0, app.SelectedIndex())
		assert.NoError(t, app.Err())
	})

	t.Run("stores error", func(t *testing.T) {
		app, err := NewApp(testPorts())
		require.NoError(t, err)
		app.SetDimensions(100, 40)

		searchErr := errors.New("backend unavailable")
		model, _ := app.Update(messages.SearchCompleted{
			Corpus: domain.CorpusKnowledge,
			Err:    searchErr,
		})
		app = model.(*App)

		assert.ErrorIs(t, app.Err(), searchErr)
		assert.Empty(t, app.Results())
	})
}

func TestAppView(t *testing.T) {
	t.Run("shows initialising before ready", func(t *testing.T) {
		app, err := NewApp(testPorts())
		require.NoError(t, err)

		assert.Equal(t, "Initialising...", app.View())
	})

	t.Run("renders search view when ready", func(t *testing.T) {
		app, err := NewApp(testPorts())
		require.NoError(t, err)
		app.SetDimensions(100, 40)

		view := app.View()

		assert.Contains(t, view, "Recall")
		assert.Contains(t, view, "knowledge")
	})
}
