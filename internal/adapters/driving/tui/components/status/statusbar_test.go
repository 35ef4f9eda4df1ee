package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/recall/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, domain.CorpusKnowledge, bar.Corpus())
	assert.Equal(t, 0, bar.ResultCount())
}

func TestBarStates(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		count    int
		contains string
	}{
		{name: "ready", state: StateReady, contains: "Ready"},
		{name: "searching", state: StateSearching, contains: "Searching..."},
		{name: "error with message", state: StateError, message: "boom", contains: "Error: boom"},
		{name: "error without message", state: StateError, contains: "Error"},
		{name: "results", state: StateResults, count: 7, contains: "7 results"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetResultCount(tt.count)

			assert.Contains(t, bar.View(), tt.contains)
		})
	}
}

func TestBarCorpusBadge(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	bar.SetCorpus(domain.CorpusChats)

	assert.Equal(t, domain.CorpusChats, bar.Corpus())
	assert.Contains(t, bar.View(), "[chats]")
}

func TestBarClear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(5)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.ResultCount())
}

func TestBarWidth(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetWidth(100)

	assert.Equal(t, 100, bar.Width())
}
