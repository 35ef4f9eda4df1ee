package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// SplitConversation chunks a chat transcript. Every emitted chunk is
// prefixed with its turn's role marker before the budget check, and
// turns without textual content (tool calls, empty turns) are skipped.
// Conversation chunks carry no overlap; ordinals run contiguously
// across the whole transcript.
func SplitConversation(parentID string, messages []domain.Message, opts Options) []domain.Chunk {
	opts = opts.normalised()

	var texts []string
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		texts = append(texts, splitMessage(msg.Role.Prefix(), content, opts.MaxTokens)...)
	}

	return buildChunks(parentID, texts)
}

// splitMessage chunks one turn under the prefixed token budget.
func splitMessage(prefix, content string, maxTokens int) []string {
	// The prefix counts against the budget, so the content gets what
	// remains. A pathological budget smaller than the prefix itself
	// falls back to the full budget rather than producing nothing.
	contentBudget := maxTokens - EstimateTokens(prefix)
	if contentBudget <= 0 {
		contentBudget = maxTokens
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, prefix+buf.String())
		buf.Reset()
	}

	for _, sentence := range splitSentences(content) {
		// A single sentence that cannot fit even alone is wrapped at
		// the character budget: long monolithic runs must still be
		// split, but nothing is ever dropped.
		if EstimateTokens(sentence) > contentBudget {
			flush()
			for _, piece := range wrapFixed(sentence, contentBudget*charsPerToken) {
				chunks = append(chunks, prefix+piece)
			}
			continue
		}

		candidate := sentence
		if buf.Len() > 0 {
			candidate = buf.String() + " " + sentence
		}
		if buf.Len() > 0 && EstimateTokens(candidate) > contentBudget {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sentence)
	}
	flush()

	return chunks
}

// wrapFixed splits text into consecutive pieces of at most maxChars
// bytes, never cutting inside a multi-byte rune.
func wrapFixed(text string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{text}
	}

	var pieces []string
	for len(text) > maxChars {
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			// A budget smaller than a single rune still has to make
			// progress; emit the whole rune.
			_, cut = utf8.DecodeRuneInString(text)
		}
		pieces = append(pieces, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}
