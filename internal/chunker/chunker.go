package chunker

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// Default chunking parameters.
const (
	// DefaultMaxTokens is the default per-chunk token budget.
	DefaultMaxTokens = 500

	// defaultOverlapPercent is the share of a chunk's budget carried
	// into the next chunk when no explicit overlap is set.
	defaultOverlapPercent = 15
)

// Options configures a chunking pass.
type Options struct {
	// MaxTokens is the per-chunk token budget (default 500).
	MaxTokens int

	// OverlapTokens is how many trailing tokens of one chunk are
	// repeated at the start of the next. Defaults to 15% of
	// MaxTokens. Only document chunking applies overlap.
	OverlapTokens int

	// MinTokens merges a trailing chunk smaller than this into its
	// predecessor. Zero disables merging.
	MinTokens int
}

func (o Options) normalised() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.OverlapTokens <= 0 {
		o.OverlapTokens = o.MaxTokens * defaultOverlapPercent / 100
	}
	if o.OverlapTokens >= o.MaxTokens {
		o.OverlapTokens = o.MaxTokens / 4
	}
	return o
}

// unit is one structural piece of source text plus the separator used
// when joining it to the preceding unit inside a chunk.
type unit struct {
	text string
	sep  string
}

// Split chunks document text along structural boundaries.
// Chunks are renumbered 0..n-1 and carry derived IDs and content
// hashes; embeddings are left empty for the indexer to fill.
func Split(parentID, text string, opts Options) []domain.Chunk {
	opts = opts.normalised()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	units := structuralUnits(text, opts.MaxTokens)

	var texts []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		texts = append(texts, buf.String())
		buf.Reset()
	}

	for _, u := range units {
		candidate := u.text
		if buf.Len() > 0 {
			candidate = buf.String() + u.sep + u.text
		}

		if buf.Len() > 0 && EstimateTokens(candidate) > opts.MaxTokens {
			emitted := buf.String()
			flush()
			// Seed the next chunk with the trailing overlap of the
			// one just emitted to preserve context across the
			// boundary.
			if tail := overlapTail(emitted, opts.OverlapTokens); tail != "" {
				buf.WriteString(tail)
				buf.WriteString(u.sep)
			}
		}

		buf.WriteString(u.text)
	}
	flush()

	// A trailing fragment below the minimum folds into its
	// predecessor rather than standing alone.
	if opts.MinTokens > 0 && len(texts) > 1 {
		last := texts[len(texts)-1]
		if EstimateTokens(last) < opts.MinTokens {
			texts[len(texts)-2] += "\n\n" + last
			texts = texts[:len(texts)-1]
		}
	}

	return buildChunks(parentID, texts)
}

// structuralUnits splits text into heading/paragraph blocks, descending
// to sentences only for blocks that still exceed the budget. A single
// sentence over budget is kept whole; splitting below a sentence would
// just shred prose.
func structuralUnits(text string, maxTokens int) []unit {
	var units []unit

	for _, block := range splitBlocks(text) {
		if EstimateTokens(block) <= maxTokens {
			units = append(units, unit{text: block, sep: "\n\n"})
			continue
		}

		sentences := splitSentences(block)
		for i, s := range sentences {
			sep := " "
			if i == 0 {
				sep = "\n\n"
			}
			units = append(units, unit{text: s, sep: sep})
		}
	}

	return units
}

// splitBlocks splits text into paragraphs, with markdown headings
// always starting a fresh block.
func splitBlocks(text string) []string {
	var blocks []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		block := strings.TrimSpace(strings.Join(current, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#"):
			flush()
			current = append(current, line)
		default:
			current = append(current, line)
		}
	}
	flush()

	return blocks
}

// splitSentences splits a block on common sentence terminators.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// overlapTail returns the trailing overlapTokens worth of text, cut
// forward to a word boundary so chunks never start mid-word.
func overlapTail(text string, overlapTokens int) string {
	if overlapTokens <= 0 {
		return ""
	}

	overlapChars := overlapTokens * charsPerToken
	if overlapChars >= len(text) {
		return ""
	}

	// Advance the cut to the next rune boundary so the tail never
	// starts with a partial multi-byte rune.
	cut := len(text) - overlapChars
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	tail := text[cut:]
	if idx := strings.IndexAny(tail, " \n"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return strings.TrimSpace(tail)
}

// buildChunks assembles domain chunks with contiguous zero-based
// ordinals, derived IDs and content hashes.
func buildChunks(parentID string, texts []string) []domain.Chunk {
	if len(texts) == 0 {
		return nil
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.Chunk{
			ID:          domain.ChunkID(parentID, i),
			ParentID:    parentID,
			Ordinal:     i,
			Text:        t,
			ContentHash: domain.HashContent(t),
			UpdatedAt:   now,
		}
	}
	return chunks
}
