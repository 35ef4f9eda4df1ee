package services

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/tessera-labs/recall/internal/core/domain"
)

// BM25 free parameters. Standard values; not worth configuring.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// stopwords is deliberately small: aggressive stopword removal hurts
// short queries more than it helps long ones.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "for": true, "from": true,
	"in": true, "is": true, "it": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "was": true, "with": true,
}

// LexicalHit is one chunk scored by term overlap.
type LexicalHit struct {
	// Chunk is the scored chunk.
	Chunk domain.Chunk

	// Score is the BM25 relevance, always > 0.
	Score float64

	// MatchedTerms are the query tokens found verbatim in the chunk.
	MatchedTerms []string
}

// LexicalScorer computes BM25 term-overlap relevance between a query
// and a chunk set. It scores by full scan; the corpora are small
// enough that an inverted index would not pay for itself.
type LexicalScorer struct{}

// NewLexicalScorer creates a lexical scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// Score ranks chunks against the query. Only chunks with a positive
// score are returned, sorted descending; ties keep input order.
func (s *LexicalScorer) Score(query string, chunks []domain.Chunk) []LexicalHit {
	terms := queryTerms(query)
	if len(terms) == 0 || len(chunks) == 0 {
		return nil
	}

	// Tokenise every chunk once; collect document frequencies and the
	// average document length for BM25 normalisation.
	docTokens := make([][]string, len(chunks))
	docFreq := make(map[string]int, len(terms))
	var totalLen int

	for i, chunk := range chunks {
		tokens := Tokenize(chunk.Text)
		docTokens[i] = tokens
		totalLen += len(tokens)

		seen := make(map[string]bool, len(terms))
		for _, tok := range tokens {
			seen[tok] = true
		}
		for _, term := range terms {
			if seen[term] {
				docFreq[term]++
			}
		}
	}

	avgLen := float64(totalLen) / float64(len(chunks))
	if avgLen == 0 {
		return nil
	}

	n := float64(len(chunks))
	idf := make(map[string]float64, len(terms))
	for _, term := range terms {
		df := float64(docFreq[term])
		idf[term] = math.Log(1 + (n-df+0.5)/(df+0.5))
	}

	hits := make([]LexicalHit, 0, len(chunks))
	for i, chunk := range chunks {
		tokens := docTokens[i]
		if len(tokens) == 0 {
			continue
		}

		tf := make(map[string]int, len(terms))
		for _, tok := range tokens {
			tf[tok]++
		}

		var score float64
		var matched []string
		dl := float64(len(tokens))

		for _, term := range terms {
			freq := float64(tf[term])
			if freq == 0 {
				continue
			}
			matched = append(matched, term)
			norm := freq * (bm25K1 + 1) / (freq + bm25K1*(1-bm25B+bm25B*dl/avgLen))
			score += idf[term] * norm
		}

		if score > 0 {
			hits = append(hits, LexicalHit{
				Chunk:        chunk,
				Score:        score,
				MatchedTerms: matched,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	return hits
}

// ClassifyQuery labels the query for downstream transparency. The
// classification is advisory metadata only; it never changes how
// scoring behaves.
func (s *LexicalScorer) ClassifyQuery(query string) domain.QueryType {
	query = strings.TrimSpace(query)

	quoted := strings.Count(query, `"`) >= 2
	conceptual := looksConceptual(query)

	switch {
	case quoted && conceptual:
		return domain.QueryTypeMixed
	case quoted:
		return domain.QueryTypeExact
	case conceptual:
		return domain.QueryTypeConceptual
	default:
		return domain.QueryTypeMixed
	}
}

var questionWords = map[string]bool{
	"how": true, "what": true, "why": true, "when": true,
	"where": true, "who": true, "which": true, "explain": true,
	"describe": true, "compare": true,
}

func looksConceptual(query string) bool {
	if strings.HasSuffix(query, "?") {
		return true
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return false
	}
	return questionWords[tokens[0]] || len(tokens) >= 6
}

// Tokenize lowercases text and splits on non-alphanumeric runes.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// queryTerms returns the unique, stopword-filtered query tokens in
// first-seen order. If filtering would remove everything the raw
// tokens are kept, so pure-stopword queries still match.
func queryTerms(query string) []string {
	tokens := Tokenize(query)

	var terms []string
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}

	if len(terms) == 0 {
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				terms = append(terms, tok)
			}
		}
	}

	return terms
}
