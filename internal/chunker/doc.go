// Package chunker splits source text into overlapping, token-budgeted
// chunks along structural boundaries.
//
// Token counts are estimated as ceil(len/4); no tokenizer dependency.
// Splitting descends a structural hierarchy - headings, paragraphs,
// sentences - and only moves to a finer granularity when a unit still
// exceeds the budget. Content is never truncated: an atomic unit that
// cannot be subdivided is emitted whole even when over budget.
package chunker
