// Package services implements the core retrieval pipeline: lexical and
// semantic scoring, rank fusion, reranking policy, the per-corpus
// search orchestrator and the indexing service.
package services
