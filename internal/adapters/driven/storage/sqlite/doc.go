// Package sqlite provides persistent storage for chunks and index
// records using a single SQLite database file.
//
// Embeddings are stored as little-endian float32 blobs alongside the
// chunk text, so a corpus loads in one scan without a separate vector
// store. Schema changes ship as embedded SQL migrations and apply on
// open.
package sqlite
