package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tessera-labs/recall/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/tessera-labs/recall/internal/core/domain"
	"github.com/tessera-labs/recall/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// chunk and record store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.recall/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

const chunkColumns = "id, parent_id, ordinal, text, content_hash, embedding, updated_at"

// GetAll returns every chunk in the corpus.
func (s *chunkStore) GetAll(ctx context.Context, corpus domain.Corpus) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks WHERE corpus = ?
		ORDER BY parent_id, ordinal
	`, string(corpus))
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// GetAllByParent returns the chunks of one parent, ordered by ordinal.
func (s *chunkStore) GetAllByParent(
	ctx context.Context, corpus domain.Corpus, parentID string,
) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks WHERE corpus = ? AND parent_id = ?
		ORDER BY ordinal
	`, string(corpus), parentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks by parent: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// GetByContentHash returns the chunks whose text matches the hash.
func (s *chunkStore) GetByContentHash(
	ctx context.Context, corpus domain.Corpus, hash string,
) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks WHERE corpus = ? AND content_hash = ?
	`, string(corpus), hash)
	if err != nil {
		return nil, fmt.Errorf("querying chunks by hash: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// Put stores or replaces a chunk, keyed by ID.
func (s *chunkStore) Put(ctx context.Context, corpus domain.Corpus, chunk domain.Chunk) error {
	if chunk.UpdatedAt.IsZero() {
		chunk.UpdatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chunks (id, corpus, parent_id, ordinal, text, content_hash, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(corpus, id) DO UPDATE SET
			parent_id = excluded.parent_id,
			ordinal = excluded.ordinal,
			text = excluded.text,
			content_hash = excluded.content_hash,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, chunk.ID, string(corpus), chunk.ParentID, chunk.Ordinal, chunk.Text,
		chunk.ContentHash, float32SliceToBytes(chunk.Embedding), chunk.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// PutBatch stores multiple chunks atomically.
func (s *chunkStore) PutBatch(ctx context.Context, corpus domain.Corpus, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, corpus, parent_id, ordinal, text, content_hash, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(corpus, id) DO UPDATE SET
			parent_id = excluded.parent_id,
			ordinal = excluded.ordinal,
			text = excluded.text,
			content_hash = excluded.content_hash,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		if chunk.UpdatedAt.IsZero() {
			chunk.UpdatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, string(corpus), chunk.ParentID,
			chunk.Ordinal, chunk.Text, chunk.ContentHash,
			float32SliceToBytes(chunk.Embedding), chunk.UpdatedAt); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteAllByParent removes every chunk of a parent.
func (s *chunkStore) DeleteAllByParent(ctx context.Context, corpus domain.Corpus, parentID string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE corpus = ? AND parent_id = ?", string(corpus), parentID)
	if err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Save stores or updates a record.
func (s *recordStore) Save(ctx context.Context, record *domain.IndexRecord) error {
	if record.ID == "" || !record.Corpus.IsValid() {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_records (id, corpus, title, size_bytes, chunk_count, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(corpus, id) DO UPDATE SET
			title = excluded.title,
			size_bytes = excluded.size_bytes,
			chunk_count = excluded.chunk_count,
			status = excluded.status,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, record.ID, string(record.Corpus), record.Title, record.SizeBytes,
		record.ChunkCount, string(record.Status), record.Error,
		record.CreatedAt, record.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *recordStore) Get(ctx context.Context, corpus domain.Corpus, id string) (*domain.IndexRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, corpus, title, size_bytes, chunk_count, status, error, created_at, updated_at
		FROM index_records WHERE corpus = ? AND id = ?
	`, string(corpus), id)

	var record domain.IndexRecord
	var corpusStr, statusStr string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&record.ID, &corpusStr, &record.Title, &record.SizeBytes,
		&record.ChunkCount, &statusStr, &record.Error, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	record.Corpus = domain.Corpus(corpusStr)
	record.Status = domain.IndexStatus(statusStr)
	if createdAt.Valid {
		record.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		record.UpdatedAt = updatedAt.Time
	}

	return &record, nil
}

// List returns all records in a corpus.
func (s *recordStore) List(ctx context.Context, corpus domain.Corpus) ([]domain.IndexRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, corpus, title, size_bytes, chunk_count, status, error, created_at, updated_at
		FROM index_records WHERE corpus = ?
		ORDER BY created_at
	`, string(corpus))
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.IndexRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.IndexRecord
		var corpusStr, statusStr string
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&record.ID, &corpusStr, &record.Title, &record.SizeBytes,
			&record.ChunkCount, &statusStr, &record.Error, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		record.Corpus = domain.Corpus(corpusStr)
		record.Status = domain.IndexStatus(statusStr)
		if createdAt.Valid {
			record.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			record.UpdatedAt = updatedAt.Time
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return records, nil
}

// Delete removes a record.
func (s *recordStore) Delete(ctx context.Context, corpus domain.Corpus, id string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM index_records WHERE corpus = ? AND id = ?", string(corpus), id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanChunks scans multiple chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		var updatedAt sql.NullTime
		if err := rows.Scan(&chunk.ID, &chunk.ParentID, &chunk.Ordinal, &chunk.Text,
			&chunk.ContentHash, &embeddingBlob, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		if updatedAt.Valid {
			chunk.UpdatedAt = updatedAt.Time
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}
