package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store holds one workspace's context-item embeddings in its own SQLite
// file under <base>/vectors/. Workspaces never share a store, so deleting
// a workspace's semantic index is a single file removal.
type Store struct {
	mu       sync.RWMutex
	db       *sql.DB
	embedder Embedder
	path     string
}

// Match is one similarity search result.
type Match struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

var workspaceSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeWorkspace maps a workspace path onto a filesystem-safe store
// name. Distinct workspaces can collide after sanitization; a short hash
// suffix keeps them apart.
func SanitizeWorkspace(workspace string) string {
	trimmed := strings.Trim(workspaceSanitizer.ReplaceAllString(workspace, "-"), "-")
	if len(trimmed) > 64 {
		trimmed = trimmed[len(trimmed)-64:]
	}
	if trimmed == "" {
		trimmed = "default"
	}
	if workspace == "" {
		return trimmed
	}
	h := fnv.New32a()
	h.Write([]byte(workspace))
	return fmt.Sprintf("%s-%08x", trimmed, h.Sum32())
}

// Open opens (creating if needed) the vector store for a workspace.
func Open(baseDir, workspace string, embedder Embedder) (*Store, error) {
	vectorsDir := filepath.Join(baseDir, "vectors")
	if err := os.MkdirAll(vectorsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create vectors directory: %w", err)
	}

	path := filepath.Join(vectorsDir, SanitizeWorkspace(workspace)+".db")
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
	  id         TEXT PRIMARY KEY,
	  content    TEXT NOT NULL,
	  vector     TEXT NOT NULL,
	  updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embeddings table: %w", err)
	}

	return &Store{db: db, embedder: embedder, path: path}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the store's file location.
func (s *Store) Path() string {
	return s.path
}

// Upsert embeds content and stores it under id, replacing any previous
// vector for the same id.
func (s *Store) Upsert(ctx context.Context, id, content string) error {
	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to embed content: %w", err)
	}

	vecJSON, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to serialize vector: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO embeddings (id, content, vector, updated_at) VALUES (?, ?, ?, ?)",
		id, content, string(vecJSON), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// Delete removes the vector stored under id, if any.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM embeddings WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}

// Count returns the number of stored vectors.
func (s *Store) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return count, nil
}

// Query embeds text and returns the limit most similar stored entries,
// best first. Entries whose stored vector can no longer be compared (for
// example after an embedder change) are skipped, not fatal.
func (s *Store) Query(ctx context.Context, text string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 10
	}

	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, content, vector FROM embeddings")
	if err != nil {
		return nil, fmt.Errorf("failed to read embeddings: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m       Match
			vecJSON string
		)
		if err := rows.Scan(&m.ID, &m.Content, &vecJSON); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}

		var vec []float32
		if err := json.Unmarshal([]byte(vecJSON), &vec); err != nil {
			continue
		}
		sim, err := CosineSimilarity(queryVec, vec)
		if err != nil {
			continue
		}
		m.Similarity = sim
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// Similarity returns the similarity of text to the single entry stored
// under id, or 0 when the entry does not exist.
func (s *Store) Similarity(ctx context.Context, id, text string) (float64, error) {
	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var vecJSON string
	err = s.db.QueryRow("SELECT vector FROM embeddings WHERE id = ?", id).Scan(&vecJSON)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read embedding: %w", err)
	}

	var vec []float32
	if err := json.Unmarshal([]byte(vecJSON), &vec); err != nil {
		return 0, nil
	}
	sim, err := CosineSimilarity(queryVec, vec)
	if err != nil {
		return 0, nil
	}
	return sim, nil
}
