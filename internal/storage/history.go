// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists Q&A sessions for codecraft.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/codecraft-tui/internal/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DefaultMaxSessions is the retention limit applied by Save.
const DefaultMaxSessions = 500

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session ID or index matches nothing.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &StoreError{Message: "session not found"}

// ErrAmbiguousID is returned when an ID prefix matches more than one session.
var ErrAmbiguousID = &StoreError{Message: "session id prefix is ambiguous"}

// StoreError represents a history-store error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// TYPES
// =============================================================================

// SessionMeta contains metadata for listing sessions.
type SessionMeta struct {
	ID           string    `json:"id"`
	Project      string    `json:"project"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	ErrorCount   int       `json:"error_count"`
}

// ShortID returns the first 8 characters of the ID.
func (m SessionMeta) ShortID() string {
	if len(m.ID) > 8 {
		return m.ID[:8]
	}
	return m.ID
}

// Store handles session persistence.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex

	// MaxSessions limits stored sessions (0 = unlimited)
	MaxSessions int
}

// =============================================================================
// OPEN / CLOSE
// =============================================================================

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path cannot be empty")
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path, MaxSessions: DefaultMaxSessions}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	_, err := s.db.Exec(InitMetadata)
	return err
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save inserts or replaces a transcript. Empty transcripts are not stored.
// After saving, the oldest sessions beyond MaxSessions are removed.
func (s *Store) Save(ctx context.Context, t *model.Transcript) error {
	if t == nil || t.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, project, title, created_at, updated_at, message_count, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project = excluded.project,
			title = excluded.title,
			updated_at = excluded.updated_at,
			message_count = excluded.message_count,
			error_count = excluded.error_count`,
		t.ID, t.Project, t.Title(), toMillis(t.CreatedAt), toMillis(t.UpdatedAt), t.Len(), t.ErrorCount())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", t.ID); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, session_id, seq, role, content, project, is_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range t.Items {
		if _, err := stmt.ExecContext(ctx, m.ID, t.ID, i, string(m.Role), m.Content, m.Project, lo.Ternary(m.IsError, 1, 0), toMillis(m.CreatedAt)); err != nil {
			return fmt.Errorf("save message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if s.MaxSessions > 0 {
		if _, err := s.pruneLocked(ctx, s.MaxSessions); err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
	}
	return nil
}

// Prune removes the oldest sessions so at most max remain.
// Returns the number of sessions removed.
func (s *Store) Prune(ctx context.Context, max int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(ctx, max)
}

func (s *Store) pruneLocked(ctx context.Context, max int) (int, error) {
	if max < 0 {
		max = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id IN (
			SELECT id FROM sessions ORDER BY updated_at DESC, id DESC LIMIT -1 OFFSET ?
		)`, max)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a session by its full ID.
func (s *Store) Load(ctx context.Context, id string) (*model.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &model.Transcript{}
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, project, created_at, updated_at FROM sessions WHERE id = ?", id).
		Scan(&t.ID, &t.Project, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = fromMillis(updated)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, project, is_error, created_at
		FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t.Items = make([]*model.ChatMessage, 0)
	for rows.Next() {
		m := &model.ChatMessage{}
		var role string
		var isError int
		var at int64
		if err := rows.Scan(&m.ID, &role, &m.Content, &m.Project, &isError, &at); err != nil {
			return nil, err
		}
		m.Role = model.Role(role)
		m.IsError = isError != 0
		m.CreatedAt = fromMillis(at)
		t.Items = append(t.Items, m)
	}
	return t, rows.Err()
}

// Resolve loads a session by 1-based list index ("1" is the most recent),
// full ID or unique ID prefix.
func (s *Store) Resolve(ctx context.Context, ref string) (*model.Transcript, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrSessionNotFound
	}

	// Short numeric refs are list positions; IDs are matched from 8 characters up
	if n, err := strconv.Atoi(ref); err == nil && n > 0 && len(ref) < 8 {
		metas, err := s.List(ctx, n)
		if err != nil {
			return nil, err
		}
		if n > len(metas) {
			return nil, ErrSessionNotFound
		}
		return s.Load(ctx, metas[n-1].ID)
	}

	id, err := s.matchPrefix(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, id)
}

func (s *Store) matchPrefix(ctx context.Context, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(prefix)+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", ErrSessionNotFound
	case 1:
		return ids[0], nil
	default:
		return "", ErrAmbiguousID
	}
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns saved sessions, most recently updated first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]SessionMeta, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx, `
		SELECT id, project, title, created_at, updated_at, message_count, error_count
		FROM sessions ORDER BY updated_at DESC, id DESC LIMIT ?`, limit)
}

// Search returns sessions whose project, title or message content contains
// query (case-insensitive for ASCII).
func (s *Store) Search(ctx context.Context, query string) ([]SessionMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, 0)
	}
	pattern := "%" + escapeLike(query) + "%"
	return s.query(ctx, `
		SELECT id, project, title, created_at, updated_at, message_count, error_count
		FROM sessions
		WHERE project LIKE ? ESCAPE '\'
		   OR title LIKE ? ESCAPE '\'
		   OR id IN (SELECT session_id FROM messages WHERE content LIKE ? ESCAPE '\')
		ORDER BY updated_at DESC, id DESC`, pattern, pattern, pattern)
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]SessionMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metas := make([]SessionMeta, 0)
	for rows.Next() {
		var m SessionMeta
		var created, updated int64
		if err := rows.Scan(&m.ID, &m.Project, &m.Title, &created, &updated, &m.MessageCount, &m.ErrorCount); err != nil {
			return nil, err
		}
		m.CreatedAt = fromMillis(created)
		m.UpdatedAt = fromMillis(updated)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a session and its messages.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Clear removes every stored session. Returns the number removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions")
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UnixMilli()
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
