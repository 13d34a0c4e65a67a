// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/codecraft-tui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// transcriptAt builds a transcript with one exchange, last updated at ts.
func transcriptAt(project, question string, ts time.Time) *model.Transcript {
	tr := model.NewTranscript(project)
	tr.AddQuestionFor(project, question)
	tr.AddAnswer("answer to " + question)
	tr.CreatedAt = ts
	tr.UpdatedAt = ts
	return tr
}

// =============================================================================
// OPEN
// =============================================================================

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, path)
	assert.Equal(t, path, s.Path())
	assert.Equal(t, DefaultMaxSessions, s.MaxSessions)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), transcriptAt("p", "q", time.Now())))
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// =============================================================================
// SAVE AND LOAD
// =============================================================================

func TestStore_SaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tr := model.NewTranscript("webapp")
	tr.AddQuestionFor("webapp", "where is main?")
	tr.AddAnswer("cmd/server/main.go")
	tr.AddQuestionFor("api", "and the handlers?")
	tr.AddError("request timed out")

	require.NoError(t, s.Save(ctx, tr))

	loaded, err := s.Load(ctx, tr.ID)
	require.NoError(t, err)

	assert.Equal(t, tr.ID, loaded.ID)
	assert.Equal(t, "webapp", loaded.Project)
	assert.Equal(t, tr.Labels(), loaded.Labels())
	assert.Equal(t, "api", loaded.Items[2].Project)
	assert.True(t, loaded.Items[3].IsError)
	assert.Equal(t, tr.Items[0].ID, loaded.Items[0].ID)
	assert.Equal(t, tr.CreatedAt.UnixMilli(), loaded.CreatedAt.UnixMilli())
}

func TestStore_SaveUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tr := transcriptAt("webapp", "first", time.Now())
	require.NoError(t, s.Save(ctx, tr))

	tr.AddQuestionFor("webapp", "second")
	tr.AddAnswer("ok")
	require.NoError(t, s.Save(ctx, tr))

	metas, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, 4, metas[0].MessageCount)
	assert.Equal(t, "first", metas[0].Title)

	loaded, err := s.Load(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Len())
}

func TestStore_SaveSkipsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, nil))
	require.NoError(t, s.Save(ctx, model.NewTranscript("x")))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_LoadNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load(context.Background(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrSessionNotFound", err)
	}
}

// =============================================================================
// LIST, RESOLVE, SEARCH
// =============================================================================

func TestStore_ListOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	old := transcriptAt("a", "oldest", base)
	mid := transcriptAt("b", "middle", base.Add(time.Minute))
	recent := transcriptAt("c", "newest", base.Add(2*time.Minute))
	for _, tr := range []*model.Transcript{mid, recent, old} {
		require.NoError(t, s.Save(ctx, tr))
	}

	metas, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, metas, 3)
	assert.Equal(t, []string{recent.ID, mid.ID, old.ID}, []string{metas[0].ID, metas[1].ID, metas[2].ID})

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_Resolve(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	old := transcriptAt("a", "oldest", base)
	recent := transcriptAt("b", "newest", base.Add(time.Minute))
	require.NoError(t, s.Save(ctx, old))
	require.NoError(t, s.Save(ctx, recent))

	got, err := s.Resolve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, recent.ID, got.ID)

	got, err = s.Resolve(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, old.ID, got.ID)

	got, err = s.Resolve(ctx, old.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, old.ID, got.ID)

	got, err = s.Resolve(ctx, recent.ID)
	require.NoError(t, err)
	assert.Equal(t, recent.ID, got.ID)

	_, err = s.Resolve(ctx, "3")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Resolve(ctx, "zzzzzzzzz")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_ResolveAmbiguousPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := transcriptAt("a", "q", time.Now())
	a.ID = "abc-111"
	b := transcriptAt("b", "q", time.Now())
	b.ID = "abc-222"
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))

	_, err := s.Resolve(ctx, "abc")
	assert.ErrorIs(t, err, ErrAmbiguousID)
}

func TestStore_Search(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	web := transcriptAt("webapp", "where is the router?", time.Now())
	cli := transcriptAt("cli", "how are flags parsed?", time.Now())
	require.NoError(t, s.Save(ctx, web))
	require.NoError(t, s.Save(ctx, cli))

	tests := []struct {
		query string
		want  []string
	}{
		{"router", []string{web.ID}},
		{"cli", []string{cli.ID}},
		{"answer to how", []string{cli.ID}},
		{"100%", nil},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			metas, err := s.Search(ctx, tt.query)
			require.NoError(t, err)
			var ids []string
			for _, m := range metas {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	all, err := s.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// DELETE, CLEAR, PRUNE
// =============================================================================

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tr := transcriptAt("p", "q", time.Now())
	require.NoError(t, s.Save(ctx, tr))
	require.NoError(t, s.Delete(ctx, tr.ID))

	_, err := s.Load(ctx, tr.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.Delete(ctx, tr.ID), ErrSessionNotFound)

	var orphans int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&orphans))
	assert.Zero(t, orphans, "messages are removed with their session")
}

func TestStore_Clear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Save(ctx, transcriptAt("p", "q", time.Now())))
	}

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_MaxSessionsPrunesOldest(t *testing.T) {
	s := openTestStore(t)
	s.MaxSessions = 2
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	var ids []string
	for i := 0; i < 4; i++ {
		tr := transcriptAt("p", "q", base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, tr.ID)
		require.NoError(t, s.Save(ctx, tr))
	}

	metas, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, ids[3], metas[0].ID)
	assert.Equal(t, ids[2], metas[1].ID)
}

func TestStore_Prune(t *testing.T) {
	s := openTestStore(t)
	s.MaxSessions = 0
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(ctx, transcriptAt("p", "q", time.Now().Add(time.Duration(i)*time.Second))))
	}

	removed, err := s.Prune(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = s.Prune(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSessionMeta_ShortID(t *testing.T) {
	assert.Equal(t, "12345678", SessionMeta{ID: "1234567890"}.ShortID())
	assert.Equal(t, "abc", SessionMeta{ID: "abc"}.ShortID())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_a\\b`, escapeLike(`100%_a\b`))
}
