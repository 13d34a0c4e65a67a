// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists Q&A sessions for codecraft.
//
// Sessions are kept in a local SQLite database (default
// ~/.codecraft/history.db) using the pure Go modernc.org/sqlite driver.
// This is client-side history only; the analysis server keeps its own data.
//
// # Key Types
//
//   - Store: Session persistence (save, list, load, search, delete, prune)
//   - SessionMeta: Listing row for one stored session
//
// # Usage
//
//	store, err := storage.Open(cfg.History.Path)
//	defer store.Close()
//
//	err = store.Save(ctx, transcript)
//	sessions, err := store.List(ctx, 20)
//	t, err := store.Resolve(ctx, "1") // most recent session
package storage
