package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// HistoryEntry is one recorded generation.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	Provider   string    `json:"provider,omitempty"`
	PromptSlug string    `json:"prompt_slug,omitempty"`
	Title      string    `json:"title,omitempty"`
	Cached     bool      `json:"cached"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordGeneration appends a row to the generation history.
func (s *Store) RecordGeneration(ctx context.Context, entry HistoryEntry) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	urlValue := strings.TrimSpace(entry.URL)
	if urlValue == "" {
		return errors.New("history url is required")
	}

	cached := 0
	if entry.Cached {
		cached = 1
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO generation_history (url, provider, prompt_slug, title, cached, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, urlValue, entry.Provider, entry.PromptSlug, entry.Title, cached, createdAt.Unix())
	if err != nil {
		return fmt.Errorf("record generation: %w", err)
	}
	return nil
}

// History returns the most recent generations, newest first. A limit of
// zero or less defaults to 50.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, url, provider, prompt_slug, title, cached, created_at
		FROM generation_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch generation history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			entry     HistoryEntry
			cached    int
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.URL, &entry.Provider, &entry.PromptSlug, &entry.Title, &cached, &createdAt); err != nil {
			return nil, fmt.Errorf("scan generation history: %w", err)
		}
		entry.Cached = cached != 0
		entry.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generation history: %w", err)
	}
	return entries, nil
}
