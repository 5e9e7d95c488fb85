package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pagemeta/pagemeta/internal/core"
)

// GetCachedMetadata returns cached metadata for key if it has not
// expired. A miss returns (nil, nil).
func (s *Store) GetCachedMetadata(ctx context.Context, key string) (*core.Metadata, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("cache key is required")
	}

	var payload string
	row := s.DB.QueryRowContext(ctx, `
		SELECT payload
		FROM metadata_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().UTC().Unix())

	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached metadata: %w", err)
	}

	var meta core.Metadata
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return nil, fmt.Errorf("decode cached metadata: %w", err)
	}
	return &meta, nil
}

// PutCachedMetadata stores metadata under key with a TTL. A zero or
// negative TTL is a no-op.
func (s *Store) PutCachedMetadata(ctx context.Context, key string, meta *core.Metadata, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if ttl <= 0 || meta == nil {
		return nil
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key is required")
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode cached metadata: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO metadata_cache (cache_key, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key, string(payload), now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("store cached metadata: %w", err)
	}
	return nil
}

// PruneExpired removes cache rows whose TTL has elapsed and returns the
// number of rows deleted.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM metadata_cache WHERE expires_at <= ?
	`, time.Now().UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("prune metadata cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// MetadataCache adapts the store to the engine's cache interface.
type MetadataCache struct {
	Store *Store
}

// Get implements engine.Cache.
func (c *MetadataCache) Get(ctx context.Context, key string) (*core.Metadata, error) {
	return c.Store.GetCachedMetadata(ctx, key)
}

// Put implements engine.Cache.
func (c *MetadataCache) Put(ctx context.Context, key string, meta *core.Metadata, ttl time.Duration) error {
	return c.Store.PutCachedMetadata(ctx, key, meta, ttl)
}
