package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/finsync/internal/client/storage"
)

const (
	keyLastSyncPrefix = "last_sync:"
	keyDeviceSalt     = "device_salt"
)

func (s *Storage) putMetadata(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Storage) getMetadata(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMetadataNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// SaveLastSync saves the time of the last successful sync for the given key
func (s *Storage) SaveLastSync(ctx context.Context, key string, at time.Time) error {
	return s.putMetadata(ctx, keyLastSyncPrefix+key, []byte(at.UTC().Format(time.RFC3339Nano)))
}

// GetLastSync retrieves the time of the last successful sync for the given key
// Returns zero time if no sync has been performed yet
func (s *Storage) GetLastSync(ctx context.Context, key string) (time.Time, error) {
	value, err := s.getMetadata(ctx, keyLastSyncPrefix+key)
	if err != nil {
		if errors.Is(err, storage.ErrMetadataNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}

	at, err := time.Parse(time.RFC3339Nano, string(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last sync time: %w", err)
	}
	return at, nil
}

// ClearLastSync forgets every saved sync time
func (s *Storage) ClearLastSync(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key LIKE ?`, keyLastSyncPrefix+"%"); err != nil {
		return fmt.Errorf("failed to clear last sync times: %w", err)
	}
	return nil
}

// SaveDeviceSalt stores the per-device salt used to derive the token key
func (s *Storage) SaveDeviceSalt(ctx context.Context, salt []byte) error {
	return s.putMetadata(ctx, keyDeviceSalt, salt)
}

// GetDeviceSalt returns storage.ErrMetadataNotFound when no salt was saved
func (s *Storage) GetDeviceSalt(ctx context.Context) ([]byte, error) {
	return s.getMetadata(ctx, keyDeviceSalt)
}
