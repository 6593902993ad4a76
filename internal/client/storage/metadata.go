package storage

import (
	"context"
	"time"
)

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveLastSync saves the time of the last successful sync for the given key
	SaveLastSync(ctx context.Context, key string, at time.Time) error

	// GetLastSync retrieves the time of the last successful sync for the given key
	// Returns zero time if no sync has been performed yet
	GetLastSync(ctx context.Context, key string) (time.Time, error)

	// ClearLastSync forgets every saved sync time
	ClearLastSync(ctx context.Context) error

	// SaveDeviceSalt stores the per-device salt used to derive the token key
	SaveDeviceSalt(ctx context.Context, salt []byte) error

	// GetDeviceSalt returns ErrMetadataNotFound when no salt was saved
	GetDeviceSalt(ctx context.Context) ([]byte, error)
}
