package boltdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/finsync/internal/client/storage"
)

const (
	keyLastSyncPrefix = "last_sync:"
	keyDeviceSalt     = "device_salt"
)

// SaveLastSync saves the time of the last successful sync for the given key
func (s *Storage) SaveLastSync(ctx context.Context, key string, at time.Time) error {
	return s.update(ctx, func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Храним unix nano в big-endian
		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, uint64(at.UnixNano()))

		if err := bucket.Put([]byte(keyLastSyncPrefix+key), value); err != nil {
			return fmt.Errorf("failed to save last sync time: %w", err)
		}

		return nil
	})
}

// GetLastSync retrieves the time of the last successful sync for the given key
// Returns zero time if no sync has been performed yet
func (s *Storage) GetLastSync(ctx context.Context, key string) (time.Time, error) {
	var at time.Time

	err := s.view(ctx, func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		value := bucket.Get([]byte(keyLastSyncPrefix + key))
		if value == nil {
			// Синхронизации ещё не было
			return nil
		}

		at = time.Unix(0, int64(binary.BigEndian.Uint64(value)))
		return nil
	})

	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}

	return at, nil
}

// ClearLastSync forgets every saved sync time
func (s *Storage) ClearLastSync(ctx context.Context) error {
	return s.update(ctx, func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Собираем ключи заранее: удалять во время итерации курсора нельзя
		var keys [][]byte
		prefix := []byte(keyLastSyncPrefix)
		c := bucket.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}

		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to delete %s: %w", k, err)
			}
		}
		return nil
	})
}

// SaveDeviceSalt stores the per-device salt used to derive the token key
func (s *Storage) SaveDeviceSalt(ctx context.Context, salt []byte) error {
	return s.update(ctx, func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		if err := bucket.Put([]byte(keyDeviceSalt), salt); err != nil {
			return fmt.Errorf("failed to save device salt: %w", err)
		}
		return nil
	})
}

// GetDeviceSalt returns storage.ErrMetadataNotFound when no salt was saved
func (s *Storage) GetDeviceSalt(ctx context.Context) ([]byte, error) {
	var salt []byte

	err := s.view(ctx, func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		value := bucket.Get([]byte(keyDeviceSalt))
		if value == nil {
			return storage.ErrMetadataNotFound
		}

		// Значение валидно только внутри транзакции
		salt = append([]byte(nil), value...)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return salt, nil
}
