package boltdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/models"
)

func recordsBucket(rt models.ResourceType) []byte {
	return []byte(recordsPrefix + string(rt))
}

// ключи big-endian, чтобы курсор обходил записи по возрастанию ID
func idKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func keyID(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key))
}

// Get returns the stored record body or storage.ErrRecordNotFound
func (s *Storage) Get(ctx context.Context, rt models.ResourceType, id int64) ([]byte, error) {
	var data []byte

	err := s.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		data, err = (&recordTx{tx: tx}).Get(rt, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Query returns records of rt accepted by match in ID order
func (s *Storage) Query(ctx context.Context, rt models.ResourceType, match func(id int64, data []byte) bool) ([]storage.Record, error) {
	var records []storage.Record

	err := s.view(ctx, func(tx *bbolt.Tx) error {
		return (&recordTx{tx: tx}).ForEach(rt, func(id int64, data []byte) error {
			if match == nil || match(id, data) {
				records = append(records, storage.Record{ID: id, Data: data})
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", rt, err)
	}
	return records, nil
}

// Update runs fn in a single bbolt write transaction
func (s *Storage) Update(ctx context.Context, fn func(tx storage.RecordTx) error) error {
	return s.update(ctx, func(tx *bbolt.Tx) error {
		return fn(&recordTx{tx: tx})
	})
}

// Wipe drops every records bucket
func (s *Storage) Wipe(ctx context.Context) error {
	return s.update(ctx, func(tx *bbolt.Tx) error {
		var names [][]byte
		err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if bytes.HasPrefix(name, []byte(recordsPrefix)) {
				names = append(names, append([]byte(nil), name...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, name := range names {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("failed to delete bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// recordTx adapts bbolt.Tx to storage.RecordTx.
// Bucket'ы создаются лениво при первой записи.
type recordTx struct {
	tx *bbolt.Tx
}

func (t *recordTx) Get(rt models.ResourceType, id int64) ([]byte, error) {
	bucket := t.tx.Bucket(recordsBucket(rt))
	if bucket == nil {
		return nil, storage.ErrRecordNotFound
	}

	data := bucket.Get(idKey(id))
	if data == nil {
		return nil, storage.ErrRecordNotFound
	}

	// Копия: память bbolt валидна только внутри транзакции
	return append([]byte(nil), data...), nil
}

func (t *recordTx) ForEach(rt models.ResourceType, fn func(id int64, data []byte) error) error {
	bucket := t.tx.Bucket(recordsBucket(rt))
	if bucket == nil {
		return nil
	}

	return bucket.ForEach(func(k, v []byte) error {
		return fn(keyID(k), append([]byte(nil), v...))
	})
}

func (t *recordTx) UpsertBatch(rt models.ResourceType, records []storage.Record) error {
	if len(records) == 0 {
		return nil
	}

	if !t.tx.Writable() {
		return fmt.Errorf("upsert %s: %w", rt, bbolt.ErrTxNotWritable)
	}

	bucket, err := t.tx.CreateBucketIfNotExists(recordsBucket(rt))
	if err != nil {
		return fmt.Errorf("failed to create bucket for %s: %w", rt, err)
	}

	for _, rec := range records {
		if err := bucket.Put(idKey(rec.ID), rec.Data); err != nil {
			return fmt.Errorf("failed to put %s %d: %w", rt, rec.ID, err)
		}
	}
	return nil
}

func (t *recordTx) DeleteBatch(rt models.ResourceType, ids []int64) error {
	bucket := t.tx.Bucket(recordsBucket(rt))
	if bucket == nil || len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if err := bucket.Delete(idKey(id)); err != nil {
			return fmt.Errorf("failed to delete %s %d: %w", rt, id, err)
		}
	}
	return nil
}
