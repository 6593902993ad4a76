package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/finsync/internal/models"
)

//go:generate moq -out records_mock.go . RecordStore

// Record is one stored resource: its primary ID and JSON encoded body.
type Record struct {
	Data []byte
	ID   int64
}

// RecordStore is a durable keyed collection per resource type.
// Writes are only possible inside Update, so every batch is atomic.
type RecordStore interface {
	// Get returns the stored body or ErrRecordNotFound
	Get(ctx context.Context, rt models.ResourceType, id int64) ([]byte, error)

	// Query returns records of rt accepted by match, ordered by ID.
	// A nil match returns every record.
	Query(ctx context.Context, rt models.ResourceType, match func(id int64, data []byte) bool) ([]Record, error)

	// Update runs fn inside a single write transaction.
	// If fn returns an error nothing is committed.
	Update(ctx context.Context, fn func(tx RecordTx) error) error

	// Wipe removes every record of every type (logout)
	Wipe(ctx context.Context) error
}

// RecordTx is a write transaction over the record store.
type RecordTx interface {
	// Get returns the stored body or ErrRecordNotFound
	Get(rt models.ResourceType, id int64) ([]byte, error)

	// ForEach calls fn for each record of rt in ID order
	ForEach(rt models.ResourceType, fn func(id int64, data []byte) error) error

	// UpsertBatch inserts or replaces records
	UpsertBatch(rt models.ResourceType, records []Record) error

	// DeleteBatch removes records; missing IDs are ignored
	DeleteBatch(rt models.ResourceType, ids []int64) error
}

// GetRecord loads and decodes one record.
func GetRecord[T any](ctx context.Context, s RecordStore, rt models.ResourceType, id int64) (*T, error) {
	data, err := s.Get(ctx, rt, id)
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %d: %w", rt, id, err)
	}
	return &v, nil
}

// QueryRecords decodes every record of rt and keeps those accepted by match.
// Undecodable records are reported as an error, not silently dropped.
func QueryRecords[T any](ctx context.Context, s RecordStore, rt models.ResourceType, match func(*T) bool) ([]T, error) {
	records, err := s.Query(ctx, rt, nil)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s %d: %w", rt, rec.ID, err)
		}
		if match == nil || match(&v) {
			out = append(out, v)
		}
	}
	return out, nil
}
