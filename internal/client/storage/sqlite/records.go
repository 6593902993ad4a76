package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/models"
)

// Get returns the stored record body or storage.ErrRecordNotFound
func (s *Storage) Get(ctx context.Context, rt models.ResourceType, id int64) ([]byte, error) {
	return getRecord(ctx, s.db, rt, id)
}

// Query returns records of rt accepted by match in ID order
func (s *Storage) Query(ctx context.Context, rt models.ResourceType, match func(id int64, data []byte) bool) ([]storage.Record, error) {
	var records []storage.Record

	err := forEachRecord(ctx, s.db, rt, func(id int64, data []byte) error {
		if match == nil || match(id, data) {
			records = append(records, storage.Record{ID: id, Data: data})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", rt, err)
	}
	return records, nil
}

// Update runs fn in a single SQL transaction
func (s *Storage) Update(ctx context.Context, fn func(tx storage.RecordTx) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return fn(&recordTx{ctx: context.WithoutCancel(ctx), tx: tx})
	})
}

// Wipe removes every record of every type
func (s *Storage) Wipe(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to wipe records: %w", err)
	}
	return nil
}

// querier общий для *sql.DB и *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRecord(ctx context.Context, q querier, rt models.ResourceType, id int64) ([]byte, error) {
	var data []byte
	err := q.QueryRowContext(ctx, `SELECT data FROM records WHERE resource_type = ? AND id = ?`, string(rt), id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get %s %d: %w", rt, id, err)
	}
	return data, nil
}

func forEachRecord(ctx context.Context, q querier, rt models.ResourceType, fn func(id int64, data []byte) error) error {
	rows, err := q.QueryContext(ctx, `SELECT id, data FROM records WHERE resource_type = ? ORDER BY id`, string(rt))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("failed to scan %s: %w", rt, err)
		}
		if err := fn(id, data); err != nil {
			return err
		}
	}
	return rows.Err()
}

// recordTx adapts *sql.Tx to storage.RecordTx
type recordTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *recordTx) Get(rt models.ResourceType, id int64) ([]byte, error) {
	return getRecord(t.ctx, t.tx, rt, id)
}

func (t *recordTx) ForEach(rt models.ResourceType, fn func(id int64, data []byte) error) error {
	// Сначала вычитываем всё: fn может писать в ту же транзакцию,
	// а единственное соединение занято открытым курсором
	var records []storage.Record
	err := forEachRecord(t.ctx, t.tx, rt, func(id int64, data []byte) error {
		records = append(records, storage.Record{ID: id, Data: data})
		return nil
	})
	if err != nil {
		return err
	}

	for _, rec := range records {
		if err := fn(rec.ID, rec.Data); err != nil {
			return err
		}
	}
	return nil
}

func (t *recordTx) UpsertBatch(rt models.ResourceType, records []storage.Record) error {
	if len(records) == 0 {
		return nil
	}

	stmt, err := t.tx.PrepareContext(t.ctx, `
		INSERT INTO records (resource_type, id, data) VALUES (?, ?, ?)
		ON CONFLICT(resource_type, id) DO UPDATE SET data = excluded.data
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(t.ctx, string(rt), rec.ID, rec.Data); err != nil {
			return fmt.Errorf("failed to upsert %s %d: %w", rt, rec.ID, err)
		}
	}
	return nil
}

func (t *recordTx) DeleteBatch(rt models.ResourceType, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	stmt, err := t.tx.PrepareContext(t.ctx, `DELETE FROM records WHERE resource_type = ? AND id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(t.ctx, string(rt), id); err != nil {
			return fmt.Errorf("failed to delete %s %d: %w", rt, id, err)
		}
	}
	return nil
}
