package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/internal/server/storage"
)

// PutResource creates or replaces a resource record
func (s *Storage) PutResource(ctx context.Context, res *models.StoredResource) error {
	query := `
		INSERT INTO resources (user_id, resource_type, id, account_id, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, resource_type, id) DO UPDATE SET
			account_id = excluded.account_id,
			updated_at = excluded.updated_at,
			data = excluded.data
	`

	_, err := s.db.ExecContext(ctx, query,
		res.UserID,
		string(res.Type),
		res.ID,
		res.AccountID,
		res.UpdatedAt.UnixMilli(),
		[]byte(res.Data),
	)
	if err != nil {
		return fmt.Errorf("failed to put resource: %w", err)
	}

	return nil
}

// ListResources returns the user's records of one type ordered by ID
func (s *Storage) ListResources(ctx context.Context, userID string, rt models.ResourceType, filter storage.ResourceFilter) ([]*models.StoredResource, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT id, account_id, updated_at, data
		FROM resources
		WHERE user_id = ? AND resource_type = ?`)
	args := []any{userID, string(rt)}

	if filter.AccountID != 0 {
		query.WriteString(` AND account_id = ?`)
		args = append(args, filter.AccountID)
	}
	if !filter.Since.IsZero() {
		query.WriteString(` AND updated_at >= ?`)
		args = append(args, filter.Since.UnixMilli())
	}
	query.WriteString(` ORDER BY id`)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	resources := []*models.StoredResource{}

	for rows.Next() {
		res := &models.StoredResource{UserID: userID, Type: rt}
		var (
			updatedAt int64
			data      []byte
		)
		if err := rows.Scan(&res.ID, &res.AccountID, &updatedAt, &data); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		res.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		res.Data = data
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return resources, nil
}

// DeleteResource deletes one record
func (s *Storage) DeleteResource(ctx context.Context, userID string, rt models.ResourceType, id int64) error {
	query := `DELETE FROM resources WHERE user_id = ? AND resource_type = ? AND id = ?`

	result, err := s.db.ExecContext(ctx, query, userID, string(rt), id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrResourceNotFound
	}

	return nil
}
