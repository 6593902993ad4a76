package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/finsync/internal/client/storage"
)

// SaveAuth stores authentication data, replacing the previous row
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	query := `
		INSERT INTO auth (id, username, access_token, refresh_token, access_token_expiry)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			access_token_expiry = excluded.access_token_expiry
	`

	_, err := s.db.ExecContext(ctx, query, auth.Username, auth.AccessToken, auth.RefreshToken, auth.AccessTokenExpiry)
	if err != nil {
		return fmt.Errorf("failed to save auth data: %w", err)
	}
	return nil
}

// GetAuth retrieves stored authentication data
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	query := `SELECT username, access_token, refresh_token, access_token_expiry FROM auth WHERE id = 1`

	auth := &storage.AuthData{}
	err := s.db.QueryRowContext(ctx, query).Scan(&auth.Username, &auth.AccessToken, &auth.RefreshToken, &auth.AccessTokenExpiry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAuthNotFound
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return auth, nil
}

// DeleteAuth removes stored authentication data (logout)
func (s *Storage) DeleteAuth(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM auth WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to delete auth data: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return storage.ErrAuthNotFound
	}
	return nil
}
