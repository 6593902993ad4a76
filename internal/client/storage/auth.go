package storage

import (
	"context"
)

//go:generate moq -out auth_mock.go . AuthStorage

// AuthStorage defines interface for storing authentication data on client
// This is the lowest storage layer - it works with raw data (already encrypted tokens)
// and doesn't perform any encryption/decryption itself.
type AuthStorage interface {
	// SaveAuth stores authentication data as-is (tokens should already be encrypted)
	// The previous value is replaced in a single write transaction.
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data as-is (tokens will be encrypted)
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	// Returns ErrAuthNotFound if there was nothing to delete
	DeleteAuth(ctx context.Context) error
}

// AuthData represents authentication information in storage
// IMPORTANT: tokens are stored encrypted (base64-encoded ciphertext).
// The encryption/decryption happens in auth.TokenStore.
type AuthData struct {
	Username          string `json:"username"`
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
	AccessTokenExpiry int64  `json:"access_token_expiry"`
}
