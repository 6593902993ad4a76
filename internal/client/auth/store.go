package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/crypto"
	"github.com/iudanet/finsync/internal/models"
)

// метки для additional data AES-GCM
const (
	labelAccessToken  = "access_token"
	labelRefreshToken = "refresh_token"
)

// TokenStore holds the current token pair of the session.
//
// Any number of readers may call Get concurrently; Set and Clear take the
// write lock and persist through storage.AuthStorage before returning, so a
// crash never leaves a torn pair. Tokens are encrypted at rest.
type TokenStore struct {
	storage storage.AuthStorage
	sealer  *crypto.Sealer

	mu       sync.RWMutex
	token    *models.Token
	username string
	loaded   bool
}

// NewTokenStore creates a TokenStore persisting through st.
func NewTokenStore(st storage.AuthStorage, sealer *crypto.Sealer) *TokenStore {
	return &TokenStore{
		storage: st,
		sealer:  sealer,
	}
}

// Get returns a copy of the current token.
// Returns errs.ErrNotAuthenticated if no session exists.
func (s *TokenStore) Get(ctx context.Context) (*models.Token, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.current()
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.load(ctx); err != nil {
			return nil, err
		}
	}
	return s.current()
}

// Username returns the user the session belongs to.
func (s *TokenStore) Username(ctx context.Context) (string, error) {
	if _, err := s.Get(ctx); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username, nil
}

// Set replaces the token pair, keeping the session user.
func (s *TokenStore) Set(ctx context.Context, tok models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		// username берём из сохранённой сессии
		if err := s.load(ctx); err != nil && !errors.Is(err, errs.ErrNotAuthenticated) {
			return err
		}
	}
	return s.save(ctx, s.username, tok)
}

// SetSession starts a new session for username.
func (s *TokenStore) SetSession(ctx context.Context, username string, tok models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, username, tok)
}

// Clear removes the session. Clearing an empty store is not an error.
func (s *TokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return errs.Storage(fmt.Errorf("failed to delete auth data: %w", err))
	}

	s.token = nil
	s.username = ""
	s.loaded = true
	return nil
}

// current must be called with mu held.
func (s *TokenStore) current() (*models.Token, error) {
	if s.token == nil {
		return nil, errs.ErrNotAuthenticated
	}
	tok := *s.token
	return &tok, nil
}

// save must be called with mu held for writing.
func (s *TokenStore) save(ctx context.Context, username string, tok models.Token) error {
	if err := tok.Validate(); err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	// Шифруем токены
	encAccess, err := s.sealer.Seal(labelAccessToken, tok.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := s.sealer.Seal(labelRefreshToken, tok.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	// Сначала пишем на диск, потом в память
	err = s.storage.SaveAuth(ctx, &storage.AuthData{
		Username:          username,
		AccessToken:       encAccess,
		RefreshToken:      encRefresh,
		AccessTokenExpiry: tok.AccessTokenExpiry.Unix(),
	})
	if err != nil {
		return errs.Storage(fmt.Errorf("failed to save auth data: %w", err))
	}

	s.token = &tok
	s.username = username
	s.loaded = true
	return nil
}

// load must be called with mu held for writing.
func (s *TokenStore) load(ctx context.Context) error {
	stored, err := s.storage.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			s.loaded = true
			return errs.ErrNotAuthenticated
		}
		return errs.Storage(fmt.Errorf("failed to load auth data: %w", err))
	}

	access, err := s.sealer.Open(labelAccessToken, stored.AccessToken)
	if err != nil {
		// Другой passphrase или повреждённые данные: сессия недоступна
		return fmt.Errorf("%w: failed to decrypt access token: %w", errs.ErrNotAuthenticated, err)
	}
	refresh, err := s.sealer.Open(labelRefreshToken, stored.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w: failed to decrypt refresh token: %w", errs.ErrNotAuthenticated, err)
	}

	s.token = &models.Token{
		AccessToken:       access,
		RefreshToken:      refresh,
		AccessTokenExpiry: time.Unix(stored.AccessTokenExpiry, 0),
	}
	s.username = stored.Username
	s.loaded = true
	return nil
}
