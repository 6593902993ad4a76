package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/validation"
)

// Service предоставляет функции авторизации: вход, выход и статус сессии
type Service struct {
	client    TokenClient
	store     *TokenStore
	refresher *Refresher
	records   storage.RecordStore
	metadata  storage.MetadataStorage
	logger    *slog.Logger
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(
	client TokenClient,
	store *TokenStore,
	refresher *Refresher,
	records storage.RecordStore,
	metadata storage.MetadataStorage,
	logger *slog.Logger,
) *Service {
	return &Service{
		client:    client,
		store:     store,
		refresher: refresher,
		records:   records,
		metadata:  metadata,
		logger:    logger,
		now:       time.Now,
	}
}

// Login выполняет OAuth2 password grant и открывает новую сессию
func (s *Service) Login(ctx context.Context, username, password string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.client.PasswordGrant(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if resp.RefreshToken == "" {
		return errors.New("login failed: server issued no refresh token")
	}

	tok := tokenFromResponse(resp, s.now(), "")
	if err := s.store.SetSession(ctx, username, tok); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.refresher.Reset()

	s.logger.Info("Logged in", "username", username, "expires_at", tok.AccessTokenExpiry.Format(time.RFC3339))
	return nil
}

// Logout отзывает refresh token (best effort), удаляет сессию и локальные данные
func (s *Service) Logout(ctx context.Context) error {
	tok, err := s.store.Get(ctx)
	switch {
	case err == nil:
		if err := s.client.Revoke(ctx, tok.RefreshToken, "refresh_token"); err != nil {
			// Сервер недоступен - локальный выход всё равно выполняем
			s.logger.Warn("Failed to revoke refresh token", "error", err)
		}
	case errors.Is(err, errs.ErrNotAuthenticated):
	default:
		return err
	}

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.refresher.Reset()

	if err := s.records.Wipe(ctx); err != nil {
		return errs.Storage(fmt.Errorf("failed to wipe local data: %w", err))
	}
	if err := s.metadata.ClearLastSync(ctx); err != nil {
		return errs.Storage(fmt.Errorf("failed to clear sync metadata: %w", err))
	}

	s.logger.Info("Logged out")
	return nil
}

// Status describes the current session.
type Status struct {
	AccessTokenExpiry time.Time
	Username          string
	RefresherState    State
	LoggedIn          bool
	AccessTokenValid  bool
}

// Status returns the current session status. A missing session is not an error.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	st := &Status{RefresherState: s.refresher.State()}

	tok, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrNotAuthenticated) {
			return st, nil
		}
		return nil, err
	}

	username, err := s.store.Username(ctx)
	if err != nil {
		return nil, err
	}

	st.LoggedIn = true
	st.Username = username
	st.AccessTokenExpiry = tok.AccessTokenExpiry
	st.AccessTokenValid = s.now().Before(tok.AccessTokenExpiry)
	return st, nil
}
