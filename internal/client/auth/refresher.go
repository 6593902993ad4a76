package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/internal/crypto"
	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/pkg/api"
)

//go:generate moq -out client_mock.go . TokenClient

// TokenClient talks to the OAuth2 token endpoint.
type TokenClient interface {
	PasswordGrant(ctx context.Context, username, password string) (*api.TokenResponse, error)
	RefreshGrant(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	Revoke(ctx context.Context, token, tokenTypeHint string) error
}

// State is the refresher state.
type State int32

const (
	StateIdle State = iota
	StateRefreshing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Refresher exchanges the refresh token for a new pair.
//
// Concurrent callers are coalesced into one token endpoint call and all of
// them observe its outcome. The new pair is stored before any caller is
// released. After a terminal failure the session is cleared and every call
// fails with errs.ErrSessionInvalid until Reset.
type Refresher struct {
	store  *TokenStore
	client TokenClient
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	state State

	exchanges atomic.Int64
}

// NewRefresher creates a Refresher in the Idle state.
func NewRefresher(store *TokenStore, client TokenClient, logger *slog.Logger) *Refresher {
	return &Refresher{
		store:  store,
		client: client,
		logger: logger,
		now:    time.Now,
		state:  StateIdle,
	}
}

// State returns the current state.
func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Exchanges returns how many physical refresh calls were made.
func (r *Refresher) Exchanges() int64 {
	return r.exchanges.Load()
}

// Reset returns a failed refresher to Idle after a new login.
func (r *Refresher) Reset() {
	r.setState(StateIdle)
}

func (r *Refresher) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Refresh returns a fresh token.
//
// failedAccessToken is the access token the caller saw rejected or about to
// expire. If the store already holds a different one, another caller has
// refreshed in the meantime and that token is returned without a network call.
func (r *Refresher) Refresh(ctx context.Context, failedAccessToken string) (*models.Token, error) {
	if r.State() == StateFailed {
		return nil, errs.ErrSessionInvalid
	}

	current, err := r.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if failedAccessToken != "" && current.AccessToken != failedAccessToken {
		return current, nil
	}

	ch := r.group.DoChan("refresh", func() (any, error) {
		// Обмен не прерывается отменой контекста первого вызывающего:
		// его результат нужен всем ожидающим
		return r.exchange(context.WithoutCancel(ctx), failedAccessToken)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		tok := *res.Val.(*models.Token)
		return &tok, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Refresher) exchange(ctx context.Context, failedAccessToken string) (*models.Token, error) {
	// Повторная проверка внутри группы: обмен мог завершиться, пока мы ждали
	if r.State() == StateFailed {
		return nil, errs.ErrSessionInvalid
	}
	current, err := r.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if failedAccessToken != "" && current.AccessToken != failedAccessToken {
		return current, nil
	}

	if current.RefreshToken == "" {
		return nil, r.fail(ctx, errors.New("no refresh token stored"))
	}

	r.setState(StateRefreshing)
	r.exchanges.Add(1)
	r.logger.Debug("Refreshing access token", "token", crypto.Fingerprint(current.AccessToken))

	resp, err := r.client.RefreshGrant(ctx, current.RefreshToken)
	if err != nil {
		if IsTerminalRefreshError(err) {
			return nil, r.fail(ctx, err)
		}
		r.setState(StateIdle)
		r.logger.Warn("Token refresh failed, will retry later", "error", err)
		return nil, fmt.Errorf("refresh token: %w", errs.Transient(err))
	}

	tok := tokenFromResponse(resp, r.now(), current.RefreshToken)
	if err := r.store.Set(ctx, tok); err != nil {
		r.setState(StateIdle)
		return nil, fmt.Errorf("store refreshed token: %w", err)
	}

	r.setState(StateIdle)
	r.logger.Info("Access token refreshed",
		"token", crypto.Fingerprint(tok.AccessToken),
		"expires_at", tok.AccessTokenExpiry.Format(time.RFC3339))
	return &tok, nil
}

// fail moves to Failed and clears the session.
func (r *Refresher) fail(ctx context.Context, cause error) error {
	r.setState(StateFailed)
	r.logger.Warn("Refresh token rejected, session cleared", "error", cause)

	if err := r.store.Clear(ctx); err != nil {
		r.logger.Error("Failed to clear session", "error", err)
		return fmt.Errorf("%w: %w (clear failed: %w)", errs.ErrSessionInvalid, cause, err)
	}
	return fmt.Errorf("%w: %w", errs.ErrSessionInvalid, cause)
}
