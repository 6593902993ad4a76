package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/crypto"
	"github.com/iudanet/finsync/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSealer(t *testing.T, seed byte) *crypto.Sealer {
	t.Helper()
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = seed
	}
	s, err := crypto.NewSealer(key)
	require.NoError(t, err)
	return s
}

// memAuthStorage - мок AuthStorage поверх переменной в памяти
func memAuthStorage() *storage.AuthStorageMock {
	var (
		mu   sync.Mutex
		data *storage.AuthData
	)
	return &storage.AuthStorageMock{
		SaveAuthFunc: func(ctx context.Context, auth *storage.AuthData) error {
			mu.Lock()
			defer mu.Unlock()
			cp := *auth
			data = &cp
			return nil
		},
		GetAuthFunc: func(ctx context.Context) (*storage.AuthData, error) {
			mu.Lock()
			defer mu.Unlock()
			if data == nil {
				return nil, storage.ErrAuthNotFound
			}
			cp := *data
			return &cp, nil
		},
		DeleteAuthFunc: func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			if data == nil {
				return storage.ErrAuthNotFound
			}
			data = nil
			return nil
		},
	}
}

func testToken(access string) models.Token {
	return models.Token{
		AccessToken:       access,
		RefreshToken:      "refresh-" + access,
		AccessTokenExpiry: time.Now().Add(time.Hour).Truncate(time.Second),
	}
}
