// Package app assembles the client from configuration: local storage, the
// token store, the request pipeline and the services built on top of them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/iudanet/finsync/internal/client/api"
	"github.com/iudanet/finsync/internal/client/auth"
	"github.com/iudanet/finsync/internal/client/data"
	"github.com/iudanet/finsync/internal/client/pipeline"
	"github.com/iudanet/finsync/internal/client/reconcile"
	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/client/storage/boltdb"
	"github.com/iudanet/finsync/internal/client/storage/cache"
	"github.com/iudanet/finsync/internal/client/storage/sqlite"
	"github.com/iudanet/finsync/internal/client/sync"
	"github.com/iudanet/finsync/internal/config"
	"github.com/iudanet/finsync/internal/crypto"
)

// KeyFileSuffix is appended to the database path to name the device key
// file used when no passphrase is configured.
const KeyFileSuffix = ".key"

// backend is a local storage driver
type backend interface {
	storage.AuthStorage
	storage.MetadataStorage
	storage.RecordStore
	Close() error
}

var (
	_ backend = (*boltdb.Storage)(nil)
	_ backend = (*sqlite.Storage)(nil)
)

// App holds the wired client services
type App struct {
	Auth      *auth.Service
	Tokens    *auth.TokenStore
	Refresher *auth.Refresher
	Pipeline  *pipeline.Pipeline
	Sync      sync.Service
	Data      data.Service
	Logger    *slog.Logger

	store backend
	cache *cache.Store
}

// New opens local storage and wires every client component.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a, err := wire(ctx, cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg *config.Config, store backend, logger *slog.Logger) (*App, error) {
	key, err := tokenKey(ctx, cfg, store)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain token key: %w", err)
	}
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, err
	}

	a := &App{store: store, Logger: logger}

	var records storage.RecordStore = store
	if cfg.CacheSize > 0 {
		a.cache, err = cache.New(store, cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		records = a.cache
	}

	client := api.NewClient(api.Options{
		BaseURL:      cfg.BaseURL,
		TokenURL:     cfg.ResolvedTokenURL(),
		RevokeURL:    cfg.RevokeURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Timeout:      cfg.Timeout,
	})

	a.Tokens = auth.NewTokenStore(store, sealer)
	a.Refresher = auth.NewRefresher(a.Tokens, client, logger)
	a.Pipeline = pipeline.New(client, a.Tokens, a.Refresher, pipeline.Options{
		BaseURL:       cfg.BaseURL,
		ExpiredCodes:  cfg.ExpiredCodes,
		RefreshLeeway: cfg.Leeway,
	}, logger)

	reconciler := reconcile.New(records, logger)
	a.Sync, err = sync.NewService(a.Pipeline, reconciler, store, logger)
	if err != nil {
		a.closeCache()
		return nil, err
	}
	a.Data = data.NewService(records, reconciler)
	a.Auth = auth.NewService(client, a.Tokens, a.Refresher, records, store, logger)

	logger.Debug("Client initialized",
		"driver", cfg.Driver,
		"db", cfg.DBPath,
		"cache_size", cfg.CacheSize,
		"key_fingerprint", crypto.Fingerprint(string(key)))

	return a, nil
}

// Close releases the cache and the local database
func (a *App) Close() error {
	a.closeCache()
	return a.store.Close()
}

func (a *App) closeCache() {
	if a.cache != nil {
		a.cache.Close()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		st, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return st, nil
	case config.DriverBolt:
		st, err := boltdb.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt storage: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// tokenKey возвращает ключ шифрования токенов.
// С passphrase ключ выводится через Argon2id с солью устройства,
// без неё используется случайный ключ из файла рядом с базой.
func tokenKey(ctx context.Context, cfg *config.Config, meta storage.MetadataStorage) ([]byte, error) {
	if cfg.Passphrase == "" {
		return deviceKey(cfg.DBPath + KeyFileSuffix)
	}

	salt, err := meta.GetDeviceSalt(ctx)
	if errors.Is(err, storage.ErrMetadataNotFound) {
		salt, err = crypto.GenerateSalt()
		if err != nil {
			return nil, err
		}
		if err := meta.SaveDeviceSalt(ctx, salt); err != nil {
			return nil, fmt.Errorf("failed to save device salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read device salt: %w", err)
	}

	return crypto.DeriveTokenKey(cfg.Passphrase, salt)
}

// deviceKey читает ключ устройства или создает его с правами 0600
func deviceKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(key) != crypto.KeySize {
			return nil, fmt.Errorf("device key %s is corrupted", path)
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read device key: %w", err)
	}

	key, err = crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write device key: %w", err)
	}
	return key, nil
}
