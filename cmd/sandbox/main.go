package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/finsync/internal/logging"
	"github.com/iudanet/finsync/internal/server"
	"github.com/iudanet/finsync/internal/server/handlers"
	"github.com/iudanet/finsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

type sandboxFlags struct {
	addr            string
	dbPath          string
	username        string
	password        string
	secret          string
	clientID        string
	logLevel        string
	logFormat       string
	accessTTL       time.Duration
	refreshTTL      time.Duration
	rateWindow      time.Duration
	cleanupInterval time.Duration
	tokenRateLimit  int
	apiRateLimit    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f sandboxFlags

	cmd := &cobra.Command{
		Use:           "sandbox",
		Short:         "Sandbox financial API for the finsync client",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.addr, "addr", ":8080", "listen address")
	flags.StringVar(&f.dbPath, "db", "sandbox.db", "SQLite database path (:memory: for ephemeral)")
	flags.StringVar(&f.username, "user", "demo", "demo username")
	flags.StringVar(&f.password, "password", "demo-password", "demo password")
	flags.StringVar(&f.secret, "jwt-secret", "", "HMAC secret for access tokens (random when empty)")
	flags.StringVar(&f.clientID, "client-id", "", "required OAuth2 client_id (any when empty)")
	flags.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", logging.FormatText, "log format: text or json")
	flags.DurationVar(&f.accessTTL, "access-ttl", 15*time.Minute, "access token lifetime")
	flags.DurationVar(&f.refreshTTL, "refresh-ttl", 30*24*time.Hour, "refresh token lifetime")
	flags.DurationVar(&f.rateWindow, "rate-window", time.Minute, "rate limit window")
	flags.DurationVar(&f.cleanupInterval, "cleanup-interval", time.Hour, "expired refresh token cleanup interval")
	flags.IntVar(&f.tokenRateLimit, "token-rate-limit", 20, "token endpoint requests per window, 0 disables")
	flags.IntVar(&f.apiRateLimit, "api-rate-limit", 0, "resource requests per window, 0 disables")

	return cmd
}

func run(ctx context.Context, f sandboxFlags) error {
	logger, err := logging.New(f.logLevel, f.logFormat, os.Stderr)
	if err != nil {
		return err
	}
	handlers.Version = Version

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, f.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	if _, err := server.Seed(ctx, store, logger, f.username, f.password, time.Now()); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	secret := []byte(f.secret)
	if len(secret) == 0 {
		// Случайный секрет: токены не переживают перезапуск
		secret, err = handlers.GenerateSecret()
		if err != nil {
			return err
		}
		logger.Warn("jwt secret is not set, access tokens are invalidated on restart")
	}

	router := server.NewRouter(store, logger, server.Options{
		JWT: handlers.JWTConfig{
			Issuer:          "finsync-sandbox",
			Secret:          secret,
			AccessTokenTTL:  f.accessTTL,
			RefreshTokenTTL: f.refreshTTL,
		},
		ClientID:        f.clientID,
		TokenRateLimit:  f.tokenRateLimit,
		APIRateLimit:    f.apiRateLimit,
		RateLimitWindow: f.rateWindow,
	})
	defer router.Stop()

	go cleanupExpiredTokens(ctx, store, logger, f.cleanupInterval)

	srv := &http.Server{
		Addr:              f.addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Sandbox API listening", "addr", f.addr, "version", Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// cleanupExpiredTokens периодически удаляет истёкшие refresh токены
func cleanupExpiredTokens(ctx context.Context, store *sqlite.Storage, logger *slog.Logger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpiredTokens(ctx, time.Now())
			if err != nil {
				logger.Error("failed to delete expired tokens", slog.Any("error", err))
				continue
			}
			if n > 0 {
				logger.Info("Expired refresh tokens removed", "count", n)
			}
		}
	}
}
