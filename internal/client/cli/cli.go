// Package cli implements the finsync command line: session management,
// synchronization and browsing of the local mirror.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/iudanet/finsync/internal/client/auth"
	"github.com/iudanet/finsync/internal/client/data"
	"github.com/iudanet/finsync/internal/client/iocli"
	"github.com/iudanet/finsync/internal/client/sync"
)

//go:generate moq -out auth_mock.go . AuthService

// AuthService is the part of auth.Service the commands use
type AuthService interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*auth.Status, error)
}

var _ AuthService = (*auth.Service)(nil)

// Cli выполняет команды поверх клиентских сервисов
type Cli struct {
	io          iocli.IO
	authService AuthService
	syncService sync.Service
	dataService data.Service
}

// New creates a Cli
func New(io iocli.IO, authService AuthService, syncService sync.Service, dataService data.Service) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		syncService: syncService,
		dataService: dataService,
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}
