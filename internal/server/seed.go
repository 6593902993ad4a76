package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/internal/server/storage"
	"github.com/iudanet/finsync/internal/validation"
)

//go:embed fixtures/demo.json
var demoFixtures []byte

// SeedStorage is the storage Seed writes to
type SeedStorage interface {
	storage.UserStorage
	storage.ResourceStorage
}

// Seed creates the demo user, or reuses it, and stores the demo resources
// for it. Records are replaced, so seeding twice is harmless. Fixture
// elements are stored verbatim, including one with a wrongly typed field.
func Seed(ctx context.Context, store SeedStorage, logger *slog.Logger, username, password string, now time.Time) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	user, err := ensureUser(ctx, store, username, password, now)
	if err != nil {
		return nil, err
	}

	var fixtures map[models.ResourceType][]json.RawMessage
	if err := json.Unmarshal(demoFixtures, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	total := 0
	for rt, elements := range fixtures {
		if _, ok := models.ParseResourceType(string(rt)); !ok {
			return nil, fmt.Errorf("unknown resource type %q in fixtures", rt)
		}
		for i, data := range elements {
			id, accountID, err := peekKeys(data)
			if err != nil {
				return nil, fmt.Errorf("fixture %s[%d]: %w", rt, i, err)
			}
			err = store.PutResource(ctx, &models.StoredResource{
				UserID:    user.ID,
				Type:      rt,
				ID:        id,
				AccountID: accountID,
				UpdatedAt: now,
				Data:      data,
			})
			if err != nil {
				return nil, err
			}
			total++
		}
	}

	logger.Info("Demo data seeded", "user_id", user.ID, "records", total)
	return user, nil
}

func ensureUser(ctx context.Context, store storage.UserStorage, username, password string, now time.Time) (*models.User, error) {
	existing, err := store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
			return nil, fmt.Errorf("user %q exists with a different password", username)
		}
		return existing, nil
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// peekKeys reads the id and, when it is a number, the account_id of a
// fixture element.
func peekKeys(data json.RawMessage) (int64, int64, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return 0, 0, err
	}

	id, err := strconv.ParseInt(string(fields["id"]), 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("invalid id %s", fields["id"])
	}

	var accountID int64
	if raw, ok := fields["account_id"]; ok {
		_ = json.Unmarshal(raw, &accountID)
	}
	return id, accountID, nil
}
