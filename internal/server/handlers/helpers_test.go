package handlers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/internal/server/storage"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClock is a settable clock for token expiry tests
type testClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testJWTConfig(clock *testClock) JWTConfig {
	return JWTConfig{
		Secret:          []byte("test-secret"),
		Issuer:          "finsync-sandbox",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Now:             clock.Now,
	}
}

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users        map[string]*models.User // username -> User
	getUserError error
}

func newMockUserStorage(t *testing.T, username, password string) *mockUserStorage {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &mockUserStorage{users: map[string]*models.User{
		username: {ID: "user-1", Username: username, PasswordHash: string(hash), CreatedAt: testNow},
	}}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if _, exists := m.users[user.Username]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens        map[string]*models.RefreshToken // token -> RefreshToken
	saveError     error
	deleteError   error
	deletedTokens []string
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.Token] = token
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return rt, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, ok := m.tokens[token]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	m.deletedTokens = append(m.deletedTokens, token)
	return nil
}

func (m *mockTokenStorage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	count := 0
	for token, rt := range m.tokens {
		if rt.UserID == userID {
			delete(m.tokens, token)
			count++
		}
	}
	return count, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	count := 0
	for token, rt := range m.tokens {
		if rt.ExpiresAt.Before(now) {
			delete(m.tokens, token)
			count++
		}
	}
	return count, nil
}

// mockResourceStorage keeps records in memory
type mockResourceStorage struct {
	records    map[string]map[int64]*models.StoredResource // user/type -> id -> record
	lastFilter storage.ResourceFilter
	err        error
}

func newMockResourceStorage() *mockResourceStorage {
	return &mockResourceStorage{records: make(map[string]map[int64]*models.StoredResource)}
}

func resourceKey(userID string, rt models.ResourceType) string {
	return userID + "/" + string(rt)
}

func (m *mockResourceStorage) PutResource(ctx context.Context, res *models.StoredResource) error {
	if m.err != nil {
		return m.err
	}
	key := resourceKey(res.UserID, res.Type)
	if m.records[key] == nil {
		m.records[key] = make(map[int64]*models.StoredResource)
	}
	m.records[key][res.ID] = res
	return nil
}

func (m *mockResourceStorage) ListResources(ctx context.Context, userID string, rt models.ResourceType, filter storage.ResourceFilter) ([]*models.StoredResource, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastFilter = filter

	var out []*models.StoredResource
	for _, res := range m.records[resourceKey(userID, rt)] {
		if filter.AccountID != 0 && res.AccountID != filter.AccountID {
			continue
		}
		if !filter.Since.IsZero() && res.UpdatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockResourceStorage) DeleteResource(ctx context.Context, userID string, rt models.ResourceType, id int64) error {
	if m.err != nil {
		return m.err
	}
	key := resourceKey(userID, rt)
	if _, ok := m.records[key][id]; !ok {
		return storage.ErrResourceNotFound
	}
	delete(m.records[key], id)
	return nil
}
