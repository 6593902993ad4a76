package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finsync/internal/client/api"
	"github.com/iudanet/finsync/internal/client/auth"
	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/internal/client/storage/boltdb"
	"github.com/iudanet/finsync/internal/crypto"
	"github.com/iudanet/finsync/internal/models"
	pkgapi "github.com/iudanet/finsync/pkg/api"
)

// fakeAPI - ресурсный API и token endpoint в одном httptest сервере
type fakeAPI struct {
	mu          sync.Mutex
	validTokens map[string]bool
	requestIDs  []string

	attempts     atomic.Int32
	refreshCalls atomic.Int32

	// refreshHandler переопределяет ответ token endpoint'а
	refreshHandler func(w http.ResponseWriter)
	// resourceHandler переопределяет ответ ресурса для валидного токена
	resourceHandler func(w http.ResponseWriter)
	// expiredAnswer пишет 401 для невалидного токена
	expiredAnswer func(w http.ResponseWriter)
	// inspect видит каждый запрос к ресурсу
	inspect func(r *http.Request)
	delay   time.Duration
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/oauth/token" {
		n := f.refreshCalls.Add(1)
		if f.refreshHandler != nil {
			f.refreshHandler(w)
			return
		}
		// короткая пауза, чтобы конкурентные вызовы успели склеиться
		time.Sleep(20 * time.Millisecond)
		access := "fresh-" + string(rune('0'+n))
		f.mu.Lock()
		f.validTokens[access] = true
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(pkgapi.TokenResponse{AccessToken: access, RefreshToken: "r-next", ExpiresIn: 300})
		return
	}

	f.attempts.Add(1)
	if f.inspect != nil {
		f.inspect(r)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, r.Header.Get(HeaderRequestID))
	valid := f.validTokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	f.mu.Unlock()

	if !valid {
		if f.expiredAnswer != nil {
			f.expiredAnswer(w)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"invalid_token"}`)
		return
	}

	if f.resourceHandler != nil {
		f.resourceHandler(w)
		return
	}
	_, _ = io.WriteString(w, `{"data":[{"id":1}]}`)
}

type fixture struct {
	api       *fakeAPI
	server    *httptest.Server
	store     *auth.TokenStore
	refresher *auth.Refresher
	pipeline  *Pipeline
}

// newFixture настраивает fakeAPI до запуска сервера
func newFixture(t *testing.T, tok models.Token, opts Options, configure ...func(*fakeAPI)) *fixture {
	t.Helper()

	fake := &fakeAPI{validTokens: map[string]bool{"valid": true}}
	for _, fn := range configure {
		fn(fake)
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	db, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	key := make([]byte, crypto.KeySize)
	sealer, err := crypto.NewSealer(key)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.NewClient(api.Options{
		BaseURL:  server.URL,
		TokenURL: server.URL + "/oauth/token",
		ClientID: "test",
		Timeout:  time.Second,
	})

	store := auth.NewTokenStore(db, sealer)
	if tok.AccessToken != "" {
		require.NoError(t, store.SetSession(context.Background(), "alice", tok))
	}
	refresher := auth.NewRefresher(store, client, logger)

	opts.BaseURL = server.URL
	return &fixture{
		api:       fake,
		server:    server,
		store:     store,
		refresher: refresher,
		pipeline:  New(client, store, refresher, opts, logger),
	}
}

func sessionToken(access string, ttl time.Duration) models.Token {
	return models.Token{AccessToken: access, RefreshToken: "r-1", AccessTokenExpiry: time.Now().Add(ttl)}
}

func get(path string) *Request {
	return &Request{Method: http.MethodGet, Path: path}
}

func TestExecute_ValidToken(t *testing.T) {
	f := newFixture(t, sessionToken("valid", time.Hour), Options{})

	resp, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":[{"id":1}]}`, string(resp.Body))
	assert.Equal(t, 1, resp.Attempts)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, int32(0), f.api.refreshCalls.Load())
}

func TestExecute_ExpiredTokenRefreshesAndRetries(t *testing.T) {
	f := newFixture(t, sessionToken("expired", time.Hour), Options{})

	resp, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, resp.Attempts)

	assert.Equal(t, int32(1), f.api.refreshCalls.Load())
	assert.Equal(t, int32(2), f.api.attempts.Load())

	// Обе попытки несут один и тот же request ID
	f.api.mu.Lock()
	ids := append([]string(nil), f.api.requestIDs...)
	f.api.mu.Unlock()
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, resp.RequestID, ids[0])

	tok, err := f.store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)
	assert.Equal(t, "r-next", tok.RefreshToken)
}

func TestExecute_InvalidGrantClearsSession(t *testing.T) {
	f := newFixture(t, sessionToken("expired", time.Hour), Options{}, func(a *fakeAPI) {
		a.refreshHandler = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
		}
	})

	_, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSessionInvalid)

	_, err = f.store.Get(context.Background())
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
	assert.Equal(t, auth.StateFailed, f.refresher.State())
	assert.Equal(t, int32(1), f.api.attempts.Load())
}

func TestExecute_AtMostTwoAttempts(t *testing.T) {
	// сервер не принимает даже свежие токены
	f := newFixture(t, sessionToken("expired", time.Hour), Options{}, func(a *fakeAPI) {
		a.resourceHandler = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_token"}`)
		}
	})

	_, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSessionInvalid)
	assert.Equal(t, int32(2), f.api.attempts.Load())
	assert.Equal(t, int32(1), f.api.refreshCalls.Load())
}

func TestExecute_NotAuthenticated(t *testing.T) {
	f := newFixture(t, models.Token{}, Options{})

	_, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
	assert.Equal(t, int32(0), f.api.attempts.Load())
}

func TestExecute_NetworkErrorNeverRefreshes(t *testing.T) {
	f := newFixture(t, sessionToken("valid", time.Hour), Options{})
	f.server.Close()

	_, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTransientNetwork)
	assert.Equal(t, int32(0), f.api.refreshCalls.Load())
	assert.Equal(t, auth.StateIdle, f.refresher.State())
}

func TestExecute_TimeoutIsTransient(t *testing.T) {
	f := newFixture(t, sessionToken("valid", time.Hour), Options{}, func(a *fakeAPI) {
		a.delay = 1500 * time.Millisecond
	})

	_, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTransientNetwork)
	assert.Equal(t, int32(0), f.api.refreshCalls.Load())
}

func TestExecute_CanceledIsNotNetworkError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t, sessionToken("valid", time.Hour), Options{}, func(a *fakeAPI) {
		a.inspect = func(*http.Request) { cancel() }
		a.delay = 300 * time.Millisecond
	})

	_, err := f.pipeline.Execute(ctx, get("/accounts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errs.ErrTransientNetwork)
	assert.Equal(t, int32(0), f.api.refreshCalls.Load())
}

type transportFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

func (f transportFunc) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f(ctx, req)
}

func TestExecute_TransportErrors(t *testing.T) {
	tests := []struct {
		sendErr       error
		name          string
		wantTransient bool
	}{
		{
			name:          "connection failure",
			sendErr:       &url.Error{Op: "Get", URL: "http://api.test/accounts", Err: errors.New("connection refused")},
			wantTransient: true,
		},
		{
			name:          "already transient",
			sendErr:       errs.Transient(errors.New("reset by peer")),
			wantTransient: true,
		},
		{
			name:          "not a network error",
			sendErr:       errors.New("request rejected by transport"),
			wantTransient: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, sessionToken("valid", time.Hour), Options{})
			transport := transportFunc(func(context.Context, *http.Request) (*http.Response, error) {
				return nil, tt.sendErr
			})
			p := New(transport, f.store, f.refresher, Options{BaseURL: f.server.URL}, slog.New(slog.NewTextHandler(io.Discard, nil)))

			_, err := p.Execute(context.Background(), get("/accounts"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sendErr)
			assert.Equal(t, tt.wantTransient, errors.Is(err, errs.ErrTransientNetwork))
			assert.Equal(t, int32(0), f.api.refreshCalls.Load())
		})
	}
}

func TestExecute_NonAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   string
		status     int
		invalidTok bool
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"error":"not_found","message":"no such goal"}`, wantCode: "not_found"},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "401 with other code", status: http.StatusUnauthorized, body: `{"error":"insufficient_scope"}`, wantCode: "insufficient_scope", invalidTok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := func(w http.ResponseWriter) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}
			f := newFixture(t, sessionToken("valid", time.Hour), Options{}, func(a *fakeAPI) {
				if tt.invalidTok {
					a.validTokens = map[string]bool{}
					a.expiredAnswer = answer
				} else {
					a.resourceHandler = answer
				}
			})

			_, err := f.pipeline.Execute(context.Background(), get("/goals/1"))
			require.Error(t, err)

			var apiErr *errs.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, int32(0), f.api.refreshCalls.Load())
			assert.Equal(t, int32(1), f.api.attempts.Load())
		})
	}
}

func TestExecute_WWWAuthenticateSignal(t *testing.T) {
	f := newFixture(t, sessionToken("expired", time.Hour), Options{}, func(a *fakeAPI) {
		a.expiredAnswer = func(w http.ResponseWriter) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="expired"`)
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	resp, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
}

func TestExecute_CustomExpiredCodes(t *testing.T) {
	f := newFixture(t, sessionToken("expired", time.Hour), Options{ExpiredCodes: []string{"session_expired"}}, func(a *fakeAPI) {
		a.expiredAnswer = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"session_expired"}`)
		}
	})

	resp, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
}

func TestExecute_ProactiveRefresh(t *testing.T) {
	f := newFixture(t, sessionToken("expired", 10*time.Second), Options{RefreshLeeway: 30 * time.Second})

	resp, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, int32(1), f.api.refreshCalls.Load())
	assert.Equal(t, int32(1), f.api.attempts.Load())
}

func TestExecute_ProactiveRefreshIsTheOnlyRefresh(t *testing.T) {
	f := newFixture(t, sessionToken("expired", 10*time.Second), Options{RefreshLeeway: 30 * time.Second}, func(a *fakeAPI) {
		a.resourceHandler = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_token"}`)
		}
	})

	_, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSessionInvalid)

	var apiErr *errs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	assert.Equal(t, int32(1), f.api.refreshCalls.Load())
	assert.Equal(t, int32(1), f.api.attempts.Load())
}

func TestExecute_ProactiveRefreshTransientFailureUsesCurrentToken(t *testing.T) {
	f := newFixture(t, sessionToken("valid", 10*time.Second), Options{RefreshLeeway: 30 * time.Second}, func(a *fakeAPI) {
		a.refreshHandler = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	resp, err := f.pipeline.Execute(context.Background(), get("/accounts"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExecute_ConcurrentCallsShareOneRefresh(t *testing.T) {
	f := newFixture(t, sessionToken("expired", time.Hour), Options{})

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pipeline.Execute(context.Background(), get("/accounts"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.api.refreshCalls.Load())
	assert.LessOrEqual(t, f.api.attempts.Load(), int32(2*callers))
}

func TestExecuteAsync(t *testing.T) {
	f := newFixture(t, sessionToken("valid", time.Hour), Options{})

	future := f.pipeline.ExecuteAsync(context.Background(), get("/accounts"))
	resp, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExecute_SendsBodyAndQuery(t *testing.T) {
	var gotQuery, gotBody, gotType string
	f := newFixture(t, sessionToken("valid", time.Hour), Options{}, func(a *fakeAPI) {
		a.inspect = func(r *http.Request) {
			gotQuery = r.URL.RawQuery
			gotType = r.Header.Get("Content-Type")
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
		}
		a.resourceHandler = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusNoContent)
		}
	})

	req := &Request{
		Method: http.MethodPost,
		Path:   "/goals",
		Query:  map[string][]string{"account_id": {"7"}},
		Body:   []byte(`{"name":"car"}`),
	}
	resp, err := f.pipeline.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "account_id=7", gotQuery)
	assert.Equal(t, `{"name":"car"}`, gotBody)
	assert.Equal(t, "application/json", gotType)
}

func TestBearerErrorCode(t *testing.T) {
	assert.Equal(t, "invalid_token", bearerErrorCode(`Bearer error="invalid_token"`))
	assert.Equal(t, "invalid_token", bearerErrorCode(`Bearer realm="x", error="invalid_token"`))
	assert.Equal(t, "", bearerErrorCode(`Bearer realm="x"`))
	assert.Equal(t, "", bearerErrorCode(`Basic realm="x"`))
	assert.Equal(t, "", bearerErrorCode(""))
}
