package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://localhost:8080/"})

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)

	client = NewClient(Options{Timeout: 5 * time.Second})
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestClient_PasswordGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		id, secret, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "cli", id)
		assert.Equal(t, "s3cret", secret)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "alice@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "hunter22", r.PostForm.Get("password"))
		assert.Empty(t, r.PostForm.Get("client_id"))

		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			ExpiresIn:    300,
		})
	}))
	defer server.Close()

	client := NewClient(Options{TokenURL: server.URL + "/oauth/token", ClientID: "cli", ClientSecret: "s3cret"})

	resp, err := client.PasswordGrant(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, int64(300), resp.ExpiresIn)
}

func TestClient_RefreshGrant_PublicClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "r-1", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "mobile", r.PostForm.Get("client_id"))

		_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "a-2", RefreshToken: "r-2"})
	}))
	defer server.Close()

	client := NewClient(Options{TokenURL: server.URL, ClientID: "mobile"})

	resp, err := client.RefreshGrant(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "a-2", resp.AccessToken)
}

func TestClient_Token_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   string
		status     int
		wantOAuth  bool
		wantErrMsg string
	}{
		{
			name:      "invalid grant",
			status:    http.StatusBadRequest,
			body:      `{"error":"invalid_grant","error_description":"refresh token revoked"}`,
			wantOAuth: true,
			wantCode:  "invalid_grant",
		},
		{
			name:      "server error without body",
			status:    http.StatusBadGateway,
			body:      `<html>bad gateway</html>`,
			wantOAuth: true,
		},
		{
			name:       "success without access token",
			status:     http.StatusOK,
			body:       `{"refresh_token":"r"}`,
			wantErrMsg: "no access_token",
		},
		{
			name:       "success with garbage",
			status:     http.StatusOK,
			body:       `not json`,
			wantErrMsg: "failed to decode token response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := NewClient(Options{TokenURL: server.URL})
			_, err := client.RefreshGrant(context.Background(), "r")
			require.Error(t, err)

			if tt.wantOAuth {
				var oauthErr *errs.OAuthError
				require.True(t, errors.As(err, &oauthErr))
				assert.Equal(t, tt.status, oauthErr.StatusCode)
				assert.Equal(t, tt.wantCode, oauthErr.Code)
				return
			}
			assert.Contains(t, err.Error(), tt.wantErrMsg)
		})
	}
}

func TestClient_Send_NetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Options{BaseURL: url})
	req, err := http.NewRequest(http.MethodGet, url+"/accounts", nil)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTransientNetwork)
}

func TestClient_Send_TimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	req, err := http.NewRequest(http.MethodGet, server.URL+"/accounts", nil)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrTransientNetwork)
}

func TestClient_Revoke(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm.Get("token") + "/" + r.PostForm.Get("token_type_hint")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{RevokeURL: server.URL})
	require.NoError(t, client.Revoke(context.Background(), "r-1", "refresh_token"))
	assert.Equal(t, "r-1/refresh_token", got)

	// Без endpoint'а отзыв ничего не делает
	assert.NoError(t, NewClient(Options{}).Revoke(context.Background(), "r-1", ""))
}

func TestParseAPIError(t *testing.T) {
	code, msg := ParseAPIError([]byte(`{"error":"not_found","message":"no such goal"}`))
	assert.Equal(t, "not_found", code)
	assert.Equal(t, "no such goal", msg)

	code, msg = ParseAPIError([]byte("  plain text \n"))
	assert.Empty(t, code)
	assert.Equal(t, "plain text", msg)
}
