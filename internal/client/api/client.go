package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/pkg/api"
)

// DefaultTimeout bounds one physical HTTP attempt.
const DefaultTimeout = 30 * time.Second

// Options configures Client.
type Options struct {
	BaseURL      string        // базовый URL ресурсного API
	TokenURL     string        // OAuth2 token endpoint
	RevokeURL    string        // OAuth2 revocation endpoint, может быть пустым
	ClientID     string        // OAuth2 client_id
	ClientSecret string        // OAuth2 client_secret, пустой для public client
	Timeout      time.Duration // таймаут одной попытки
}

// Client представляет HTTP клиент для взаимодействия с финансовым API
type Client struct {
	httpClient *http.Client
	opts       Options
}

// NewClient создает новый API клиент
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL returns the resource API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.opts.BaseURL
}

// Send performs one physical HTTP attempt.
// Transport failures and timeouts are wrapped with errs.ErrTransientNetwork.
func (c *Client) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, errs.Transient(fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	return resp, nil
}

// PasswordGrant exchanges user credentials for a token pair.
func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", api.GrantTypePassword)
	form.Set("username", username)
	form.Set("password", password)
	return c.Token(ctx, form)
}

// RefreshGrant exchanges a refresh token for a new token pair.
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", api.GrantTypeRefreshToken)
	form.Set("refresh_token", refreshToken)
	return c.Token(ctx, form)
}

// Token posts a grant request to the token endpoint.
// Non-2xx answers are returned as *errs.OAuthError.
func (c *Client) Token(ctx context.Context, form url.Values) (*api.TokenResponse, error) {
	body, status, err := c.postForm(ctx, c.opts.TokenURL, form)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, parseOAuthError(status, body)
	}

	var resp api.TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("token response has no access_token")
	}
	return &resp, nil
}

// Revoke asks the server to revoke a token. It is a no-op when no
// revocation endpoint is configured.
func (c *Client) Revoke(ctx context.Context, token, tokenTypeHint string) error {
	if c.opts.RevokeURL == "" {
		return nil
	}

	form := url.Values{}
	form.Set("token", token)
	if tokenTypeHint != "" {
		form.Set("token_type_hint", tokenTypeHint)
	}

	body, status, err := c.postForm(ctx, c.opts.RevokeURL, form)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return parseOAuthError(status, body)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, int, error) {
	// Public client передаёт client_id в форме, confidential - через Basic auth
	if c.opts.ClientSecret == "" && c.opts.ClientID != "" {
		form.Set("client_id", c.opts.ClientID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.opts.ClientSecret != "" {
		req.SetBasicAuth(url.QueryEscape(c.opts.ClientID), url.QueryEscape(c.opts.ClientSecret))
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errs.Transient(fmt.Errorf("failed to read response body: %w", err))
	}
	return body, resp.StatusCode, nil
}

func parseOAuthError(status int, body []byte) *errs.OAuthError {
	oauthErr := &errs.OAuthError{StatusCode: status}

	var errResp api.OAuthErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		oauthErr.Code = errResp.Error
		oauthErr.Description = errResp.ErrorDescription
	}
	return oauthErr
}

// ParseAPIError decodes a non-2xx resource API answer.
func ParseAPIError(body []byte) (code, message string) {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return "", strings.TrimSpace(string(body))
	}
	return errResp.Error, errResp.Message
}
