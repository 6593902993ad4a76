// Package pipeline sends authenticated requests to the resource API,
// refreshing an expired access token and replaying the request once.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/finsync/internal/async"
	"github.com/iudanet/finsync/internal/client/api"
	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/internal/models"
)

// HeaderRequestID correlates both attempts of one logical call.
const HeaderRequestID = "X-Request-ID"

// DefaultExpiredCodes are the error codes of a 401 answer that mean the
// access token has expired. A 401 without any code means the same.
var DefaultExpiredCodes = []string{"invalid_token", "token_expired", "invalid_access_token"}

// Transport performs one physical HTTP attempt.
type Transport interface {
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// TokenSource returns the current token.
type TokenSource interface {
	Get(ctx context.Context) (*models.Token, error)
}

// TokenRefresher exchanges the refresh token; see auth.Refresher.
type TokenRefresher interface {
	Refresh(ctx context.Context, failedAccessToken string) (*models.Token, error)
}

// Request is a logical API call relative to the base URL.
type Request struct {
	Query  url.Values
	Header http.Header
	Method string
	Path   string
	Body   []byte
}

// Response is a successful (2xx) answer.
type Response struct {
	Header     http.Header
	RequestID  string
	Body       []byte
	StatusCode int
	Attempts   int
}

// Options configures Pipeline.
type Options struct {
	BaseURL       string
	ExpiredCodes  []string
	RefreshLeeway time.Duration
}

// Pipeline executes requests with the session token.
// It makes at most two physical attempts per call.
type Pipeline struct {
	transport    Transport
	tokens       TokenSource
	refresher    TokenRefresher
	logger       *slog.Logger
	now          func() time.Time
	expiredCodes map[string]struct{}
	baseURL      string
	leeway       time.Duration
}

// New creates a Pipeline.
func New(transport Transport, tokens TokenSource, refresher TokenRefresher, opts Options, logger *slog.Logger) *Pipeline {
	codes := opts.ExpiredCodes
	if len(codes) == 0 {
		codes = DefaultExpiredCodes
	}
	expired := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		expired[c] = struct{}{}
	}

	return &Pipeline{
		transport:    transport,
		tokens:       tokens,
		refresher:    refresher,
		logger:       logger,
		now:          time.Now,
		expiredCodes: expired,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		leeway:       opts.RefreshLeeway,
	}
}

// ExecuteAsync runs Execute in the background.
func (p *Pipeline) ExecuteAsync(ctx context.Context, req *Request) *async.Future[*Response] {
	return async.Run(ctx, func(ctx context.Context) (*Response, error) {
		return p.Execute(ctx, req)
	})
}

// Execute sends req with the current access token.
//
// Errors: errs.ErrNotAuthenticated when there is no session,
// errs.ErrSessionInvalid when the refresh token was rejected or the replayed
// request is still unauthorized, errs.ErrTransientNetwork for transport
// failures, *errs.APIError for any other non-2xx answer.
func (p *Pipeline) Execute(ctx context.Context, req *Request) (*Response, error) {
	tok, err := p.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}

	tok, refreshed, err := p.ensureFresh(ctx, tok)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID, "method", req.Method, "path", req.Path)

	resp, err := p.attempt(ctx, req, tok.AccessToken, requestID)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if !p.isExpired(resp) {
			return nil, apiError(resp)
		}
		// Токен только что обновлён: второй обмен за один вызов запрещён
		if refreshed {
			logger.Warn("Freshly refreshed token rejected")
			return nil, fmt.Errorf("%w: %w", errs.ErrSessionInvalid, apiError(resp))
		}

		logger.Info("Access token rejected, refreshing")
		fresh, err := p.refresher.Refresh(ctx, tok.AccessToken)
		if err != nil {
			return nil, err
		}

		resp, err = p.attempt(ctx, req, fresh.AccessToken, requestID)
		if err != nil {
			return nil, err
		}
		resp.Attempts = 2

		if resp.StatusCode == http.StatusUnauthorized {
			logger.Warn("Request unauthorized after token refresh")
			return nil, fmt.Errorf("%w: %w", errs.ErrSessionInvalid, apiError(resp))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}

	logger.Debug("Request completed", "status", resp.StatusCode, "attempts", resp.Attempts)
	return resp, nil
}

// ensureFresh refreshes ahead of time when the token is about to expire and
// reports whether it did. A transient failure is tolerated while the old
// token is still valid.
func (p *Pipeline) ensureFresh(ctx context.Context, tok *models.Token) (*models.Token, bool, error) {
	now := p.now()
	if !tok.ExpiresWithin(now, p.leeway) {
		return tok, false, nil
	}

	fresh, err := p.refresher.Refresh(ctx, tok.AccessToken)
	if err == nil {
		return fresh, true, nil
	}
	if errs.IsAuth(err) || tok.ExpiresWithin(now, 0) {
		return nil, false, err
	}

	p.logger.Warn("Proactive token refresh failed, using current token", "error", err)
	return tok, false, nil
}

func (p *Pipeline) attempt(ctx context.Context, req *Request, accessToken, requestID string) (*Response, error) {
	target := p.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set(HeaderRequestID, requestID)

	httpResp, err := p.transport.Send(ctx, httpReq)
	if err != nil {
		// отмена вызывающим - не сетевая ошибка
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errs.IsNetwork(err) {
			return nil, errs.Transient(err)
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errs.Transient(fmt.Errorf("failed to read response body: %w", err))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
		RequestID:  requestID,
		Attempts:   1,
	}, nil
}

// isExpired recognizes the token-expired signal: an expired code in the
// JSON body or in the WWW-Authenticate challenge, or no code at all.
func (p *Pipeline) isExpired(resp *Response) bool {
	code, _ := api.ParseAPIError(resp.Body)
	if code == "" {
		code = bearerErrorCode(resp.Header.Get("WWW-Authenticate"))
	}
	if code == "" {
		return true
	}
	_, ok := p.expiredCodes[code]
	return ok
}

// bearerErrorCode extracts error="..." from a Bearer challenge.
func bearerErrorCode(challenge string) string {
	scheme, params, ok := strings.Cut(strings.TrimSpace(challenge), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	for _, part := range strings.Split(params, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && key == "error" {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}

func apiError(resp *Response) *errs.APIError {
	code, message := api.ParseAPIError(resp.Body)
	return &errs.APIError{StatusCode: resp.StatusCode, Code: code, Message: message}
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var apiErr *errs.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
