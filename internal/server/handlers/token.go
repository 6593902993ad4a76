package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/internal/server/storage"
	"github.com/iudanet/finsync/internal/validation"
	"github.com/iudanet/finsync/pkg/api"
)

// TokenHandler обрабатывает OAuth2 token и revocation endpoints
type TokenHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	clientID     string
	jwtConfig    JWTConfig
}

// NewTokenHandler создает новый handler для выдачи токенов.
// An empty clientID accepts any client.
func NewTokenHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, jwtConfig JWTConfig, clientID string) *TokenHandler {
	return &TokenHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		jwtConfig:    jwtConfig,
		clientID:     clientID,
	}
}

// Token обрабатывает POST /oauth/token
// Поддерживает grant_type=password и grant_type=refresh_token
func (h *TokenHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		sendOAuthError(h.logger, w, api.ErrCodeInvalidRequest, "malformed form body", http.StatusBadRequest)
		return
	}

	if !h.authenticateClient(r) {
		h.logger.WarnContext(ctx, "unknown oauth client")
		sendOAuthError(h.logger, w, api.ErrCodeInvalidClient, "unknown client", http.StatusUnauthorized)
		return
	}

	switch grant := r.PostForm.Get("grant_type"); grant {
	case api.GrantTypePassword:
		h.passwordGrant(w, r)
	case api.GrantTypeRefreshToken:
		h.refreshGrant(w, r)
	case "":
		sendOAuthError(h.logger, w, api.ErrCodeInvalidRequest, "grant_type is required", http.StatusBadRequest)
	default:
		h.logger.WarnContext(ctx, "unsupported grant type", slog.String("grant_type", grant))
		sendOAuthError(h.logger, w, api.ErrCodeUnsupportedGrantType, "", http.StatusBadRequest)
	}
}

func (h *TokenHandler) passwordGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	if err := validation.ValidateUsername(username); err != nil {
		sendOAuthError(h.logger, w, api.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
		return
	}
	if password == "" {
		sendOAuthError(h.logger, w, api.ErrCodeInvalidRequest, "password is required", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("username", username))
			sendOAuthError(h.logger, w, api.ErrCodeInvalidGrant, "invalid credentials", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendOAuthError(h.logger, w, api.ErrCodeServerError, "", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("username", username))
		sendOAuthError(h.logger, w, api.ErrCodeInvalidGrant, "invalid credentials", http.StatusBadRequest)
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	h.issue(w, r, user)
}

func (h *TokenHandler) refreshGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken := r.PostForm.Get("refresh_token")
	if refreshToken == "" {
		sendOAuthError(h.logger, w, api.ErrCodeInvalidRequest, "refresh_token is required", http.StatusBadRequest)
		return
	}

	storedToken, err := h.tokenStorage.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			sendOAuthError(h.logger, w, api.ErrCodeInvalidGrant, "unknown refresh token", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		sendOAuthError(h.logger, w, api.ErrCodeServerError, "", http.StatusInternalServerError)
		return
	}

	// Старый refresh token одноразовый: ротация при каждом обмене
	if err := h.tokenStorage.DeleteRefreshToken(ctx, refreshToken); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
		h.logger.ErrorContext(ctx, "failed to delete old refresh token", slog.Any("error", err))
		sendOAuthError(h.logger, w, api.ErrCodeServerError, "", http.StatusInternalServerError)
		return
	}

	if !h.jwtConfig.now().Before(storedToken.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", storedToken.UserID))
		sendOAuthError(h.logger, w, api.ErrCodeInvalidGrant, "refresh token expired", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendOAuthError(h.logger, w, api.ErrCodeInvalidGrant, "user no longer exists", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendOAuthError(h.logger, w, api.ErrCodeServerError, "", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed", slog.String("user_id", user.ID))
	h.issue(w, r, user)
}

// issue выдаёт новую пару токенов и сохраняет refresh token
func (h *TokenHandler) issue(w http.ResponseWriter, r *http.Request, user *models.User) {
	ctx := r.Context()

	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		sendOAuthError(h.logger, w, api.ErrCodeServerError, "", http.StatusInternalServerError)
		return
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		sendOAuthError(h.logger, w, api.ErrCodeServerError, "", http.StatusInternalServerError)
		return
	}

	token := &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: h.jwtConfig.now(),
	}
	if err := h.tokenStorage.SaveRefreshToken(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		sendOAuthError(h.logger, w, api.ErrCodeServerError, "", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	sendJSON(h.logger, w, api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}, http.StatusOK)
}

// Revoke обрабатывает POST /oauth/revoke (RFC 7009).
// Неизвестный токен не является ошибкой.
func (h *TokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		sendOAuthError(h.logger, w, api.ErrCodeInvalidRequest, "malformed form body", http.StatusBadRequest)
		return
	}
	if !h.authenticateClient(r) {
		sendOAuthError(h.logger, w, api.ErrCodeInvalidClient, "unknown client", http.StatusUnauthorized)
		return
	}

	token := r.PostForm.Get("token")
	if token == "" {
		sendOAuthError(h.logger, w, api.ErrCodeInvalidRequest, "token is required", http.StatusBadRequest)
		return
	}

	// Access token живёт до истечения срока: отзываются только refresh токены
	err := h.tokenStorage.DeleteRefreshToken(ctx, token)
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "refresh token revoked")
	case errors.Is(err, storage.ErrTokenNotFound):
	default:
		h.logger.ErrorContext(ctx, "failed to revoke token", slog.Any("error", err))
		sendOAuthError(h.logger, w, api.ErrCodeServerError, "", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// authenticateClient сверяет client_id из Basic auth или формы
func (h *TokenHandler) authenticateClient(r *http.Request) bool {
	if h.clientID == "" {
		return true
	}

	clientID := r.PostForm.Get("client_id")
	if user, _, ok := r.BasicAuth(); ok {
		if unescaped, err := url.QueryUnescape(user); err == nil {
			clientID = unescaped
		}
	}
	return clientID == h.clientID
}
