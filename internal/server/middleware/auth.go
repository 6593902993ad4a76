package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/finsync/internal/server/handlers"
	"github.com/iudanet/finsync/pkg/api"
)

// AuthMiddleware создает middleware для проверки bearer JWT токена.
// Отказ - 401 с кодом invalid_token в теле и в WWW-Authenticate (RFC 6750)
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				// Без токена код ошибки не передаётся
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Bearer realm="finsync"`)
				writeJSONError(w, http.StatusUnauthorized, "", "missing bearer token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.Warn("Invalid Authorization header format")
				w.Header().Set("WWW-Authenticate", `Bearer realm="finsync", error="invalid_request"`)
				writeJSONError(w, http.StatusBadRequest, api.ErrCodeInvalidRequest, "invalid authorization header")
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, parts[1])
			if err != nil {
				description := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					description = "token expired"
				}
				logger.Warn("Access token rejected", "reason", description)
				w.Header().Set("WWW-Authenticate",
					fmt.Sprintf(`Bearer realm="finsync", error=%q, error_description=%q`, api.ErrCodeInvalidToken, description))
				writeJSONError(w, http.StatusUnauthorized, api.ErrCodeInvalidToken, description)
				return
			}

			logger.Debug("User authenticated", "user_id", claims.UserID)

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), claims.UserID, claims.Username)))
		})
	}
}
