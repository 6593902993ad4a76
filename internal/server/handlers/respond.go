package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/finsync/pkg/api"
)

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет ответ resource API с ошибкой
func sendError(logger *slog.Logger, w http.ResponseWriter, code, message string, statusCode int) {
	sendJSON(logger, w, api.ErrorResponse{Error: code, Message: message}, statusCode)
}

// sendOAuthError отправляет ошибку token endpoint
func sendOAuthError(logger *slog.Logger, w http.ResponseWriter, code, description string, statusCode int) {
	w.Header().Set("Cache-Control", "no-store")
	if statusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Basic realm="finsync"`)
	}
	sendJSON(logger, w, api.OAuthErrorResponse{Error: code, ErrorDescription: description}, statusCode)
}
