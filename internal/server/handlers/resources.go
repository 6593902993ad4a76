package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/internal/server/storage"
	"github.com/iudanet/finsync/pkg/api"
)

// maxResourceBody ограничивает тело PUT запроса
const maxResourceBody = 1 << 20

// listResponse is the list envelope; elements are served as stored
type listResponse struct {
	Data []json.RawMessage `json:"data"`
}

// ResourceHandler обрабатывает запросы к ресурсам пользователя
type ResourceHandler struct {
	logger  *slog.Logger
	storage storage.ResourceStorage
	now     func() time.Time
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(logger *slog.Logger, storage storage.ResourceStorage) *ResourceHandler {
	return &ResourceHandler{
		logger:  logger,
		storage: storage,
		now:     time.Now,
	}
}

// List обрабатывает GET /{resource}
// Поддерживает фильтры account_id и updated_since (RFC 3339)
func (h *ResourceHandler) List(rt models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := GetUserID(ctx)
		if !ok {
			sendError(h.logger, w, api.ErrCodeInvalidToken, "unauthenticated", http.StatusUnauthorized)
			return
		}

		var filter storage.ResourceFilter
		query := r.URL.Query()

		if raw := query.Get(api.QueryAccountID); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				sendError(h.logger, w, api.ErrCodeInvalidRequest, "account_id must be a positive integer", http.StatusBadRequest)
				return
			}
			filter.AccountID = id
		}
		if raw := query.Get(api.QueryUpdatedSince); raw != "" {
			since, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				sendError(h.logger, w, api.ErrCodeInvalidRequest, "updated_since must be an RFC 3339 timestamp", http.StatusBadRequest)
				return
			}
			filter.Since = since
		}

		resources, err := h.storage.ListResources(ctx, userID, rt, filter)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to list resources", slog.String("type", rt.String()), slog.Any("error", err))
			sendError(h.logger, w, "internal_error", "internal server error", http.StatusInternalServerError)
			return
		}

		resp := listResponse{Data: make([]json.RawMessage, 0, len(resources))}
		for _, res := range resources {
			resp.Data = append(resp.Data, res.Data)
		}

		h.logger.DebugContext(ctx, "resources listed",
			slog.String("type", rt.String()),
			slog.Int("count", len(resp.Data)))

		sendJSON(h.logger, w, resp, http.StatusOK)
	}
}

// Put обрабатывает PUT /{resource}/{id}
// Тело сохраняется как есть, поэтому можно записать и некорректный по схеме элемент
func (h *ResourceHandler) Put(rt models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := GetUserID(ctx)
		if !ok {
			sendError(h.logger, w, api.ErrCodeInvalidToken, "unauthenticated", http.StatusUnauthorized)
			return
		}

		id, ok := h.pathID(w, r)
		if !ok {
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxResourceBody))
		if err != nil || !json.Valid(body) {
			sendError(h.logger, w, api.ErrCodeInvalidRequest, "body must be a JSON document", http.StatusBadRequest)
			return
		}

		res := &models.StoredResource{
			UserID:    userID,
			Type:      rt,
			ID:        id,
			AccountID: peekAccountID(body),
			UpdatedAt: h.now(),
			Data:      body,
		}
		if err := h.storage.PutResource(ctx, res); err != nil {
			h.logger.ErrorContext(ctx, "failed to put resource", slog.String("type", rt.String()), slog.Any("error", err))
			sendError(h.logger, w, "internal_error", "internal server error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// Delete обрабатывает DELETE /{resource}/{id}
func (h *ResourceHandler) Delete(rt models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := GetUserID(ctx)
		if !ok {
			sendError(h.logger, w, api.ErrCodeInvalidToken, "unauthenticated", http.StatusUnauthorized)
			return
		}

		id, ok := h.pathID(w, r)
		if !ok {
			return
		}

		err := h.storage.DeleteResource(ctx, userID, rt, id)
		switch {
		case errors.Is(err, storage.ErrResourceNotFound):
			sendError(h.logger, w, "not_found", "resource not found", http.StatusNotFound)
			return
		case err != nil:
			h.logger.ErrorContext(ctx, "failed to delete resource", slog.String("type", rt.String()), slog.Any("error", err))
			sendError(h.logger, w, "internal_error", "internal server error", http.StatusInternalServerError)
			return
		}

		h.logger.InfoContext(ctx, "resource deleted", slog.String("type", rt.String()), slog.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *ResourceHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		sendError(h.logger, w, api.ErrCodeInvalidRequest, "id must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// peekAccountID читает account_id, если он есть и является числом
func peekAccountID(body []byte) int64 {
	var probe struct {
		AccountID int64 `json:"account_id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return 0
	}
	return probe.AccountID
}
