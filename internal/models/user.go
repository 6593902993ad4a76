package models

import (
	"encoding/json"
	"time"
)

// User представляет пользователя sandbox API
type User struct {
	CreatedAt    time.Time `json:"created_at"`    // время создания
	ID           string    `json:"id"`            // UUID пользователя
	Username     string    `json:"username"`      // уникальный username
	PasswordHash string    `json:"password_hash"` // bcrypt хеш пароля
}

// RefreshToken представляет выданный sandbox API refresh token
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	Token     string    `json:"token"`      // значение токена
	UserID    string    `json:"user_id"`    // ID пользователя
}

// StoredResource is a resource record as the sandbox API keeps it: the JSON
// body is served as is, so a malformed element reaches clients unchanged.
type StoredResource struct {
	UpdatedAt time.Time       `json:"updated_at"` // время последнего изменения
	UserID    string          `json:"user_id"`    // владелец
	Type      ResourceType    `json:"type"`       // тип ресурса
	Data      json.RawMessage `json:"data"`       // тело записи
	ID        int64           `json:"id"`         // серверный ID
	AccountID int64           `json:"account_id"` // FK на счёт, 0 если нет
}
