package models

import (
	"errors"
	"time"
)

// Token представляет пару OAuth2 токенов текущей сессии
type Token struct {
	AccessTokenExpiry time.Time `json:"access_token_expiry"` // момент истечения access token
	AccessToken       string    `json:"access_token"`        // bearer access token
	RefreshToken      string    `json:"refresh_token"`       // refresh token, не пустой пока сессия активна
}

// Validate checks the token invariants: an access token always carries an
// expiry and a logged-in session always has a refresh token.
func (t *Token) Validate() error {
	if t.AccessToken == "" {
		return errors.New("access token is empty")
	}
	if t.AccessTokenExpiry.IsZero() {
		return errors.New("access token expiry is not set")
	}
	if t.RefreshToken == "" {
		return errors.New("refresh token is empty")
	}
	return nil
}

// ExpiresWithin reports whether the access token expires before now+leeway.
func (t *Token) ExpiresWithin(now time.Time, leeway time.Duration) bool {
	return !now.Add(leeway).Before(t.AccessTokenExpiry)
}
