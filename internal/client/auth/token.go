package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/pkg/api"
)

// FallbackTokenTTL is used when the server reports no lifetime at all.
const FallbackTokenTTL = 5 * time.Minute

// expiryFromJWT reads the exp claim without verifying the signature.
// The client cannot verify it anyway; the value only schedules a refresh.
func expiryFromJWT(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// tokenFromResponse builds the stored token from a grant answer.
// A response without refresh_token keeps the previous one.
func tokenFromResponse(resp *api.TokenResponse, now time.Time, previousRefresh string) models.Token {
	tok := models.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = previousRefresh
	}

	switch exp, ok := expiryFromJWT(resp.AccessToken); {
	case resp.ExpiresIn > 0:
		tok.AccessTokenExpiry = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	case ok:
		tok.AccessTokenExpiry = exp
	default:
		tok.AccessTokenExpiry = now.Add(FallbackTokenTTL)
	}
	return tok
}
