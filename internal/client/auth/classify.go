package auth

import (
	"errors"
	"net/http"

	"github.com/iudanet/finsync/internal/client/errs"
)

// TerminalRefreshCodes are OAuth2 error codes of the token endpoint after
// which the refresh token will never work again.
var TerminalRefreshCodes = map[string]struct{}{
	"invalid_grant":          {},
	"invalid_client":         {},
	"unauthorized_client":    {},
	"unsupported_grant_type": {},
	"invalid_scope":          {},
}

// IsTerminalRefreshError reports whether a refresh failure must end the session.
//
// Terminal: 400, 401 or 403 carrying one of TerminalRefreshCodes, and 401
// without a code. Anything else, including 5xx, 429, unknown codes and
// transport failures, is transient.
func IsTerminalRefreshError(err error) bool {
	var oauthErr *errs.OAuthError
	if !errors.As(err, &oauthErr) {
		return false
	}

	switch oauthErr.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
	default:
		return false
	}

	if oauthErr.Code == "" {
		return oauthErr.StatusCode == http.StatusUnauthorized
	}
	_, ok := TerminalRefreshCodes[oauthErr.Code]
	return ok
}
