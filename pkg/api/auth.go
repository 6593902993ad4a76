package api

// Grant types поддерживаемые token endpoint
const (
	GrantTypePassword     = "password"
	GrantTypeRefreshToken = "refresh_token"
)

// TokenResponse представляет ответ OAuth2 token endpoint
type TokenResponse struct {
	AccessToken  string `json:"access_token"`         // bearer access token (JWT)
	RefreshToken string `json:"refresh_token"`        // refresh token
	TokenType    string `json:"token_type,omitempty"` // обычно "Bearer"
	Scope        string `json:"scope,omitempty"`      // выданные scopes
	ExpiresIn    int64  `json:"expires_in,omitempty"` // время жизни access token в секундах
}

// OAuthErrorResponse представляет ошибку token endpoint (RFC 6749, section 5.2)
type OAuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ErrorResponse представляет ответ resource API с ошибкой.
// Error содержит машинно-читаемый код (например, "invalid_token"),
// Message - описание для человека.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// OAuth2 error codes (RFC 6749, section 5.2 and RFC 6750, section 3.1)
const (
	ErrCodeInvalidRequest       = "invalid_request"
	ErrCodeInvalidClient        = "invalid_client"
	ErrCodeInvalidGrant         = "invalid_grant"
	ErrCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrCodeInvalidToken         = "invalid_token"
	ErrCodeServerError          = "server_error"
)
