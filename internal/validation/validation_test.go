package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		errMsg   string
		wantErr  bool
	}{
		{name: "handle", username: "alice"},
		{name: "handle with dot and dash", username: "alice.smith-2"},
		{name: "email", username: "alice@example.com"},
		{name: "empty", username: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "too short handle", username: "al", wantErr: true, errMsg: "can only contain"},
		{name: "spaces", username: "alice smith", wantErr: true, errMsg: "can only contain"},
		{name: "cyrillic", username: "алиса", wantErr: true, errMsg: "can only contain"},
		{name: "broken email", username: "alice@", wantErr: true, errMsg: "e-mail"},
		{name: "email with display name", username: "Alice <alice@example.com>", wantErr: true, errMsg: "e-mail"},
		{name: "too long", username: strings.Repeat("a", 250) + "@x.io", wantErr: true, errMsg: "must not exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "correct horse"},
		{name: "exactly min", password: "12345678"},
		{name: "empty", password: "", wantErr: true},
		{name: "too short", password: "1234567", wantErr: true},
		{name: "whitespace", password: "          ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	assert.NoError(t, ValidateEndpoint("api url", "https://api.example.com/v1"))
	assert.NoError(t, ValidateEndpoint("api url", "http://localhost:8080"))

	assert.ErrorContains(t, ValidateEndpoint("api url", ""), "cannot be empty")
	assert.ErrorContains(t, ValidateEndpoint("api url", "ftp://example.com"), "http or https")
	assert.ErrorContains(t, ValidateEndpoint("api url", "https://"), "no host")
	assert.Error(t, ValidateEndpoint("api url", "http://[::1"))
}
