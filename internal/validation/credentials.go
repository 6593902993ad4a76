package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// UsernamePattern определяет допустимый формат login handle
// Латинские буквы, цифры, точка, дефис и нижнее подчеркивание, 3-64 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,64}$`)

const (
	// MaxUsernameLen максимальная длина username (включая e-mail)
	MaxUsernameLen = 254
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
)

// ValidateUsername проверяет, что username - это login handle или e-mail
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if strings.Contains(username, "@") {
		addr, err := mail.ParseAddress(username)
		if err != nil || addr.Address != username {
			return fmt.Errorf("username is not a valid e-mail address")
		}
		return nil
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, '.', '-' and '_' (3-64 characters)")
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot consist of whitespace only")
	}

	return nil
}
