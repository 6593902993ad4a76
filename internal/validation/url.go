package validation

import (
	"fmt"
	"net/url"
)

// ValidateEndpoint проверяет, что значение - абсолютный http(s) URL
func ValidateEndpoint(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", name)
	}
	return nil
}
