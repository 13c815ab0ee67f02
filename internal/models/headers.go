package models

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderConfig mirrors configs/headers.yaml.
type HeaderConfig struct {
	// Headers extra request headers sent with every page fetch
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
}

// CliHeaders are repeated --header values in "Name: Value" form.
type CliHeaders []string

// Parse converts the list to an http.Header.
func (ch CliHeaders) Parse() (http.Header, error) {
	result := make(http.Header)
	for i, s := range ch {
		name, value, err := parseHeaderString(s)
		if err != nil {
			return nil, fmt.Errorf("--header item %d: %w", i+1, err)
		}
		result.Set(name, value)
	}
	return result, nil
}

func parseHeaderString(s string) (name, value string, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("missing ':' separator, expected 'Name: Value'")
	}

	name = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])

	if name == "" {
		return "", "", fmt.Errorf("header name must not be empty")
	}

	return name, value, nil
}

// Identity is the disguise used for one fetch attempt.
type Identity struct {
	UserAgent string
	Headers   http.Header
	Proxy     string // empty means a direct connection
}

// IdentityProvider hands out a fresh identity per attempt.
//
// NextIdentity never fails: implementations fall back to a fixed desktop user agent.
// The proxy argument is carried through unchanged so callers own proxy rotation.
type IdentityProvider interface {
	NextIdentity(proxy string) Identity
}

// ValidationError describes a rejected header.
type ValidationError struct {
	// Field is "name" or "value"
	Field string

	HeaderName string

	Reason string

	// Suggestion optional fix hint
	Suggestion string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid header [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (hint: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError wraps a configuration file failure.
type ConfigError struct {
	FilePath string

	// Cause underlying error, e.g. viper.ConfigParseError
	Cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config file error [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap supports errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
