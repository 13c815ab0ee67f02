package utils

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/RecoveryAshes/legiscrape/internal/models"
)

func TestHeaderValidator_ValidateName(t *testing.T) {
	validator := NewHeaderValidator()

	tests := []struct {
		name        string
		headerName  string
		expectError bool
	}{
		{"letters", "Referer", false},
		{"digits", "X-Request-ID-123", false},
		{"hyphen", "Accept-Language", false},
		{"space", "Accept Language", true},
		{"underscore token", "X_Trace", false},
		{"at sign", "Accept@Language", true},
		{"colon", "Referer:", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateName(tt.headerName)
			if (err != nil) != tt.expectError {
				t.Errorf("expectError=%v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestHeaderValidator_ValidateValue(t *testing.T) {
	validator := NewHeaderValidator()

	tests := []struct {
		name        string
		headerValue string
		expectError bool
	}{
		{"ascii", "text/html,application/xhtml+xml", false},
		{"empty", "", false},
		{"long but legal", strings.Repeat(" ", 8000), false},
		{"too long", strings.Repeat("a", MaxHeaderValueLength+1), true},
		{"control chars", "value\x00with\x01null", true},
		{"newline", "en-US\r\nX-Injected: 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateValue("X-Test", tt.headerValue)
			if (err != nil) != tt.expectError {
				t.Errorf("expectError=%v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestHeaderValidator_ForbiddenHeaders(t *testing.T) {
	validator := NewHeaderValidator()

	for _, name := range []string{"Host", "content-length", "Cookie", "CONNECTION", "Proxy-Authorization"} {
		if !validator.IsForbidden(name) {
			t.Errorf("%s should be forbidden", name)
		}
	}

	err := validator.Validate(http.Header{"Cookie": []string{"session=1"}})
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "name" || vErr.HeaderName != "Cookie" {
		t.Errorf("unexpected error detail: %+v", vErr)
	}
}

func TestHeaderValidator_Validate(t *testing.T) {
	validator := NewHeaderValidator()

	ok := http.Header{
		"Accept":          []string{"text/html"},
		"Accept-Language": []string{"en-US,en;q=0.5"},
		"Referer":         []string{"https://www.google.com/"},
	}
	if err := validator.Validate(ok); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	if err := validator.Validate(http.Header{"Bad Name": []string{"x"}}); err == nil {
		t.Error("expected an error for an invalid name")
	}

	err := validator.Validate(http.Header{
		"Referer": []string{"bad\x7f"},
		"Accept":  []string{"bad\x00"},
	})
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) || vErr.HeaderName != "Accept" {
		t.Errorf("expected the first header by name to be reported, got %v", err)
	}
}
