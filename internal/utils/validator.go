package utils

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/RecoveryAshes/legiscrape/internal/models"
)

// MaxHeaderValueLength caps a single extra header value.
const MaxHeaderValueLength = 8192

// managedHeaders are owned by the pipeline on every LegiScan request, keyed by lower-cased name.
var managedHeaders = map[string]string{
	"host":                "set from the target URL",
	"content-length":      "set by the transport",
	"transfer-encoding":   "set by the transport",
	"connection":          "set by the transport",
	"cookie":              "cleared before every attempt",
	"proxy-authorization": "taken from the proxy list entry",
}

// HeaderValidator checks user-supplied extra headers before they reach colly or a page.
type HeaderValidator struct {
	maxValueLength int
}

func NewHeaderValidator() *HeaderValidator {
	return &HeaderValidator{maxValueLength: MaxHeaderValueLength}
}

// ValidateName rejects empty names and anything that is not an RFC 7230 token.
func (hv *HeaderValidator) ValidateName(name string) error {
	if name == "" {
		return &models.ValidationError{Field: "name", HeaderName: name, Reason: "header name is empty"}
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "header name is not a valid HTTP token",
			Suggestion: "use names such as 'Accept-Language' or 'Referer'",
		}
	}
	return nil
}

// ValidateValue enforces the length cap and rejects control characters.
func (hv *HeaderValidator) ValidateValue(name, value string) error {
	if len(value) > hv.maxValueLength {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     fmt.Sprintf("value is %d bytes (max %d)", len(value), hv.maxValueLength),
		}
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     "value contains control characters",
		}
	}
	return nil
}

// ValidateHeader checks the managed list, then name, then value.
func (hv *HeaderValidator) ValidateHeader(name, value string) error {
	if owner, managed := managedHeaders[strings.ToLower(name)]; managed {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "header is " + owner,
			Suggestion: fmt.Sprintf("remove '%s' from headers.yaml or --header", name),
		}
	}
	if err := hv.ValidateName(name); err != nil {
		return err
	}
	return hv.ValidateValue(name, value)
}

func (hv *HeaderValidator) IsForbidden(name string) bool {
	_, managed := managedHeaders[strings.ToLower(name)]
	return managed
}

// Validate returns the first ValidationError in header name order.
func (hv *HeaderValidator) Validate(headers http.Header) error {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range headers[name] {
			if err := hv.ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
