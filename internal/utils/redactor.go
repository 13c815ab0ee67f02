package utils

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// RedactProxy renders a proxy list entry for logs and run artifacts. The password of an
// authenticated entry such as user:pass@10.0.0.1:3128 is masked; an empty entry is "direct".
func RedactProxy(proxy string) string {
	if proxy == "" {
		return "direct"
	}
	raw := proxy
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return proxy
	}
	if _, ok := u.User.Password(); !ok {
		return proxy
	}
	return u.Scheme + "://" + u.User.Username() + ":***@" + u.Host
}

// secretHeaderWords mark header names whose values never reach the logs.
var secretHeaderWords = []string{"authorization", "token", "key", "secret", "password", "credential", "cookie"}

// HeaderRedactor masks secret values in the merged request headers before they are logged.
type HeaderRedactor struct {
	words []string
}

func NewHeaderRedactor() *HeaderRedactor {
	return &HeaderRedactor{words: secretHeaderWords}
}

// IsSensitiveHeader matches on name keywords.
func (hr *HeaderRedactor) IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range hr.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// RedactHeaderValue keeps the scheme of an Authorization value and the ends of long secrets.
func (hr *HeaderRedactor) RedactHeaderValue(name, value string) string {
	if !hr.IsSensitiveHeader(name) {
		return value
	}
	if scheme, _, ok := strings.Cut(value, " "); ok && strings.EqualFold(name, "Authorization") {
		return scheme + " ***"
	}
	if len(value) > 8 {
		return value[:4] + "***" + value[len(value)-4:]
	}
	return "***"
}

// Redact returns a log-safe copy using the first value of each header.
func (hr *HeaderRedactor) Redact(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) > 0 {
			out[name] = hr.RedactHeaderValue(name, values[0])
		}
	}
	return out
}

// RedactToString renders "Name: value" pairs sorted by name.
func (hr *HeaderRedactor) RedactToString(headers http.Header) string {
	redacted := hr.Redact(headers)
	names := make([]string, 0, len(redacted))
	for name := range redacted {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + redacted[name]
	}
	return strings.Join(parts, ", ")
}
