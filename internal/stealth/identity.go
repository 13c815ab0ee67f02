package stealth

import (
	"strings"

	browser "github.com/EDDYCJY/fake-useragent"
)

// FallbackUserAgent is used whenever a dynamic user agent cannot be produced.
const FallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/91.0.4472.124 Safari/537.36"

// Rotator hands out a user agent per attempt.
type Rotator struct {
	generate func() string
}

// NewRotator draws from the fake-useragent pool.
func NewRotator() *Rotator {
	return &Rotator{generate: browser.Random}
}

// NewRotatorWith uses a custom generator.
func NewRotatorWith(generate func() string) *Rotator {
	return &Rotator{generate: generate}
}

// NextUserAgent never fails. Panics and implausible strings from the generator
// yield FallbackUserAgent.
func (r *Rotator) NextUserAgent() (ua string) {
	if r == nil || r.generate == nil {
		return FallbackUserAgent
	}
	defer func() {
		if rec := recover(); rec != nil {
			ua = FallbackUserAgent
		}
	}()

	ua = strings.TrimSpace(r.generate())
	if !strings.HasPrefix(ua, "Mozilla/") {
		return FallbackUserAgent
	}
	return ua
}
