package core

import (
	"net/http"

	"github.com/RecoveryAshes/legiscrape/internal/config"
	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// HeaderManager merges request headers (defaults < headers file < --header) and pairs them
// with a rotated user agent per attempt. It implements models.IdentityProvider.
type HeaderManager struct {
	defaults http.Header
	config   http.Header
	cli      http.Header

	rotator      *stealth.Rotator
	validator    *utils.HeaderValidator
	redactor     *utils.HeaderRedactor
	configLoader *config.HeaderConfigLoader

	loaded bool
}

// NewHeaderManager parses cliHeaders eagerly so malformed flags fail before any fetch.
// headersFile may be empty for the default location.
func NewHeaderManager(headersFile string, cliHeaders []string, rotator *stealth.Rotator) (*HeaderManager, error) {
	if rotator == nil {
		rotator = stealth.NewRotator()
	}
	hm := &HeaderManager{
		defaults:     getDefaultHeaders(),
		config:       make(http.Header),
		rotator:      rotator,
		validator:    utils.NewHeaderValidator(),
		redactor:     utils.NewHeaderRedactor(),
		configLoader: config.NewHeaderConfigLoader(headersFile),
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	} else {
		hm.cli = make(http.Header)
	}

	return hm, nil
}

// getDefaultHeaders are the browser-like headers sent with dashboard requests.
func getDefaultHeaders() http.Header {
	return http.Header{
		"Accept":                    []string{"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"},
		"Accept-Language":           []string{"en-US,en;q=0.5"},
		"Accept-Encoding":           []string{"gzip, deflate, br"},
		"Upgrade-Insecure-Requests": []string{"1"},
		"Cache-Control":             []string{"max-age=0"},
		"Referer":                   []string{"https://www.google.com/"},
	}
}

// LoadConfig reads the headers file once.
func (hm *HeaderManager) LoadConfig() error {
	if hm.loaded {
		return nil
	}

	headerConfig, err := hm.configLoader.LoadConfig()
	if err != nil {
		utils.Errorf("load header file: %v", err)
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}
	hm.loaded = true

	if len(headerConfig.Headers) > 0 {
		utils.Debugf("loaded %d headers from %s: %s", len(headerConfig.Headers),
			hm.configLoader.Path(), hm.redactor.RedactToString(hm.config))
	}

	return nil
}

// Validate checks each layer in precedence order.
func (hm *HeaderManager) Validate() error {
	for _, layer := range []http.Header{hm.defaults, hm.config, hm.cli} {
		if err := hm.validator.Validate(layer); err != nil {
			return err
		}
	}
	return nil
}

// GetMergedHeaders applies default < config < cli.
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, layer := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range layer {
			result[name] = values
		}
	}
	return result
}

// GetSafeHeaders is GetMergedHeaders with secrets masked.
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// NextIdentity returns the merged headers plus a user agent. A User-Agent pinned in the
// headers file or on the command line disables rotation.
func (hm *HeaderManager) NextIdentity(proxy string) models.Identity {
	headers := hm.GetMergedHeaders()

	ua := headers.Get("User-Agent")
	if ua == "" {
		ua = hm.rotator.NextUserAgent()
	}
	headers.Del("User-Agent")

	utils.Debugf("identity: ua=%q proxy=%s", ua, utils.RedactProxy(proxy))
	return models.Identity{
		UserAgent: ua,
		Headers:   headers,
		Proxy:     proxy,
	}
}
