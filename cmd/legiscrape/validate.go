package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RecoveryAshes/legiscrape/internal/core"
	"github.com/RecoveryAshes/legiscrape/internal/crawlers"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// stdinSnapshot is the --file value that reads dashboard markup from standard input.
const stdinSnapshot = "-"

// ValidateBillURL accepts absolute http(s) URLs only.
func ValidateBillURL(rawURL string) error {
	if err := utils.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("invalid bill URL %q: %w", rawURL, err)
	}
	return nil
}

// ValidateFormat accepts "", "html" and "pdf".
func ValidateFormat(format string) error {
	switch format {
	case "", "html", "pdf":
		return nil
	default:
		return fmt.Errorf("invalid format %q (valid: html, pdf)", format)
	}
}

// ValidateMode accepts the dashboard fetch modes.
func ValidateMode(mode string) error {
	if mode != core.ModeStatic && mode != core.ModeDynamic {
		return fmt.Errorf("invalid mode %q (valid: %s, %s)", mode, core.ModeStatic, core.ModeDynamic)
	}
	return nil
}

// LoadProxies returns the proxy list when enabled. A missing or empty file means one direct attempt.
func LoadProxies(enabled bool, path string) []string {
	if !enabled {
		return nil
	}
	proxies, err := utils.ReadProxyList(path)
	if err != nil {
		utils.Warnf("⚠️  %v, using a direct connection", err)
		return nil
	}
	if len(proxies) == 0 {
		utils.Warnf("⚠️  no proxies in %s, using a direct connection", path)
	}
	return proxies
}

// SnapshotOption maps --file to a page source. "-" parses markup piped on stdin,
// any other value must be a readable saved page.
func SnapshotOption(path string, stdin io.Reader) (core.DashboardOption, error) {
	switch path {
	case "":
		return core.WithSnapshot(""), nil
	case stdinSnapshot:
		markup, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read dashboard HTML from stdin: %w", err)
		}
		if strings.TrimSpace(string(markup)) == "" {
			return nil, fmt.Errorf("no dashboard HTML on stdin")
		}
		return core.WithInlineHTML(string(markup)), nil
	default:
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return core.WithSnapshot(path), nil
	}
}

// DashboardFetchOptions routes live dashboard fetches through the first proxy in the list.
func DashboardFetchOptions(proxies []string) []crawlers.PageFetcherOption {
	if len(proxies) == 0 {
		return nil
	}
	if len(proxies) > 1 {
		utils.Infof("dashboard fetches use the first of %d proxies", len(proxies))
	}
	return []crawlers.PageFetcherOption{crawlers.WithProxy(proxies[0])}
}
