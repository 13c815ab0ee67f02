package utils

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ReadProxyList reads one proxy endpoint per line. Blank lines and '#' comments are skipped.
// An empty result is not an error; callers fall back to a direct connection.
func ReadProxyList(filepath string) ([]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("open proxy file: %w", err)
	}
	defer file.Close()

	proxies := make([]string, 0)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, " ") {
			Warnf("skipping proxy on line %d: contains whitespace", lineNum)
			continue
		}

		proxies = append(proxies, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}

	Infof("loaded %d proxies from %s", len(proxies), filepath)
	return proxies, nil
}

// ValidateURL checks for an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("URL has no scheme (http/https)")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL has no host")
	}

	return nil
}

// HasHTTPScheme is the cheap prefix test used when sweeping CSV inputs.
func HasHTTPScheme(candidate string) bool {
	return strings.HasPrefix(strings.TrimSpace(candidate), "http")
}
