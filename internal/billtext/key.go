package billtext

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// UnknownBillKey names output for URLs that match no known bill page shape.
const UnknownBillKey = "unknown_bill"

var billKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://[^/]+/([^/]+)/text/([^/]+)/id/(\d+)`),
	regexp.MustCompile(`^https?://[^/]+/([^/]+)/bill/([^/]+)/(\d+)`),
	regexp.MustCompile(`^https?://[^/]+/([^/]+)/drafts/([^/]+)/(\d+)`),
}

// DeriveBillKey returns "{jurisdiction}_{bill}" for text, bill and drafts URLs.
func DeriveBillKey(rawURL string) string {
	for _, re := range billKeyPatterns {
		if m := re.FindStringSubmatch(strings.TrimSpace(rawURL)); m != nil {
			return m[1] + "_" + m[2]
		}
	}
	return UnknownBillKey
}

// IsSummaryURL reports whether the URL is a bill summary rather than a text page.
func IsSummaryURL(rawURL string) bool {
	return strings.Contains(rawURL, "/bill/") && !strings.Contains(rawURL, "/text/")
}

// PDFFileName is the name the browser saves a PDF URL under.
func PDFFileName(pdfURL string) string {
	if u, err := url.Parse(pdfURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(pdfURL)
}
