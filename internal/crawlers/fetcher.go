package crawlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// LiveFetcher performs one navigation and lets fn inspect the result while it is still open.
type LiveFetcher interface {
	Visit(ctx context.Context, targetURL string, id models.Identity, fn func(Probe) error) error
}

// PageFetcher resolves a PageSource into a parsed jurisdiction page.
type PageFetcher struct {
	live       LiveFetcher
	identities models.IdentityProvider
	delay      *stealth.DelayPolicy
	cooldown   time.Duration
	proxy      string
	sleep      stealth.Sleeper
}

// PageFetcherOption customises a PageFetcher.
type PageFetcherOption func(*PageFetcher)

// WithProxy routes live fetches through proxy.
func WithProxy(proxy string) PageFetcherOption {
	return func(pf *PageFetcher) { pf.proxy = proxy }
}

// WithCooldownSleeper replaces the sleeper used for the challenge cooldown.
func WithCooldownSleeper(sleep stealth.Sleeper) PageFetcherOption {
	return func(pf *PageFetcher) { pf.sleep = sleep }
}

// NewPageFetcher wires a live back end with identity rotation and request pacing.
func NewPageFetcher(live LiveFetcher, identities models.IdentityProvider, delay *stealth.DelayPolicy, cooldown time.Duration, opts ...PageFetcherOption) *PageFetcher {
	pf := &PageFetcher{
		live:       live,
		identities: identities,
		delay:      delay,
		cooldown:   cooldown,
		sleep:      stealth.SleepContext,
	}
	for _, opt := range opts {
		opt(pf)
	}
	return pf
}

// Fetch loads the page for code. Inline content wins over a file, a file wins over a URL.
func (pf *PageFetcher) Fetch(ctx context.Context, code string, src models.PageSource) (*models.JurisdictionPage, error) {
	kind, ok := src.Kind()
	if !ok {
		return nil, models.ErrNoSource
	}

	switch kind {
	case models.SourceInline:
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(src.Inline))
		if err != nil {
			return nil, fmt.Errorf("parse inline html: %w", err)
		}
		return models.NewJurisdictionPage(code, kind, "inline", doc), nil

	case models.SourceFile:
		doc, err := ReadHTMLFile(src.FilePath)
		if err != nil {
			return nil, err
		}
		utils.Infof("📄 loaded %s from %s", strings.ToUpper(code), src.FilePath)
		return models.NewJurisdictionPage(code, kind, src.FilePath, doc), nil

	default:
		content, err := pf.FetchLive(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.URL, err)
		}
		return models.NewJurisdictionPage(code, kind, src.URL, doc), nil
	}
}

// FetchLive paces, rotates identity, navigates and clears any challenge.
func (pf *PageFetcher) FetchLive(ctx context.Context, targetURL string) (string, error) {
	id := pf.identities.NextIdentity(pf.proxy)

	if pf.delay != nil {
		waited, err := pf.delay.Wait(ctx)
		if err != nil {
			return "", err
		}
		utils.Debugf("waited %.1fs before %s", waited.Seconds(), targetURL)
	}

	utils.Infof("📥 fetching %s (proxy=%s)", targetURL, utils.RedactProxy(id.Proxy))

	var content string
	err := pf.live.Visit(ctx, targetURL, id, func(probe Probe) error {
		var err error
		content, err = AwaitClearance(ctx, probe, pf.cooldown, pf.sleep)
		return err
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// ReadHTMLFile parses a saved page, honouring the charset it declares.
func ReadHTMLFile(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := charset.NewReader(f, "text/html")
	if err != nil {
		return nil, fmt.Errorf("detect charset of %s: %w", path, err)
	}
	return parseHTML(r, path)
}

func parseHTML(r io.Reader, name string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

// DashboardURL is the jurisdiction landing page under baseURL.
func DashboardURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.ToUpper(code)
}
