package billtext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RecoveryAshes/legiscrape/internal/crawlers"
	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
)

// sitePage is one document of the fake site: its markup plus what each XPath resolves to.
type sitePage struct {
	html  string
	links map[string]string // xpath -> target URL or attribute value
}

type fakeSite struct {
	pages      map[string]sitePage
	current    string
	challenges int // HTML reads that still return a challenge page
	opts       crawlers.SessionOptions
	navigated  []string
	followed   []string
	downloads  []string
	opened     int
}

func (f *fakeSite) open(_ context.Context, opts crawlers.SessionOptions, fn func(Page) error) error {
	f.opened++
	f.opts = opts
	return fn(f)
}

func (f *fakeSite) page() sitePage { return f.pages[f.current] }

func (f *fakeSite) Navigate(url string) error {
	if _, ok := f.pages[url]; !ok {
		return fmt.Errorf("%w: navigate %s", models.ErrNavigationTimeout, url)
	}
	f.navigated = append(f.navigated, url)
	f.current = url
	return nil
}

func (f *fakeSite) NavigateForDownload(url string) error {
	return f.download(url)
}

func (f *fakeSite) ClearState() error { return nil }

func (f *fakeSite) HTML() (string, error) {
	if f.challenges > 0 {
		f.challenges--
		return "<html><body>You are being rate limited</body></html>", nil
	}
	return f.page().html, nil
}

func (f *fakeSite) BodyText() (string, error) {
	return "rendered text of " + f.current, nil
}

func (f *fakeSite) CurrentURL() string { return f.current }

func (f *fakeSite) HasX(xpath string) bool {
	_, ok := f.page().links[xpath]
	return ok
}

func (f *fakeSite) AttrX(xpath, _ string, _ time.Duration) (string, error) {
	v, ok := f.page().links[xpath]
	if !ok {
		return "", fmt.Errorf("%w: %s", crawlers.ErrNoElement, xpath)
	}
	return v, nil
}

func (f *fakeSite) FollowX(xpath string, _ time.Duration) error {
	target, ok := f.page().links[xpath]
	if !ok {
		return fmt.Errorf("%w: %s", crawlers.ErrNoElement, xpath)
	}
	f.followed = append(f.followed, xpath)
	f.current = target
	return nil
}

// ClickX on a PDF link lands the file in the download dir, as Chromium would.
func (f *fakeSite) ClickX(xpath string, _ time.Duration) error {
	href, ok := f.page().links[xpath]
	if !ok {
		return fmt.Errorf("%w: %s", crawlers.ErrNoElement, xpath)
	}
	return f.download(href)
}

func (f *fakeSite) download(url string) error {
	f.downloads = append(f.downloads, url)
	return os.WriteFile(filepath.Join(f.opts.DownloadDir, PDFFileName(url)), []byte("%PDF-1.4"), 0o644)
}

type fixedIdentity struct{}

func (fixedIdentity) NextIdentity(proxy string) models.Identity {
	return models.Identity{UserAgent: "Mozilla/5.0 fixture", Proxy: proxy}
}

const (
	summaryURL = "https://legiscan.com/TX/bill/HB1/2025"
	draftsURL  = "https://legiscan.com/TX/drafts/HB1/2025"
	textURL    = "https://legiscan.com/TX/text/HB1/id/100"
)

var (
	htmlTextPage = sitePage{html: `<html><body><div class="billtext"><p>BE IT ENACTED</p></div></body></html>`}
	pdfTextPage  = sitePage{
		html:  `<html><body><a href="https://legiscan.com/TX/text/HB1/2025/HB1.pdf">PDF</a></body></html>`,
		links: map[string]string{pdfLinkXPath: "https://legiscan.com/TX/text/HB1/2025/HB1.pdf"},
	}
)

func newSiteRetriever(site *fakeSite, cooldowns *[]time.Duration) *Retriever {
	delay := stealth.NewDelayPolicy(stealth.Uniform(0, 0), stealth.WithSleeper(func(_ context.Context, d time.Duration) error {
		if d > 0 {
			*cooldowns = append(*cooldowns, d)
		}
		return nil
	}))
	r := NewRetriever(Options{
		ChallengeCooldown: 20 * time.Second,
		DownloadTimeout:   time.Second,
		DownloadPoll:      5 * time.Millisecond,
	}, fixedIdentity{}, delay,
		WithClock(func() time.Time { return time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC) }),
		WithConverter(func(pdfPath string) (string, error) {
			txt := strings.TrimSuffix(pdfPath, ".pdf") + ".txt"
			if err := os.WriteFile(txt, []byte("pdf text"), 0o644); err != nil {
				return "", err
			}
			return txt, os.Remove(pdfPath)
		}))
	r.open = site.open
	return r
}

func TestAttemptTextPageHTML(t *testing.T) {
	site := &fakeSite{pages: map[string]sitePage{textURL: htmlTextPage}}
	var cooldowns []time.Duration
	dir := t.TempDir()

	artifact, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{
		URL: textURL, OutDir: dir, Proxies: []string{"http://10.0.0.1:3128"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.FormatHTML, artifact.Format)
	assert.Equal(t, "TX_HB1", artifact.BillKey)
	assert.Equal(t, filepath.Join(dir, "TX_HB1_20250506_070809.html"), artifact.Path)
	assert.Empty(t, site.followed)
	assert.Empty(t, cooldowns)

	assert.Equal(t, dir, site.opts.DownloadDir)
	assert.Equal(t, "Mozilla/5.0 fixture", site.opts.UserAgent)
	assert.Equal(t, "http://10.0.0.1:3128", site.opts.Proxy)

	markup, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Contains(t, string(markup), "BE IT ENACTED")
	text, err := os.ReadFile(artifact.TextPath)
	require.NoError(t, err)
	assert.Equal(t, "rendered text of "+textURL, string(text))
}

func TestAttemptSummaryNavigation(t *testing.T) {
	tests := []struct {
		name         string
		summaryLinks map[string]string
		draftLinks   map[string]string
		wantFollowed []string
		wantErr      error
	}{
		{
			name:         "last action link first",
			summaryLinks: map[string]string{lastActionTextLinkXPath: textURL, textsTabXPath: draftsURL},
			wantFollowed: []string{lastActionTextLinkXPath},
		},
		{
			name:         "texts tab straight to text",
			summaryLinks: map[string]string{textsTabXPath: textURL},
			wantFollowed: []string{textsTabXPath},
		},
		{
			name:         "texts tab through drafts listing",
			summaryLinks: map[string]string{textsTabXPath: draftsURL},
			draftLinks:   map[string]string{draftTextLinkXPath: textURL},
			wantFollowed: []string{textsTabXPath, draftTextLinkXPath},
		},
		{
			name:         "no link at all",
			summaryLinks: map[string]string{},
			wantErr:      models.ErrTextLinkNotFound,
		},
		{
			name:         "drafts listing without text link",
			summaryLinks: map[string]string{textsTabXPath: draftsURL},
			draftLinks:   map[string]string{},
			wantFollowed: []string{textsTabXPath},
			wantErr:      models.ErrTextLinkNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := &fakeSite{pages: map[string]sitePage{
				summaryURL: {html: "<html><body>summary</body></html>", links: tt.summaryLinks},
				draftsURL:  {html: "<html><body>drafts</body></html>", links: tt.draftLinks},
				textURL:    htmlTextPage,
			}}
			var cooldowns []time.Duration

			artifact, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{URL: summaryURL, OutDir: t.TempDir()})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.FormatHTML, artifact.Format)
				assert.Equal(t, textURL, site.current)
			}
			assert.Equal(t, tt.wantFollowed, site.followed)
			assert.Equal(t, []string{summaryURL}, site.navigated)
		})
	}
}

func TestAttemptChallenge(t *testing.T) {
	t.Run("cleared after one cooldown", func(t *testing.T) {
		site := &fakeSite{pages: map[string]sitePage{textURL: htmlTextPage}, challenges: 1}
		var cooldowns []time.Duration

		_, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{URL: textURL, OutDir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{20 * time.Second}, cooldowns)
	})

	t.Run("blocked uses the next proxy", func(t *testing.T) {
		site := &fakeSite{pages: map[string]sitePage{textURL: htmlTextPage}, challenges: 2}
		var cooldowns []time.Duration

		artifact, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{
			URL: textURL, OutDir: t.TempDir(), Proxies: []string{"http://p1:8080", "http://p2:8080"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, site.opened)
		assert.Equal(t, "http://p2:8080", artifact.Proxy)
		assert.Len(t, cooldowns, 1)
	})

	t.Run("blocked on the only attempt", func(t *testing.T) {
		site := &fakeSite{pages: map[string]sitePage{textURL: htmlTextPage}, challenges: 2}
		var cooldowns []time.Duration

		_, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{URL: textURL, OutDir: t.TempDir()})
		assert.ErrorIs(t, err, models.ErrChallengeBlocked)
	})
}

func TestAttemptPDFBranch(t *testing.T) {
	t.Run("pdf link download", func(t *testing.T) {
		site := &fakeSite{pages: map[string]sitePage{textURL: pdfTextPage}}
		var cooldowns []time.Duration
		dir := t.TempDir()

		artifact, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{URL: textURL, OutDir: dir})
		require.NoError(t, err)

		assert.Equal(t, models.FormatPDF, artifact.Format)
		assert.Equal(t, filepath.Join(dir, "HB1.txt"), artifact.Path)
		assert.NoFileExists(t, filepath.Join(dir, "HB1.pdf"))
		assert.Equal(t, []string{"https://legiscan.com/TX/text/HB1/2025/HB1.pdf"}, site.downloads)
	})

	t.Run("embedded object", func(t *testing.T) {
		embedded := sitePage{
			html:  `<html><body><object type="application/pdf" data="https://legiscan.com/TX/text/HB1/2025/HB1.pdf"></object></body></html>`,
			links: map[string]string{pdfObjectXPath: "https://legiscan.com/TX/text/HB1/2025/HB1.pdf"},
		}
		site := &fakeSite{pages: map[string]sitePage{textURL: embedded}}
		var cooldowns []time.Duration
		dir := t.TempDir()

		artifact, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{URL: textURL, OutDir: dir})
		require.NoError(t, err)
		assert.Equal(t, models.FormatPDF, artifact.Format)
		assert.Equal(t, []string{"https://legiscan.com/TX/text/HB1/2025/HB1.pdf"}, site.downloads)
	})

	t.Run("html preference overrides detection", func(t *testing.T) {
		site := &fakeSite{pages: map[string]sitePage{textURL: pdfTextPage}}
		var cooldowns []time.Duration

		artifact, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{URL: textURL, OutDir: t.TempDir(), Prefer: "html"})
		require.NoError(t, err)
		assert.Equal(t, models.FormatHTML, artifact.Format)
		assert.Empty(t, site.downloads)
	})

	t.Run("pdf page without a pdf", func(t *testing.T) {
		// an object whose data is not a PDF URL still classifies as PDF
		odd := sitePage{
			html:  `<html><body><object type="application/pdf" data="/viewer"></object></body></html>`,
			links: map[string]string{pdfObjectXPath: "https://legiscan.com/viewer"},
		}
		site := &fakeSite{pages: map[string]sitePage{textURL: odd}}
		var cooldowns []time.Duration

		_, err := newSiteRetriever(site, &cooldowns).Retrieve(context.Background(), Request{URL: textURL, OutDir: t.TempDir()})
		assert.ErrorIs(t, err, models.ErrTextLinkNotFound)
	})
}
