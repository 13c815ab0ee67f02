// Package billtext retrieves the full text of a single bill.
//
// Starting from a summary or text page URL the retriever walks to the text page, decides
// whether the text is inline HTML or a PDF, and leaves a plain-text file behind either way.
// Every attempt runs in its own browser session with a fresh identity; the proxy list bounds
// the number of attempts.
package billtext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/legiscrape/internal/crawlers"
	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

const (
	lastActionTextLinkXPath = `//div[@id='bill-last-action']//a[contains(@href, '/text/') and contains(text(), 'text')]`
	textsTabXPath           = `//ul[contains(@class, 'tabs')]//a[contains(@href, '/drafts/') or contains(@href, '/text/')]`
	draftTextLinkXPath      = `//ul[contains(@class, 'tabs')]//a[contains(@href, '/text/') and contains(@href, '/id/')]`
	pdfLinkXPath            = `//a[contains(@href, '.pdf')]`
	pdfObjectXPath          = `//object[@type='application/pdf']`
)

// Options tune the browser work of one attempt.
type Options struct {
	Session           crawlers.SessionOptions
	LinkWait          time.Duration
	ElementWait       time.Duration
	ChallengeCooldown time.Duration
	DownloadTimeout   time.Duration
	DownloadPoll      time.Duration
}

// Request describes one bill to retrieve.
type Request struct {
	URL     string
	OutDir  string
	Prefer  string // "html", "pdf" or empty
	Proxies []string
}

// Page is the part of a browser session one attempt drives.
type Page interface {
	Navigate(url string) error
	NavigateForDownload(url string) error
	ClearState() error
	HTML() (string, error)
	BodyText() (string, error)
	CurrentURL() string
	HasX(xpath string) bool
	AttrX(xpath, name string, wait time.Duration) (string, error)
	FollowX(xpath string, wait time.Duration) error
	ClickX(xpath string, wait time.Duration) error
}

var _ Page = (*crawlers.Session)(nil)

// pageOpener runs fn against a freshly launched browser and releases it afterwards.
type pageOpener func(ctx context.Context, opts crawlers.SessionOptions, fn func(Page) error) error

func openBrowser(ctx context.Context, opts crawlers.SessionOptions, fn func(Page) error) error {
	return crawlers.WithSession(ctx, opts, func(s *crawlers.Session) error { return fn(s) })
}

type attemptFunc func(ctx context.Context, req Request, key, proxy string) (*models.BillTextArtifact, error)

// Retriever runs the bill-text pipeline.
type Retriever struct {
	opts       Options
	identities models.IdentityProvider
	delay      *stealth.DelayPolicy
	convert    Converter
	now        func() time.Time
	attempt    attemptFunc
	open       pageOpener
}

// RetrieverOption customises a Retriever.
type RetrieverOption func(*Retriever)

// WithConverter replaces the PDF converter.
func WithConverter(c Converter) RetrieverOption {
	return func(r *Retriever) { r.convert = c }
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) RetrieverOption {
	return func(r *Retriever) { r.now = now }
}

// NewRetriever builds a retriever that drives Chromium.
func NewRetriever(opts Options, identities models.IdentityProvider, delay *stealth.DelayPolicy, options ...RetrieverOption) *Retriever {
	if opts.LinkWait <= 0 {
		opts.LinkWait = 8 * time.Second
	}
	if opts.ElementWait <= 0 {
		opts.ElementWait = 5 * time.Second
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 45 * time.Second
	}

	r := &Retriever{
		opts:       opts,
		identities: identities,
		delay:      delay,
		convert:    ConvertPDF,
		now:        time.Now,
		open:       openBrowser,
	}
	r.attempt = r.browserAttempt
	for _, o := range options {
		o(r)
	}
	return r
}

// Retrieve tries once per proxy, or once directly when no proxies are given,
// and returns the first artifact produced.
func (r *Retriever) Retrieve(ctx context.Context, req Request) (*models.BillTextArtifact, error) {
	key := DeriveBillKey(req.URL)
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return nil, &models.PersistenceError{Path: req.OutDir, Cause: err}
	}

	proxies := req.Proxies
	if len(proxies) == 0 {
		proxies = []string{""}
	}

	var errs []error
	for i, proxy := range proxies {
		utils.Infof("🚀 %s attempt %d/%d (proxy=%s)", key, i+1, len(proxies), utils.RedactProxy(proxy))

		artifact, err := r.attempt(ctx, req, key, proxy)
		if err == nil {
			utils.Infof("✅ %s saved to %s", key, artifact.Path)
			return artifact, nil
		}

		utils.Warnf("❌ %s attempt %d failed: %v", key, i+1, err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%s: %d attempt(s) failed: %w", key, len(errs), errors.Join(errs...))
}

func (r *Retriever) browserAttempt(ctx context.Context, req Request, key, proxy string) (*models.BillTextArtifact, error) {
	id := r.identities.NextIdentity(proxy)

	opts := r.opts.Session
	opts.UserAgent = id.UserAgent
	opts.Headers = id.Headers
	opts.Proxy = id.Proxy
	opts.DownloadDir = req.OutDir

	var artifact *models.BillTextArtifact
	err := r.open(ctx, opts, func(p Page) error {
		utils.Infof("📥 navigating to %s", req.URL)
		if err := p.Navigate(req.URL); err != nil {
			return err
		}
		if err := r.pause(ctx); err != nil {
			return err
		}
		if err := p.ClearState(); err != nil {
			utils.Warnf("could not clear browser data: %v", err)
		}

		probe := func(context.Context) (string, error) { return p.HTML() }
		if _, err := crawlers.AwaitClearance(ctx, probe, r.opts.ChallengeCooldown, r.sleeper()); err != nil {
			return err
		}

		if IsSummaryURL(req.URL) {
			utils.Info("on bill summary page, looking for text link")
			if err := r.followTextLink(ctx, p); err != nil {
				return err
			}
		}
		if err := r.pause(ctx); err != nil {
			return err
		}

		raw, err := p.HTML()
		if err != nil {
			return err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err != nil {
			return fmt.Errorf("%w: parse text page: %v", models.ErrDriver, err)
		}

		switch Classify(doc, raw, req.Prefer) {
		case models.FormatHTML:
			utils.Info("processing as HTML bill text")
			artifact, err = r.captureHTML(p, doc, raw, req.OutDir, key)
		default:
			utils.Info("processing as PDF bill text")
			artifact, err = r.fetchPDF(ctx, p, req.OutDir)
		}
		if err != nil {
			return err
		}

		artifact.BillKey = key
		artifact.SourceURL = req.URL
		artifact.Proxy = utils.RedactProxy(proxy)
		artifact.CreatedAt = r.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// followTextLink walks from a summary page to a text page.
func (r *Retriever) followTextLink(ctx context.Context, p Page) error {
	if err := r.pause(ctx); err != nil {
		return err
	}

	err := p.FollowX(lastActionTextLinkXPath, r.opts.LinkWait)
	if err == nil {
		utils.Info("found text link in status section")
		return nil
	}
	if !errors.Is(err, crawlers.ErrNoElement) {
		return err
	}

	if err := p.FollowX(textsTabXPath, r.opts.LinkWait); err != nil {
		if errors.Is(err, crawlers.ErrNoElement) {
			return fmt.Errorf("%w: no text link or texts tab", models.ErrTextLinkNotFound)
		}
		return err
	}
	utils.Info("followed texts tab")

	if !strings.Contains(p.CurrentURL(), "/drafts/") {
		return nil
	}

	utils.Info("on drafts page, looking for a text link")
	if err := r.pause(ctx); err != nil {
		return err
	}
	if err := p.FollowX(draftTextLinkXPath, r.opts.LinkWait); err != nil {
		if errors.Is(err, crawlers.ErrNoElement) {
			return fmt.Errorf("%w: no text link on drafts page", models.ErrTextLinkNotFound)
		}
		return err
	}
	return nil
}

func (r *Retriever) captureHTML(p Page, doc *goquery.Document, raw, dir, key string) (*models.BillTextArtifact, error) {
	markup, matched, err := CaptureContainer(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: render container: %v", models.ErrDriver, err)
	}
	if matched == "document" {
		utils.Warn("no bill text container found, using the entire page")
	} else {
		utils.Infof("found bill text in %s", matched)
	}

	text, err := p.BodyText()
	if err != nil || strings.TrimSpace(text) == "" {
		utils.Debugf("rendered text unavailable (%v), using readability", err)
		if text, err = ReadableText(raw, p.CurrentURL()); err != nil {
			return nil, fmt.Errorf("%w: no plain text: %v", models.ErrConversion, err)
		}
	}

	htmlPath, txtPath, err := SaveHTMLText(dir, key, markup, text, r.now())
	if err != nil {
		return nil, err
	}
	return &models.BillTextArtifact{Path: htmlPath, TextPath: txtPath, Format: models.FormatHTML}, nil
}

func (r *Retriever) fetchPDF(ctx context.Context, p Page, dir string) (*models.BillTextArtifact, error) {
	if err := r.pause(ctx); err != nil {
		return nil, err
	}

	pdfURL, err := p.AttrX(pdfLinkXPath, "href", r.opts.LinkWait)
	if err == nil {
		utils.Infof("found PDF link: %s", pdfURL)
		if err := p.ClickX(pdfLinkXPath, r.opts.ElementWait); err != nil {
			return nil, err
		}
		return r.collectPDF(ctx, filepath.Join(dir, PDFFileName(pdfURL)))
	}
	if !errors.Is(err, crawlers.ErrNoElement) {
		return nil, err
	}
	utils.Warn("no direct PDF link found, looking for embedded PDF")

	if p.HasX(pdfObjectXPath) {
		pdfURL, err := p.AttrX(pdfObjectXPath, "data", r.opts.ElementWait)
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(strings.ToLower(pdfURL), ".pdf") {
			if err := p.NavigateForDownload(pdfURL); err != nil {
				return nil, err
			}
			return r.collectPDF(ctx, filepath.Join(dir, PDFFileName(pdfURL)))
		}
	}

	return nil, fmt.Errorf("%w: no PDF to download", models.ErrTextLinkNotFound)
}

func (r *Retriever) collectPDF(ctx context.Context, pdfPath string) (*models.BillTextArtifact, error) {
	if err := waitForFile(ctx, pdfPath, r.opts.DownloadTimeout, r.opts.DownloadPoll); err != nil {
		return nil, err
	}

	txtPath, err := r.convert(pdfPath)
	if err != nil {
		return nil, err
	}
	return &models.BillTextArtifact{Path: txtPath, TextPath: txtPath, Format: models.FormatPDF}, nil
}

func (r *Retriever) pause(ctx context.Context) error {
	if r.delay == nil {
		return nil
	}
	_, err := r.delay.Wait(ctx)
	return err
}

func (r *Retriever) sleeper() stealth.Sleeper {
	if r.delay == nil {
		return stealth.SleepContext
	}
	return r.delay.Sleep
}
