package crawlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// SessionOptions configure a single browser launch.
type SessionOptions struct {
	Headless        bool
	BrowserBin      string
	UserAgent       string
	Headers         http.Header
	Proxy           string
	DownloadDir     string
	PageLoadTimeout time.Duration
	Guard           *ResourceGuard
}

// Session is one Chromium process with one tab.
type Session struct {
	opts     SessionOptions
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// WithSession launches a browser, runs fn and always tears the browser down.
// A panic inside fn is reported as ErrDriver.
func WithSession(ctx context.Context, opts SessionOptions, fn func(*Session) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("browser session panic: %v", r)
			err = fmt.Errorf("%w: panic: %v", models.ErrDriver, r)
		}
	}()

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	return fn(s)
}

func openSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 30 * time.Second
	}
	opts.Guard.Warn()

	l := newLauncher(ctx, opts)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch browser: %v", models.ErrDriver, err)
	}

	s := &Session{opts: opts, launcher: l}
	s.browser = rod.New().Context(ctx).ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.kill()
		return nil, fmt.Errorf("%w: connect browser: %v", models.ErrDriver, err)
	}

	if opts.DownloadDir != "" {
		dir, err := filepath.Abs(opts.DownloadDir)
		if err != nil {
			dir = opts.DownloadDir
		}
		behavior := proto.BrowserSetDownloadBehavior{
			Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
			DownloadPath: dir,
		}
		if err := behavior.Call(s.browser); err != nil {
			s.close()
			return nil, fmt.Errorf("%w: set download dir: %v", models.ErrDriver, err)
		}
	}

	s.page, err = s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.close()
		return nil, fmt.Errorf("%w: open tab: %v", models.ErrDriver, err)
	}

	if opts.UserAgent != "" {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			utils.Warnf("set user agent: %v", err)
		}
	}
	if extra := flattenHeaders(opts.Headers); len(extra) > 0 {
		if _, err := s.page.SetExtraHeaders(extra); err != nil {
			utils.Warnf("set extra headers: %v", err)
		}
	}

	utils.Debugf("browser started: %s (proxy=%s)", controlURL, utils.RedactProxy(opts.Proxy))
	return s, nil
}

// pdfPreferences makes Chromium save PDFs to the download dir instead of opening its viewer.
const pdfPreferences = `{"plugins":{"always_open_pdf_externally":true},"download":{"prompt_for_download":false}}`

// newLauncher applies the stealth flags, identity and PDF download preference.
func newLauncher(ctx context.Context, opts SessionOptions) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-infobars").
		Set("disable-dev-shm-usage").
		Set("disable-extensions").
		Set("no-sandbox").
		Set("window-size", "1920,1080").
		Preferences(pdfPreferences)
	if opts.BrowserBin != "" {
		l = l.Bin(opts.BrowserBin)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}
	if opts.UserAgent != "" {
		l = l.Set("user-agent", opts.UserAgent)
	}
	return l
}

func (s *Session) close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			utils.Debugf("close browser: %v", err)
		}
	}
	s.kill()
}

func (s *Session) kill() {
	s.launcher.Kill()
	s.launcher.Cleanup()
}

// Page exposes the underlying tab.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Navigate loads url and waits for the load event within the page-load timeout.
func (s *Session) Navigate(url string) error {
	p := s.page.Timeout(s.opts.PageLoadTimeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return driverError("navigate "+url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return driverError("load "+url, err)
	}
	return nil
}

// HTML returns the rendered document.
func (s *Session) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", driverError("read html", err)
	}
	return html, nil
}

// BodyText returns the visible text of <body>.
func (s *Session) BodyText() (string, error) {
	p := s.page.Timeout(s.opts.PageLoadTimeout)
	defer p.CancelTimeout()

	body, err := p.Element("body")
	if err != nil {
		return "", driverError("find body", err)
	}
	text, err := body.Text()
	if err != nil {
		return "", driverError("read body text", err)
	}
	return text, nil
}

// CurrentURL returns the address of the loaded document.
func (s *Session) CurrentURL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// ErrNoElement means an XPath lookup found nothing within its wait.
var ErrNoElement = errors.New("no matching element")

// findX waits up to wait for an element matching xpath.
func (s *Session) findX(xpath string, wait time.Duration) (*rod.Element, error) {
	p := s.page.Timeout(wait)
	defer p.CancelTimeout()

	el, err := p.ElementX(xpath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNoElement, xpath, err)
	}
	return el.CancelTimeout(), nil
}

// HasX reports whether xpath currently matches without waiting.
func (s *Session) HasX(xpath string) bool {
	has, _, err := s.page.HasX(xpath)
	return err == nil && has
}

// AttrX reads a DOM property such as href or data from the first match of xpath.
func (s *Session) AttrX(xpath, name string, wait time.Duration) (string, error) {
	el, err := s.findX(xpath, wait)
	if err != nil {
		return "", err
	}
	v, err := el.Property(name)
	if err != nil {
		return "", driverError("read "+name, err)
	}
	return v.Str(), nil
}

// FollowX clicks the first match of xpath through script and waits for the navigation.
func (s *Session) FollowX(xpath string, wait time.Duration) error {
	el, err := s.findX(xpath, wait)
	if err != nil {
		return err
	}

	p := s.page.Timeout(s.opts.PageLoadTimeout)
	defer p.CancelTimeout()
	waitNav := p.WaitNavigation(proto.PageLifecycleEventNameLoad)

	if err := scriptClick(el); err != nil {
		return err
	}
	waitNav()
	return nil
}

// ClickX clicks the first match of xpath without waiting for a navigation, as for downloads.
func (s *Session) ClickX(xpath string, wait time.Duration) error {
	el, err := s.findX(xpath, wait)
	if err != nil {
		return err
	}
	return scriptClick(el)
}

func scriptClick(el *rod.Element) error {
	if _, err := el.Eval(`() => { this.scrollIntoView(true); this.click(); }`); err != nil {
		return driverError("click", err)
	}
	return nil
}

// NavigateForDownload opens a URL the browser will save rather than render.
// The aborted navigation Chromium reports for a download is not an error.
func (s *Session) NavigateForDownload(url string) error {
	p := s.page.Timeout(s.opts.PageLoadTimeout)
	defer p.CancelTimeout()

	err := p.Navigate(url)
	var navErr *rod.NavigationError
	if errors.As(err, &navErr) && strings.Contains(navErr.Reason, "ERR_ABORTED") {
		return nil
	}
	if err != nil {
		return driverError("navigate "+url, err)
	}
	return nil
}

// ClearState drops storage and cookies of the current page.
func (s *Session) ClearState() error {
	return clearPageState(s.page)
}

func flattenHeaders(h http.Header) []string {
	var out []string
	for name, values := range h {
		if len(values) > 0 {
			out = append(out, name, values[0])
		}
	}
	return out
}

// driverError maps rod failures onto the package sentinels.
func driverError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", models.ErrNavigationTimeout, op)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", models.ErrDriver, op, err)
	}
}
