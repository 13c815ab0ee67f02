package crawlers

import (
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// StaticFetcher loads pages with a single HTTP request and no script execution.
type StaticFetcher struct {
	timeout time.Duration
}

// NewStaticFetcher returns a fetcher whose requests give up after timeout.
func NewStaticFetcher(timeout time.Duration) *StaticFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StaticFetcher{timeout: timeout}
}

// Visit hands fn a probe that re-requests targetURL on every call.
func (sf *StaticFetcher) Visit(ctx context.Context, targetURL string, id models.Identity, fn func(Probe) error) error {
	return fn(func(ctx context.Context) (string, error) {
		return sf.get(ctx, targetURL, id)
	})
}

func (sf *StaticFetcher) get(ctx context.Context, targetURL string, id models.Identity) (string, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if id.Proxy != "" {
		proxyURL, err := url.Parse(id.Proxy)
		if err != nil {
			return "", fmt.Errorf("%w: bad proxy %s: %v", models.ErrDriver, utils.RedactProxy(id.Proxy), err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	if id.UserAgent != "" {
		c.UserAgent = id.UserAgent
	}
	c.SetRequestTimeout(sf.timeout)
	// error statuses still reach OnResponse so challenge pages can be inspected
	c.ParseHTTPErrorResponse = true
	c.WithTransport(cloudflarebp.AddCloudFlareByPass(transport))

	c.OnRequest(func(r *colly.Request) {
		for name, values := range id.Headers {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
		utils.Debugf("GET %s", r.URL.String())
	})

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		encoding := r.Headers.Get("Content-Encoding")
		decoded, err := decompressResponse(encoding, r.Body)
		if err != nil {
			utils.Warnf("decompress %s (%s): %v", targetURL, encoding, err)
			decoded = r.Body
		}
		body = decoded
	})

	if err := c.Visit(targetURL); err != nil {
		return "", fetchError(targetURL, err)
	}

	content := string(body)
	if _, challenged := DetectChallenge(content); challenged {
		return content, nil
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: GET %s: status %d", models.ErrDriver, targetURL, status)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: empty response from %s", models.ErrDriver, targetURL)
	}
	return content, nil
}

// decompressResponse undoes Content-Encoding the HTTP stack left in place.
// colly already unwraps gzip, so only deflate and br are handled here.
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		return decompressed, nil

	case "br":
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("brotli: %w", err)
		}
		return decompressed, nil

	default:
		return body, nil
	}
}

func fetchError(targetURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s", models.ErrNavigationTimeout, targetURL)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: GET %s: %v", models.ErrDriver, targetURL, err)
}
