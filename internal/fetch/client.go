// Package fetch implements the HTTP fetcher: retrying text retrieval with anti-bot
// detection and an optional headless-browser escalation (spec §4.1).
package fetch

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kainuguru/ingestion-core/pkg/logger"
)

const userAgent = "KainuguruIngestionBot/1.0 (+https://kainuguru.lt/bot; ingestion@kainuguru.lt)"

// BrowserRenderer is the external "render URL -> HTML" capability the core consumes
// without owning (spec §1 out of scope: the headless-browser driver itself).
type BrowserRenderer interface {
	Render(ctx context.Context, url string, timeout time.Duration, proxy *BrowserProxy) (string, error)
}

// Config parameterizes one Client. MaxRetries is N in spec's "attempts = N+1".
type Config struct {
	Retailer        string
	Timeout         time.Duration
	RequestDelay    time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	ProxyURL        string
	BrowserFallback bool
	BrowserTimeout  time.Duration
	BrowserProxyURL string
}

// Client fetches URLs for one retailer adapter, pacing requests and retrying transient
// failures before giving up or escalating to a browser render.
type Client struct {
	cfg      Config
	http     *http.Client
	renderer BrowserRenderer

	mu       sync.Mutex
	lastCall time.Time
}

func NewClient(cfg Config, renderer BrowserRenderer) (*Client, error) {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		cfg:      cfg,
		renderer: renderer,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}, nil
}

// FetchText retrieves the text of a URL with retry/backoff and anti-bot detection,
// escalating to the browser renderer when enabled and still blocked.
func (c *Client) FetchText(ctx context.Context, targetURL string) (string, error) {
	log := logger.FetcherLogger(c.cfg.Retailer, "fetch_text")

	body, err := c.fetchWithRetries(ctx, targetURL)
	if err == nil {
		return body, nil
	}

	if !IsKind(err, KindAntiBot) || !c.cfg.BrowserFallback || c.renderer == nil {
		return "", err
	}

	log.Warn().Str("url", targetURL).Msg("anti-bot challenge, escalating to browser renderer")

	var proxy *BrowserProxy
	if c.cfg.BrowserProxyURL != "" {
		parsed, perr := ParseBrowserProxy(c.cfg.BrowserProxyURL)
		if perr != nil {
			return "", perr
		}
		proxy = &parsed
	}

	timeout := c.cfg.BrowserTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	rendered, rerr := c.renderer.Render(ctx, targetURL, timeout, proxy)
	if rerr != nil {
		return "", err // re-raise the original fetch error, not the browser error
	}
	if IsChallenge(rendered) {
		return "", err // still a challenge: re-raise the original error (spec §4.1)
	}
	return rendered, nil
}

// FetchSitemap is FetchText plus transparent gzip decompression when the URL or response
// indicates a compressed sitemap payload.
func (c *Client) FetchSitemap(ctx context.Context, targetURL string) (string, error) {
	gzipExpected := strings.HasSuffix(targetURL, ".gz")

	body, contentType, err := c.fetchRawWithRetries(ctx, targetURL)
	if err != nil {
		return "", err
	}
	if gzipExpected || strings.Contains(strings.ToLower(contentType), "gzip") {
		reader, gerr := gzip.NewReader(strings.NewReader(body))
		if gerr != nil {
			return body, nil // not actually gzipped despite the hint; return as-is
		}
		defer reader.Close()
		decompressed, rerr := io.ReadAll(reader)
		if rerr != nil {
			return "", newPermanent(targetURL, 0, rerr)
		}
		return string(decompressed), nil
	}
	return body, nil
}

func (c *Client) fetchWithRetries(ctx context.Context, targetURL string) (string, error) {
	body, _, err := c.fetchRawWithRetriesDetectChallenge(ctx, targetURL)
	return body, err
}

func (c *Client) fetchRawWithRetries(ctx context.Context, targetURL string) (string, string, error) {
	return c.doFetch(ctx, targetURL, false)
}

func (c *Client) fetchRawWithRetriesDetectChallenge(ctx context.Context, targetURL string) (string, string, error) {
	return c.doFetch(ctx, targetURL, true)
}

func (c *Client) doFetch(ctx context.Context, targetURL string, checkChallenge bool) (string, string, error) {
	maxAttempts := c.cfg.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		c.pace()

		body, status, contentType, err := c.doRequest(ctx, targetURL)
		if err != nil {
			lastErr = newTransient(targetURL, 0, err)
			c.backoff(ctx, attempt)
			continue
		}

		if status == 404 || (status >= 400 && status < 500 && !retryableStatus[status]) {
			return "", "", newPermanent(targetURL, status, nil)
		}

		if retryableStatus[status] {
			lastErr = newTransient(targetURL, status, nil)
			c.backoff(ctx, attempt)
			continue
		}

		if checkChallenge && IsChallenge(body) {
			lastErr = newAntiBot(targetURL, status)
			c.backoff(ctx, attempt)
			continue
		}

		return body, contentType, nil
	}

	return "", "", lastErr
}

func (c *Client) doRequest(ctx context.Context, targetURL string) (string, int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", 0, "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, "", err
	}
	return string(data), resp.StatusCode, resp.Header.Get("Content-Type"), nil
}

// pace sleeps the remainder of the configured inter-request gap, if any, before a request.
func (c *Client) pace() {
	if c.cfg.RequestDelay <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastCall)
	if elapsed < c.cfg.RequestDelay {
		time.Sleep(c.cfg.RequestDelay - elapsed)
	}
	c.lastCall = time.Now()
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	base := c.cfg.RetryBackoff
	if base <= 0 {
		base = time.Second
	}
	wait := base * time.Duration(1<<uint(attempt))
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
