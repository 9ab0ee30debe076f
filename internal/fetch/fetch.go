// Package fetch is the one outbound HTTP path for every adapter: shared
// user agent, fixed request timeout, per-host rate limiting, and
// exponential-backoff retries for transient source failures.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultUserAgent = "JobMill/1.0 (+https://jobmill.eu/bot)"
	DefaultTimeout   = 30 * time.Second
)

// Options tune a Client. Zero values fall back to the defaults below.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	PerHostRPS float64 // requests per second per hostname
	Burst      int
	Retries    int           // attempts after the first
	Backoff    time.Duration // base delay, doubled per attempt
}

type Client struct {
	hc      *http.Client
	bare    *http.Client // no redirect following, for Location capture
	limiter *HostLimiter
	ua      string
	retries int
	backoff time.Duration
}

func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PerHostRPS <= 0 {
		opts.PerHostRPS = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 2
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	return &Client{
		hc: &http.Client{Timeout: opts.Timeout},
		bare: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: NewHostLimiter(opts.PerHostRPS, opts.Burst),
		ua:      opts.UserAgent,
		retries: opts.Retries,
		backoff: opts.Backoff,
	}
}

// Get fetches url and returns the body. Network errors, timeouts and
// non-2xx statuses are retried with exponential backoff until the retry
// budget runs out.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.backoff<<(attempt-1)); err != nil {
				return nil, err
			}
		}
		body, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("get %s (%d attempts): %w", url, c.retries+1, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.WaitURL(ctx, url); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.ua)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

// GetDocument fetches url and parses the body as HTML.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", url, err)
	}
	return doc, nil
}

// GetJSON fetches url and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json %s: %w", url, err)
	}
	return nil
}

// ResolveRedirect performs one request without following redirects and
// returns the Location target when the response is a redirect, else the
// original url. Tracking links get one hop, never a chain.
func (c *Client) ResolveRedirect(ctx context.Context, url string) (string, error) {
	if err := c.limiter.WaitURL(ctx, url); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.ua)

	res, err := c.bare.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve redirect %s: %w", url, err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode >= 300 && res.StatusCode <= 399 {
		loc, err := res.Location()
		if err != nil {
			return "", fmt.Errorf("resolve redirect %s: %w", url, err)
		}
		return loc.String(), nil
	}
	return url, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
