package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout      = 5 * time.Second
	DefaultMaxRedirects = 10
	DefaultUserAgent    = "wifi-login/1.0"
)

// ErrTooManyRedirects is wrapped when a redirect chain exceeds MaxRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// Options configures a Client.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxRedirects int
	// Rate paces requests (per second). Zero means unlimited.
	Rate float64
	// Cookies enables a public-suffix aware cookie jar.
	Cookies bool
	// KeepAlive reuses connections between requests.
	KeepAlive bool
	// InsecureTLS accepts self-signed and mismatched certificates. Only
	// portal page sessions set it, never probes or checks.
	InsecureTLS bool
}

// DefaultOptions returns options suited to single-shot probes.
func DefaultOptions() Options {
	return Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxRedirects: DefaultMaxRedirects,
	}
}

// Response is the observable outcome of one request.
type Response struct {
	RequestedURL string
	// FinalURL is the URL of the last request in the redirect chain.
	FinalURL   string
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Redirected reports whether the final URL differs from the requested one.
func (r *Response) Redirected() bool {
	return r.FinalURL != r.RequestedURL
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Client issues single-shot HTTP requests. It never retries; retry policy
// belongs to the caller.
type Client struct {
	follow   *resty.Client
	noFollow *resty.Client
	limiter  *rate.Limiter
	mu       sync.RWMutex
}

// NewClient creates a client from opts. Zero fields take their defaults.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}

	// Pooled transport tuned by cleanhttp, shared by both clients.
	transport := retryablehttp.NewClient().HTTPClient.Transport
	if t, ok := transport.(*http.Transport); ok && !opts.KeepAlive {
		t = t.Clone()
		t.DisableKeepAlives = true
		transport = t
	}

	var jar http.CookieJar
	if opts.Cookies {
		// cookiejar.New never returns a non-nil error
		jar, _ = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	}

	maxRedirects := opts.MaxRedirects
	follow := newResty(transport, jar, opts).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
			}
			return nil
		}))
	noFollow := newResty(transport, jar, opts).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	c := &Client{follow: follow, noFollow: noFollow}
	c.SetRateLimit(opts.Rate)
	return c
}

func newResty(transport http.RoundTripper, jar http.CookieJar, opts Options) *resty.Client {
	r := resty.New().
		SetTransport(transport).
		SetCookieJar(jar).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", opts.UserAgent)
	if opts.InsecureTLS {
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // captive portals often use self-signed certificates
	}
	return r
}

// SetHeader adds a default header to every request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.follow.SetHeader(key, value)
	c.noFollow.SetHeader(key, value)
}

// SetTimeout changes the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.follow.SetTimeout(d)
	c.noFollow.SetTimeout(d)
}

// SetRateLimit configures pacing in requests per second; rps <= 0 disables it.
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request creates a request after waiting for the rate limiter.
func (c *Client) Request(ctx context.Context, follow bool) (*resty.Request, error) {
	c.mu.RLock()
	limiter := c.limiter
	r := c.noFollow
	if follow {
		r = c.follow
	}
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}
	return r.R().SetContext(ctx), nil
}

// Get issues a GET. With follow set, redirects are followed and FinalURL is
// the URL of the last hop; otherwise the first response is returned as is.
func (c *Client) Get(ctx context.Context, rawURL string, follow bool) (*Response, error) {
	req, err := c.Request(ctx, follow)
	if err != nil {
		return nil, err
	}
	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, err
	}
	return toResponse(rawURL, resp), nil
}

// PostForm submits url-encoded form values, following redirects.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	req, err := c.Request(ctx, true)
	if err != nil {
		return nil, err
	}
	resp, err := req.SetFormDataFromValues(form).Post(rawURL)
	if err != nil {
		return nil, err
	}
	return toResponse(rawURL, resp), nil
}

// Jar returns the cookie jar, or nil when cookies are disabled.
func (c *Client) Jar() http.CookieJar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.follow.GetClient().Jar
}

func toResponse(requested string, resp *resty.Response) *Response {
	final := requested
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}
	return &Response{
		RequestedURL: requested,
		FinalURL:     final,
		StatusCode:   resp.StatusCode(),
		Header:       resp.Header(),
		Body:         resp.Body(),
		Duration:     resp.Time(),
	}
}
