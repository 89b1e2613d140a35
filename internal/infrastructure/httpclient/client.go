package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	UserAgent string
	// RequestsPerSecond of zero or less means unlimited.
	RequestsPerSecond float64
	Burst             int
	// Transport overrides the pooled transport, mostly for tests.
	Transport http.RoundTripper
}

// Client wraps resty with an outbound rate limit.
//
// Retries are not done here: resty's retry count stays at zero and the
// caller drives retries so auth recovery and backoff share one budget.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Mu      sync.RWMutex
}

// New creates a client on go-retryablehttp's pooled transport.
func New(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.Logger = nil
		transport = retryClient.HTTPClient.Transport
	}

	restyClient := resty.New()
	restyClient.
		SetRetryCount(0).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetTransport(transport)
	if opts.UserAgent != "" {
		restyClient.SetHeader("User-Agent", opts.UserAgent)
	}

	c := &Client{Resty: restyClient}
	c.SetRateLimit(opts.RequestsPerSecond, opts.Burst)
	return c
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64, burst int) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	if burst <= 0 {
		burst = max(1, int(rps))
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request waits for the rate limiter and returns a request bound to ctx.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return c.Resty.R().SetContext(ctx), nil
}

// Cookies converts a name/value map into request cookies.
func Cookies(values map[string]string) []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(values))
	for name, value := range values {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	return cookies
}

// WithTimeout bounds ctx by d when d is positive.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
