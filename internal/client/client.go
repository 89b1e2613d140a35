package client

import (
	"math/rand/v2"
	"sync"

	"github.com/GriffinCanCode/NotebookRPC/internal/conversation"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/config"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/NotebookRPC/internal/protocol"
	"github.com/GriffinCanCode/NotebookRPC/internal/session"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/id"
	"go.uber.org/zap"
)

// reqIDStep is how far the streaming request counter advances per query.
const reqIDStep = 100000

// Client talks to the notebook service for one account.
//
// A Client owns its session, conversation tracker, HTTP client and metrics
// registry. Two clients never share state. All methods are safe for
// concurrent use.
type Client struct {
	cfg       *config.Config
	session   *session.Session
	tracker   *conversation.Tracker
	http      *httpclient.Client
	endpoints protocol.Endpoints
	retrier   *resilience.Retrier
	ids       *id.Generator
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	reqMu sync.Mutex
	reqID int64

	// set by options, applied once in New
	policy    *resilience.Policy
	sleep     resilience.Sleeper
	rateLimit *config.RateLimitConfig
}

// Option configures a Client.
type Option func(*Client)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRetryPolicy overrides the retry policy from the configuration.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *Client) { c.policy = &p }
}

// WithSleeper replaces the backoff wait, for deterministic tests.
func WithSleeper(s resilience.Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithTracker shares a conversation tracker.
func WithTracker(t *conversation.Tracker) Option {
	return func(c *Client) { c.tracker = t }
}

// WithHTTPClient sets the HTTP client. The session should use the same one.
func WithHTTPClient(h *httpclient.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.rateLimit = &config.RateLimitConfig{RequestsPerSecond: rps, Burst: burst}
	}
}

// New creates a client over an existing session.
func New(sess *session.Session, opts ...Option) *Client {
	c := &Client{
		cfg:     config.Default(),
		session: sess,
		ids:     id.NewGenerator(),
		reqID:   100000 + rand.Int64N(900000),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.metrics == nil {
		c.metrics = monitoring.NewMetrics()
	}
	if c.tracker == nil {
		c.tracker = conversation.NewTracker()
	}
	limit := c.cfg.RateLimit
	if c.rateLimit != nil {
		limit = *c.rateLimit
	}
	if c.http == nil {
		c.http = httpclient.New(httpclient.Options{UserAgent: c.cfg.Service.UserAgent})
	}
	if c.rateLimit != nil || limit.RequestsPerSecond > 0 {
		c.http.SetRateLimit(limit.RequestsPerSecond, limit.Burst)
	}

	policy := resilience.Policy{
		MaxRetries: c.cfg.Retry.MaxRetries,
		BaseDelay:  c.cfg.Retry.BaseDelay.Std(),
		MaxDelay:   c.cfg.Retry.MaxDelay.Std(),
		Jitter:     c.cfg.Retry.Jitter,
	}
	if c.policy != nil {
		policy = *c.policy
	}
	c.retrier = resilience.NewRetrier(policy)
	if c.sleep != nil {
		c.retrier.Sleep = c.sleep
	}

	c.endpoints = protocol.Endpoints{
		BatchURL:   c.cfg.Service.BatchURL(),
		QueryURL:   c.cfg.Service.QueryURL(),
		BuildLabel: c.cfg.Service.BuildLabel,
		Language:   c.cfg.Service.Language,
	}
	c.logger = c.logger.Named("client")
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// Tracker returns the conversation tracker.
func (c *Client) Tracker() *conversation.Tracker {
	return c.tracker
}

// Metrics returns the client's metrics collectors.
func (c *Client) Metrics() *monitoring.Metrics {
	return c.metrics
}

// nextReqID advances the streaming request counter.
func (c *Client) nextReqID() int64 {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()
	c.reqID += reqIDStep
	return c.reqID
}
