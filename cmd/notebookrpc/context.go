package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/client"
	"github.com/GriffinCanCode/NotebookRPC/internal/credentials"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/config"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/logging"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/NotebookRPC/internal/session"
	"go.uber.org/zap"
)

// commandContext lazily builds the client shared by every subcommand.
type commandContext struct {
	configFlag      string
	credentialsFlag string
	metricsFlag     string
	jsonFlag        bool

	once    sync.Once
	cfg     *config.Config
	logger  *zap.Logger
	client  *client.Client
	metrics *http.Server
	err     error
}

func (c *commandContext) ensureClient(ctx context.Context) (*client.Client, error) {
	c.once.Do(func() {
		c.err = c.build(ctx)
	})
	return c.client, c.err
}

func (c *commandContext) build(ctx context.Context) error {
	cfg, err := config.Load(strings.TrimSpace(c.configFlag))
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return err
	}
	c.logger = logger

	metrics := monitoring.NewMetrics()
	if addr := strings.TrimSpace(c.metricsFlag); addr != "" {
		c.metrics = &http.Server{Addr: addr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := c.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	path := strings.TrimSpace(c.credentialsFlag)
	if path == "" {
		path = cfg.Store.CredentialsPath()
	}

	httpClient := httpclient.New(httpclient.Options{
		UserAgent:         cfg.Service.UserAgent,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})

	sess, err := session.Open(ctx, credentials.NewFileStore(path),
		session.WithService(cfg.Service),
		session.WithPageTimeout(cfg.Timeouts.Page.Std()),
		session.WithHTTPClient(httpClient),
		session.WithLogger(logger),
		session.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	c.client = client.New(sess,
		client.WithConfig(cfg),
		client.WithHTTPClient(httpClient),
		client.WithLogger(logger),
		client.WithMetrics(metrics),
	)
	return nil
}

func (c *commandContext) close() {
	if c.metrics != nil {
		_ = c.metrics.Close()
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
