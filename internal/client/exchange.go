package client

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/credentials"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/logging"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/NotebookRPC/internal/session"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"go.uber.org/zap"
)

// recoveryStages are tried in order, at most once each per logical call.
var recoveryStages = []session.Stage{session.StageCSRF, session.StageDisk}

// exchange describes one logical request. build runs on every attempt so
// each attempt carries the current credentials.
type exchange struct {
	op      string
	timeout time.Duration
	build   func(b credentials.Bundle) (url, body string, err error)
	decode  func(raw string) (any, error)
}

// execute runs an exchange with auth recovery wrapped around server
// retries. It returns a decoded result or exactly one typed error.
func (c *Client) execute(ctx context.Context, ex exchange) (any, error) {
	logger := c.logger.With(
		logging.RequestID(c.ids.NewRequestID().String()),
		logging.RPC(ex.op),
	)
	timer := monitoring.NewTimer(c.metrics, ex.op)

	result, err := c.withRecovery(ctx, ex, logger)
	timer.Stop(err)
	if err != nil {
		logger.Debug("call failed", zap.Error(err))
	}
	return result, err
}

func (c *Client) withRecovery(ctx context.Context, ex exchange, logger *zap.Logger) (any, error) {
	if c.session.State() == session.StateFullyExpired {
		if err := c.session.Revive(ctx); err != nil {
			return nil, authFailure(ex.op, err)
		}
	}

	stage := 0
	for {
		bundle, gen := c.session.Snapshot()
		result, err := c.withRetry(ctx, ex, bundle, logger)
		if !errors.Is(err, errs.ErrAuthExpired) {
			return result, err
		}

		cause := err
		for {
			if stage >= len(recoveryStages) {
				c.session.Expire(gen)
				return nil, authFailure(ex.op, cause)
			}
			next := recoveryStages[stage]
			stage++

			logger.Warn("authentication expired, recovering", zap.Stringer("stage", next))
			rerr := c.session.Recover(ctx, next, gen)
			if rerr == nil {
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			cause = rerr
		}
	}
}

func (c *Client) withRetry(ctx context.Context, ex exchange, bundle credentials.Bundle, logger *zap.Logger) (any, error) {
	retrier := *c.retrier
	retrier.OnRetry = func(attempt int, delay time.Duration, err error) {
		status := "transport"
		var e *errs.Error
		if errors.As(err, &e) && e.Status != 0 {
			status = strconv.Itoa(e.Status)
		}
		c.metrics.RecordRetry(ex.op, status)
		logger.Warn("retrying after server error",
			logging.Attempt(attempt),
			logging.Delay(delay),
			zap.String("status", status),
		)
	}

	var result any
	err := retrier.Do(ctx, func(ctx context.Context, attempt int) error {
		r, err := c.attempt(ctx, ex, bundle, attempt, logger)
		result = r
		return err
	})
	return result, err
}

// attempt performs one HTTP exchange bounded by the exchange timeout.
func (c *Client) attempt(ctx context.Context, ex exchange, bundle credentials.Bundle, attempt int, logger *zap.Logger) (any, error) {
	url, body, err := ex.build(bundle)
	if err != nil {
		return nil, err
	}

	actx, cancel := httpclient.WithTimeout(ctx, ex.timeout)
	defer cancel()

	req, err := c.http.Request(actx)
	if err != nil {
		// the limiter only fails when the wait cannot finish in time
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, errs.Timeout(ex.op, err)
	}

	resp, err := req.
		SetHeaders(c.cfg.Service.Headers()).
		SetCookies(httpclient.Cookies(bundle.Cookies)).
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, transportFailure(ctx, ex.op, err)
	}

	status := resp.StatusCode()
	logger.Debug("attempt finished",
		logging.Attempt(attempt+1),
		logging.Status(status),
		zap.Duration("elapsed", resp.Time()),
	)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e := errs.AuthExpired(ex.op)
		e.Status = status
		return nil, e
	case resilience.RetryableStatus(status):
		return nil, errs.Server(ex.op, status, 0, resp.String()).WithResponse(resp.RawResponse)
	case status < 200 || status >= 300:
		return nil, errs.API(ex.op, status, resp.String())
	}

	return ex.decode(resp.String())
}

// transportFailure classifies an error that produced no HTTP response.
func transportFailure(parent context.Context, op string, err error) error {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return parent.Err()
	case errors.Is(err, context.DeadlineExceeded), parent.Err() != nil:
		return errs.Timeout(op, err)
	default:
		return errs.Transport(op, err)
	}
}

// authFailure turns an exhausted recovery into the single Authentication
// error callers see. An AuthExpired cause is not wrapped; its status and
// code are carried as fields instead.
func authFailure(op string, cause error) error {
	var e *errs.Error
	if errors.As(cause, &e) {
		switch e.Kind {
		case errs.KindAuthentication:
			out := *e
			out.Op = op
			return &out
		case errs.KindAuthExpired:
			out := errs.Authentication("authentication expired and recovery failed", nil)
			out.Op = op
			out.Status = e.Status
			out.Code = e.Code
			return out
		}
	}
	out := errs.Authentication("authentication expired and recovery failed", cause)
	out.Op = op
	return out
}
