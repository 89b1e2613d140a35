package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/hashicorp/go-retryablehttp"
)

// Policy describes how transient failures are retried.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64
}

// DefaultPolicy returns 3 retries backing off 1s, 2s, 4s with a 16s cap.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   16 * time.Second,
	}
}

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retrier runs an attempt function under a Policy.
//
// An attempt signals a transient failure by returning an error of kind
// errs.KindServer; anything else ends the loop immediately. When the budget
// is spent the last server error is returned with its attempt count set.
type Retrier struct {
	Policy  Policy
	Backoff retryablehttp.Backoff
	Sleep   Sleeper

	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewRetrier creates a retrier using the exponential backoff from
// go-retryablehttp, which also honours Retry-After on 429 and 503.
func NewRetrier(policy Policy) *Retrier {
	return &Retrier{
		Policy:  policy,
		Backoff: retryablehttp.DefaultBackoff,
		Sleep:   Sleep,
	}
}

// Do calls fn until it succeeds, fails permanently, or retries run out.
// attempt is zero-based.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var e *errs.Error
		if !errors.As(err, &e) || e.Kind != errs.KindServer {
			return err
		}
		if attempt >= r.Policy.MaxRetries {
			e.Attempts = attempt + 1
			return e
		}

		delay := r.Delay(attempt, e.HTTPResponse())
		if r.OnRetry != nil {
			r.OnRetry(attempt+1, delay, err)
		}

		sleep := r.Sleep
		if sleep == nil {
			sleep = Sleep
		}
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}
}

// Delay returns the wait before retry number attempt+1.
func (r *Retrier) Delay(attempt int, resp *http.Response) time.Duration {
	backoff := r.Backoff
	if backoff == nil {
		backoff = retryablehttp.DefaultBackoff
	}

	d := backoff(r.Policy.BaseDelay, r.Policy.MaxDelay, attempt, resp)
	if j := r.Policy.Jitter; j > 0 {
		spread := (rand.Float64()*2 - 1) * j
		d = time.Duration(float64(d) * (1 + spread))
	}
	if d > r.Policy.MaxDelay && r.Policy.MaxDelay > 0 {
		d = r.Policy.MaxDelay
	}
	return d
}
