package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingRetrier(policy Policy) (*Retrier, *[]time.Duration) {
	var slept []time.Duration
	r := NewRetrier(policy)
	r.Sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return r, &slept
}

func unavailable() error {
	return errs.Server("wXbhsf", http.StatusServiceUnavailable, 0, "busy")
}

func TestRetrierBackoff(t *testing.T) {
	t.Run("three failures then success", func(t *testing.T) {
		r, slept := recordingRetrier(DefaultPolicy())

		calls := 0
		err := r.Do(context.Background(), func(context.Context, int) error {
			calls++
			if calls <= 3 {
				return unavailable()
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 4, calls)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *slept)
	})

	t.Run("exhaustion reports attempts", func(t *testing.T) {
		r, slept := recordingRetrier(DefaultPolicy())

		calls := 0
		err := r.Do(context.Background(), func(context.Context, int) error {
			calls++
			return unavailable()
		})

		require.ErrorIs(t, err, errs.ErrServer)
		assert.Equal(t, 4, calls)
		assert.Len(t, *slept, 3)

		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 4, e.Attempts)
		assert.Equal(t, http.StatusServiceUnavailable, e.Status)
	})

	t.Run("delays are capped", func(t *testing.T) {
		r, slept := recordingRetrier(Policy{MaxRetries: 6, BaseDelay: time.Second, MaxDelay: 16 * time.Second})

		_ = r.Do(context.Background(), func(context.Context, int) error { return unavailable() })

		assert.Equal(t, []time.Duration{
			time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 16 * time.Second,
		}, *slept)
	})
}

func TestRetrierStopsOnPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"timeout", errs.Timeout("wXbhsf", context.DeadlineExceeded)},
		{"api", errs.API("wXbhsf", http.StatusNotFound, "missing")},
		{"auth expired", errs.AuthExpired("wXbhsf")},
		{"plain error", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, slept := recordingRetrier(DefaultPolicy())

			calls := 0
			err := r.Do(context.Background(), func(context.Context, int) error {
				calls++
				return tt.err
			})

			assert.Equal(t, tt.err, err)
			assert.Equal(t, 1, calls)
			assert.Empty(t, *slept)
		})
	}
}

func TestRetryAfterIsHonoured(t *testing.T) {
	r, slept := recordingRetrier(DefaultPolicy())

	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"3"}}}
	calls := 0
	err := r.Do(context.Background(), func(context.Context, int) error {
		calls++
		if calls == 1 {
			return errs.Server("wXbhsf", http.StatusTooManyRequests, 0, "").WithResponse(resp)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second}, *slept)
}

func TestJitterStaysInRange(t *testing.T) {
	r := NewRetrier(Policy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 16 * time.Second, Jitter: 0.25})

	for range 50 {
		d := r.Delay(1, nil)
		assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
		assert.LessOrEqual(t, d, 2500*time.Millisecond)
	}
}

func TestContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRetrier(DefaultPolicy())
	err := r.Do(ctx, func(context.Context, int) error { return unavailable() })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		assert.True(t, RetryableStatus(code), code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 501} {
		assert.False(t, RetryableStatus(code), code)
	}
}
