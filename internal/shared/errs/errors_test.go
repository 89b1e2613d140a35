package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	t.Run("sentinels match by kind", func(t *testing.T) {
		err := fmt.Errorf("list notebooks: %w", Server("wXbhsf", 503, 4, "busy"))

		assert.True(t, errors.Is(err, ErrServer))
		assert.False(t, errors.Is(err, ErrAPI))
		assert.Equal(t, KindServer, KindOf(err))
	})

	t.Run("plain errors have unknown kind", func(t *testing.T) {
		assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
		assert.Equal(t, KindUnknown, KindOf(nil))
	})

	t.Run("wrapped cause is reachable", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := Timeout("rLM1Ne", cause)

		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, ErrTimeout)
	})
}

func TestErrorMessage(t *testing.T) {
	err := API("hizoJc", 404, "not here")

	assert.Contains(t, err.Error(), "api [hizoJc]")
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, "not here", err.Excerpt)

	auth := Authentication("recovery exhausted", nil)
	assert.Equal(t, ReloginHint, auth.Hint)
}

func TestTruncate(t *testing.T) {
	short := "short body"
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("é", MaxExcerpt)
	out := Truncate(long)
	assert.True(t, strings.HasSuffix(out, "…"))
	assert.LessOrEqual(t, len(strings.TrimSuffix(out, "…")), MaxExcerpt)
	assert.NotContains(t, out, "�")
}

func TestTransportIsRetryableKind(t *testing.T) {
	err := Transport("wXbhsf", errors.New("connection reset by peer"))
	assert.ErrorIs(t, err, ErrServer)
	assert.Contains(t, err.Error(), "connection reset")
}
