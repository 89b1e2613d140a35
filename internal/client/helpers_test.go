package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/credentials"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/NotebookRPC/internal/session"
	"github.com/GriffinCanCode/NotebookRPC/internal/testutil"
	"github.com/GriffinCanCode/NotebookRPC/internal/testutil/fakeservice"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// sleepRecorder replaces backoff waits and remembers them.
type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (r *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slept = append(r.slept, d)
	return nil
}

func (r *sleepRecorder) Durations() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.slept...)
}

// notingStore records loads in the fake service's event log. Saves made by
// the session after a CSRF refresh are dropped so the store keeps the
// bundle a test put there.
type notingStore struct {
	credentials.Store
	svc *fakeservice.Service
}

func (s notingStore) Load(ctx context.Context) (credentials.Bundle, error) {
	s.svc.Note("store.load")
	return s.Store.Load(ctx)
}

func (s notingStore) Save(context.Context, credentials.Bundle) error {
	return nil
}

type harness struct {
	svc     *fakeservice.Service
	store   *credentials.MemoryStore
	session *session.Session
	client  *Client
	sleeps  *sleepRecorder
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	svc := fakeservice.New(t)
	cfg := svc.Config()
	store := credentials.NewMemoryStore(testutil.Bundle("disk-csrf"))
	metrics := monitoring.NewMetrics()

	sess := session.New(testutil.Bundle("initial-csrf"), notingStore{Store: store, svc: svc},
		session.WithService(cfg.Service),
		session.WithPageTimeout(cfg.Timeouts.Page.Std()),
		session.WithLogger(zaptest.NewLogger(t)),
		session.WithMetrics(metrics),
	)

	sleeps := &sleepRecorder{}
	base := []Option{
		WithConfig(cfg),
		WithLogger(zaptest.NewLogger(t)),
		WithSleeper(sleeps.Sleep),
		WithMetrics(metrics),
	}
	c := New(sess, append(base, opts...)...)

	return &harness{svc: svc, store: store, session: sess, client: c, sleeps: sleeps}
}

func notebookEntry(id, title string, sourceIDs ...string) []any {
	sources := make([]any, 0, len(sourceIDs))
	for i, sid := range sourceIDs {
		sources = append(sources, []any{
			[]any{sid},
			"Source " + string(rune('A'+i)),
			[]any{nil, 120, nil, nil, 5, nil, nil, []any{"https://example.com/" + sid}},
		})
	}
	return []any{
		title,
		sources,
		id,
		nil,
		nil,
		[]any{1, true, nil, nil, nil, []any{1767873600, 0}, nil, nil, []any{1767787200, 0}},
	}
}

func requireRequests(t *testing.T, svc *fakeservice.Service, key string, n int) []fakeservice.Request {
	t.Helper()
	reqs := svc.Requests(key)
	require.Len(t, reqs, n, "requests for %s", key)
	return reqs
}

func okResult(opID string, payload any) fakeservice.Reply {
	return fakeservice.OK(testutil.Result(opID, payload))
}

func authExpired(opID string) fakeservice.Reply {
	return fakeservice.OK(testutil.AuthExpired(opID))
}
