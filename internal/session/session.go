package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/credentials"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/config"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"go.uber.org/zap"
)

// Session owns the credential bundle for one client.
//
// Every replacement of the bundle bumps a generation counter. Callers that
// saw an auth failure pass the generation they used to Recover; if it has
// moved on, somebody else already recovered and no refresh is made.
type Session struct {
	mu     sync.RWMutex
	bundle credentials.Bundle
	gen    uint64
	state  State

	// recoverMu serializes refreshes so only one runs at a time.
	recoverMu sync.Mutex

	store       credentials.Store
	http        *httpclient.Client
	service     config.ServiceConfig
	pageTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
	metrics     *monitoring.Metrics
}

// Option configures a Session.
type Option func(*Session)

// WithService sets the service coordinates used for the landing page fetch.
func WithService(svc config.ServiceConfig) Option {
	return func(s *Session) { s.service = svc }
}

// WithPageTimeout bounds each landing page fetch.
func WithPageTimeout(d time.Duration) Option {
	return func(s *Session) { s.pageTimeout = d }
}

// WithHTTPClient shares an HTTP client with the session.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(s *Session) { s.http = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics records recoveries and state changes.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithClock overrides time.Now for stamping refreshed bundles.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session around an initial bundle. store may be nil, in
// which case disk recovery always fails.
func New(bundle credentials.Bundle, store credentials.Store, opts ...Option) *Session {
	cfg := config.Default()
	s := &Session{
		bundle:      bundle.Clone(),
		gen:         1,
		store:       store,
		service:     cfg.Service,
		pageTimeout: cfg.Timeouts.Page.Std(),
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.http == nil {
		s.http = httpclient.New(httpclient.Options{UserAgent: s.service.UserAgent})
	}
	s.logger = s.logger.Named("session")
	return s
}

// Open loads the stored bundle and, when it carries no CSRF token yet,
// fetches one from the landing page.
func Open(ctx context.Context, store credentials.Store, opts ...Option) (*Session, error) {
	bundle, err := store.Load(ctx)
	if errors.Is(err, credentials.ErrNotFound) {
		return nil, errs.Authentication("no stored credentials", err)
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !bundle.Valid() {
		return nil, errs.Authentication("stored credentials are missing cookies: "+strings.Join(bundle.MissingCookies(), ", "), nil)
	}

	s := New(bundle, store, opts...)
	if bundle.CSRFToken == "" {
		if err := s.RefreshCSRF(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Snapshot returns a copy of the bundle and its generation.
func (s *Session) Snapshot() (credentials.Bundle, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle.Clone(), s.gen
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RefreshCSRF fetches the landing page and replaces the CSRF token (and the
// session id when the page carries one). The refreshed bundle is saved to
// the store on a best-effort basis.
func (s *Session) RefreshCSRF(ctx context.Context) error {
	bundle, _ := s.Snapshot()

	ctx, cancel := httpclient.WithTimeout(ctx, s.pageTimeout)
	defer cancel()

	req, err := s.http.Request(ctx)
	if err != nil {
		return errs.Authentication("landing page fetch", err)
	}
	resp, err := req.
		SetHeaders(s.service.PageHeaders()).
		SetCookies(httpclient.Cookies(bundle.Cookies)).
		Get(strings.TrimSuffix(s.service.BaseURL, "/") + "/")
	if err != nil {
		return errs.Authentication("landing page fetch failed", err)
	}

	if s.isLoginRedirect(resp.RawResponse) {
		return errs.Authentication("cookies expired, redirected to login", nil)
	}
	if resp.StatusCode() != http.StatusOK {
		return errs.Authentication(fmt.Sprintf("landing page returned HTTP %d", resp.StatusCode()), nil)
	}

	tokens := extractTokens(resp.String())
	if tokens.CSRF == "" {
		return errs.Authentication("no CSRF token on landing page", nil)
	}

	s.mu.Lock()
	s.bundle.CSRFToken = tokens.CSRF
	if tokens.SessionID != "" {
		s.bundle.SessionID = tokens.SessionID
	}
	s.bundle.ExtractedAt = s.now()
	s.gen++
	saved := s.bundle.Clone()
	s.mu.Unlock()

	s.logger.Debug("csrf token refreshed", zap.Bool("session_id", tokens.SessionID != ""))
	s.persist(ctx, saved)
	return nil
}

// RefreshFromDisk replaces the whole bundle with the stored one.
func (s *Session) RefreshFromDisk(ctx context.Context) error {
	bundle, err := s.loadStored(ctx)
	if err != nil {
		return err
	}
	s.replace(bundle)
	return nil
}

// Recover runs one recovery stage on behalf of a caller that failed with
// generation observed. It returns nil without refreshing when the bundle
// has already been replaced since then. The session leaves Recovering when
// the stage ends, whatever its outcome; only Expire makes it terminal.
func (s *Session) Recover(ctx context.Context, stage Stage, observed uint64) error {
	s.recoverMu.Lock()
	defer s.recoverMu.Unlock()

	s.mu.Lock()
	if s.gen != observed {
		s.mu.Unlock()
		s.logger.Debug("recovery already done by another caller", zap.Stringer("stage", stage))
		return nil
	}
	if s.state == StateFullyExpired {
		s.mu.Unlock()
		return errs.Authentication("credentials fully expired", nil)
	}
	s.setState(StateRecovering)
	s.mu.Unlock()

	var err error
	switch stage {
	case StageCSRF:
		err = s.RefreshCSRF(ctx)
	case StageDisk:
		err = s.RefreshFromDisk(ctx)
	default:
		err = fmt.Errorf("unknown recovery stage %d", stage)
	}
	s.metrics.RecordRecovery(stage.String(), err)

	s.mu.Lock()
	if s.state == StateRecovering {
		s.setState(StateValid)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("recovery stage failed", zap.Stringer("stage", stage), zap.Error(err))
		return err
	}
	s.logger.Info("credentials recovered", zap.Stringer("stage", stage))
	return nil
}

// Expire marks the session fully expired unless the bundle has been
// replaced since generation observed. It reports whether it did.
func (s *Session) Expire(observed uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != observed {
		return false
	}
	s.setState(StateFullyExpired)
	s.logger.Warn("credentials fully expired")
	return true
}

// Revive leaves the FullyExpired state if the store now holds a different
// bundle, as it does after an out-of-band re-login. It makes no network
// call and is a no-op in any other state.
func (s *Session) Revive(ctx context.Context) error {
	s.recoverMu.Lock()
	defer s.recoverMu.Unlock()

	if s.State() != StateFullyExpired {
		return nil
	}

	bundle, err := s.loadStored(ctx)
	if err != nil {
		return err
	}

	current, _ := s.Snapshot()
	if bundle.Equal(current) {
		return errs.Authentication("stored credentials unchanged since they expired", nil)
	}

	s.replace(bundle)
	s.mu.Lock()
	s.setState(StateValid)
	s.mu.Unlock()
	s.logger.Info("credentials revived from store")
	return nil
}

func (s *Session) loadStored(ctx context.Context) (credentials.Bundle, error) {
	if s.store == nil {
		return credentials.Bundle{}, errs.Authentication("no credential store configured", nil)
	}
	bundle, err := s.store.Load(ctx)
	if errors.Is(err, credentials.ErrNotFound) {
		return credentials.Bundle{}, errs.Authentication("no stored credentials", err)
	}
	if err != nil {
		return credentials.Bundle{}, errs.Authentication("load stored credentials", err)
	}
	if !bundle.Valid() {
		return credentials.Bundle{}, errs.Authentication(
			"stored credentials are missing cookies: "+strings.Join(bundle.MissingCookies(), ", "), nil)
	}
	return bundle, nil
}

func (s *Session) replace(bundle credentials.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = bundle.Clone()
	s.gen++
}

func (s *Session) persist(ctx context.Context, bundle credentials.Bundle) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(context.WithoutCancel(ctx), bundle); err != nil {
		s.logger.Warn("failed to persist refreshed credentials", zap.Error(err))
	}
}

// setState must be called with mu held.
func (s *Session) setState(state State) {
	s.state = state
	s.metrics.SetSessionState(int(state))
}

func (s *Session) isLoginRedirect(resp *http.Response) bool {
	if resp == nil || resp.Request == nil || s.service.LoginHost == "" {
		return false
	}
	u := resp.Request.URL
	return u.Host == s.service.LoginHost || strings.Contains(u.String(), s.service.LoginHost)
}
