package testutil

import (
	"context"

	"github.com/GriffinCanCode/NotebookRPC/internal/credentials"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of credentials.Store for testing.
type MockStore struct {
	mock.Mock
}

// Load mocks the Load method.
func (m *MockStore) Load(ctx context.Context) (credentials.Bundle, error) {
	args := m.Called(ctx)
	return args.Get(0).(credentials.Bundle), args.Error(1)
}

// Save mocks the Save method.
func (m *MockStore) Save(ctx context.Context, b credentials.Bundle) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockStore) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// NewMockStore creates a mock store whose Save always succeeds.
func NewMockStore() *MockStore {
	m := new(MockStore)
	m.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

// Bundle returns a bundle with every required cookie set.
func Bundle(csrf string) credentials.Bundle {
	return credentials.Bundle{
		Cookies: map[string]string{
			"SID":     "sid-" + csrf,
			"HSID":    "hsid",
			"SSID":    "ssid",
			"APISID":  "apisid",
			"SAPISID": "sapisid",
		},
		CSRFToken: csrf,
		SessionID: "-4242",
	}
}

// LandingPage renders a minimal landing page carrying the tokens.
func LandingPage(csrf, sessionID string) string {
	return `<!doctype html><html><head><script src="/static/app.js"></script>` +
		`<script nonce="x">window.WIZ_global_data = {"FdrFJe":"` + sessionID + `","SNlM0e":"` + csrf + `","qwAQke":"LabsTailwindUi"};</script>` +
		`</head><body></body></html>`
}
