package credentials

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"
)

// RequiredCookies must all be present for a bundle to authenticate.
var RequiredCookies = []string{"SID", "HSID", "SSID", "APISID", "SAPISID"}

// ErrNotFound is returned by Store.Load when nothing has been saved.
var ErrNotFound = errors.New("credentials not found")

// Bundle is the authenticated browser state replayed on every request.
type Bundle struct {
	Cookies     map[string]string
	CSRFToken   string
	SessionID   string
	ExtractedAt time.Time
}

// Store persists bundles between processes.
type Store interface {
	Load(ctx context.Context) (Bundle, error)
	Save(ctx context.Context, b Bundle) error
	Delete(ctx context.Context) error
}

// Valid reports whether every required cookie is present and non-empty.
func (b Bundle) Valid() bool {
	return len(b.MissingCookies()) == 0
}

// MissingCookies lists required cookies absent from the bundle, sorted.
func (b Bundle) MissingCookies() []string {
	var missing []string
	for _, name := range RequiredCookies {
		if b.Cookies[name] == "" {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

// Clone returns a deep copy.
func (b Bundle) Clone() Bundle {
	b.Cookies = maps.Clone(b.Cookies)
	return b
}

// Equal reports whether two bundles carry the same credentials.
// ExtractedAt is ignored.
func (b Bundle) Equal(o Bundle) bool {
	return b.CSRFToken == o.CSRFToken &&
		b.SessionID == o.SessionID &&
		maps.Equal(b.Cookies, o.Cookies)
}
