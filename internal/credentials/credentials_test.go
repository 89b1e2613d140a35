package credentials

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBundle() Bundle {
	return Bundle{
		Cookies: map[string]string{
			"SID": "sid", "HSID": "hsid", "SSID": "ssid", "APISID": "apisid", "SAPISID": "sapisid",
		},
		CSRFToken:   "AHBxJ9q",
		SessionID:   "-123456789",
		ExtractedAt: time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC),
	}
}

func TestBundleValid(t *testing.T) {
	b := sampleBundle()
	assert.True(t, b.Valid())
	assert.Empty(t, b.MissingCookies())

	delete(b.Cookies, "SAPISID")
	b.Cookies["HSID"] = ""
	assert.False(t, b.Valid())
	assert.Equal(t, []string{"HSID", "SAPISID"}, b.MissingCookies())
}

func TestBundleCloneAndEqual(t *testing.T) {
	a := sampleBundle()
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Cookies["SID"] = "rotated"
	assert.Equal(t, "sid", a.Cookies["SID"])
	assert.False(t, a.Equal(b))

	c := a.Clone()
	c.ExtractedAt = time.Now()
	assert.True(t, a.Equal(c))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "auth.json")
		store := NewFileStore(path)

		require.NoError(t, store.Save(ctx, sampleBundle()))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.True(t, sampleBundle().Equal(got))
		assert.WithinDuration(t, sampleBundle().ExtractedAt, got.ExtractedAt, time.Millisecond)
	})

	t.Run("owner only permissions", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")
		store := NewFileStore(filepath.Join(dir, "auth.json"))
		require.NoError(t, store.Save(ctx, sampleBundle()))

		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		dirInfo, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())
	})

	t.Run("missing file is not found", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "absent", "auth.json"))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty cookies is not found", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "auth.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"cookies":{},"csrf_token":"x"}`), 0o600))

		_, err := NewFileStore(path).Load(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "auth.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

		_, err := NewFileStore(path).Load(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("reads files written by the login helper", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "auth.json")
		content := `{
  "cookies": {"SID": "a", "HSID": "b", "SSID": "c", "APISID": "d", "SAPISID": "e"},
  "csrf_token": "tok",
  "session_id": "42",
  "extracted_at": 1767873600.5
}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		got, err := NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		assert.True(t, got.Valid())
		assert.Equal(t, "tok", got.CSRFToken)
		assert.Equal(t, int64(1767873600), got.ExtractedAt.Unix())
	})

	t.Run("delete", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "auth.json"))
		require.NoError(t, store.Save(ctx, sampleBundle()))
		require.NoError(t, store.Delete(ctx))
		require.NoError(t, store.Delete(ctx))

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancelled context while locked elsewhere", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "auth.json")
		store := NewFileStore(path)
		require.NoError(t, store.Save(ctx, sampleBundle()))

		other := NewFileStore(path)
		require.NoError(t, other.lock.Lock())
		defer other.lock.Unlock()

		cctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		assert.Error(t, store.Save(cctx, sampleBundle()))
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	b := sampleBundle()
	require.NoError(t, store.Save(ctx, b))
	b.Cookies["SID"] = "mutated after save"

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sid", got.Cookies["SID"])

	require.NoError(t, store.Delete(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	seeded := NewMemoryStore(sampleBundle())
	got, err = seeded.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Valid())
}
