package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofrs/flock"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// fileBundle is the on-disk layout. extracted_at is unix seconds.
type fileBundle struct {
	Cookies     map[string]string `json:"cookies"`
	CSRFToken   string            `json:"csrf_token"`
	SessionID   string            `json:"session_id"`
	ExtractedAt float64           `json:"extracted_at"`
}

// FileStore keeps one bundle in a JSON file readable only by the owner.
// A sibling .lock file serializes access across processes.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the credentials file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored bundle. A missing file or a bundle without cookies
// yields ErrNotFound.
func (s *FileStore) Load(ctx context.Context) (Bundle, error) {
	var b Bundle
	err := s.withLock(ctx, false, func() error {
		data, err := os.ReadFile(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read credentials: %w", err)
		}

		var fb fileBundle
		if err := sonic.Unmarshal(data, &fb); err != nil {
			return fmt.Errorf("decode credentials %s: %w", s.path, err)
		}
		if len(fb.Cookies) == 0 {
			return ErrNotFound
		}

		b = Bundle{
			Cookies:     fb.Cookies,
			CSRFToken:   fb.CSRFToken,
			SessionID:   fb.SessionID,
			ExtractedAt: fromUnix(fb.ExtractedAt),
		}
		return nil
	})
	return b, err
}

// Save writes the bundle atomically through a temp file and rename.
func (s *FileStore) Save(ctx context.Context, b Bundle) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(fileBundle{
		Cookies:     b.Cookies,
		CSRFToken:   b.CSRFToken,
		SessionID:   b.SessionID,
		ExtractedAt: toUnix(b.ExtractedAt),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	return s.withLock(ctx, true, func() error {
		tmp, err := os.CreateTemp(filepath.Dir(s.path), ".auth-*.tmp")
		if err != nil {
			return fmt.Errorf("create temp file: %w", err)
		}
		defer os.Remove(tmp.Name())

		if err := tmp.Chmod(fileMode); err != nil {
			tmp.Close()
			return fmt.Errorf("chmod temp file: %w", err)
		}
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return fmt.Errorf("write credentials: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			return fmt.Errorf("sync credentials: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("close credentials: %w", err)
		}
		if err := os.Rename(tmp.Name(), s.path); err != nil {
			return fmt.Errorf("replace credentials: %w", err)
		}
		return nil
	})
}

// Delete removes the stored bundle. Deleting a missing file is not an error.
func (s *FileStore) Delete(ctx context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return s.withLock(ctx, true, func() error {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete credentials: %w", err)
		}
		return nil
	})
}

func (s *FileStore) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, fs.ErrNotExist) {
		return fn()
	}

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = s.lock.TryLockContext(ctx, 50*time.Millisecond)
	} else {
		ok, err = s.lock.TryRLockContext(ctx, 50*time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("lock credentials: %w", err)
	}
	if !ok {
		return fmt.Errorf("lock credentials: %s busy", s.lock.Path())
	}
	defer s.lock.Unlock()

	return fn()
}

func toUnix(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}

func fromUnix(sec float64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(sec*1e9)).UTC()
}
