package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores the credential as a single mode-0600 file named after
// the storage key inside Dir.
type FileBackend struct {
	Dir string
	Key string
}

// NewFileBackend returns a backend rooted at dir using DefaultKey.
func NewFileBackend(dir string) (*FileBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("session: directory is required")
	}
	return &FileBackend{Dir: filepath.Clean(dir), Key: DefaultKey}, nil
}

func (f *FileBackend) path() string {
	key := f.Key
	if key == "" {
		key = DefaultKey
	}
	return filepath.Join(f.Dir, key)
}

func (f *FileBackend) Load(context.Context) (string, bool, error) {
	data, err := os.ReadFile(f.path())
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: read token: %w", err)
	}
	token := string(data)
	return token, token != "", nil
}

// Save writes to a temporary file and renames it into place so readers never
// observe a partially written token.
func (f *FileBackend) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.Dir, "."+filepath.Base(f.path())+"-*")
	if err != nil {
		return fmt.Errorf("session: create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("session: chmod temp: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("session: write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("session: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path()); err != nil {
		cleanup()
		return fmt.Errorf("session: persist token: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete(context.Context) error {
	err := os.Remove(f.path())
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("session: remove token: %w", err)
}
