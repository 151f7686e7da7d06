package answers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore persists the snapshot as <dir>/<key>.json.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore stores snapshots under dir using the given key; an empty key
// falls back to StorageKey.
func NewFileStore(dir, key string) (*FileStore, error) {
	if key == "" {
		key = StorageKey
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("answers: create store dir: %w", err)
	}
	return &FileStore{
		path: filepath.Join(dir, key+".json"),
		now:  time.Now,
	}, nil
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (Answers, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Answers{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("answers: read %s: %w", s.path, err)
	}
	return Decode(data)
}

// Save writes to a temporary file and renames it over the snapshot so readers
// never observe a partial write.
func (s *FileStore) Save(ctx context.Context, a Answers) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(a, s.now())
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".answers-*")
	if err != nil {
		return fmt.Errorf("answers: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("answers: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("answers: close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("answers: replace snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("answers: remove %s: %w", s.path, err)
	}
	return nil
}
