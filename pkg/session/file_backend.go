package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileBackend stores a JSON object of key/value strings in a single file.
// An advisory lock on <path>.lock serialises concurrent CLI processes and
// concurrent calls within one process.
type FileBackend struct {
	path     string
	lockPath string
}

// NewFileBackend returns a backend writing to path. The parent directory is
// created on first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Path returns the storage file location.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	if err := b.ensureDir(); err != nil {
		return "", false, err
	}
	// flock.Flock tracks a single lock state, so each call takes its own.
	lock := flock.New(b.lockPath)
	if err := lock.RLock(); err != nil {
		return "", false, fmt.Errorf("failed to lock session file: %w", err)
	}
	defer lock.Unlock()

	values, err := b.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (b *FileBackend) Set(_ context.Context, key, value string) error {
	return b.update(func(values map[string]string) {
		values[key] = value
	})
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	return b.update(func(values map[string]string) {
		delete(values, key)
	})
}

func (b *FileBackend) update(mutate func(map[string]string)) error {
	if err := b.ensureDir(); err != nil {
		return err
	}
	lock := flock.New(b.lockPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock session file: %w", err)
	}
	defer lock.Unlock()

	values, err := b.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking every write.
		values = make(map[string]string)
	}
	mutate(values)
	return b.write(values)
}

func (b *FileBackend) read() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	return values, nil
}

// write replaces the file atomically so readers never see a partial record.
func (b *FileBackend) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (b *FileBackend) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	return nil
}

var _ Backend = (*FileBackend)(nil)
