package reviewstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"syscall"
)

// Storage is a persistent string key-value medium, the server-side stand-in for
// browser local storage. Implementations return ErrPersistenceFull when a write
// exceeds their capacity.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// MemoryStorage keeps items in process memory. A zero Quota means unlimited;
// otherwise the sum of key and value bytes may not exceed it.
type MemoryStorage struct {
	Quota int

	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStorage(quota int) *MemoryStorage {
	return &MemoryStorage{Quota: quota, items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		m.items = make(map[string]string)
	}
	if m.Quota > 0 {
		used := 0
		for k, v := range m.items {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > m.Quota {
			return fmt.Errorf("%w: quota of %d bytes exceeded", ErrPersistenceFull, m.Quota)
		}
	}
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

var safeKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStorage stores each key as one file in Dir. Writes go through a temp file
// and rename so a crash never leaves a half-written value.
type FileStorage struct {
	Dir      string
	MaxBytes int // per value, 0 = unlimited
}

func NewFileStorage(dir string, maxBytes int) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FileStorage{Dir: dir, MaxBytes: maxBytes}, nil
}

func (f *FileStorage) path(key string) (string, error) {
	if !safeKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.Dir, key+".json"), nil
}

func (f *FileStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (f *FileStorage) SetItem(_ context.Context, key, value string) error {
	if f.MaxBytes > 0 && len(value) > f.MaxBytes {
		return fmt.Errorf("%w: value of %d bytes exceeds limit of %d", ErrPersistenceFull, len(value), f.MaxBytes)
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return mapDiskError(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return mapDiskError(err)
	}
	return os.Rename(tmp.Name(), p)
}

func (f *FileStorage) RemoveItem(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func mapDiskError(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %v", ErrPersistenceFull, err)
	}
	return err
}
