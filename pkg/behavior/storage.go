package behavior

import (
	"context"
	"sync"
)

// Storage is the durable key-value port behind the behavior store. One
// logical key holds the serialized UserBehavior document.
type Storage interface {
	// Load returns the stored document, or ok=false when none exists yet.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	// Save replaces the stored document.
	Save(ctx context.Context, data []byte) error
	// Delete removes the stored document.
	Delete(ctx context.Context) error
	Close() error
}

// MemoryStorage is an in-process Storage, used in tests and as a fallback
// when no workspace is configured.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(ctx context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, false, nil
	}
	out := append([]byte{}, m.data...)
	return out, true, nil
}

func (m *MemoryStorage) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte{}, data...)
	m.set = true
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.set = false
	return nil
}

func (m *MemoryStorage) Close() error { return nil }
