package store

import (
	"context"
	"sync"
)

// MemoryBlob is a non-durable slot for dev mode and tests.
type MemoryBlob struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryBlob returns an empty in-memory slot.
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{}
}

// Load returns the last saved bytes, nil when never written.
func (b *MemoryBlob) Load(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// Save replaces the slot contents.
func (b *MemoryBlob) Save(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make([]byte, len(data))
	copy(b.data, data)
	return nil
}
