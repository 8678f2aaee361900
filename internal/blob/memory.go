package blob

import (
	"context"
	"errors"
	"sync"
)

// Memory is an in-process Store used by tests and local development.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
	puts    int

	// FailPut, when set, makes every Put return a StorageError.
	FailPut bool
}

type memObject struct {
	data []byte
	opts PutOptions
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Put(_ context.Context, key string, data []byte, opts PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut {
		return &StorageError{Op: "put", Key: key, Err: errors.New("put disabled")}
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = memObject{data: cp, opts: opts}
	m.puts++
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, &StorageError{Op: "get", Key: key, Err: errors.New("no such key")}
	}
	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, nil
}

// Options returns the metadata the given key was written with.
func (m *Memory) Options(key string) (PutOptions, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.opts, ok
}

// PutCount reports how many writes have been issued.
func (m *Memory) PutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}
