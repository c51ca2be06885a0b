package kvstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is a process-local Store guarded by a RWMutex
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Get(ctx context.Context, key string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return cloneEntry(e), nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	version := m.entries[key].Version + 1
	m.entries[key] = m.newEntry(key, value, version)
	return version, nil
}

func (m *Memory) SetIfAbsent(ctx context.Context, key string, value []byte) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		return cloneEntry(e), false, nil
	}
	e := m.newEntry(key, value, 1)
	m.entries[key] = e
	return cloneEntry(e), true, nil
}

func (m *Memory) CompareAndSwap(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return 0, ErrNotFound
	}
	if e.Version != version {
		return 0, ErrVersionMismatch
	}
	m.entries[key] = m.newEntry(key, value, version+1)
	return version + 1, nil
}

func (m *Memory) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory) newEntry(key string, value []byte, version int64) Entry {
	return Entry{
		Key:       key,
		Value:     append([]byte(nil), value...),
		Version:   version,
		UpdatedAt: m.now().UTC(),
	}
}

func cloneEntry(e Entry) Entry {
	e.Value = append([]byte(nil), e.Value...)
	return e
}
