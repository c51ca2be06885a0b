package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"wision/internal/kvstore"
)

// gatedStore blocks the first insert under prefix until release is closed
type gatedStore struct {
	kvstore.Store
	prefix  string
	entered chan struct{}
	release chan struct{}
	once    bool
}

func (s *gatedStore) SetIfAbsent(ctx context.Context, key string, value []byte) (kvstore.Entry, bool, error) {
	if strings.HasPrefix(key, s.prefix) && !s.once {
		s.once = true
		close(s.entered)
		<-s.release
	}
	return s.Store.SetIfAbsent(ctx, key, value)
}

// slowStore delays reads under prefix to widen read-modify-write windows
type slowStore struct {
	kvstore.Store
	prefix string
	delay  time.Duration
}

func (s *slowStore) Get(ctx context.Context, key string) (kvstore.Entry, error) {
	if strings.HasPrefix(key, s.prefix) {
		time.Sleep(s.delay)
	}
	return s.Store.Get(ctx, key)
}

var errInjected = errors.New("injected store failure")

// failingStore fails inserts under prefix while failing is set
type failingStore struct {
	kvstore.Store
	prefix  string
	failing atomic.Bool
}

func (s *failingStore) SetIfAbsent(ctx context.Context, key string, value []byte) (kvstore.Entry, bool, error) {
	if strings.HasPrefix(key, s.prefix) && s.failing.Load() {
		return kvstore.Entry{}, false, errInjected
	}
	return s.Store.SetIfAbsent(ctx, key, value)
}

func (s *failingStore) CompareAndSwap(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	if strings.HasPrefix(key, s.prefix) && s.failing.Load() {
		return 0, errInjected
	}
	return s.Store.CompareAndSwap(ctx, key, value, version)
}
