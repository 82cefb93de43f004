package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Store is the key/value backend behind the list cache and the token
// denylist. *redis.Client implements it; Memory is used when Redis is
// disabled and in tests.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

type item struct {
	value      []byte
	expiration int64
}

func (i item) expired(now int64) bool {
	return i.expiration > 0 && now > i.expiration
}

// Memory is an in-process Store with lazy expiry and a periodic sweep.
type Memory struct {
	items map[string]item
	mu    sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	m := &Memory{
		items: make(map[string]item),
		stop:  make(chan struct{}),
	}
	go m.startGC(time.Minute)
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, found := m.items[key]
	if !found || it.expired(time.Now().UnixNano()) {
		return nil, false, nil
	}
	return it.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}
	m.items[key] = item{value: value, expiration: expiration}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if it, ok := m.items[key]; ok && !it.expired(time.Now().UnixNano()) {
		n, _ = strconv.ParseInt(string(it.value), 10, 64)
	}
	n++
	m.items[key] = item{value: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.Get(ctx, key)
	return ok, err
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Close stops the sweeper.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) startGC(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			m.mu.Lock()
			for k, v := range m.items {
				if v.expired(now) {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
