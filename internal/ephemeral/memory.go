package ephemeral

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	expireAt time.Time
}

// MemoryStore is the in-process Store implementation. Expiry is enforced
// lazily on every read; an optional background sweeper reclaims memory but is
// not needed for correctness.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	now func() time.Time

	sweepOnce sync.Once
	stopSweep chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   make(map[string]memoryEntry),
		now:       time.Now,
		stopSweep: make(chan struct{}),
	}
}

// WithClock replaces the time source; tests use it to simulate expiry.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// StartSweeper launches a goroutine that periodically drops expired entries.
func (s *MemoryStore) StartSweeper(interval time.Duration) {
	s.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-s.stopSweep:
					return
				case <-ticker.C:
					s.sweep()
				}
			}
		}()
	})
}

// Close stops the sweeper, if running.
func (s *MemoryStore) Close() {
	select {
	case <-s.stopSweep:
	default:
		close(s.stopSweep)
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !e.expireAt.After(now) {
			delete(s.entries, k)
		}
	}
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: cp, expireAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !e.expireAt.After(now) {
		return nil, false, nil
	}
	cp := make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, true, nil
}

func (s *MemoryStore) Take(ctx context.Context, key string) ([]byte, bool, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	delete(s.entries, key)
	if !e.expireAt.After(now) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ScanPrefix(ctx context.Context, prefix string) (map[string][]byte, error) {
	now := s.now()
	out := make(map[string][]byte)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, e := range s.entries {
		if !strings.HasPrefix(k, prefix) || !e.expireAt.After(now) {
			continue
		}
		cp := make([]byte, len(e.value))
		copy(cp, e.value)
		out[k] = cp
	}
	return out, nil
}

func (s *MemoryStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	now := s.now()
	removed := 0
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if e.expireAt.After(now) {
			removed++
		}
		delete(s.entries, k)
	}
	return removed, nil
}
