package otp

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a single-process Store. Expired entries are dropped lazily on
// access and periodically by Sweep.
type MemoryStore struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

type entry struct {
	code     string
	attempts int
	exp      time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:   make(map[string]entry),
		now: time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	s.m[email] = entry{code: code, exp: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Verify(_ context.Context, email, code string, maxAttempts int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[email]
	if !ok {
		return Missing, nil
	}

	if s.now().After(e.exp) {
		delete(s.m, email)
		return Missing, nil
	}

	if e.code == code {
		delete(s.m, email)
		return Matched, nil
	}

	e.attempts++
	if e.attempts >= maxAttempts {
		delete(s.m, email)
		return Exhausted, nil
	}

	s.m[email] = e
	return Mismatch, nil
}

func (s *MemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	delete(s.m, email)
	s.mu.Unlock()
	return nil
}

// Sweep removes every expired entry and reports how many were dropped.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.m {
		if now.After(e.exp) {
			delete(s.m, k)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
