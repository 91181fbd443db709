// Package ratelimit enforces the per-identity posting ceiling: at most
// maxPosts posts within a trailing window per hashed submitter address.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/morb-dev/morbsite/internal/logger"
)

// Guard is the abuse-mitigation contract. Check is called before a post is
// persisted; Record only after it succeeded. The two calls are deliberately
// not atomic: losing a Record on a crash is tolerated bookkeeping drift.
type Guard interface {
	Check(ctx context.Context, identity string) (bool, error)
	Record(ctx context.Context, identity string) error
}

// Memory is the single-process Guard. State resets on restart and is not
// shared across instances, which matches the casual-spam threat model.
type Memory struct {
	mu       sync.Mutex
	posts    map[string][]time.Time
	window   time.Duration
	maxPosts int
	now      func() time.Time
}

func NewMemory(window time.Duration, maxPosts int) *Memory {
	return &Memory{
		posts:    make(map[string][]time.Time),
		window:   window,
		maxPosts: maxPosts,
		now:      time.Now,
	}
}

// Check prunes stale timestamps for the identity and reports whether another
// post is allowed right now.
func (m *Memory) Check(_ context.Context, identity string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recent := m.pruneLocked(identity, m.now())
	return len(recent) < m.maxPosts, nil
}

func (m *Memory) Record(_ context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts[identity] = append(m.posts[identity], m.now())
	return nil
}

// pruneLocked drops timestamps older than the window. Caller holds mu.
func (m *Memory) pruneLocked(identity string, now time.Time) []time.Time {
	windowStart := now.Add(-m.window)
	timestamps := m.posts[identity]

	kept := timestamps[:0]
	for _, ts := range timestamps {
		if !ts.Before(windowStart) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(m.posts, identity)
		return nil
	}
	m.posts[identity] = kept
	return kept
}

// Sweep runs one eager pruning pass over every identity so memory does not
// grow unbounded for identities that stopped posting.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for identity := range m.posts {
		m.pruneLocked(identity, now)
	}
}

// StartSweeper runs Sweep on a ticker until ctx is canceled.
func (m *Memory) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started rate limit sweeper",
		"component", "ratelimit",
		"interval", interval,
		"window", m.window)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-ctx.Done():
				logger.Log.Info("rate limit sweeper shutting down gracefully",
					"component", "ratelimit")
				return
			}
		}
	}()
}
