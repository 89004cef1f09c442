// Package ratelimit counts attempts per client key. A key may make Max
// attempts; its counter starts over once it has been idle for Window.
// Attempts made while blocked still count and extend the block.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"fittrack/internal/clock"
)

const (
	DefaultMax    = 5
	DefaultWindow = 15 * time.Minute
)

// Decision is the outcome of one attempt.
type Decision struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration
}

// Limiter records an attempt for key and decides whether it may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type entry struct {
	count int
	last  time.Time
}

// Memory is a process-local Limiter.
type Memory struct {
	max    int
	window time.Duration
	clock  clock.Clock

	mu      sync.Mutex
	entries map[string]*entry
}

// NewMemory creates a limiter allowing max attempts per idle window.
func NewMemory(max int, window time.Duration, clk clock.Clock) *Memory {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Memory{max: max, window: window, clock: clk, entries: make(map[string]*entry)}
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.Sub(e.last) > m.window {
		e = &entry{}
		m.entries[key] = e
	}
	e.count++
	e.last = now

	d := Decision{Allowed: e.count <= m.max, Count: e.count}
	if !d.Allowed {
		d.RetryAfter = m.window
	}
	return d, nil
}

// Reset forgets key.
func (m *Memory) Reset(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Prune drops keys idle for longer than the window.
func (m *Memory) Prune() int {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if now.Sub(e.last) > m.window {
			delete(m.entries, k)
			n++
		}
	}
	return n
}
