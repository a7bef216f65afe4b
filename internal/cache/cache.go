// Package cache holds the in-process caches of derived ledger views.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cleaner is a cache whose expired entries can be dropped in bulk.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps its registered caches on a timer.
type Manager struct {
	logger *slog.Logger

	mu      sync.Mutex
	caches  []Cleaner
	running bool

	quit     chan struct{}
	finished chan struct{}
	once     sync.Once
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:   logger,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

func (m *Manager) Register(caches ...Cleaner) {
	m.mu.Lock()
	m.caches = append(m.caches, caches...)
	m.mu.Unlock()
}

// StartCleanup sweeps every interval until Stop. Later calls are no-ops.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true

	go func() {
		defer close(m.finished)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-m.quit:
				return
			case <-t.C:
				if n := m.CleanNow(); n > 0 {
					m.logger.Debug("Expired cache entries", "count", n)
				}
			}
		}
	}()
}

// CleanNow sweeps every registered cache once and returns the total dropped.
func (m *Manager) CleanNow() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	n := 0
	for _, c := range caches {
		n += c.CleanExpired()
	}
	return n
}

// Stop ends the sweep and waits for it to exit. Safe to call more than once.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.quit)
		m.mu.Lock()
		running := m.running
		m.mu.Unlock()
		if running {
			<-m.finished
		}
	})
}
