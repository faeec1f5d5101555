// Package suppression implements the ledger of reaction removals issued by
// the bot itself.
package suppression

import (
	"context"
	"sync"
	"time"

	"rosterbot/internal/ports/output"
)

var _ output.SuppressionLedger = (*MemoryLedger)(nil)

// MemoryLedger keeps entries in a map with an expiry per key. A background
// sweep evicts entries whose echo event never arrived.
type MemoryLedger struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time

	stop chan struct{}
	done chan struct{}
}

// NewMemoryLedger starts a ledger sweeping every sweep interval. A sweep of
// zero disables the background goroutine (expired keys are still ignored).
func NewMemoryLedger(ttl, sweep time.Duration) *MemoryLedger {
	l := &MemoryLedger{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]time.Time{},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if sweep > 0 {
		go l.run(sweep)
	} else {
		close(l.done)
	}
	return l
}

func (l *MemoryLedger) run(every time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *MemoryLedger) Mark(_ context.Context, key string) error {
	l.mu.Lock()
	l.entries[key] = l.now().Add(l.ttl)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLedger) Consume(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.entries[key]
	if !ok {
		return false, nil
	}
	delete(l.entries, key)
	return l.now().Before(exp), nil
}

// Sweep evicts expired entries and returns how many were removed.
func (l *MemoryLedger) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, exp := range l.entries {
		if !now.Before(exp) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of live and not yet swept entries.
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *MemoryLedger) Close() error {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	<-l.done
	return nil
}
