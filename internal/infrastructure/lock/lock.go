// Package lock provides keyed mutual exclusion for the booking and
// rating subsystems. Locks are scoped to a key (one reservation slot,
// one restaurant) so unrelated operations proceed fully in parallel.
package lock

import (
	"context"
	"sync"
)

// KeyedLocker serializes critical sections per key. Acquire blocks
// until the key is held or the context expires; the returned function
// releases the key.
type KeyedLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Memory は単一プロセス内でキー単位の排他を行う既定の実装。
// 参照カウントで未使用エントリを回収し、キー数の増加でマップが
// 肥大化しないようにしている。
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	mu   sync.Mutex
	refs int
}

// NewMemory returns an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry)}
}

// Acquire implements KeyedLocker. The context is consulted before
// blocking; once the per-key mutex is contended the wait is uncancellable,
// which is acceptable for the short check-and-write sections it guards.
func (m *Memory) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok {
		entry = &memoryEntry{}
		m.entries[key] = entry
	}
	entry.refs++
	m.mu.Unlock()

	entry.mu.Lock()

	release := func() {
		entry.mu.Unlock()
		m.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(m.entries, key)
		}
		m.mu.Unlock()
	}
	return release, nil
}
