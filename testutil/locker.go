package testutil

import (
	"context"
	"sync"

	"github.com/Sean-Brix/RiderMind-sub003/database"

	"gorm.io/gorm"
)

// CountingLocker wraps a LocalLocker and records, per key, how many callers
// are waiting and the most that ever held the key at once.
type CountingLocker struct {
	Inner *database.LocalLocker

	mu         sync.Mutex
	waiting    map[string]int
	holders    map[string]int
	maxHolders map[string]int
}

func NewCountingLocker() *CountingLocker {
	return &CountingLocker{
		Inner:      database.NewLocalLocker(),
		waiting:    make(map[string]int),
		holders:    make(map[string]int),
		maxHolders: make(map[string]int),
	}
}

func (l *CountingLocker) Acquire(ctx context.Context, tx *gorm.DB, key string) (func(), error) {
	l.mu.Lock()
	l.waiting[key]++
	l.mu.Unlock()

	release, err := l.Inner.Acquire(ctx, tx, key)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.waiting[key]--
	if err != nil {
		return nil, err
	}
	l.holders[key]++
	if l.holders[key] > l.maxHolders[key] {
		l.maxHolders[key] = l.holders[key]
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holders[key]--
			l.mu.Unlock()
			release()
		})
	}, nil
}

// Waiting reports how many callers are blocked on key.
func (l *CountingLocker) Waiting(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waiting[key]
}

// MaxHolders reports the most callers that held key at the same time.
func (l *CountingLocker) MaxHolders(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxHolders[key]
}
