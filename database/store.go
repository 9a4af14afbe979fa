package database

import (
	"context"
	"errors"
	"sort"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence collaborator of the content engine: a GORM handle
// plus the group locker that serializes writers of one sibling group.
type Store struct {
	db     *gorm.DB
	locker Locker
	log    *logger.Logger
}

func NewStore(db *gorm.DB, locker Locker, log *logger.Logger) *Store {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Store{db: db, locker: locker, log: log.With("component", "Store")}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Tx is one transactional unit of work. Locks taken through it are held
// until the transaction has committed or rolled back.
type Tx struct {
	DB *gorm.DB

	ctx      context.Context
	locker   Locker
	held     map[string]struct{}
	grouped  bool
	releases []func()
}

func (t *Tx) Context() context.Context { return t.ctx }

// ParentKey names the lock guarding the existence of one parent row. Adding a
// child takes the parent's key before the parent is read; deleting the parent
// takes it before the children are read.
func ParentKey(entity string, id uuid.UUID) string {
	return entity + ":" + id.String()
}

var errLockOrder = errors.New("parent lock requested after a group lock")

// LockParents acquires parent keys. Parents rank above sibling groups: a
// transaction takes all of its parent locks before its first group lock.
func (t *Tx) LockParents(keys ...string) error {
	if t.grouped && len(t.pending(keys)) > 0 {
		return apperr.Storage("lock parents", errLockOrder)
	}
	return t.acquire(keys)
}

// LockGroups acquires every key not yet held by this transaction, in sorted
// order so that two transactions never wait on each other in a cycle.
func (t *Tx) LockGroups(keys ...string) error {
	if len(keys) > 0 {
		t.grouped = true
	}
	return t.acquire(keys)
}

func (t *Tx) pending(keys []string) []string {
	pending := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := t.held[k]; ok {
			continue
		}
		pending = append(pending, k)
	}
	return pending
}

func (t *Tx) acquire(keys []string) error {
	pending := t.pending(keys)
	sort.Strings(pending)

	for i, k := range pending {
		if i > 0 && pending[i-1] == k {
			continue
		}
		release, err := t.locker.Acquire(t.ctx, t.DB, k)
		if err != nil {
			return apperr.Storage("lock "+k, err)
		}
		t.held[k] = struct{}{}
		if release != nil {
			t.releases = append(t.releases, release)
		}
	}
	return nil
}

func (t *Tx) releaseAll() {
	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
	t.releases = nil
}

// Transaction runs fn inside a single database transaction. Any error rolls
// the whole unit back; unclassified errors surface as storage errors.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	t := &Tx{
		ctx:    ctx,
		locker: s.locker,
		held:   make(map[string]struct{}),
	}
	defer t.releaseAll()

	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		t.DB = gtx
		return fn(t)
	})
	if err != nil {
		return apperr.Storage("transaction", err)
	}
	return nil
}
