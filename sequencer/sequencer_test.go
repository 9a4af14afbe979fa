package sequencer_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"
	"github.com/Sean-Brix/RiderMind-sub003/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *database.Store
	seq    *sequencer.Sequencer
	module uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.Store(t)
	m := content.Module{Title: "Road signs"}
	require.NoError(t, store.DB().Create(&m).Error)
	return &fixture{store: store, seq: sequencer.New(testutil.Logger(t)), module: m.ID}
}

// addSlide creates an unplaced slide and inserts it at index.
func (f *fixture) addSlide(t *testing.T, title string, index int) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := f.store.Transaction(context.Background(), func(tx *database.Tx) error {
		s := content.Slide{ModuleID: f.module, Position: content.Unplaced, Title: title}
		s.SetPayload(content.TextPayload{Body: title})
		if err := tx.DB.Create(&s).Error; err != nil {
			return err
		}
		id = s.ID
		_, err := f.seq.InsertAt(tx, sequencer.Slides(f.module), s.ID, index)
		return err
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) order(t *testing.T) []uuid.UUID {
	t.Helper()
	var ids []uuid.UUID
	err := f.store.Transaction(context.Background(), func(tx *database.Tx) error {
		var err error
		ids, err = f.seq.Members(tx, sequencer.Slides(f.module))
		return err
	})
	require.NoError(t, err)
	return ids
}

func (f *fixture) assertDense(t *testing.T) {
	t.Helper()
	var positions []int
	require.NoError(t, f.store.DB().Model(&content.Slide{}).
		Where("module_id = ?", f.module).Order("position").Pluck("position", &positions).Error)
	for i, p := range positions {
		assert.Equal(t, i, p, "positions %v", positions)
	}
}

func TestInsertAppendsAndShifts(t *testing.T) {
	f := newFixture(t)
	a := f.addSlide(t, "A", sequencer.Append)
	b := f.addSlide(t, "B", sequencer.Append)
	c := f.addSlide(t, "C", 1)

	assert.Equal(t, []uuid.UUID{a, c, b}, f.order(t))
	f.assertDense(t)
}

func TestInsertClampsIndex(t *testing.T) {
	f := newFixture(t)
	a := f.addSlide(t, "A", 100)
	b := f.addSlide(t, "B", -5)
	c := f.addSlide(t, "C", 3)

	assert.Equal(t, []uuid.UUID{b, a, c}, f.order(t))
	f.assertDense(t)
}

func TestRemoveThenInsert(t *testing.T) {
	f := newFixture(t)
	a := f.addSlide(t, "A", sequencer.Append)
	b := f.addSlide(t, "B", sequencer.Append)
	c := f.addSlide(t, "C", sequencer.Append)

	err := f.store.Transaction(context.Background(), func(tx *database.Tx) error {
		pos, err := f.seq.RemoveFrom(tx, sequencer.Slides(f.module), b)
		assert.Equal(t, 1, pos)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, c}, f.order(t))

	d := f.addSlide(t, "D", 1)
	assert.Equal(t, []uuid.UUID{a, d, c}, f.order(t))
	f.assertDense(t)
}

func TestRemoveUnknownIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.addSlide(t, "A", sequencer.Append)

	err := f.store.Transaction(context.Background(), func(tx *database.Tx) error {
		_, err := f.seq.RemoveFrom(tx, sequencer.Slides(f.module), uuid.New())
		return err
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInsertAlreadyPlacedIsRejected(t *testing.T) {
	f := newFixture(t)
	a := f.addSlide(t, "A", sequencer.Append)

	err := f.store.Transaction(context.Background(), func(tx *database.Tx) error {
		_, err := f.seq.InsertAt(tx, sequencer.Slides(f.module), a, 0)
		return err
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidOrdering)
}

func TestMoveWithin(t *testing.T) {
	f := newFixture(t)
	a := f.addSlide(t, "A", sequencer.Append)
	b := f.addSlide(t, "B", sequencer.Append)
	c := f.addSlide(t, "C", sequencer.Append)
	d := f.addSlide(t, "D", sequencer.Append)

	move := func(id uuid.UUID, to int) int {
		var got int
		err := f.store.Transaction(context.Background(), func(tx *database.Tx) error {
			var err error
			got, err = f.seq.MoveWithin(tx, sequencer.Slides(f.module), id, to)
			return err
		})
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, 2, move(a, 2))
	assert.Equal(t, []uuid.UUID{b, c, a, d}, f.order(t))

	assert.Equal(t, 0, move(d, 0))
	assert.Equal(t, []uuid.UUID{d, b, c, a}, f.order(t))

	assert.Equal(t, 3, move(b, 99))
	assert.Equal(t, []uuid.UUID{d, c, a, b}, f.order(t))

	assert.Equal(t, 1, move(c, 1))
	assert.Equal(t, []uuid.UUID{d, c, a, b}, f.order(t))
	f.assertDense(t)
}

func TestReindexFromScratch(t *testing.T) {
	f := newFixture(t)
	a := f.addSlide(t, "A", sequencer.Append)
	b := f.addSlide(t, "B", sequencer.Append)
	c := f.addSlide(t, "C", sequencer.Append)

	reindex := func(ids ...uuid.UUID) error {
		return f.store.Transaction(context.Background(), func(tx *database.Tx) error {
			return f.seq.ReindexFromScratch(tx, sequencer.Slides(f.module), ids)
		})
	}

	require.NoError(t, reindex(c, a, b))
	assert.Equal(t, []uuid.UUID{c, a, b}, f.order(t))

	tests := []struct {
		name string
		ids  []uuid.UUID
	}{
		{"missing member", []uuid.UUID{a, b}},
		{"foreign id", []uuid.UUID{a, b, uuid.New()}},
		{"duplicate", []uuid.UUID{a, a, b}},
		{"extra", []uuid.UUID{a, b, c, uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, reindex(tt.ids...), apperr.ErrInvalidOrdering)
			assert.Equal(t, []uuid.UUID{c, a, b}, f.order(t))
		})
	}
}

func TestCategoryMembership(t *testing.T) {
	store := testutil.Store(t)
	seq := sequencer.New(testutil.Logger(t))

	cat := content.Category{Title: "Basics"}
	require.NoError(t, store.DB().Create(&cat).Error)
	key := sequencer.CategoryMembers(cat.ID)

	add := func(index int) uuid.UUID {
		m := content.Module{Title: "m"}
		require.NoError(t, store.DB().Create(&m).Error)
		err := store.Transaction(context.Background(), func(tx *database.Tx) error {
			if err := tx.DB.Create(&content.CategoryModule{CategoryID: cat.ID, ModuleID: m.ID, Position: content.Unplaced}).Error; err != nil {
				return err
			}
			_, err := seq.InsertAt(tx, key, m.ID, index)
			return err
		})
		require.NoError(t, err)
		return m.ID
	}

	m1 := add(sequencer.Append)
	m2 := add(sequencer.Append)
	m3 := add(1)

	var got []uuid.UUID
	require.NoError(t, store.Transaction(context.Background(), func(tx *database.Tx) error {
		var err error
		got, err = seq.Members(tx, key)
		return err
	}))
	assert.Equal(t, []uuid.UUID{m1, m3, m2}, got)
}

func TestRandomOperationsStayDense(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(7))
	var live []uuid.UUID

	for i := 0; i < 60; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			live = append(live, f.addSlide(t, "s", rng.Intn(len(live)+2)-1))
		case op == 1:
			id := live[rng.Intn(len(live))]
			require.NoError(t, f.store.Transaction(context.Background(), func(tx *database.Tx) error {
				if _, err := f.seq.RemoveFrom(tx, sequencer.Slides(f.module), id); err != nil {
					return err
				}
				return tx.DB.Delete(&content.Slide{}, "id = ?", id).Error
			}))
			for j, l := range live {
				if l == id {
					live = append(live[:j], live[j+1:]...)
					break
				}
			}
		default:
			id := live[rng.Intn(len(live))]
			require.NoError(t, f.store.Transaction(context.Background(), func(tx *database.Tx) error {
				_, err := f.seq.MoveWithin(tx, sequencer.Slides(f.module), id, rng.Intn(len(live)))
				return err
			}))
		}
		f.assertDense(t)
	}
	assert.Len(t, f.order(t), len(live))
}

func TestConcurrentInsertsStayDense(t *testing.T) {
	locker := testutil.NewCountingLocker()
	store := testutil.FileStore(t, locker, 10)
	m := content.Module{Title: "Road signs"}
	require.NoError(t, store.DB().Create(&m).Error)
	f := &fixture{store: store, seq: sequencer.New(testutil.Logger(t)), module: m.ID}
	key := sequencer.Slides(f.module).String()

	// hold the group so every writer queues on the locker
	hold, err := locker.Inner.Acquire(context.Background(), nil, key)
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.store.Transaction(context.Background(), func(tx *database.Tx) error {
				if err := tx.LockGroups(key); err != nil {
					return err
				}
				s := content.Slide{ModuleID: f.module, Position: content.Unplaced}
				s.SetPayload(content.TextPayload{Body: "x"})
				if err := tx.DB.Create(&s).Error; err != nil {
					return err
				}
				_, err := f.seq.InsertAt(tx, sequencer.Slides(f.module), s.ID, 0)
				return err
			})
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return locker.Waiting(key) == writers },
		5*time.Second, 5*time.Millisecond)
	hold()
	wg.Wait()

	assert.Equal(t, 1, locker.MaxHolders(key))
	assert.Len(t, f.order(t), writers)
	f.assertDense(t)
}

func TestVerifyAndCompact(t *testing.T) {
	f := newFixture(t)
	a := f.addSlide(t, "A", sequencer.Append)
	b := f.addSlide(t, "B", sequencer.Append)
	c := f.addSlide(t, "C", sequencer.Append)

	// Punch a gap behind the sequencer's back.
	require.NoError(t, f.store.DB().Model(&content.Slide{}).Where("id = ?", c).Update("position", 7).Error)

	key := sequencer.Slides(f.module)
	require.NoError(t, f.store.Transaction(context.Background(), func(tx *database.Tx) error {
		v, err := f.seq.Verify(tx, key)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, []int{0, 1, 7}, v.Positions)

		changed, err := f.seq.Compact(tx, key)
		assert.True(t, changed)
		return err
	}))
	assert.Equal(t, []uuid.UUID{a, b, c}, f.order(t))

	require.NoError(t, f.store.Transaction(context.Background(), func(tx *database.Tx) error {
		v, err := f.seq.Verify(tx, key)
		assert.Nil(t, v)
		groups, gerr := f.seq.Groups(tx, sequencer.ModuleSlides)
		assert.Equal(t, []sequencer.GroupKey{key}, groups)
		if err != nil {
			return err
		}
		return gerr
	}))
}
