package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/progress"
	"github.com/Sean-Brix/RiderMind-sub003/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T) (*database.Store, *progress.Tracker, *clock, uuid.UUID) {
	t.Helper()
	store := testutil.Store(t)
	c := &clock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	tr := progress.New(store, testutil.Logger(t)).WithClock(c.now)

	m := content.Module{Title: "Lane discipline"}
	require.NoError(t, store.DB().Create(&m).Error)
	return store, tr, c, m.ID
}

func TestMarkVisitedIsIdempotent(t *testing.T) {
	store, tr, c, moduleID := setup(t)
	ctx := context.Background()
	student := uuid.New()

	first, err := tr.MarkVisited(ctx, student, moduleID)
	require.NoError(t, err)
	assert.Equal(t, content.ProgressVisited, first.Status)

	c.t = c.t.Add(2 * time.Hour)
	second, err := tr.MarkVisited(ctx, student, moduleID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.FirstVisitedAt.Equal(first.FirstVisitedAt))
	assert.True(t, second.LastSeenAt.After(first.LastSeenAt))

	var count int64
	store.DB().Model(&content.StudentModuleProgress{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestMarkVisitedUnknownModule(t *testing.T) {
	_, tr, _, _ := setup(t)
	_, err := tr.MarkVisited(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkCompletedKeepsFirstCompletion(t *testing.T) {
	_, tr, c, moduleID := setup(t)
	ctx := context.Background()
	student := uuid.New()

	_, err := tr.MarkVisited(ctx, student, moduleID)
	require.NoError(t, err)

	done, err := tr.MarkCompleted(ctx, student, moduleID)
	require.NoError(t, err)
	assert.Equal(t, content.ProgressCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	firstCompletion := *done.CompletedAt

	c.t = c.t.Add(time.Hour)
	again, err := tr.MarkCompleted(ctx, student, moduleID)
	require.NoError(t, err)
	assert.True(t, again.CompletedAt.Equal(firstCompletion))

	// A later visit does not demote completion.
	visited, err := tr.MarkVisited(ctx, student, moduleID)
	require.NoError(t, err)
	assert.Equal(t, content.ProgressCompleted, visited.Status)
}

func TestSummaryAndList(t *testing.T) {
	store, tr, c, m1 := setup(t)
	ctx := context.Background()
	student := uuid.New()

	m2 := content.Module{Title: "Night riding"}
	require.NoError(t, store.DB().Create(&m2).Error)

	c.t = c.t.Add(-48 * time.Hour)
	_, err := tr.MarkVisited(ctx, student, m1)
	require.NoError(t, err)

	c.t = c.t.Add(48 * time.Hour)
	_, err = tr.MarkCompleted(ctx, student, m2.ID)
	require.NoError(t, err)

	s, err := tr.Summary(ctx, student)
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.Total)
	assert.EqualValues(t, 1, s.Completed)
	assert.EqualValues(t, 1, s.SeenToday)

	rows, err := tr.ListForStudent(ctx, student)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, m2.ID, rows[0].ModuleID)

	_, err = tr.Get(ctx, uuid.New(), m1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClearAllAndDeleteForModules(t *testing.T) {
	store, tr, _, m1 := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := tr.MarkVisited(ctx, uuid.New(), m1)
		require.NoError(t, err)
	}

	require.NoError(t, store.Transaction(ctx, func(tx *database.Tx) error {
		n, err := tr.DeleteForModules(tx, []uuid.UUID{uuid.New()})
		assert.Zero(t, n)
		return err
	}))

	require.NoError(t, store.Transaction(ctx, func(tx *database.Tx) error {
		n, err := tr.ClearAll(tx)
		assert.EqualValues(t, 3, n)
		return err
	}))

	require.NoError(t, store.Transaction(ctx, func(tx *database.Tx) error {
		n, err := tr.ClearAll(tx)
		assert.Zero(t, n)
		return err
	}))
}
