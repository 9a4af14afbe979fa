package graph_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/progress"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"
	"github.com/Sean-Brix/RiderMind-sub003/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// gateLocker parks the first caller of one key until proceed is closed.
type gateLocker struct {
	*database.LocalLocker
	key     string
	reached chan struct{}
	proceed chan struct{}
	once    sync.Once
}

func newGateLocker() *gateLocker {
	return &gateLocker{
		LocalLocker: database.NewLocalLocker(),
		reached:     make(chan struct{}),
		proceed:     make(chan struct{}),
	}
}

func (g *gateLocker) Acquire(ctx context.Context, tx *gorm.DB, key string) (func(), error) {
	if key == g.key {
		parked := false
		g.once.Do(func() {
			parked = true
			close(g.reached)
		})
		if parked {
			select {
			case <-g.proceed:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return g.LocalLocker.Acquire(ctx, tx, key)
}

// newSharedEnv runs the graph over a multi-connection store so that two
// transactions can be open at once.
func newSharedEnv(t *testing.T, locker database.Locker) *env {
	t.Helper()
	store := testutil.FileStore(t, locker, 10)
	log := testutil.Logger(t)
	tracker := progress.New(store, log)
	return &env{
		ctx:      context.Background(),
		store:    store,
		graph:    graph.New(store, sequencer.New(log), tracker, log),
		progress: tracker,
	}
}

func recv(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not finish")
		return nil
	}
}

func async(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- fn() }()
	return ch
}

type interleaving struct {
	gate    string
	child   func() error
	parent  func() error
	orphans func() int64
}

func TestChildWriteHoldsOffParentDelete(t *testing.T) {
	cases := map[string]func(t *testing.T, e *env) interleaving{
		"slide vs module delete": func(t *testing.T, e *env) interleaving {
			m := e.module(t, "Braking")
			return interleaving{
				gate: sequencer.Slides(m.ID).String(),
				child: func() error {
					_, err := e.graph.AddSlide(e.ctx, m.ID, content.SlideSpec{Title: "s", Payload: content.TextPayload{Body: "s"}}, sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteModule(e.ctx, m.ID); return err },
				orphans: func() int64 { return e.count(t, &content.Slide{}, "module_id = ?", m.ID) },
			}
		},
		"objective vs module delete": func(t *testing.T, e *env) interleaving {
			m := e.module(t, "Braking")
			return interleaving{
				gate: sequencer.Objectives(m.ID).String(),
				child: func() error {
					_, err := e.graph.AddObjective(e.ctx, m.ID, "stop short", sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteModule(e.ctx, m.ID); return err },
				orphans: func() int64 { return e.count(t, &content.ModuleObjective{}, "module_id = ?", m.ID) },
			}
		},
		"membership vs module delete": func(t *testing.T, e *env) interleaving {
			m := e.module(t, "Braking")
			cat, err := e.graph.CreateCategory(e.ctx, graph.CategoryInput{Title: "Basics"})
			require.NoError(t, err)
			return interleaving{
				gate: sequencer.CategoryMembers(cat.ID).String(),
				child: func() error {
					_, err := e.graph.AddModuleToCategory(e.ctx, cat.ID, m.ID, sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteModule(e.ctx, m.ID); return err },
				orphans: func() int64 { return e.count(t, &content.CategoryModule{}, "module_id = ?", m.ID) },
			}
		},
		"question vs quiz delete": func(t *testing.T, e *env) interleaving {
			quiz, err := e.graph.CreateQuiz(e.ctx, graph.QuizInput{Title: "Signals"})
			require.NoError(t, err)
			return interleaving{
				gate: sequencer.Questions(quiz.ID).String(),
				child: func() error {
					_, err := e.graph.AddQuestion(e.ctx, quiz.ID, content.QuestionSpec{Text: "Hand up?"}, sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteQuiz(e.ctx, quiz.ID); return err },
				orphans: func() int64 { return e.count(t, &content.Question{}, "quiz_id = ?", quiz.ID) },
			}
		},
		"option vs question delete": func(t *testing.T, e *env) interleaving {
			quiz, err := e.graph.CreateQuiz(e.ctx, graph.QuizInput{Title: "Signals"})
			require.NoError(t, err)
			q, err := e.graph.AddQuestion(e.ctx, quiz.ID, content.QuestionSpec{Text: "Hand up?"}, sequencer.Append)
			require.NoError(t, err)
			return interleaving{
				gate: sequencer.Options(q.ID).String(),
				child: func() error {
					_, err := e.graph.AddOption(e.ctx, q.ID, content.OptionSpec{Text: "Stop"}, sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteQuestion(e.ctx, q.ID); return err },
				orphans: func() int64 { return e.count(t, &content.Option{}, "question_id = ?", q.ID) },
			}
		},
		"option vs quiz delete": func(t *testing.T, e *env) interleaving {
			quiz, err := e.graph.CreateQuiz(e.ctx, graph.QuizInput{Title: "Signals"})
			require.NoError(t, err)
			q, err := e.graph.AddQuestion(e.ctx, quiz.ID, content.QuestionSpec{Text: "Hand up?"}, sequencer.Append)
			require.NoError(t, err)
			return interleaving{
				gate: sequencer.Options(q.ID).String(),
				child: func() error {
					_, err := e.graph.AddOption(e.ctx, q.ID, content.OptionSpec{Text: "Stop"}, sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteQuiz(e.ctx, quiz.ID); return err },
				orphans: func() int64 { return e.count(t, &content.Option{}, "question_id = ?", q.ID) },
			}
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			gate := newGateLocker()
			e := newSharedEnv(t, gate)
			c := build(t, e)
			gate.key = c.gate

			childDone := async(c.child)
			select {
			case <-gate.reached:
			case <-time.After(5 * time.Second):
				t.Fatal("child never reached its group lock")
			}

			// the child already holds the parent lock, so the delete must wait
			parentDone := async(c.parent)
			select {
			case err := <-parentDone:
				t.Fatalf("delete finished while the child was mid-write: %v", err)
			case <-time.After(100 * time.Millisecond):
			}

			close(gate.proceed)
			require.NoError(t, recv(t, childDone))
			require.NoError(t, recv(t, parentDone))
			assert.Zero(t, c.orphans())
		})
	}
}

func TestChildWriteAfterParentDeleteIsNotFound(t *testing.T) {
	cases := map[string]func(t *testing.T, e *env) interleaving{
		"slide": func(t *testing.T, e *env) interleaving {
			m := e.module(t, "Braking")
			return interleaving{
				gate: database.ParentKey("module", m.ID),
				child: func() error {
					_, err := e.graph.AddSlide(e.ctx, m.ID, content.SlideSpec{Title: "s", Payload: content.TextPayload{Body: "s"}}, sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteModule(e.ctx, m.ID); return err },
				orphans: func() int64 { return e.count(t, &content.Slide{}, "module_id = ?", m.ID) },
			}
		},
		"progress": func(t *testing.T, e *env) interleaving {
			m := e.module(t, "Braking")
			return interleaving{
				gate: database.ParentKey("module", m.ID),
				child: func() error {
					_, err := e.progress.MarkVisited(e.ctx, uuid.New(), m.ID)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteModule(e.ctx, m.ID); return err },
				orphans: func() int64 { return e.count(t, &content.StudentModuleProgress{}, "module_id = ?", m.ID) },
			}
		},
		"membership": func(t *testing.T, e *env) interleaving {
			m := e.module(t, "Braking")
			cat, err := e.graph.CreateCategory(e.ctx, graph.CategoryInput{Title: "Basics"})
			require.NoError(t, err)
			return interleaving{
				gate: sequencer.CategoryMembers(cat.ID).String(),
				child: func() error {
					_, err := e.graph.AddModuleToCategory(e.ctx, cat.ID, m.ID, sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteCategory(e.ctx, cat.ID); return err },
				orphans: func() int64 { return e.count(t, &content.CategoryModule{}, "category_id = ?", cat.ID) },
			}
		},
		"question": func(t *testing.T, e *env) interleaving {
			quiz, err := e.graph.CreateQuiz(e.ctx, graph.QuizInput{Title: "Signals"})
			require.NoError(t, err)
			return interleaving{
				gate: database.ParentKey("quiz", quiz.ID),
				child: func() error {
					_, err := e.graph.AddQuestion(e.ctx, quiz.ID, content.QuestionSpec{Text: "Hand up?"}, sequencer.Append)
					return err
				},
				parent:  func() error { _, err := e.graph.DeleteQuiz(e.ctx, quiz.ID); return err },
				orphans: func() int64 { return e.count(t, &content.Question{}, "quiz_id = ?", quiz.ID) },
			}
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			gate := newGateLocker()
			e := newSharedEnv(t, gate)
			c := build(t, e)
			gate.key = c.gate

			childDone := async(c.child)
			select {
			case <-gate.reached:
			case <-time.After(5 * time.Second):
				t.Fatal("child never asked for the parent lock")
			}

			require.NoError(t, c.parent())
			close(gate.proceed)

			assert.ErrorIs(t, recv(t, childDone), apperr.ErrNotFound)
			assert.Zero(t, c.orphans())
		})
	}
}

func TestSlideInsertsQueueOnModuleLock(t *testing.T) {
	locker := testutil.NewCountingLocker()
	e := newSharedEnv(t, locker)
	m := e.module(t, "Cornering")
	key := database.ParentKey("module", m.ID)

	hold, err := locker.Inner.Acquire(e.ctx, nil, key)
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.graph.AddSlide(e.ctx, m.ID, content.SlideSpec{Title: "s", Payload: content.TextPayload{Body: "s"}}, 0)
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return locker.Waiting(key) == writers },
		5*time.Second, 5*time.Millisecond)
	hold()
	wg.Wait()

	assert.Equal(t, 1, locker.MaxHolders(key))
	slides, err := e.graph.ListSlides(e.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, slides, writers)
	for i, s := range slides {
		assert.Equal(t, i, s.Position)
	}
}
