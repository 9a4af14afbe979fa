// Package lifecycle runs all-or-nothing maintenance operations over whole
// entity families: seeding, clearing and reseeding. Each run is recorded as a
// MaintenanceRun row whether it succeeds or fails.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/logger"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/progress"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	OpSeedModules          = "seed-modules"
	OpReseedModules        = "reseed-modules"
	OpClearModules         = "clear-modules"
	OpClearQuizzes         = "clear-quizzes"
	OpClearStudentProgress = "clear-student-progress"
	OpIntegrityRepair      = "integrity-repair"
)

type Operator struct {
	store    *database.Store
	graph    *graph.Manager
	seq      *sequencer.Sequencer
	progress *progress.Tracker
	log      *logger.Logger
	timeout  time.Duration
}

// New builds an Operator. A positive timeout bounds every bulk run.
func New(store *database.Store, g *graph.Manager, seq *sequencer.Sequencer, tracker *progress.Tracker, log *logger.Logger, timeout time.Duration) *Operator {
	return &Operator{
		store:    store,
		graph:    g,
		seq:      seq,
		progress: tracker,
		log:      log.With("component", "LifecycleOperator"),
		timeout:  timeout,
	}
}

// Result summarizes one bulk run.
type Result struct {
	RunID     uuid.UUID    `json:"runId"`
	Operation string       `json:"operation"`
	Counts    graph.Counts `json:"countsBySubEntity"`
	ModuleIDs []uuid.UUID  `json:"moduleIds,omitempty"`
}

func (o *Operator) run(ctx context.Context, op string, fn func(tx *database.Tx, res *Result) error) (*Result, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	started := time.Now()
	res := &Result{Operation: op, Counts: graph.Counts{}}
	err := o.store.Transaction(ctx, func(tx *database.Tx) error {
		return fn(tx, res)
	})
	if err != nil {
		res.Counts = graph.Counts{}
		res.ModuleIDs = nil
	}

	res.RunID = o.record(context.WithoutCancel(ctx), op, res.Counts, err, started)
	if err != nil {
		o.log.Warn("maintenance run failed", "operation", op, "error", err)
		return nil, err
	}
	o.log.Info("maintenance run finished", "operation", op, "counts", res.Counts, "took", time.Since(started))
	return res, nil
}

func (o *Operator) record(ctx context.Context, op string, counts graph.Counts, runErr error, started time.Time) uuid.UUID {
	raw, err := sonic.Marshal(counts)
	if err != nil {
		raw = []byte("{}")
	}
	run := content.MaintenanceRun{
		Operation:  op,
		Status:     content.RunSucceeded,
		Counts:     datatypes.JSON(raw),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		run.Status = content.RunFailed
		if apperr.KindOf(runErr) == apperr.KindCancelled {
			run.Status = content.RunCancelled
		}
		run.Message = runErr.Error()
	}
	if err := o.store.DB().WithContext(ctx).Create(&run).Error; err != nil {
		o.log.Error("failed to record maintenance run", "operation", op, "error", err)
		return uuid.Nil
	}
	return run.ID
}

func checkCount(count int) error {
	if count < 1 {
		return apperr.InvalidPayload("seed", nil, fmt.Sprintf("count must be positive, got %d", count))
	}
	return nil
}

func (o *Operator) seed(tx *database.Tx, res *Result, count int, gen Generator) error {
	for i := 0; i < count; i++ {
		if err := tx.Context().Err(); err != nil {
			return err
		}
		draft := gen.Module(i)
		id, err := o.graph.CreateModuleTree(tx, draft)
		if err != nil {
			return err
		}
		res.ModuleIDs = append(res.ModuleIDs, id)
		res.Counts["modules"]++
		res.Counts["slides"] += int64(len(draft.Slides))
		res.Counts["objectives"] += int64(len(draft.Objectives))
		res.Counts["categoryMemberships"] += int64(len(draft.Categories))
	}
	return nil
}

// SeedModules creates count modules from gen, each with its objectives and
// slide set, or none at all.
func (o *Operator) SeedModules(ctx context.Context, count int, gen Generator) (*Result, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	return o.run(ctx, OpSeedModules, func(tx *database.Tx, res *Result) error {
		return o.seed(tx, res, count, gen)
	})
}

// ClearModules deletes the whole module family together with student
// progress. An empty family is a zero-count success.
func (o *Operator) ClearModules(ctx context.Context) (*Result, error) {
	return o.run(ctx, OpClearModules, func(tx *database.Tx, res *Result) error {
		counts, err := o.graph.PurgeModules(tx)
		if err != nil {
			return err
		}
		res.Counts = counts
		return nil
	})
}

// ReseedModules clears the module family and seeds count fresh modules in a
// single transaction.
func (o *Operator) ReseedModules(ctx context.Context, count int, gen Generator) (*Result, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	return o.run(ctx, OpReseedModules, func(tx *database.Tx, res *Result) error {
		cleared, err := o.graph.PurgeModules(tx)
		if err != nil {
			return err
		}
		for k, v := range cleared {
			res.Counts["cleared."+k] = v
		}
		return o.seed(tx, res, count, gen)
	})
}

// ClearQuizzes deletes options, questions and quizzes. It fails with
// NothingToClear when the family is already empty.
func (o *Operator) ClearQuizzes(ctx context.Context) (*Result, error) {
	return o.run(ctx, OpClearQuizzes, func(tx *database.Tx, res *Result) error {
		size, err := o.graph.QuizFamilySize(tx)
		if err != nil {
			return err
		}
		if size == 0 {
			return apperr.NothingToClear("quizzes")
		}
		counts, err := o.graph.PurgeQuizzes(tx)
		if err != nil {
			return err
		}
		res.Counts = counts
		return nil
	})
}

// ClearStudentProgress deletes every progress row.
func (o *Operator) ClearStudentProgress(ctx context.Context) (*Result, error) {
	return o.run(ctx, OpClearStudentProgress, func(tx *database.Tx, res *Result) error {
		n, err := o.progress.ClearAll(tx)
		if err != nil {
			return err
		}
		res.Counts["studentProgress"] = n
		return nil
	})
}

// RecentRuns lists the latest maintenance runs, newest first.
func (o *Operator) RecentRuns(ctx context.Context, limit int) ([]content.MaintenanceRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	runs := []content.MaintenanceRun{}
	err := o.store.DB().WithContext(ctx).Order("finished_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, apperr.Storage("list maintenance runs", err)
	}
	return runs, nil
}
