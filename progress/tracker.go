// Package progress records which modules each student has visited or
// completed. It refers to modules by identity only and never touches content.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/logger"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Tracker struct {
	store *database.Store
	log   *logger.Logger
	clock func() time.Time
}

func New(store *database.Store, log *logger.Logger) *Tracker {
	return &Tracker{store: store, log: log.With("component", "ProgressTracker"), clock: time.Now}
}

// WithClock replaces the time source; tests use it to pin timestamps.
func (t *Tracker) WithClock(clock func() time.Time) *Tracker {
	t.clock = clock
	return t
}

// Summary is a per-student rollup of progress rows.
type Summary struct {
	StudentID uuid.UUID `json:"student_id"`
	Total     int64     `json:"total"`
	Completed int64     `json:"completed"`
	SeenToday int64     `json:"seen_today"`
}

// ensureModule takes the module's parent lock and checks that it exists, so a
// progress row is never written for a module being deleted.
func ensureModule(tx *database.Tx, moduleID uuid.UUID) error {
	if err := tx.LockParents(database.ParentKey("module", moduleID)); err != nil {
		return err
	}
	var count int64
	if err := tx.DB.Model(&content.Module{}).Where("id = ?", moduleID).Count(&count).Error; err != nil {
		return apperr.Storage("find module", err)
	}
	if count == 0 {
		return apperr.NotFound("module", moduleID)
	}
	return nil
}

func find(db *gorm.DB, studentID, moduleID uuid.UUID) (*content.StudentModuleProgress, error) {
	var p content.StudentModuleProgress
	err := db.Where("student_id = ? AND module_id = ?", studentID, moduleID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("progress", studentID.String()+"/"+moduleID.String())
	}
	if err != nil {
		return nil, apperr.Storage("find progress", err)
	}
	return &p, nil
}

// MarkVisited creates the (student, module) row on first visit. Later visits
// only move last_seen_at forward.
func (t *Tracker) MarkVisited(ctx context.Context, studentID, moduleID uuid.UUID) (*content.StudentModuleProgress, error) {
	var out *content.StudentModuleProgress
	err := t.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := ensureModule(tx, moduleID); err != nil {
			return err
		}

		ts := t.clock()
		row := content.StudentModuleProgress{
			StudentID:      studentID,
			ModuleID:       moduleID,
			Status:         content.ProgressVisited,
			FirstVisitedAt: ts,
			LastSeenAt:     ts,
		}
		err := tx.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "module_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_seen_at": ts, "updated_at": ts}),
		}).Create(&row).Error
		if err != nil {
			return apperr.Storage("upsert progress", err)
		}

		out, err = find(tx.DB, studentID, moduleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	t.log.Debug("module visited", "student_id", studentID, "module_id", moduleID)
	return out, nil
}

// MarkCompleted records completion, creating the row when the student never
// visited. The first completion time is kept.
func (t *Tracker) MarkCompleted(ctx context.Context, studentID, moduleID uuid.UUID) (*content.StudentModuleProgress, error) {
	var out *content.StudentModuleProgress
	err := t.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := ensureModule(tx, moduleID); err != nil {
			return err
		}

		ts := t.clock()
		row := content.StudentModuleProgress{
			StudentID:      studentID,
			ModuleID:       moduleID,
			Status:         content.ProgressCompleted,
			FirstVisitedAt: ts,
			LastSeenAt:     ts,
			CompletedAt:    &ts,
		}
		err := tx.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "module_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":       content.ProgressCompleted,
				"last_seen_at": ts,
				"updated_at":   ts,
				"completed_at": gorm.Expr("COALESCE(student_module_progress.completed_at, ?)", ts),
			}),
		}).Create(&row).Error
		if err != nil {
			return apperr.Storage("upsert progress", err)
		}

		out, err = find(tx.DB, studentID, moduleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	t.log.Info("module completed", "student_id", studentID, "module_id", moduleID)
	return out, nil
}

func (t *Tracker) Get(ctx context.Context, studentID, moduleID uuid.UUID) (*content.StudentModuleProgress, error) {
	return find(t.store.DB().WithContext(ctx), studentID, moduleID)
}

// ListForStudent returns the student's rows, most recently seen first.
func (t *Tracker) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]content.StudentModuleProgress, error) {
	var rows []content.StudentModuleProgress
	err := t.store.DB().WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("last_seen_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Storage("list progress", err)
	}
	return rows, nil
}

func (t *Tracker) Summary(ctx context.Context, studentID uuid.UUID) (*Summary, error) {
	s := &Summary{StudentID: studentID}
	base := func() *gorm.DB {
		return t.store.DB().WithContext(ctx).Model(&content.StudentModuleProgress{}).Where("student_id = ?", studentID)
	}

	if err := base().Count(&s.Total).Error; err != nil {
		return nil, apperr.Storage("count progress", err)
	}
	if err := base().Where("status = ?", content.ProgressCompleted).Count(&s.Completed).Error; err != nil {
		return nil, apperr.Storage("count completed", err)
	}
	today := now.With(t.clock()).BeginningOfDay()
	if err := base().Where("last_seen_at >= ?", today).Count(&s.SeenToday).Error; err != nil {
		return nil, apperr.Storage("count seen today", err)
	}
	return s, nil
}

// ClearAll deletes every progress row inside tx.
func (t *Tracker) ClearAll(tx *database.Tx) (int64, error) {
	res := tx.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&content.StudentModuleProgress{})
	if res.Error != nil {
		return 0, apperr.Storage("clear progress", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteForModules removes progress rows of deleted modules. It is only
// called from module cascades.
func (t *Tracker) DeleteForModules(tx *database.Tx, moduleIDs []uuid.UUID) (int64, error) {
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	res := tx.DB.Where("module_id IN ?", moduleIDs).Delete(&content.StudentModuleProgress{})
	if res.Error != nil {
		return 0, apperr.Storage("delete progress", res.Error)
	}
	return res.RowsAffected, nil
}
