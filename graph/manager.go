// Package graph is the single mutation path for the content graph: modules,
// categories, slides, objectives, quizzes, questions and options.
//
// Every public method runs in one transaction. Preconditions are checked
// before the first write so a rejected call has no effect; ordering changes
// are delegated to the sequencer, and parent deletes walk their ownership
// tree depth first.
package graph

import (
	"errors"
	"strings"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/logger"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/progress"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Manager struct {
	store    *database.Store
	seq      *sequencer.Sequencer
	progress *progress.Tracker
	log      *logger.Logger
}

func New(store *database.Store, seq *sequencer.Sequencer, tracker *progress.Tracker, log *logger.Logger) *Manager {
	return &Manager{store: store, seq: seq, progress: tracker, log: log.With("component", "GraphManager")}
}

// Counts reports deleted rows per sub-entity.
type Counts map[string]int64

// Page selects one page of a list. Zero values fall back to page 1 of 20.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Page) offset() int { return (p.Page - 1) * p.Limit }

// List is one page of results plus the total row count.
type List[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// load fetches one row by id, mapping a missing row to NotFound.
func load[T any](tx *database.Tx, entity string, id uuid.UUID) (*T, error) {
	var row T
	err := tx.DB.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(entity, id)
	}
	if err != nil {
		return nil, apperr.Storage("load "+entity, err)
	}
	return &row, nil
}

func list[T any](tx *database.Tx, page Page, entity string) (*List[T], error) {
	page = page.normalize()
	out := &List[T]{Page: page.Page, Limit: page.Limit}

	var model T
	if err := tx.DB.Model(&model).Count(&out.Total).Error; err != nil {
		return nil, apperr.Storage("count "+entity, err)
	}
	if err := tx.DB.Order("created_at DESC, id ASC").Offset(page.offset()).Limit(page.Limit).Find(&out.Items).Error; err != nil {
		return nil, apperr.Storage("list "+entity, err)
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out, nil
}

// invalid maps a payload construction failure onto InvalidPayload.
func invalid(entity string, id any, err error) error {
	var pe *content.PayloadError
	if errors.As(err, &pe) {
		return apperr.InvalidPayload(entity, id, pe.Reason)
	}
	return err
}

func requireText(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.InvalidPayload(entity, nil, field+" is required")
	}
	return nil
}

func keyStrings(keys ...sequencer.GroupKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

// parents names the parent locks of ids. Modules, quizzes and questions are
// guarded by their own key; a category is guarded by its membership group.
func parents(entity string, ids ...uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = database.ParentKey(entity, id)
	}
	return out
}

func ordered(db *gorm.DB, column string, parentID uuid.UUID) *gorm.DB {
	return db.Where(column+" = ? AND position >= 0", parentID).Order("position ASC, created_at ASC")
}
