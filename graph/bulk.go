package graph

import (
	"strings"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"github.com/google/uuid"
)

// ModuleDraft is a complete module to be created in one step by bulk seeding.
type ModuleDraft struct {
	Title       string
	Description string
	Objectives  []string
	Slides      []content.SlideSpec
	// Categories are category titles; missing categories are created.
	Categories []string
}

func (d ModuleDraft) validate() error {
	if err := requireText("module", "title", d.Title); err != nil {
		return err
	}
	for _, o := range d.Objectives {
		if err := requireText("objective", "text", o); err != nil {
			return err
		}
	}
	for _, s := range d.Slides {
		if err := s.Validate(); err != nil {
			return invalid("slide", nil, err)
		}
	}
	return nil
}

// CreateModuleTree creates a module with its objectives and slides inside tx.
// Children are created unplaced and the groups are then indexed from scratch
// in draft order.
func (m *Manager) CreateModuleTree(tx *database.Tx, draft ModuleDraft) (uuid.UUID, error) {
	if err := draft.validate(); err != nil {
		return uuid.Nil, err
	}

	mod := &content.Module{Title: strings.TrimSpace(draft.Title), Description: draft.Description}
	if err := tx.DB.Create(mod).Error; err != nil {
		return uuid.Nil, apperr.Storage("create module", err)
	}

	objectiveIDs := make([]uuid.UUID, 0, len(draft.Objectives))
	for _, text := range draft.Objectives {
		o := &content.ModuleObjective{ModuleID: mod.ID, Position: content.Unplaced, Text: strings.TrimSpace(text)}
		if err := tx.DB.Create(o).Error; err != nil {
			return uuid.Nil, apperr.Storage("create objective", err)
		}
		objectiveIDs = append(objectiveIDs, o.ID)
	}
	if err := m.seq.ReindexFromScratch(tx, sequencer.Objectives(mod.ID), objectiveIDs); err != nil {
		return uuid.Nil, err
	}

	slideIDs := make([]uuid.UUID, 0, len(draft.Slides))
	for _, spec := range draft.Slides {
		s := &content.Slide{ModuleID: mod.ID, Position: content.Unplaced, Title: spec.Title}
		s.SetPayload(spec.Payload)
		if err := tx.DB.Create(s).Error; err != nil {
			return uuid.Nil, apperr.Storage("create slide", err)
		}
		slideIDs = append(slideIDs, s.ID)
	}
	if err := m.seq.ReindexFromScratch(tx, sequencer.Slides(mod.ID), slideIDs); err != nil {
		return uuid.Nil, err
	}

	for _, title := range draft.Categories {
		cat, err := m.lockCategoryByTitle(tx, title)
		if err != nil {
			return uuid.Nil, err
		}
		cm := &content.CategoryModule{CategoryID: cat.ID, ModuleID: mod.ID, Position: content.Unplaced}
		if err := tx.DB.Create(cm).Error; err != nil {
			return uuid.Nil, apperr.Storage("create membership", err)
		}
		if _, err := m.seq.InsertAt(tx, sequencer.CategoryMembers(cat.ID), mod.ID, sequencer.Append); err != nil {
			return uuid.Nil, err
		}
	}
	return mod.ID, nil
}

// lockCategoryByTitle finds or creates the category and takes its membership
// lock. A category deleted between the lookup and the lock is looked up again.
func (m *Manager) lockCategoryByTitle(tx *database.Tx, title string) (*content.Category, error) {
	for attempt := 0; ; attempt++ {
		cat, err := m.categoryByTitle(tx, title)
		if err != nil {
			return nil, err
		}
		if err := tx.LockGroups(sequencer.CategoryMembers(cat.ID).String()); err != nil {
			return nil, err
		}
		var n int64
		if err := tx.DB.Model(&content.Category{}).Where("id = ?", cat.ID).Count(&n).Error; err != nil {
			return nil, apperr.Storage("find category", err)
		}
		if n > 0 {
			return cat, nil
		}
		if attempt == 2 {
			return nil, apperr.NotFound("category", cat.ID)
		}
	}
}

func (m *Manager) categoryByTitle(tx *database.Tx, title string) (*content.Category, error) {
	title = strings.TrimSpace(title)
	var cat content.Category
	err := tx.DB.Where("title = ?", title).Order("created_at ASC").Limit(1).Find(&cat).Error
	if err != nil {
		return nil, apperr.Storage("find category", err)
	}
	if cat.ID != uuid.Nil {
		return &cat, nil
	}
	cat = content.Category{Title: title}
	if err := tx.DB.Create(&cat).Error; err != nil {
		return nil, apperr.Storage("create category", err)
	}
	return &cat, nil
}

// purgeBatch bounds the number of ids bound into one statement.
const purgeBatch = 500

// inBatches calls fn with consecutive slices of ids, checking the context
// between slices.
func inBatches(tx *database.Tx, ids []uuid.UUID, fn func(batch []uuid.UUID) error) error {
	for start := 0; start < len(ids); start += purgeBatch {
		if err := tx.Context().Err(); err != nil {
			return err
		}
		if err := fn(ids[start:min(start+purgeBatch, len(ids))]); err != nil {
			return err
		}
	}
	return nil
}

// deleteIn deletes the rows of model whose column is in ids.
func deleteIn(tx *database.Tx, model interface{}, column string, ids []uuid.UUID) (int64, error) {
	var total int64
	err := inBatches(tx, ids, func(batch []uuid.UUID) error {
		res := tx.DB.Where(column+" IN ?", batch).Delete(model)
		total += res.RowsAffected
		return res.Error
	})
	return total, err
}

// PurgeModules deletes the whole module family inside tx: slides, objectives,
// category memberships, student progress, then modules. Only modules that
// existed when their parent locks were taken are removed; every category
// that lost members is renumbered. The context is checked between batches.
func (m *Manager) PurgeModules(tx *database.Tx) (Counts, error) {
	counts := Counts{"slides": 0, "objectives": 0, "categoryMemberships": 0, "studentProgress": 0, "modules": 0}

	var moduleIDs []uuid.UUID
	if err := tx.DB.Model(&content.Module{}).Pluck("id", &moduleIDs).Error; err != nil {
		return nil, apperr.Storage("list modules", err)
	}
	if len(moduleIDs) == 0 {
		return counts, nil
	}
	if err := tx.LockParents(parents("module", moduleIDs...)...); err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{}
	var categoryIDs []uuid.UUID
	err := inBatches(tx, moduleIDs, func(batch []uuid.UUID) error {
		var ids []uuid.UUID
		if err := tx.DB.Model(&content.CategoryModule{}).Where("module_id IN ?", batch).
			Distinct("category_id").Pluck("category_id", &ids).Error; err != nil {
			return apperr.Storage("list categories", err)
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				categoryIDs = append(categoryIDs, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]sequencer.GroupKey, 0, len(moduleIDs)*2+len(categoryIDs))
	for _, id := range moduleIDs {
		keys = append(keys, sequencer.Slides(id), sequencer.Objectives(id))
	}
	for _, id := range categoryIDs {
		keys = append(keys, sequencer.CategoryMembers(id))
	}
	if err := tx.LockGroups(keyStrings(keys...)...); err != nil {
		return nil, err
	}

	steps := []struct {
		name   string
		model  interface{}
		column string
	}{
		{"slides", &content.Slide{}, "module_id"},
		{"objectives", &content.ModuleObjective{}, "module_id"},
		{"categoryMemberships", &content.CategoryModule{}, "module_id"},
		{"studentProgress", nil, ""},
		{"modules", &content.Module{}, "id"},
	}
	for _, step := range steps {
		if step.model == nil {
			err = inBatches(tx, moduleIDs, func(batch []uuid.UUID) error {
				n, err := m.progress.DeleteForModules(tx, batch)
				counts[step.name] += n
				return err
			})
		} else {
			counts[step.name], err = deleteIn(tx, step.model, step.column, moduleIDs)
		}
		if err != nil {
			return nil, apperr.Storage("clear "+step.name, err)
		}

		if step.name == "categoryMemberships" {
			for _, id := range categoryIDs {
				if _, err := m.seq.Compact(tx, sequencer.CategoryMembers(id)); err != nil {
					return nil, err
				}
			}
		}
	}
	return counts, nil
}

// PurgeQuizzes deletes options, questions and quizzes inside tx, limited to
// the quizzes and questions whose parent locks it holds.
func (m *Manager) PurgeQuizzes(tx *database.Tx) (Counts, error) {
	var quizIDs, questionIDs []uuid.UUID
	if err := tx.DB.Model(&content.Quiz{}).Pluck("id", &quizIDs).Error; err != nil {
		return nil, apperr.Storage("list quizzes", err)
	}
	if err := tx.LockParents(parents("quiz", quizIDs...)...); err != nil {
		return nil, err
	}
	err := inBatches(tx, quizIDs, func(batch []uuid.UUID) error {
		var ids []uuid.UUID
		if err := tx.DB.Model(&content.Question{}).Where("quiz_id IN ?", batch).Pluck("id", &ids).Error; err != nil {
			return apperr.Storage("list questions", err)
		}
		questionIDs = append(questionIDs, ids...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := tx.LockParents(parents("question", questionIDs...)...); err != nil {
		return nil, err
	}

	keys := make([]sequencer.GroupKey, 0, len(quizIDs)+len(questionIDs))
	for _, id := range quizIDs {
		keys = append(keys, sequencer.Questions(id))
	}
	for _, id := range questionIDs {
		keys = append(keys, sequencer.Options(id))
	}
	if err := tx.LockGroups(keyStrings(keys...)...); err != nil {
		return nil, err
	}

	counts := Counts{}
	for _, step := range []struct {
		name   string
		model  interface{}
		column string
		ids    []uuid.UUID
	}{
		{"options", &content.Option{}, "question_id", questionIDs},
		{"questions", &content.Question{}, "id", questionIDs},
		{"quizzes", &content.Quiz{}, "id", quizIDs},
	} {
		n, err := deleteIn(tx, step.model, step.column, step.ids)
		if err != nil {
			return nil, apperr.Storage("clear "+step.name, err)
		}
		counts[step.name] = n
	}
	return counts, nil
}

// QuizFamilySize counts every row of the quiz family.
func (m *Manager) QuizFamilySize(tx *database.Tx) (int64, error) {
	var total int64
	for _, model := range []interface{}{&content.Quiz{}, &content.Question{}, &content.Option{}} {
		var n int64
		if err := tx.DB.Model(model).Count(&n).Error; err != nil {
			return 0, apperr.Storage("count quiz family", err)
		}
		total += n
	}
	return total, nil
}
