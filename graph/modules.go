package graph

import (
	"context"
	"strings"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"github.com/google/uuid"
)

type ModuleInput struct {
	Title       string
	Description string
}

type ModulePatch struct {
	Title       *string
	Description *string
}

// ModuleDetail is a module with its ordered children and the categories it
// belongs to.
type ModuleDetail struct {
	content.Module
	Slides      []content.Slide           `json:"slides"`
	Objectives  []content.ModuleObjective `json:"objectives"`
	CategoryIDs []uuid.UUID               `json:"category_ids"`
}

func (m *Manager) CreateModule(ctx context.Context, in ModuleInput) (*content.Module, error) {
	if err := requireText("module", "title", in.Title); err != nil {
		return nil, err
	}
	mod := &content.Module{Title: strings.TrimSpace(in.Title), Description: in.Description}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		return tx.DB.Create(mod).Error
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("module created", "module_id", mod.ID)
	return mod, nil
}

func (m *Manager) GetModule(ctx context.Context, id uuid.UUID) (*ModuleDetail, error) {
	var out *ModuleDetail
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		mod, err := load[content.Module](tx, "module", id)
		if err != nil {
			return err
		}
		out = &ModuleDetail{Module: *mod, Slides: []content.Slide{}, Objectives: []content.ModuleObjective{}, CategoryIDs: []uuid.UUID{}}

		if err := ordered(tx.DB, "module_id", id).Find(&out.Slides).Error; err != nil {
			return apperr.Storage("load slides", err)
		}
		if err := ordered(tx.DB, "module_id", id).Find(&out.Objectives).Error; err != nil {
			return apperr.Storage("load objectives", err)
		}
		if err := tx.DB.Model(&content.CategoryModule{}).Where("module_id = ?", id).
			Order("category_id").Pluck("category_id", &out.CategoryIDs).Error; err != nil {
			return apperr.Storage("load memberships", err)
		}
		return nil
	})
	return out, err
}

func (m *Manager) ListModules(ctx context.Context, page Page) (*List[content.Module], error) {
	var out *List[content.Module]
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		out, err = list[content.Module](tx, page, "modules")
		return err
	})
	return out, err
}

func (m *Manager) UpdateModule(ctx context.Context, id uuid.UUID, patch ModulePatch) (*content.Module, error) {
	if patch.Title != nil {
		if err := requireText("module", "title", *patch.Title); err != nil {
			return nil, err
		}
	}
	var mod *content.Module
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if mod, err = load[content.Module](tx, "module", id); err != nil {
			return err
		}
		if patch.Title != nil {
			mod.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			mod.Description = *patch.Description
		}
		return tx.DB.Save(mod).Error
	})
	return mod, err
}

// DeleteModule removes the module with its slides, objectives, category
// memberships (closing the gap in every affected category) and progress rows.
func (m *Manager) DeleteModule(ctx context.Context, id uuid.UUID) (Counts, error) {
	counts := Counts{}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockParents(parents("module", id)...); err != nil {
			return err
		}
		if _, err := load[content.Module](tx, "module", id); err != nil {
			return err
		}
		var err error
		counts, err = m.deleteModules(tx, []uuid.UUID{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("module deleted", "module_id", id, "counts", counts)
	return counts, nil
}

// deleteModules cascades over existing modules inside tx. The caller holds
// the parent lock of every module, so no membership, slide, objective or
// progress row can be added for them while the cascade runs.
func (m *Manager) deleteModules(tx *database.Tx, ids []uuid.UUID) (Counts, error) {
	var memberships []content.CategoryModule
	if err := tx.DB.Where("module_id IN ?", ids).Find(&memberships).Error; err != nil {
		return nil, apperr.Storage("load memberships", err)
	}

	keys := make([]sequencer.GroupKey, 0, len(ids)*2+len(memberships))
	for _, id := range ids {
		keys = append(keys, sequencer.Slides(id), sequencer.Objectives(id))
	}
	for _, cm := range memberships {
		keys = append(keys, sequencer.CategoryMembers(cm.CategoryID))
	}
	if err := tx.LockGroups(keyStrings(keys...)...); err != nil {
		return nil, err
	}

	counts := Counts{}
	for _, cm := range memberships {
		if cm.Position >= 0 {
			if _, err := m.seq.RemoveFrom(tx, sequencer.CategoryMembers(cm.CategoryID), cm.ModuleID); err != nil {
				return nil, err
			}
		}
		if err := tx.DB.Delete(&content.CategoryModule{}, "id = ?", cm.ID).Error; err != nil {
			return nil, apperr.Storage("delete membership", err)
		}
		counts["categoryMemberships"]++
	}

	res := tx.DB.Where("module_id IN ?", ids).Delete(&content.Slide{})
	if res.Error != nil {
		return nil, apperr.Storage("delete slides", res.Error)
	}
	counts["slides"] = res.RowsAffected

	res = tx.DB.Where("module_id IN ?", ids).Delete(&content.ModuleObjective{})
	if res.Error != nil {
		return nil, apperr.Storage("delete objectives", res.Error)
	}
	counts["objectives"] = res.RowsAffected

	n, err := m.progress.DeleteForModules(tx, ids)
	if err != nil {
		return nil, err
	}
	counts["studentProgress"] = n

	res = tx.DB.Where("id IN ?", ids).Delete(&content.Module{})
	if res.Error != nil {
		return nil, apperr.Storage("delete modules", res.Error)
	}
	counts["modules"] = res.RowsAffected
	return counts, nil
}

// AddObjective inserts a learning objective at index in the module's list.
func (m *Manager) AddObjective(ctx context.Context, moduleID uuid.UUID, text string, index int) (*content.ModuleObjective, error) {
	if err := requireText("objective", "text", text); err != nil {
		return nil, err
	}
	obj := &content.ModuleObjective{ModuleID: moduleID, Position: content.Unplaced, Text: strings.TrimSpace(text)}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockParents(parents("module", moduleID)...); err != nil {
			return err
		}
		if _, err := load[content.Module](tx, "module", moduleID); err != nil {
			return err
		}
		if err := tx.DB.Create(obj).Error; err != nil {
			return err
		}
		pos, err := m.seq.InsertAt(tx, sequencer.Objectives(moduleID), obj.ID, index)
		obj.Position = pos
		return err
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (m *Manager) MoveObjective(ctx context.Context, id uuid.UUID, index int) (*content.ModuleObjective, error) {
	var obj *content.ModuleObjective
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if obj, err = load[content.ModuleObjective](tx, "objective", id); err != nil {
			return err
		}
		obj.Position, err = m.seq.MoveWithin(tx, sequencer.Objectives(obj.ModuleID), id, index)
		return err
	})
	return obj, err
}

func (m *Manager) DeleteObjective(ctx context.Context, id uuid.UUID) error {
	return m.store.Transaction(ctx, func(tx *database.Tx) error {
		obj, err := load[content.ModuleObjective](tx, "objective", id)
		if err != nil {
			return err
		}
		if _, err := m.seq.RemoveFrom(tx, sequencer.Objectives(obj.ModuleID), id); err != nil {
			return err
		}
		return tx.DB.Delete(&content.ModuleObjective{}, "id = ?", id).Error
	})
}
