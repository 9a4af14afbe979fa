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

type CategoryInput struct {
	Title       string
	Description string
}

type CategoryPatch struct {
	Title       *string
	Description *string
}

// CategoryDetail is a category with its member modules in category order.
type CategoryDetail struct {
	content.Category
	Modules []content.Module `json:"modules"`
}

func (m *Manager) CreateCategory(ctx context.Context, in CategoryInput) (*content.Category, error) {
	if err := requireText("category", "title", in.Title); err != nil {
		return nil, err
	}
	cat := &content.Category{Title: strings.TrimSpace(in.Title), Description: in.Description}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		return tx.DB.Create(cat).Error
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (m *Manager) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDetail, error) {
	var out *CategoryDetail
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		cat, err := load[content.Category](tx, "category", id)
		if err != nil {
			return err
		}
		out = &CategoryDetail{Category: *cat, Modules: []content.Module{}}
		err = tx.DB.
			Joins("JOIN category_modules ON category_modules.module_id = modules.id").
			Where("category_modules.category_id = ? AND category_modules.position >= 0", id).
			Order("category_modules.position ASC").
			Find(&out.Modules).Error
		if err != nil {
			return apperr.Storage("load category modules", err)
		}
		return nil
	})
	return out, err
}

func (m *Manager) ListCategories(ctx context.Context, page Page) (*List[content.Category], error) {
	var out *List[content.Category]
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		out, err = list[content.Category](tx, page, "categories")
		return err
	})
	return out, err
}

func (m *Manager) UpdateCategory(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*content.Category, error) {
	if patch.Title != nil {
		if err := requireText("category", "title", *patch.Title); err != nil {
			return nil, err
		}
	}
	var cat *content.Category
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if cat, err = load[content.Category](tx, "category", id); err != nil {
			return err
		}
		if patch.Title != nil {
			cat.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			cat.Description = *patch.Description
		}
		return tx.DB.Save(cat).Error
	})
	return cat, err
}

// DeleteCategory drops the category and its membership rows. Member modules
// are left untouched.
func (m *Manager) DeleteCategory(ctx context.Context, id uuid.UUID) (Counts, error) {
	counts := Counts{}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockGroups(sequencer.CategoryMembers(id).String()); err != nil {
			return err
		}
		if _, err := load[content.Category](tx, "category", id); err != nil {
			return err
		}
		res := tx.DB.Where("category_id = ?", id).Delete(&content.CategoryModule{})
		if res.Error != nil {
			return apperr.Storage("delete memberships", res.Error)
		}
		counts["categoryMemberships"] = res.RowsAffected

		if err := tx.DB.Delete(&content.Category{}, "id = ?", id).Error; err != nil {
			return apperr.Storage("delete category", err)
		}
		counts["categories"] = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// AddModuleToCategory places moduleID at index in the category's order. A
// module can be a member of a category only once.
func (m *Manager) AddModuleToCategory(ctx context.Context, categoryID, moduleID uuid.UUID, index int) (*content.CategoryModule, error) {
	var cm *content.CategoryModule
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		key := sequencer.CategoryMembers(categoryID)
		if err := tx.LockParents(parents("module", moduleID)...); err != nil {
			return err
		}
		if err := tx.LockGroups(key.String()); err != nil {
			return err
		}
		if _, err := load[content.Category](tx, "category", categoryID); err != nil {
			return err
		}
		if _, err := load[content.Module](tx, "module", moduleID); err != nil {
			return err
		}

		var existing int64
		if err := tx.DB.Model(&content.CategoryModule{}).
			Where("category_id = ? AND module_id = ?", categoryID, moduleID).
			Count(&existing).Error; err != nil {
			return apperr.Storage("check membership", err)
		}
		if existing > 0 {
			return apperr.DuplicateMembership("module", moduleID, "already in category "+categoryID.String())
		}

		cm = &content.CategoryModule{CategoryID: categoryID, ModuleID: moduleID, Position: content.Unplaced}
		if err := tx.DB.Create(cm).Error; err != nil {
			return err
		}
		pos, err := m.seq.InsertAt(tx, key, moduleID, index)
		cm.Position = pos
		return err
	})
	if err != nil {
		return nil, err
	}
	return cm, nil
}

// RemoveModuleFromCategory deletes the membership row only. The module's
// parent lock keeps a concurrent module cascade from seeing a half-removed
// membership.
func (m *Manager) RemoveModuleFromCategory(ctx context.Context, categoryID, moduleID uuid.UUID) error {
	return m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockParents(parents("module", moduleID)...); err != nil {
			return err
		}
		if err := tx.LockGroups(sequencer.CategoryMembers(categoryID).String()); err != nil {
			return err
		}
		if _, err := load[content.Category](tx, "category", categoryID); err != nil {
			return err
		}
		if _, err := m.seq.RemoveFrom(tx, sequencer.CategoryMembers(categoryID), moduleID); err != nil {
			return err
		}
		return tx.DB.Where("category_id = ? AND module_id = ?", categoryID, moduleID).Delete(&content.CategoryModule{}).Error
	})
}

func (m *Manager) MoveModuleInCategory(ctx context.Context, categoryID, moduleID uuid.UUID, index int) (*content.CategoryModule, error) {
	var cm content.CategoryModule
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockGroups(sequencer.CategoryMembers(categoryID).String()); err != nil {
			return err
		}
		if _, err := load[content.Category](tx, "category", categoryID); err != nil {
			return err
		}
		if _, err := m.seq.MoveWithin(tx, sequencer.CategoryMembers(categoryID), moduleID, index); err != nil {
			return err
		}
		return tx.DB.Where("category_id = ? AND module_id = ?", categoryID, moduleID).First(&cm).Error
	})
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// ReorderCategoryModules replaces the category's order with moduleIDs, which
// must name every member exactly once.
func (m *Manager) ReorderCategoryModules(ctx context.Context, categoryID uuid.UUID, moduleIDs []uuid.UUID) (*CategoryDetail, error) {
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockGroups(sequencer.CategoryMembers(categoryID).String()); err != nil {
			return err
		}
		if _, err := load[content.Category](tx, "category", categoryID); err != nil {
			return err
		}
		return m.seq.ReindexFromScratch(tx, sequencer.CategoryMembers(categoryID), moduleIDs)
	})
	if err != nil {
		return nil, err
	}
	return m.GetCategory(ctx, categoryID)
}
