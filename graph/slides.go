package graph

import (
	"context"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"github.com/google/uuid"
)

// SlidePatch updates a slide. A non-nil Payload replaces the whole payload,
// which may change the slide's type.
type SlidePatch struct {
	Title   *string
	Payload content.SlidePayload
}

func (m *Manager) AddSlide(ctx context.Context, moduleID uuid.UUID, spec content.SlideSpec, index int) (*content.Slide, error) {
	if err := spec.Validate(); err != nil {
		return nil, invalid("slide", nil, err)
	}
	slide := &content.Slide{ModuleID: moduleID, Position: content.Unplaced, Title: spec.Title}
	slide.SetPayload(spec.Payload)

	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if err := tx.LockParents(parents("module", moduleID)...); err != nil {
			return err
		}
		if _, err := load[content.Module](tx, "module", moduleID); err != nil {
			return err
		}
		if err := tx.DB.Create(slide).Error; err != nil {
			return err
		}
		pos, err := m.seq.InsertAt(tx, sequencer.Slides(moduleID), slide.ID, index)
		slide.Position = pos
		return err
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug("slide added", "module_id", moduleID, "slide_id", slide.ID, "position", slide.Position)
	return slide, nil
}

func (m *Manager) GetSlide(ctx context.Context, id uuid.UUID) (*content.Slide, error) {
	var slide *content.Slide
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		slide, err = load[content.Slide](tx, "slide", id)
		return err
	})
	return slide, err
}

// ListSlides returns the module's slides in order.
func (m *Manager) ListSlides(ctx context.Context, moduleID uuid.UUID) ([]content.Slide, error) {
	slides := []content.Slide{}
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if _, err := load[content.Module](tx, "module", moduleID); err != nil {
			return err
		}
		if err := ordered(tx.DB, "module_id", moduleID).Find(&slides).Error; err != nil {
			return apperr.Storage("list slides", err)
		}
		return nil
	})
	return slides, err
}

func (m *Manager) UpdateSlide(ctx context.Context, id uuid.UUID, patch SlidePatch) (*content.Slide, error) {
	if patch.Payload != nil {
		if err := (content.SlideSpec{Payload: patch.Payload}).Validate(); err != nil {
			return nil, invalid("slide", id, err)
		}
	}
	var slide *content.Slide
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if slide, err = load[content.Slide](tx, "slide", id); err != nil {
			return err
		}
		if patch.Title != nil {
			slide.Title = *patch.Title
		}
		if patch.Payload != nil {
			slide.SetPayload(patch.Payload)
		}
		return tx.DB.Save(slide).Error
	})
	return slide, err
}

func (m *Manager) MoveSlide(ctx context.Context, id uuid.UUID, index int) (*content.Slide, error) {
	var slide *content.Slide
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		var err error
		if slide, err = load[content.Slide](tx, "slide", id); err != nil {
			return err
		}
		slide.Position, err = m.seq.MoveWithin(tx, sequencer.Slides(slide.ModuleID), id, index)
		return err
	})
	return slide, err
}

func (m *Manager) DeleteSlide(ctx context.Context, id uuid.UUID) error {
	return m.store.Transaction(ctx, func(tx *database.Tx) error {
		slide, err := load[content.Slide](tx, "slide", id)
		if err != nil {
			return err
		}
		if _, err := m.seq.RemoveFrom(tx, sequencer.Slides(slide.ModuleID), id); err != nil {
			return err
		}
		return tx.DB.Delete(&content.Slide{}, "id = ?", id).Error
	})
}

// ReorderSlides replaces the module's slide order with slideIDs.
func (m *Manager) ReorderSlides(ctx context.Context, moduleID uuid.UUID, slideIDs []uuid.UUID) ([]content.Slide, error) {
	err := m.store.Transaction(ctx, func(tx *database.Tx) error {
		if _, err := load[content.Module](tx, "module", moduleID); err != nil {
			return err
		}
		return m.seq.ReindexFromScratch(tx, sequencer.Slides(moduleID), slideIDs)
	})
	if err != nil {
		return nil, err
	}
	return m.ListSlides(ctx, moduleID)
}
