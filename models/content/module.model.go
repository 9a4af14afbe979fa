package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module represents a learning module made of ordered slides
type Module struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Module) TableName() string { return "modules" }

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// ModuleObjective is one learning objective of a module, ordered per module
type ModuleObjective struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ModuleID  uuid.UUID `json:"module_id" gorm:"type:uuid;not null;index:idx_objectives_module_position,priority:1"`
	Position  int       `json:"position" gorm:"not null;default:-1;index:idx_objectives_module_position,priority:2"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ModuleObjective) TableName() string { return "module_objectives" }

func (o *ModuleObjective) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
