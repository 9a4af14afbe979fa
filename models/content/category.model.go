package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups modules under an explicit per-category order
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CategoryModule is a membership row. Removing a module from a category
// deletes this row only, never the module.
type CategoryModule struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null;uniqueIndex:idx_category_module,priority:1;index:idx_category_modules_position,priority:1"`
	ModuleID   uuid.UUID `json:"module_id" gorm:"type:uuid;not null;uniqueIndex:idx_category_module,priority:2;index"`
	Position   int       `json:"position" gorm:"not null;default:-1;index:idx_category_modules_position,priority:2"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (CategoryModule) TableName() string { return "category_modules" }

func (cm *CategoryModule) BeforeCreate(tx *gorm.DB) error {
	ensureID(&cm.ID)
	return nil
}
