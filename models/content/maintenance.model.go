package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RunSucceeded = "SUCCEEDED"
	RunFailed    = "FAILED"
	RunCancelled = "CANCELLED"
)

// MaintenanceRun is the audit record of one bulk lifecycle operation
type MaintenanceRun struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Operation  string         `json:"operation" gorm:"size:64;not null;index"`
	Status     string         `json:"status" gorm:"size:16;not null"`
	Counts     datatypes.JSON `json:"counts"`
	Message    string         `json:"message" gorm:"type:text"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at" gorm:"index"`
}

func (MaintenanceRun) TableName() string { return "maintenance_runs" }

func (r *MaintenanceRun) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// All lists every model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{
		&Module{},
		&ModuleObjective{},
		&Category{},
		&CategoryModule{},
		&Slide{},
		&Quiz{},
		&Question{},
		&Option{},
		&StudentModuleProgress{},
		&MaintenanceRun{},
	}
}
