package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressStatus string

const (
	ProgressVisited   ProgressStatus = "VISITED"
	ProgressCompleted ProgressStatus = "COMPLETED"
)

// StudentModuleProgress tracks one student's state on one module. It refers to
// the module by identity only and is removed together with the module.
type StudentModuleProgress struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	StudentID      uuid.UUID      `json:"student_id" gorm:"type:uuid;not null;uniqueIndex:idx_student_module,priority:1"`
	ModuleID       uuid.UUID      `json:"module_id" gorm:"type:uuid;not null;uniqueIndex:idx_student_module,priority:2;index"`
	Status         ProgressStatus `json:"status" gorm:"size:16;not null;default:'VISITED'"`
	FirstVisitedAt time.Time      `json:"first_visited_at"`
	LastSeenAt     time.Time      `json:"last_seen_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (StudentModuleProgress) TableName() string { return "student_module_progress" }

func (p *StudentModuleProgress) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
