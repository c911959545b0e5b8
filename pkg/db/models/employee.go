package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee receives assigned units. EmpID is the human-facing badge number.
type Employee struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EmpID      string         `gorm:"column:emp_id;not null;uniqueIndex:uq_employees_emp_id,where:deleted_at IS NULL"`
	Name       string         `gorm:"column:name;not null"`
	Email      *string        `gorm:"column:email"`
	Position   *string        `gorm:"column:position"`
	Department *string        `gorm:"column:department"`
	BranchID   uuid.UUID      `gorm:"column:branch_id;type:uuid;not null"`
	Branch     *Branch        `gorm:"foreignKey:BranchID"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}
