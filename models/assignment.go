package models

import (
	"time"

	"gorm.io/gorm"
)

// SuspectAssignment records one suspect being handed to an employee.
// The denormalized AssignedToID/AssignedAt on Suspect always mirrors the
// newest row here; history rows are never rewritten.
type SuspectAssignment struct {
	gorm.Model

	SuspectID  uint `gorm:"not null;index" json:"suspect_id"`
	EmployeeID uint `gorm:"not null;index" json:"employee_id"`

	Role         string    `gorm:"not null" json:"role"` // telecaller or rm
	AssignedByID uint      `gorm:"not null" json:"assigned_by_id"`
	AssignedAt   time.Time `gorm:"not null;index" json:"assigned_at"`

	Suspect  Suspect  `json:"-"`
	Employee Employee `json:"-"`
}
