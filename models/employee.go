package models

import (
	"gorm.io/gorm"
)

// Employee roles.
const (
	RoleTelecaller = "telecaller"
	RoleRM         = "rm"
	RoleHR         = "hr"
	RoleAdmin      = "admin"
)

// ValidRole reports whether r is a known employee role.
func ValidRole(r string) bool {
	switch r {
	case RoleTelecaller, RoleRM, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// Employee is a staff account: telecallers and RMs own assigned suspects,
// HR/admin manage assignment and templates.
type Employee struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null" json:"name"`
	Phone        string `json:"phone"`
	Role         string `gorm:"not null;index" json:"role"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	AssignedSuspects []Suspect           `gorm:"foreignKey:AssignedToID" json:"assigned_suspects,omitempty"`
	Assignments      []SuspectAssignment `gorm:"foreignKey:EmployeeID" json:"assignments,omitempty"`
	TaskAssignments  []TaskAssignment    `gorm:"foreignKey:EmployeeID" json:"task_assignments,omitempty"`
}
