package models

import (
	"time"

	"gorm.io/gorm"
)

// Task template kinds.
const (
	TemplateComposite = "composite"
	TemplateMarketing = "marketing"
)

// Task assignment lifecycle.
const (
	TaskAssignmentPending    = "pending"
	TaskAssignmentInProgress = "in_progress"
	TaskAssignmentCompleted  = "completed"
)

// TaskTemplate is a reusable composite/marketing task definition built
// once by an admin and later assigned to employees. Separate from the
// suspect lifecycle.
type TaskTemplate struct {
	gorm.Model

	Name             string `gorm:"not null" json:"name"`
	Kind             string `gorm:"not null;default:'composite'" json:"kind"`
	FinancialProduct string `json:"financial_product"`
	Company          string `json:"company"`

	// JSON-encoded list of department/role names the template targets.
	DepartmentRoles string `gorm:"type:text" json:"department_roles"`

	EstimatedDays    int `gorm:"default:1" json:"estimated_days"`
	TemplatePriority int `gorm:"default:3" json:"template_priority"` // 1 = highest

	Checklists             []TemplateChecklist     `gorm:"foreignKey:TemplateID" json:"checklists,omitempty"`
	FormChecklists         []TemplateFormChecklist `gorm:"foreignKey:TemplateID" json:"form_checklists,omitempty"`
	CommunicationTemplates []CommunicationTemplate `gorm:"foreignKey:TemplateID" json:"communication_templates,omitempty"`
	TaskAssignments        []TaskAssignment        `gorm:"foreignKey:TemplateID" json:"task_assignments,omitempty"`
}

// TemplateChecklist is one checklist line of a template.
type TemplateChecklist struct {
	gorm.Model
	TemplateID uint `gorm:"not null;index" json:"template_id"`

	Label    string `gorm:"not null" json:"label"`
	Sequence int    `gorm:"default:0" json:"sequence"`
	Required bool   `gorm:"default:false" json:"required"`
}

// TemplateFormChecklist is one document/form requirement of a template.
type TemplateFormChecklist struct {
	gorm.Model
	TemplateID uint `gorm:"not null;index" json:"template_id"`

	FormName string `gorm:"not null" json:"form_name"`
	Sequence int    `gorm:"default:0" json:"sequence"`
}

// CommunicationTemplate is a canned message attached to a template.
type CommunicationTemplate struct {
	gorm.Model
	TemplateID uint `gorm:"not null;index" json:"template_id"`

	Channel string `gorm:"not null" json:"channel"` // email, sms, whatsapp
	Subject string `json:"subject"`
	Body    string `gorm:"type:text" json:"body"`
}

// TaskAssignment is one employee's copy of a template, produced by the
// assign action and consumed read-only by dashboards.
type TaskAssignment struct {
	gorm.Model

	TemplateID uint `gorm:"not null;index" json:"template_id"`
	EmployeeID uint `gorm:"not null;index" json:"employee_id"`

	DueDate      time.Time `json:"due_date"`
	Priority     int       `json:"priority"` // overrides TemplatePriority
	AssignedByID uint      `gorm:"not null" json:"assigned_by_id"`
	Status       string    `gorm:"default:'pending'" json:"status"`

	Template TaskTemplate `json:"template,omitempty"`
	Employee Employee     `json:"-"`
}
