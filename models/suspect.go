package models

import (
	"time"

	"gorm.io/gorm"
)

// Lifecycle stages of a lead. Progression is one-way:
// suspect -> prospect -> client.
const (
	StatusSuspect  = "suspect"
	StatusProspect = "prospect"
	StatusClient   = "client"
)

// allowedTransitions maps a status to the single next stage it may move to.
var allowedTransitions = map[string]string{
	StatusSuspect:  StatusProspect,
	StatusProspect: StatusClient,
}

// ValidStatus reports whether s is a known lifecycle stage.
func ValidStatus(s string) bool {
	return s == StatusSuspect || s == StatusProspect || s == StatusClient
}

// CanTransition reports whether a suspect may move from one stage to
// another through the status-update endpoint. Same-stage updates are
// allowed so the endpoint stays idempotent.
func CanTransition(from, to string) bool {
	if !ValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	return allowedTransitions[from] == to
}

// Income grade brackets (annual income, INR).
const (
	gradeAIncome = 1000000
	gradeBIncome = 500000
	gradeCIncome = 200000
)

// GradeForIncome derives the income grade from annual income. The grade
// column is never written from client input; it is recomputed on every
// personal-details write.
func GradeForIncome(annualIncome float64) string {
	switch {
	case annualIncome >= gradeAIncome:
		return "A"
	case annualIncome >= gradeBIncome:
		return "B"
	case annualIncome >= gradeCIncome:
		return "C"
	default:
		return "D"
	}
}

// PersonalDetails is embedded in Suspect and replaced wholesale by the
// personal-details update endpoint.
type PersonalDetails struct {
	GroupName               string  `json:"group_name"`
	MobileNo                string  `gorm:"index" json:"mobile_no"`
	Email                   string  `json:"email"`
	Address                 string  `json:"address"`
	City                    string  `json:"city"`
	Occupation              string  `json:"occupation"`
	LeadSource              string  `json:"lead_source"`
	AnnualIncome            float64 `json:"annual_income"`
	Grade                   string  `json:"grade"`
	PreferredMeetingAddress string  `json:"preferred_meeting_address"`
	PreferredMeetingTime    string  `json:"preferred_meeting_time"`
}

// Suspect is the root aggregate for a lead through its lifecycle.
type Suspect struct {
	gorm.Model

	Status          string          `gorm:"not null;default:'suspect';index" json:"status"`
	PersonalDetails PersonalDetails `gorm:"embedded" json:"personal_details"`

	// Assignment link, denormalized from the latest SuspectAssignment.
	AssignedToID *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty"`

	// Child collections. Rows carry stable ids but the section update
	// endpoints keep replace-on-save semantics.
	FamilyMembers     []FamilyMember    `gorm:"foreignKey:SuspectID" json:"family_members,omitempty"`
	InsurancePolicies []InsurancePolicy `gorm:"foreignKey:SuspectID" json:"insurance_policies,omitempty"`
	Investments       []Investment      `gorm:"foreignKey:SuspectID" json:"investments,omitempty"`
	Loans             []Loan            `gorm:"foreignKey:SuspectID" json:"loans,omitempty"`
	FuturePriorities  []FuturePriority  `gorm:"foreignKey:SuspectID" json:"future_priorities,omitempty"`
	Needs             []NeedAnswer      `gorm:"foreignKey:SuspectID" json:"needs,omitempty"`
	ProposedPlans     []ProposedPlan    `gorm:"foreignKey:SuspectID" json:"proposed_plans,omitempty"`
	CallTasks         []CallTask        `gorm:"foreignKey:SuspectID" json:"call_tasks,omitempty"`

	AssignedTo *Employee `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

// FamilyMember belongs to a suspect's family section.
type FamilyMember struct {
	gorm.Model
	SuspectID uint `gorm:"not null;index" json:"suspect_id"`

	Name         string  `gorm:"not null" json:"name"`
	Relation     string  `json:"relation"`
	Occupation   string  `json:"occupation"`
	AnnualIncome float64 `json:"annual_income"`
	Contact      string  `json:"contact"`
}

// InsurancePolicy is one item of the financial-info section.
type InsurancePolicy struct {
	gorm.Model
	SuspectID uint `gorm:"not null;index" json:"suspect_id"`

	Company      string     `json:"company"`
	PlanName     string     `json:"plan_name"`
	SumAssured   float64    `json:"sum_assured"`
	Premium      float64    `json:"premium"`
	PremiumMode  string     `json:"premium_mode"` // monthly, quarterly, yearly
	StartDate    *time.Time `json:"start_date,omitempty"`
	MaturityDate *time.Time `json:"maturity_date,omitempty"`
}

// Investment is one item of the financial-info section.
type Investment struct {
	gorm.Model
	SuspectID uint `gorm:"not null;index" json:"suspect_id"`

	Type          string     `json:"type"` // FD, mutual fund, shares, etc.
	Institution   string     `json:"institution"`
	Amount        float64    `json:"amount"`
	MaturityValue float64    `json:"maturity_value"`
	MaturityDate  *time.Time `json:"maturity_date,omitempty"`
}

// Loan is one item of the financial-info section.
type Loan struct {
	gorm.Model
	SuspectID uint `gorm:"not null;index" json:"suspect_id"`

	Type        string  `json:"type"` // home, vehicle, personal, etc.
	Lender      string  `json:"lender"`
	Principal   float64 `json:"principal"`
	Outstanding float64 `json:"outstanding"`
	EMI         float64 `json:"emi"`
	TenureYears int     `json:"tenure_years"`
}

// FuturePriority is one financial goal of the suspect. Members holds a
// JSON-encoded list of family member names the goal applies to.
type FuturePriority struct {
	gorm.Model
	SuspectID uint `gorm:"not null;index" json:"suspect_id"`

	PriorityName string  `gorm:"not null" json:"priority_name"`
	Members      string  `gorm:"type:text" json:"members"`
	ApproxAmount float64 `json:"approx_amount"`
	Duration     string  `json:"duration"`
}

// NeedAnswer is the flag/answer record captured alongside priorities.
type NeedAnswer struct {
	gorm.Model
	SuspectID uint `gorm:"not null;index" json:"suspect_id"`

	Question string `gorm:"not null" json:"question"`
	Selected bool   `gorm:"default:false" json:"selected"`
	Answer   string `gorm:"type:text" json:"answer"`
}

// ProposedPlan is one financial product proposed to the suspect.
type ProposedPlan struct {
	gorm.Model
	SuspectID uint `gorm:"not null;index" json:"suspect_id"`

	PlanName string `gorm:"not null" json:"plan_name"`
	Company  string `json:"company"`
	Product  string `json:"product"`
	Status   string `gorm:"default:'proposed'" json:"status"`
}
