package models

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Call task outcome statuses.
const (
	TaskCallNotPicked          = "Call Not Picked"
	TaskBusyOnAnotherCall      = "Busy on Another Call"
	TaskCallAfterSometimes     = "Call After Sometimes"
	TaskOthers                 = "Others"
	TaskCallback               = "Callback"
	TaskAppointmentScheduled   = "Appointment Scheduled"
	TaskAppointmentDone        = "Appointment Done"
	TaskAppointmentRescheduled = "Appointment Rescheduled"
	TaskNotReachable           = "Not Reachable"
	TaskWrongNumber            = "Wrong Number"
	TaskNotInterested          = "Not Interested"
	TaskNotContacted           = "Not Contacted"
)

// forwardedStatuses require a next follow-up date and time.
var forwardedStatuses = map[string]bool{
	TaskCallNotPicked:      true,
	TaskBusyOnAnotherCall:  true,
	TaskCallAfterSometimes: true,
	TaskOthers:             true,
	TaskCallback:           true,
}

// appointmentStatuses require next-appointment date and time and convert
// a suspect to a prospect when recorded.
var appointmentStatuses = map[string]bool{
	TaskAppointmentScheduled:   true,
	TaskAppointmentRescheduled: true,
}

// terminalNegativeStatuses require non-empty remarks.
var terminalNegativeStatuses = map[string]bool{
	TaskNotReachable:  true,
	TaskWrongNumber:   true,
	TaskNotInterested: true,
}

var knownTaskStatuses = map[string]bool{
	TaskCallNotPicked:          true,
	TaskBusyOnAnotherCall:      true,
	TaskCallAfterSometimes:     true,
	TaskOthers:                 true,
	TaskCallback:               true,
	TaskAppointmentScheduled:   true,
	TaskAppointmentDone:        true,
	TaskAppointmentRescheduled: true,
	TaskNotReachable:           true,
	TaskWrongNumber:            true,
	TaskNotInterested:          true,
	TaskNotContacted:           true,
}

// CallTask is one logged outcome of a contact attempt. The list on a
// suspect is append-only; tasks are never edited or removed.
type CallTask struct {
	gorm.Model
	SuspectID uint `gorm:"not null;index" json:"suspect_id"`

	TaskDate    time.Time `gorm:"not null;index" json:"task_date"`
	TaskTime    string    `json:"task_time"`
	TaskStatus  string    `gorm:"not null" json:"task_status"`
	TaskRemarks string    `gorm:"type:text" json:"task_remarks"`

	NextFollowUpDate *time.Time `gorm:"index" json:"next_follow_up_date,omitempty"`
	NextFollowUpTime string     `json:"next_follow_up_time,omitempty"`

	NextAppointmentDate *time.Time `json:"next_appointment_date,omitempty"`
	NextAppointmentTime string     `json:"next_appointment_time,omitempty"`

	// Stamped by the follow-up worker once a reminder mail went out.
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
}

// KnownTaskStatus reports whether s is a recognized call outcome.
func KnownTaskStatus(s string) bool {
	return knownTaskStatuses[s]
}

// IsAppointmentStatus reports whether recording s converts a suspect
// into a prospect.
func IsAppointmentStatus(s string) bool {
	return appointmentStatuses[s]
}

// Validate enforces the companion-field policy for the task's status:
// forwarded/callback outcomes need the next call slot, appointment
// outcomes need the appointment slot, terminal-negative outcomes need
// remarks.
func (t *CallTask) Validate() error {
	if !KnownTaskStatus(t.TaskStatus) {
		return fmt.Errorf("unknown task status %q", t.TaskStatus)
	}
	if t.TaskDate.IsZero() {
		return fmt.Errorf("task date is required")
	}
	switch {
	case forwardedStatuses[t.TaskStatus]:
		if t.NextFollowUpDate == nil || t.NextFollowUpTime == "" {
			return fmt.Errorf("status %q requires next follow-up date and time", t.TaskStatus)
		}
	case appointmentStatuses[t.TaskStatus]:
		if t.NextAppointmentDate == nil || t.NextAppointmentTime == "" {
			return fmt.Errorf("status %q requires next appointment date and time", t.TaskStatus)
		}
	case terminalNegativeStatuses[t.TaskStatus]:
		if t.TaskRemarks == "" {
			return fmt.Errorf("status %q requires remarks", t.TaskStatus)
		}
	}
	return nil
}

// LatestCallTask picks the task that determines the current call status:
// newest TaskDate first, insertion id as the tie-break for same-day tasks.
// Returns nil for an empty history.
func LatestCallTask(tasks []CallTask) *CallTask {
	if len(tasks) == 0 {
		return nil
	}
	sorted := make([]CallTask, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TaskDate.Equal(sorted[j].TaskDate) {
			return sorted[i].TaskDate.After(sorted[j].TaskDate)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return &sorted[0]
}

// CurrentCallStatus returns the latest task's status, or "Not Contacted"
// when no call has been logged yet.
func CurrentCallStatus(tasks []CallTask) string {
	latest := LatestCallTask(tasks)
	if latest == nil {
		return TaskNotContacted
	}
	return latest.TaskStatus
}

// DueOn reports whether the task has a follow-up or appointment falling
// on the given calendar day (local time of day).
func (t *CallTask) DueOn(day time.Time) bool {
	return sameDay(t.NextFollowUpDate, day) || sameDay(t.NextAppointmentDate, day)
}

func sameDay(d *time.Time, day time.Time) bool {
	if d == nil {
		return false
	}
	y1, m1, d1 := d.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
