package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func date(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

func TestCallTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    CallTask
		wantErr string
	}{
		{
			name:    "unknown status",
			task:    CallTask{TaskStatus: "Ghosted", TaskDate: date("2024-06-01")},
			wantErr: "unknown task status",
		},
		{
			name:    "missing task date",
			task:    CallTask{TaskStatus: TaskNotContacted},
			wantErr: "task date is required",
		},
		{
			name: "callback without next call slot",
			task: CallTask{
				TaskStatus: TaskCallback,
				TaskDate:   date("2024-06-01"),
			},
			wantErr: "requires next follow-up date and time",
		},
		{
			name: "call not picked with date but no time",
			task: CallTask{
				TaskStatus:       TaskCallNotPicked,
				TaskDate:         date("2024-06-01"),
				NextFollowUpDate: datePtr("2024-06-03"),
			},
			wantErr: "requires next follow-up date and time",
		},
		{
			name: "callback with full slot",
			task: CallTask{
				TaskStatus:       TaskCallback,
				TaskDate:         date("2024-06-01"),
				NextFollowUpDate: datePtr("2024-06-03"),
				NextFollowUpTime: "11:30",
			},
		},
		{
			name: "appointment scheduled without slot",
			task: CallTask{
				TaskStatus: TaskAppointmentScheduled,
				TaskDate:   date("2024-06-01"),
			},
			wantErr: "requires next appointment date and time",
		},
		{
			name: "appointment scheduled with slot",
			task: CallTask{
				TaskStatus:          TaskAppointmentScheduled,
				TaskDate:            date("2024-06-01"),
				NextAppointmentDate: datePtr("2024-06-05"),
				NextAppointmentTime: "10:00",
			},
		},
		{
			name: "not interested without remarks",
			task: CallTask{
				TaskStatus: TaskNotInterested,
				TaskDate:   date("2024-06-01"),
			},
			wantErr: "requires remarks",
		},
		{
			name: "wrong number with remarks",
			task: CallTask{
				TaskStatus:  TaskWrongNumber,
				TaskDate:    date("2024-06-01"),
				TaskRemarks: "number belongs to a shop",
			},
		},
		{
			name: "neutral status needs nothing extra",
			task: CallTask{
				TaskStatus: TaskNotContacted,
				TaskDate:   date("2024-06-01"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLatestCallTaskByDate(t *testing.T) {
	tasks := []CallTask{
		{Model: gorm.Model{ID: 1}, TaskDate: date("2024-01-01"), TaskStatus: TaskCallback},
		{Model: gorm.Model{ID: 2}, TaskDate: date("2024-01-03"), TaskStatus: TaskNotContacted},
	}

	latest := LatestCallTask(tasks)
	require.NotNil(t, latest)
	assert.Equal(t, TaskNotContacted, latest.TaskStatus)
	assert.Equal(t, TaskNotContacted, CurrentCallStatus(tasks))
}

func TestLatestCallTaskSameDayTieBreak(t *testing.T) {
	// Two tasks on the same day: the later insertion wins regardless of
	// slice order.
	tasks := []CallTask{
		{Model: gorm.Model{ID: 7}, TaskDate: date("2024-02-10"), TaskStatus: TaskAppointmentScheduled},
		{Model: gorm.Model{ID: 4}, TaskDate: date("2024-02-10"), TaskStatus: TaskCallNotPicked},
	}

	latest := LatestCallTask(tasks)
	require.NotNil(t, latest)
	assert.Equal(t, uint(7), latest.ID)

	// Reversed input must not change the outcome.
	reversed := []CallTask{tasks[1], tasks[0]}
	assert.Equal(t, uint(7), LatestCallTask(reversed).ID)
}

func TestCurrentCallStatusEmptyHistory(t *testing.T) {
	assert.Nil(t, LatestCallTask(nil))
	assert.Equal(t, TaskNotContacted, CurrentCallStatus(nil))
}

func TestCallTaskDueOn(t *testing.T) {
	task := CallTask{
		TaskStatus:       TaskCallback,
		TaskDate:         date("2024-03-01"),
		NextFollowUpDate: datePtr("2024-03-04"),
	}
	assert.True(t, task.DueOn(date("2024-03-04")))
	assert.False(t, task.DueOn(date("2024-03-05")))

	appt := CallTask{
		TaskStatus:          TaskAppointmentScheduled,
		TaskDate:            date("2024-03-01"),
		NextAppointmentDate: datePtr("2024-03-06"),
	}
	assert.True(t, appt.DueOn(date("2024-03-06")))

	none := CallTask{TaskStatus: TaskNotContacted, TaskDate: date("2024-03-01")}
	assert.False(t, none.DueOn(date("2024-03-01")))
}

func TestIsAppointmentStatus(t *testing.T) {
	assert.True(t, IsAppointmentStatus(TaskAppointmentScheduled))
	assert.True(t, IsAppointmentStatus(TaskAppointmentRescheduled))
	assert.False(t, IsAppointmentStatus(TaskAppointmentDone))
	assert.False(t, IsAppointmentStatus(TaskCallback))
}
