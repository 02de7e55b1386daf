package controller

import (
	"errors"
	"log"
	"sort"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"vpcrm/models"
	"vpcrm/utils"
)

type CallTaskController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCallTaskController(db *gorm.DB, logger *log.Logger) *CallTaskController {
	return &CallTaskController{
		DB:     db,
		Logger: logger,
	}
}

type CallTaskInput struct {
	TaskDate    string `json:"task_date" validate:"required,datetime=2006-01-02"`
	TaskTime    string `json:"task_time" validate:"omitempty,max=20"`
	TaskStatus  string `json:"task_status" validate:"required"`
	TaskRemarks string `json:"task_remarks" validate:"omitempty"`

	NextFollowUpDate string `json:"next_follow_up_date" validate:"omitempty,datetime=2006-01-02"`
	NextFollowUpTime string `json:"next_follow_up_time" validate:"omitempty,max=20"`

	NextAppointmentDate string `json:"next_appointment_date" validate:"omitempty,datetime=2006-01-02"`
	NextAppointmentTime string `json:"next_appointment_time" validate:"omitempty,max=20"`
}

// RecordCallTask appends one call outcome to the suspect's history and
// converts the suspect to a prospect when an appointment was scheduled.
// The companion-field policy is enforced here, not in the client: a
// rejected task appends nothing.
func (cc *CallTaskController) RecordCallTask(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var input CallTaskInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	taskDate, err := utils.ParseDate(input.TaskDate)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task date", err)
	}

	task := models.CallTask{
		SuspectID:   id,
		TaskDate:    taskDate,
		TaskTime:    input.TaskTime,
		TaskStatus:  input.TaskStatus,
		TaskRemarks: input.TaskRemarks,
	}
	if input.NextFollowUpDate != "" {
		d, err := utils.ParseDate(input.NextFollowUpDate)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid next follow-up date", err)
		}
		task.NextFollowUpDate = &d
		task.NextFollowUpTime = input.NextFollowUpTime
	}
	if input.NextAppointmentDate != "" {
		d, err := utils.ParseDate(input.NextAppointmentDate)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid next appointment date", err)
		}
		task.NextAppointmentDate = &d
		task.NextAppointmentTime = input.NextAppointmentTime
	}

	if err := task.Validate(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var suspect models.Suspect
	if err := cc.DB.First(&suspect, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Suspect not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch suspect", err)
	}

	statusChanged := false
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		if models.IsAppointmentStatus(task.TaskStatus) && suspect.Status == models.StatusSuspect {
			if err := tx.Model(&suspect).Update("status", models.StatusProspect).Error; err != nil {
				return err
			}
			statusChanged = true
		}
		return nil
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record call task", err)
	}

	if statusChanged {
		cc.Logger.Printf("Suspect %d converted to prospect", id)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"data":           task,
		"status_changed": statusChanged,
	})
}

// GetCallTasks returns the call history latest-first, using the same
// ordering rule the dashboards use to derive the current status.
func (cc *CallTaskController) GetCallTasks(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	if err := cc.requireSuspect(id); err != nil {
		return respondLookupError(c, err)
	}

	var tasks []models.CallTask
	if err := cc.DB.Where("suspect_id = ?", id).Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch call tasks", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].TaskDate.Equal(tasks[j].TaskDate) {
			return tasks[i].TaskDate.After(tasks[j].TaskDate)
		}
		return tasks[i].ID > tasks[j].ID
	})

	return c.JSON(fiber.Map{
		"success":        true,
		"data":           tasks,
		"current_status": models.CurrentCallStatus(tasks),
	})
}

func (cc *CallTaskController) requireSuspect(id uint) error {
	var suspect models.Suspect
	return cc.DB.Select("id").First(&suspect, id).Error
}
