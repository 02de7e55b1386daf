package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"vpcrm/models"
	"vpcrm/utils"
)

type TelecallerController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Hub    *AssignmentHub
}

func NewTelecallerController(db *gorm.DB, logger *log.Logger, hub *AssignmentHub) *TelecallerController {
	return &TelecallerController{
		DB:     db,
		Logger: logger,
		Hub:    hub,
	}
}

var errAlreadyAssigned = errors.New("suspect already assigned")

type AssignSuspectsInput struct {
	Role       string `json:"role" validate:"required,oneof=telecaller rm"`
	EmployeeID uint   `json:"employee_id" validate:"required"`
	SuspectIDs []uint `json:"suspect_ids" validate:"required,min=1"`
}

// AssignSuspects hands a batch of unassigned suspects to one employee.
// The batch is all-or-nothing: the first id that is missing or already
// assigned rolls back the whole request.
func (tc *TelecallerController) AssignSuspects(c *fiber.Ctx) error {
	assigner := c.Locals("employee").(*models.Employee)

	var input AssignSuspectsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var employee models.Employee
	if err := tc.DB.First(&employee, input.EmployeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Employee not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch employee", err)
	}
	if !employee.IsActive {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Employee account is not active", nil)
	}
	if employee.Role != input.Role {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("Employee %d does not hold role %q", employee.ID, input.Role), nil)
	}

	now := time.Now()
	assignments := make([]models.SuspectAssignment, 0, len(input.SuspectIDs))

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		for _, suspectID := range input.SuspectIDs {
			// Guarded update: only unassigned rows match, so a row
			// claimed by a concurrent request aborts the batch.
			res := tx.Model(&models.Suspect{}).
				Where("id = ? AND assigned_to_id IS NULL", suspectID).
				Updates(map[string]interface{}{
					"assigned_to_id": employee.ID,
					"assigned_at":    now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("suspect %d: %w", suspectID, errAlreadyAssigned)
			}

			assignment := models.SuspectAssignment{
				SuspectID:    suspectID,
				EmployeeID:   employee.ID,
				Role:         input.Role,
				AssignedByID: assigner.ID,
				AssignedAt:   now,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
			assignments = append(assignments, assignment)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errAlreadyAssigned) {
			return utils.ErrorResponse(c, fiber.StatusConflict,
				"One or more suspects are already assigned; nothing was changed", err)
		}
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign suspects", err)
	}

	tc.Logger.Printf("Assigned %d suspects to %s %d", len(assignments), input.Role, employee.ID)
	if tc.Hub != nil {
		tc.Hub.Broadcast(AssignmentEvent{
			EmployeeID:   employee.ID,
			EmployeeName: employee.Name,
			Role:         input.Role,
			SuspectIDs:   input.SuspectIDs,
			AssignedAt:   now,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(assignments))
}

// GetAssignments returns the full assignment history.
func (tc *TelecallerController) GetAssignments(c *fiber.Ctx) error {
	var assignments []models.SuspectAssignment
	if err := tc.DB.Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assignments", err)
	}
	return c.JSON(utils.SuccessResponse(assignments))
}

// GetAvailable lists today's suspects (created on/after local midnight)
// that nobody owns yet.
func (tc *TelecallerController) GetAvailable(c *fiber.Ctx) error {
	midnight := utils.StartOfDay(time.Now())

	var suspects []models.Suspect
	err := tc.DB.
		Where("created_at >= ? AND assigned_to_id IS NULL", midnight).
		Find(&suspects).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch available suspects", err)
	}
	return c.JSON(utils.SuccessResponse(suspects))
}

// GetAssignedSuspects lists everything owned by one employee.
func (tc *TelecallerController) GetAssignedSuspects(c *fiber.Ctx) error {
	employeeID := utils.ParseUint(c.Params("id"))

	var suspects []models.Suspect
	err := tc.DB.
		Preload("CallTasks").
		Where("assigned_to_id = ?", employeeID).
		Find(&suspects).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assigned suspects", err)
	}
	return c.JSON(utils.SuccessResponse(suspects))
}

// GetTodaysActive lists the telecaller's working set for today: suspects
// assigned today plus those with a follow-up or appointment due today.
func (tc *TelecallerController) GetTodaysActive(c *fiber.Ctx) error {
	employeeID := utils.ParseUint(c.Params("id"))
	today := time.Now()
	midnight := utils.StartOfDay(today)

	var suspects []models.Suspect
	err := tc.DB.
		Preload("CallTasks").
		Where("assigned_to_id = ?", employeeID).
		Find(&suspects).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assigned suspects", err)
	}

	active := make([]models.Suspect, 0)
	for _, s := range suspects {
		if s.AssignedAt != nil && !s.AssignedAt.Before(midnight) {
			active = append(active, s)
			continue
		}
		if latest := models.LatestCallTask(s.CallTasks); latest != nil && latest.DueOn(today) {
			active = append(active, s)
		}
	}
	return c.JSON(utils.SuccessResponse(active))
}

// GetByDate lists the telecaller's suspects with a follow-up or
// appointment on a given YYYY-MM-DD date.
func (tc *TelecallerController) GetByDate(c *fiber.Ctx) error {
	employeeID := utils.ParseUint(c.Params("id"))
	day, err := utils.ParseDate(c.Params("date"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
	}

	var suspects []models.Suspect
	err = tc.DB.
		Preload("CallTasks").
		Where("assigned_to_id = ?", employeeID).
		Find(&suspects).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assigned suspects", err)
	}

	due := make([]models.Suspect, 0)
	for _, s := range suspects {
		if latest := models.LatestCallTask(s.CallTasks); latest != nil && latest.DueOn(day) {
			due = append(due, s)
		}
	}
	return c.JSON(utils.SuccessResponse(due))
}

// AssignmentStats buckets one employee's assignment history.
type AssignmentStats struct {
	Today         int          `json:"today"`
	ThisWeek      int          `json:"this_week"`
	ThisMonth     int          `json:"this_month"`
	LastSixMonths []MonthCount `json:"last_six_months"`

	CallOutcomes map[string]int `json:"call_outcomes"`
	Total        int            `json:"total"`
}

type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// BucketAssignments computes the stats buckets from in-memory rows.
// Week starts Monday; the six-month series always has six entries,
// oldest first, zero-filled.
func BucketAssignments(assignments []models.SuspectAssignment, now time.Time) AssignmentStats {
	stats := AssignmentStats{
		CallOutcomes: map[string]int{},
		Total:        len(assignments),
	}

	midnight := utils.StartOfDay(now)
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started last Monday
	}
	weekStart := midnight.AddDate(0, 0, -(weekday - 1))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	months := make([]MonthCount, 6)
	monthIndex := map[string]int{}
	for i := 0; i < 6; i++ {
		m := monthStart.AddDate(0, i-5, 0)
		key := m.Format("2006-01")
		months[i] = MonthCount{Month: key}
		monthIndex[key] = i
	}

	for _, a := range assignments {
		if !a.AssignedAt.Before(midnight) {
			stats.Today++
		}
		if !a.AssignedAt.Before(weekStart) {
			stats.ThisWeek++
		}
		if !a.AssignedAt.Before(monthStart) {
			stats.ThisMonth++
		}
		if idx, ok := monthIndex[a.AssignedAt.Format("2006-01")]; ok {
			months[idx].Count++
		}
	}
	stats.LastSixMonths = months
	return stats
}

// GetStats returns the employee's assignment buckets plus the current
// call outcome distribution of their book.
func (tc *TelecallerController) GetStats(c *fiber.Ctx) error {
	employeeID := utils.ParseUint(c.Params("id"))

	var assignments []models.SuspectAssignment
	if err := tc.DB.Where("employee_id = ?", employeeID).Find(&assignments).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assignments", err)
	}

	stats := BucketAssignments(assignments, time.Now())

	var suspects []models.Suspect
	if err := tc.DB.Preload("CallTasks").Where("assigned_to_id = ?", employeeID).Find(&suspects).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch assigned suspects", err)
	}
	for _, s := range suspects {
		stats.CallOutcomes[models.CurrentCallStatus(s.CallTasks)]++
	}

	return c.JSON(utils.SuccessResponse(stats))
}
