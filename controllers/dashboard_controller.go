package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"vpcrm/models"
	"vpcrm/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type OverviewStats struct {
	Suspects  int64 `json:"suspects"`
	Prospects int64 `json:"prospects"`
	Clients   int64 `json:"clients"`

	TodayNew        int64 `json:"today_new"`
	TodayUnassigned int64 `json:"today_unassigned"`

	PerTelecaller []TelecallerCount `json:"per_telecaller"`
}

type TelecallerCount struct {
	EmployeeID uint   `json:"employee_id"`
	Name       string `json:"name"`
	Assigned   int64  `json:"assigned"`
}

// GetOverview returns the HR/admin dashboard headline numbers.
func (dc *DashboardController) GetOverview(c *fiber.Ctx) error {
	var stats OverviewStats
	midnight := utils.StartOfDay(time.Now())

	counts := []struct {
		status string
		dest   *int64
	}{
		{models.StatusSuspect, &stats.Suspects},
		{models.StatusProspect, &stats.Prospects},
		{models.StatusClient, &stats.Clients},
	}
	for _, sc := range counts {
		if err := dc.DB.Model(&models.Suspect{}).Where("status = ?", sc.status).Count(sc.dest).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count suspects", err)
		}
	}

	if err := dc.DB.Model(&models.Suspect{}).
		Where("created_at >= ?", midnight).
		Count(&stats.TodayNew).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count today's suspects", err)
	}
	if err := dc.DB.Model(&models.Suspect{}).
		Where("created_at >= ? AND assigned_to_id IS NULL", midnight).
		Count(&stats.TodayUnassigned).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count unassigned suspects", err)
	}

	var employees []models.Employee
	if err := dc.DB.Where("role IN ?", []string{models.RoleTelecaller, models.RoleRM}).Find(&employees).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch employees", err)
	}
	for _, e := range employees {
		var assigned int64
		if err := dc.DB.Model(&models.Suspect{}).Where("assigned_to_id = ?", e.ID).Count(&assigned).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count assigned suspects", err)
		}
		stats.PerTelecaller = append(stats.PerTelecaller, TelecallerCount{
			EmployeeID: e.ID,
			Name:       e.Name,
			Assigned:   assigned,
		})
	}

	return c.JSON(utils.SuccessResponse(stats))
}

// GetCallOutcomes returns the distribution of current call statuses
// across the whole book, derived from each suspect's latest call task.
func (dc *DashboardController) GetCallOutcomes(c *fiber.Ctx) error {
	var suspects []models.Suspect
	if err := dc.DB.Preload("CallTasks").Find(&suspects).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch suspects", err)
	}

	outcomes := map[string]int{}
	for _, s := range suspects {
		outcomes[models.CurrentCallStatus(s.CallTasks)]++
	}

	return c.JSON(utils.SuccessResponse(outcomes))
}
