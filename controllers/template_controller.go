package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"vpcrm/models"
	"vpcrm/utils"
)

type TemplateController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTemplateController(db *gorm.DB, logger *log.Logger) *TemplateController {
	return &TemplateController{
		DB:     db,
		Logger: logger,
	}
}

type ChecklistInput struct {
	Label    string `json:"label" validate:"required,max=300"`
	Sequence int    `json:"sequence" validate:"omitempty,gte=0"`
	Required bool   `json:"required"`
}

type FormChecklistInput struct {
	FormName string `json:"form_name" validate:"required,max=300"`
	Sequence int    `json:"sequence" validate:"omitempty,gte=0"`
}

type CommunicationTemplateInput struct {
	Channel string `json:"channel" validate:"required,oneof=email sms whatsapp"`
	Subject string `json:"subject" validate:"omitempty,max=300"`
	Body    string `json:"body" validate:"required"`
}

type TaskTemplateInput struct {
	Name             string `json:"name" validate:"required,max=200"`
	Kind             string `json:"kind" validate:"required,oneof=composite marketing"`
	FinancialProduct string `json:"financial_product" validate:"omitempty,max=200"`
	Company          string `json:"company" validate:"omitempty,max=200"`
	DepartmentRoles  string `json:"department_roles" validate:"omitempty"`
	EstimatedDays    int    `json:"estimated_days" validate:"omitempty,gte=1"`
	TemplatePriority int    `json:"template_priority" validate:"omitempty,gte=1,lte=5"`

	Checklists             []ChecklistInput             `json:"checklists" validate:"dive"`
	FormChecklists         []FormChecklistInput         `json:"form_checklists" validate:"dive"`
	CommunicationTemplates []CommunicationTemplateInput `json:"communication_templates" validate:"dive"`
}

// CreateTemplate builds a composite/marketing task template with its
// checklists in one shot.
func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var input TaskTemplateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	template := models.TaskTemplate{
		Name:             input.Name,
		Kind:             input.Kind,
		FinancialProduct: input.FinancialProduct,
		Company:          input.Company,
		DepartmentRoles:  input.DepartmentRoles,
		EstimatedDays:    input.EstimatedDays,
		TemplatePriority: input.TemplatePriority,
	}
	if template.EstimatedDays == 0 {
		template.EstimatedDays = 1
	}
	if template.TemplatePriority == 0 {
		template.TemplatePriority = 3
	}

	for _, cl := range input.Checklists {
		template.Checklists = append(template.Checklists, models.TemplateChecklist{
			Label:    cl.Label,
			Sequence: cl.Sequence,
			Required: cl.Required,
		})
	}
	for _, f := range input.FormChecklists {
		template.FormChecklists = append(template.FormChecklists, models.TemplateFormChecklist{
			FormName: f.FormName,
			Sequence: f.Sequence,
		})
	}
	for _, ct := range input.CommunicationTemplates {
		template.CommunicationTemplates = append(template.CommunicationTemplates, models.CommunicationTemplate{
			Channel: ct.Channel,
			Subject: ct.Subject,
			Body:    ct.Body,
		})
	}

	if err := tc.DB.Create(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create template", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(template))
}

// GetTemplates lists all templates without children.
func (tc *TemplateController) GetTemplates(c *fiber.Ctx) error {
	var templates []models.TaskTemplate
	if err := tc.DB.Find(&templates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch templates", err)
	}
	return c.JSON(utils.SuccessResponse(templates))
}

// GetTemplate returns one template with all children.
func (tc *TemplateController) GetTemplate(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var template models.TaskTemplate
	err := tc.DB.
		Preload("Checklists").
		Preload("FormChecklists").
		Preload("CommunicationTemplates").
		Preload("TaskAssignments").
		First(&template, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch template", err)
	}
	return c.JSON(utils.SuccessResponse(template))
}

// DeleteTemplate hard-deletes a template and its children. Existing
// task assignments keep their template id for dashboard history.
func (tc *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var template models.TaskTemplate
	if err := tc.DB.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch template", err)
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.TemplateChecklist{},
			&models.TemplateFormChecklist{},
			&models.CommunicationTemplate{},
		} {
			if err := tx.Unscoped().Where("template_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&template).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete template", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": id}))
}

type AssignTemplateInput struct {
	EmployeeIDs []uint `json:"employee_ids" validate:"required,min=1"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Priority    int    `json:"priority" validate:"omitempty,gte=1,lte=5"`
}

// AssignTemplate produces one TaskAssignment per employee. Priority
// falls back to the template's own priority when not overridden.
func (tc *TemplateController) AssignTemplate(c *fiber.Ctx) error {
	assigner := c.Locals("employee").(*models.Employee)
	id := utils.ParseUint(c.Params("id"))

	var input AssignTemplateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var template models.TaskTemplate
	if err := tc.DB.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch template", err)
	}

	dueDate, err := utils.ParseDate(input.DueDate)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid due date", err)
	}

	priority := input.Priority
	if priority == 0 {
		priority = template.TemplatePriority
	}

	assignments := make([]models.TaskAssignment, 0, len(input.EmployeeIDs))
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		for _, employeeID := range input.EmployeeIDs {
			var employee models.Employee
			if err := tx.First(&employee, employeeID).Error; err != nil {
				return err
			}
			assignment := models.TaskAssignment{
				TemplateID:   template.ID,
				EmployeeID:   employeeID,
				DueDate:      dueDate,
				Priority:     priority,
				AssignedByID: assigner.ID,
				Status:       models.TaskAssignmentPending,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
			assignments = append(assignments, assignment)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Employee not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign template", err)
	}

	tc.Logger.Printf("Template %d assigned to %d employees", template.ID, len(assignments))
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(assignments))
}

// GetEmployeeTaskAssignments lists one employee's task assignments with
// template details, for the employee dashboard. Assigned work is
// read-only here except for the status field.
func (tc *TemplateController) GetEmployeeTaskAssignments(c *fiber.Ctx) error {
	employeeID := utils.ParseUint(c.Params("id"))

	var assignments []models.TaskAssignment
	err := tc.DB.
		Preload("Template").
		Preload("Template.Checklists").
		Preload("Template.FormChecklists").
		Where("employee_id = ?", employeeID).
		Order("due_date ASC").
		Find(&assignments).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task assignments", err)
	}
	return c.JSON(utils.SuccessResponse(assignments))
}

// UpdateTaskAssignmentStatus moves an assignment through
// pending -> in_progress -> completed.
func (tc *TemplateController) UpdateTaskAssignmentStatus(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var input struct {
		Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var assignment models.TaskAssignment
	if err := tc.DB.First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task assignment not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task assignment", err)
	}

	if err := tc.DB.Model(&assignment).Update("status", input.Status).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task assignment", err)
	}
	return c.JSON(utils.SuccessResponse(assignment))
}
