package controller

import (
	"errors"
	"log"

	"github.com/badoux/checkmail"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"vpcrm/models"
	"vpcrm/utils"
)

type SuspectController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSuspectController(db *gorm.DB, logger *log.Logger) *SuspectController {
	return &SuspectController{
		DB:     db,
		Logger: logger,
	}
}

// PersonalDetailsInput is shared by create and the personal-details
// update. Grade is absent on purpose: it is derived from annual income.
type PersonalDetailsInput struct {
	GroupName               string  `json:"group_name" validate:"required,max=200"`
	MobileNo                string  `json:"mobile_no" validate:"required,min=10,max=15"`
	Email                   string  `json:"email" validate:"omitempty"`
	Address                 string  `json:"address" validate:"omitempty,max=500"`
	City                    string  `json:"city" validate:"omitempty,max=100"`
	Occupation              string  `json:"occupation" validate:"omitempty,max=100"`
	LeadSource              string  `json:"lead_source" validate:"omitempty,max=100"`
	AnnualIncome            float64 `json:"annual_income" validate:"omitempty,gte=0"`
	PreferredMeetingAddress string  `json:"preferred_meeting_address" validate:"omitempty,max=500"`
	PreferredMeetingTime    string  `json:"preferred_meeting_time" validate:"omitempty,max=50"`
}

func (in *PersonalDetailsInput) toModel() models.PersonalDetails {
	return models.PersonalDetails{
		GroupName:               in.GroupName,
		MobileNo:                in.MobileNo,
		Email:                   in.Email,
		Address:                 in.Address,
		City:                    in.City,
		Occupation:              in.Occupation,
		LeadSource:              in.LeadSource,
		AnnualIncome:            in.AnnualIncome,
		Grade:                   models.GradeForIncome(in.AnnualIncome),
		PreferredMeetingAddress: in.PreferredMeetingAddress,
		PreferredMeetingTime:    in.PreferredMeetingTime,
	}
}

// CreateSuspect registers a new lead with status "suspect" and an empty
// call history.
func (sc *SuspectController) CreateSuspect(c *fiber.Ctx) error {
	var input PersonalDetailsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Email != "" {
		if err := checkmail.ValidateFormat(input.Email); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
		}
	}

	suspect := models.Suspect{
		Status:          models.StatusSuspect,
		PersonalDetails: input.toModel(),
	}

	if err := sc.DB.Create(&suspect).Error; err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create suspect", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(suspect))
}

// GetSuspects returns all suspects with their assignment link.
func (sc *SuspectController) GetSuspects(c *fiber.Ctx) error {
	var suspects []models.Suspect
	if err := sc.DB.Preload("AssignedTo").Preload("CallTasks").Find(&suspects).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch suspects", err)
	}
	return c.JSON(utils.SuccessResponse(suspects))
}

// GetSuspect returns the full aggregate.
func (sc *SuspectController) GetSuspect(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var suspect models.Suspect
	err := sc.DB.
		Preload("FamilyMembers").
		Preload("InsurancePolicies").
		Preload("Investments").
		Preload("Loans").
		Preload("FuturePriorities").
		Preload("Needs").
		Preload("ProposedPlans").
		Preload("CallTasks").
		Preload("AssignedTo").
		First(&suspect, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Suspect not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch suspect", err)
	}
	return c.JSON(utils.SuccessResponse(suspect))
}

// GetAppointmentDone lists suspects whose latest call task ended in
// "Appointment Done". Evaluated server-side over the call history.
func (sc *SuspectController) GetAppointmentDone(c *fiber.Ctx) error {
	var suspects []models.Suspect
	if err := sc.DB.Preload("CallTasks").Preload("AssignedTo").Find(&suspects).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch suspects", err)
	}

	done := make([]models.Suspect, 0)
	for _, s := range suspects {
		if models.CurrentCallStatus(s.CallTasks) == models.TaskAppointmentDone {
			done = append(done, s)
		}
	}
	return c.JSON(utils.SuccessResponse(done))
}

// UpdateStatus moves a suspect along the lifecycle. Only forward
// transitions pass; same-status updates are no-ops.
func (sc *SuspectController) UpdateStatus(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var suspect models.Suspect
	if err := sc.DB.First(&suspect, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Suspect not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch suspect", err)
	}

	if !models.CanTransition(suspect.Status, input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			"Invalid status transition from "+suspect.Status+" to "+input.Status, nil)
	}

	if suspect.Status != input.Status {
		if err := sc.DB.Model(&suspect).Update("status", input.Status).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update status", err)
		}
	}

	return c.JSON(utils.SuccessResponse(suspect))
}

// UpdatePersonalDetails replaces the personal-details section wholesale
// and recomputes the grade.
func (sc *SuspectController) UpdatePersonalDetails(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var input PersonalDetailsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Email != "" {
		if err := checkmail.ValidateFormat(input.Email); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
		}
	}

	var suspect models.Suspect
	if err := sc.DB.First(&suspect, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Suspect not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch suspect", err)
	}

	suspect.PersonalDetails = input.toModel()
	if err := sc.DB.Save(&suspect).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update personal details", err)
	}

	return c.JSON(utils.SuccessResponse(suspect))
}

type FamilyMemberInput struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Relation     string  `json:"relation" validate:"omitempty,max=50"`
	Occupation   string  `json:"occupation" validate:"omitempty,max=100"`
	AnnualIncome float64 `json:"annual_income" validate:"omitempty,gte=0"`
	Contact      string  `json:"contact" validate:"omitempty,max=15"`
}

// UpdateFamily replaces the family-members section wholesale in one
// transaction.
func (sc *SuspectController) UpdateFamily(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var input struct {
		FamilyMembers []FamilyMemberInput `json:"family_members" validate:"dive"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := sc.requireSuspect(id); err != nil {
		return respondLookupError(c, err)
	}

	members := make([]models.FamilyMember, 0, len(input.FamilyMembers))
	for _, m := range input.FamilyMembers {
		members = append(members, models.FamilyMember{
			SuspectID:    id,
			Name:         m.Name,
			Relation:     m.Relation,
			Occupation:   m.Occupation,
			AnnualIncome: m.AnnualIncome,
			Contact:      m.Contact,
		})
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("suspect_id = ?", id).Delete(&models.FamilyMember{}).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update family members", err)
	}

	return c.JSON(utils.SuccessResponse(members))
}

type InsurancePolicyInput struct {
	Company      string  `json:"company" validate:"omitempty,max=200"`
	PlanName     string  `json:"plan_name" validate:"omitempty,max=200"`
	SumAssured   float64 `json:"sum_assured" validate:"omitempty,gte=0"`
	Premium      float64 `json:"premium" validate:"omitempty,gte=0"`
	PremiumMode  string  `json:"premium_mode" validate:"omitempty,oneof=monthly quarterly half-yearly yearly"`
	StartDate    string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	MaturityDate string  `json:"maturity_date" validate:"omitempty,datetime=2006-01-02"`
}

type InvestmentInput struct {
	Type          string  `json:"type" validate:"omitempty,max=100"`
	Institution   string  `json:"institution" validate:"omitempty,max=200"`
	Amount        float64 `json:"amount" validate:"omitempty,gte=0"`
	MaturityValue float64 `json:"maturity_value" validate:"omitempty,gte=0"`
	MaturityDate  string  `json:"maturity_date" validate:"omitempty,datetime=2006-01-02"`
}

type LoanInput struct {
	Type        string  `json:"type" validate:"omitempty,max=100"`
	Lender      string  `json:"lender" validate:"omitempty,max=200"`
	Principal   float64 `json:"principal" validate:"omitempty,gte=0"`
	Outstanding float64 `json:"outstanding" validate:"omitempty,gte=0"`
	EMI         float64 `json:"emi" validate:"omitempty,gte=0"`
	TenureYears int     `json:"tenure_years" validate:"omitempty,gte=0"`
}

// UpdateFinancial replaces all three financial-info lists wholesale in
// one transaction.
func (sc *SuspectController) UpdateFinancial(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var input struct {
		Insurance   []InsurancePolicyInput `json:"insurance" validate:"dive"`
		Investments []InvestmentInput      `json:"investments" validate:"dive"`
		Loans       []LoanInput            `json:"loans" validate:"dive"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := sc.requireSuspect(id); err != nil {
		return respondLookupError(c, err)
	}

	policies := make([]models.InsurancePolicy, 0, len(input.Insurance))
	for _, p := range input.Insurance {
		policy := models.InsurancePolicy{
			SuspectID:   id,
			Company:     p.Company,
			PlanName:    p.PlanName,
			SumAssured:  p.SumAssured,
			Premium:     p.Premium,
			PremiumMode: p.PremiumMode,
		}
		if p.StartDate != "" {
			d, _ := utils.ParseDate(p.StartDate)
			policy.StartDate = &d
		}
		if p.MaturityDate != "" {
			d, _ := utils.ParseDate(p.MaturityDate)
			policy.MaturityDate = &d
		}
		policies = append(policies, policy)
	}

	investments := make([]models.Investment, 0, len(input.Investments))
	for _, iv := range input.Investments {
		investment := models.Investment{
			SuspectID:     id,
			Type:          iv.Type,
			Institution:   iv.Institution,
			Amount:        iv.Amount,
			MaturityValue: iv.MaturityValue,
		}
		if iv.MaturityDate != "" {
			d, _ := utils.ParseDate(iv.MaturityDate)
			investment.MaturityDate = &d
		}
		investments = append(investments, investment)
	}

	loans := make([]models.Loan, 0, len(input.Loans))
	for _, l := range input.Loans {
		loans = append(loans, models.Loan{
			SuspectID:   id,
			Type:        l.Type,
			Lender:      l.Lender,
			Principal:   l.Principal,
			Outstanding: l.Outstanding,
			EMI:         l.EMI,
			TenureYears: l.TenureYears,
		})
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("suspect_id = ?", id).Delete(&models.InsurancePolicy{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("suspect_id = ?", id).Delete(&models.Investment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("suspect_id = ?", id).Delete(&models.Loan{}).Error; err != nil {
			return err
		}
		if len(policies) > 0 {
			if err := tx.Create(&policies).Error; err != nil {
				return err
			}
		}
		if len(investments) > 0 {
			if err := tx.Create(&investments).Error; err != nil {
				return err
			}
		}
		if len(loans) > 0 {
			if err := tx.Create(&loans).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update financial info", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"insurance":   policies,
		"investments": investments,
		"loans":       loans,
	}))
}

type FuturePriorityInput struct {
	PriorityName string  `json:"priority_name" validate:"required,max=200"`
	Members      string  `json:"members" validate:"omitempty"`
	ApproxAmount float64 `json:"approx_amount" validate:"omitempty,gte=0"`
	Duration     string  `json:"duration" validate:"omitempty,max=50"`
}

type NeedAnswerInput struct {
	Question string `json:"question" validate:"required,max=500"`
	Selected bool   `json:"selected"`
	Answer   string `json:"answer" validate:"omitempty"`
}

// UpdatePriorities replaces the future-priorities and needs sections
// wholesale in one transaction.
func (sc *SuspectController) UpdatePriorities(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var input struct {
		FuturePriorities []FuturePriorityInput `json:"future_priorities" validate:"dive"`
		Needs            []NeedAnswerInput     `json:"needs" validate:"dive"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := sc.requireSuspect(id); err != nil {
		return respondLookupError(c, err)
	}

	priorities := make([]models.FuturePriority, 0, len(input.FuturePriorities))
	for _, p := range input.FuturePriorities {
		priorities = append(priorities, models.FuturePriority{
			SuspectID:    id,
			PriorityName: p.PriorityName,
			Members:      p.Members,
			ApproxAmount: p.ApproxAmount,
			Duration:     p.Duration,
		})
	}

	needs := make([]models.NeedAnswer, 0, len(input.Needs))
	for _, n := range input.Needs {
		needs = append(needs, models.NeedAnswer{
			SuspectID: id,
			Question:  n.Question,
			Selected:  n.Selected,
			Answer:    n.Answer,
		})
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("suspect_id = ?", id).Delete(&models.FuturePriority{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("suspect_id = ?", id).Delete(&models.NeedAnswer{}).Error; err != nil {
			return err
		}
		if len(priorities) > 0 {
			if err := tx.Create(&priorities).Error; err != nil {
				return err
			}
		}
		if len(needs) > 0 {
			if err := tx.Create(&needs).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update priorities", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"future_priorities": priorities,
		"needs":             needs,
	}))
}

type ProposedPlanInput struct {
	PlanName string `json:"plan_name" validate:"required,max=200"`
	Company  string `json:"company" validate:"omitempty,max=200"`
	Product  string `json:"product" validate:"omitempty,max=200"`
	Status   string `json:"status" validate:"omitempty,max=50"`
}

// UpdateProposedPlan replaces the proposed-plan section wholesale.
func (sc *SuspectController) UpdateProposedPlan(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var input struct {
		ProposedPlans []ProposedPlanInput `json:"proposed_plans" validate:"dive"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := sc.requireSuspect(id); err != nil {
		return respondLookupError(c, err)
	}

	plans := make([]models.ProposedPlan, 0, len(input.ProposedPlans))
	for _, p := range input.ProposedPlans {
		plan := models.ProposedPlan{
			SuspectID: id,
			PlanName:  p.PlanName,
			Company:   p.Company,
			Product:   p.Product,
			Status:    p.Status,
		}
		if plan.Status == "" {
			plan.Status = "proposed"
		}
		plans = append(plans, plan)
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("suspect_id = ?", id).Delete(&models.ProposedPlan{}).Error; err != nil {
			return err
		}
		if len(plans) == 0 {
			return nil
		}
		return tx.Create(&plans).Error
	})
	if err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update proposed plans", err)
	}

	return c.JSON(utils.SuccessResponse(plans))
}

// DeleteSuspect hard-deletes the aggregate and every child row.
func (sc *SuspectController) DeleteSuspect(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	if err := sc.requireSuspect(id); err != nil {
		return respondLookupError(c, err)
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.FamilyMember{},
			&models.InsurancePolicy{},
			&models.Investment{},
			&models.Loan{},
			&models.FuturePriority{},
			&models.NeedAnswer{},
			&models.ProposedPlan{},
			&models.CallTask{},
			&models.SuspectAssignment{},
		} {
			if err := tx.Unscoped().Where("suspect_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&models.Suspect{}, id).Error
	})
	if err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete suspect", err)
	}

	sc.Logger.Printf("Deleted suspect %d", id)
	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": id}))
}

// requireSuspect checks existence without loading children.
func (sc *SuspectController) requireSuspect(id uint) error {
	var suspect models.Suspect
	return sc.DB.Select("id").First(&suspect, id).Error
}

func respondLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Suspect not found", nil)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch suspect", err)
}
