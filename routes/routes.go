package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "vpcrm/controllers"
	"vpcrm/middleware"
	"vpcrm/models"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	auth.Post("/login", middleware.LoginRateLimiter(), controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentEmployee)
	protectedAuth.Post("/register",
		middleware.RequireRole(models.RoleAdmin, models.RoleHR),
		controller.Register)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, hub *controller.AssignmentHub) {
	suspectController := controller.NewSuspectController(db, log.New(os.Stdout, "SUSPECT: ", log.LstdFlags))
	callTaskController := controller.NewCallTaskController(db, log.New(os.Stdout, "CALLTASK: ", log.LstdFlags))
	telecallerController := controller.NewTelecallerController(db, log.New(os.Stdout, "TELECALLER: ", log.LstdFlags), hub)
	templateController := controller.NewTemplateController(db, log.New(os.Stdout, "TEMPLATE: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	api := app.Group("/api", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Suspect lifecycle
	suspect := api.Group("/suspect")
	suspect.Post("/create", suspectController.CreateSuspect)
	suspect.Get("/all", suspectController.GetSuspects)
	suspect.Get("/appointment-done", suspectController.GetAppointmentDone)
	suspect.Get("/:id", suspectController.GetSuspect)
	suspect.Put("/update/status/:id", suspectController.UpdateStatus)
	suspect.Put("/update/personaldetails/:id", suspectController.UpdatePersonalDetails)
	suspect.Put("/:id/family", suspectController.UpdateFamily)
	suspect.Put("/:id/financial", suspectController.UpdateFinancial)
	suspect.Put("/:id/priorities", suspectController.UpdatePriorities)
	suspect.Put("/:id/proposed-plan", suspectController.UpdateProposedPlan)
	suspect.Delete("/delete/:id", suspectController.DeleteSuspect)

	// Call-task workflow
	suspect.Post("/:id/call-task", callTaskController.RecordCallTask)
	suspect.Get("/:id/call-tasks", callTaskController.GetCallTasks)

	// Assignment workflow
	telecaller := api.Group("/telecaller")
	telecaller.Post("/assign-suspects",
		middleware.RequireRole(models.RoleAdmin, models.RoleHR),
		telecallerController.AssignSuspects)
	telecaller.Get("/assignments", telecallerController.GetAssignments)
	telecaller.Get("/available", telecallerController.GetAvailable)
	telecaller.Get("/:id/assigned-suspects", telecallerController.GetAssignedSuspects)
	telecaller.Get("/:id/todays-active", telecallerController.GetTodaysActive)
	telecaller.Get("/:id/date/:date", telecallerController.GetByDate)
	telecaller.Get("/:id/stats", telecallerController.GetStats)

	// Task templates
	template := api.Group("/task-template", middleware.RequireRole(models.RoleAdmin, models.RoleHR))
	template.Post("/create", templateController.CreateTemplate)
	template.Get("/all", templateController.GetTemplates)
	template.Get("/:id", templateController.GetTemplate)
	template.Delete("/delete/:id", templateController.DeleteTemplate)
	template.Post("/:id/assign", templateController.AssignTemplate)

	taskAssignment := api.Group("/task-assignment")
	taskAssignment.Get("/employee/:id", templateController.GetEmployeeTaskAssignments)
	taskAssignment.Put("/:id/status", templateController.UpdateTaskAssignmentStatus)

	// Dashboards
	dashboard := api.Group("/dashboard", middleware.RequireRole(models.RoleAdmin, models.RoleHR, models.RoleRM))
	dashboard.Get("/overview", dashboardController.GetOverview)
	dashboard.Get("/call-outcomes", dashboardController.GetCallOutcomes)

	// Live assignment feed
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/assignments", websocket.New(hub.HandleAssignmentFeed))
}
