package practiceRoutes

import (
	practiceController "prepdesk/controllers/practice"
	"prepdesk/middleware"
	validators "prepdesk/validators/practice"

	"github.com/gofiber/fiber/v2"
)

// SetupPracticeRoutes sets up all practice session routes
func SetupPracticeRoutes(app *fiber.App, ctl *practiceController.Controller) {
	practiceGroup := app.Group("/api/practice/session")

	practiceGroup.Post("/create", middleware.JWTMiddleware, validators.CreateSession(), ctl.CreateSession)
	practiceGroup.Post("/answer/:sessionId", middleware.JWTMiddleware, validators.SubmitAnswer(), ctl.SubmitAnswer)
	practiceGroup.Post("/complete/:sessionId", middleware.JWTMiddleware, validators.CompleteSession(), ctl.CompleteSession)
	practiceGroup.Get("/history", middleware.JWTMiddleware, ctl.GetHistory)
}
