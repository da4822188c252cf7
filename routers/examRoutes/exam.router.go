package examRoutes

import (
	examController "prepdesk/controllers/exam"
	"prepdesk/middleware"
	validators "prepdesk/validators/exam"

	"github.com/gofiber/fiber/v2"
)

// SetupExamRoutes sets up all dynamic exam routes
func SetupExamRoutes(app *fiber.App, ctl *examController.Controller) {
	examGroup := app.Group("/api/exam/dynamic")

	examGroup.Post("/create", middleware.JWTMiddleware, validators.CreateExam(), ctl.CreateExam)
	examGroup.Get("/history", middleware.JWTMiddleware, ctl.GetHistory)
	examGroup.Get("/stats", middleware.JWTMiddleware, ctl.GetStats)
	examGroup.Get("/:sessionId/questions", middleware.JWTMiddleware, ctl.GetQuestions)
	examGroup.Post("/:sessionId/complete", middleware.JWTMiddleware, validators.CompleteExam(), ctl.CompleteExam)
}
