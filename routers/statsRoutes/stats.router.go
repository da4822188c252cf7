package statsRoutes

import (
	statsController "prepdesk/controllers/stats"
	"prepdesk/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupStatsRoutes sets up the profile aggregate and leaderboard routes
func SetupStatsRoutes(app *fiber.App, ctl *statsController.Controller) {
	statsGroup := app.Group("/api/stats")

	statsGroup.Get("/me", middleware.JWTMiddleware, ctl.GetMyStats)
	statsGroup.Get("/leaderboard", middleware.JWTMiddleware, ctl.GetLeaderboard)
}
