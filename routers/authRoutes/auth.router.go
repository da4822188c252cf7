package authRoutes

import (
	authController "prepdesk/controllers/auth"
	validators "prepdesk/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes sets up signup and login
func SetupAuthRoutes(app *fiber.App, ctl *authController.Controller) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/signup", validators.Signup(), ctl.Signup)
	authGroup.Post("/login", validators.Login(), ctl.Login)
}
