package main

import (
	"log"

	"prepdesk/config"
	authController "prepdesk/controllers/auth"
	examController "prepdesk/controllers/exam"
	practiceController "prepdesk/controllers/practice"
	statsController "prepdesk/controllers/stats"
	"prepdesk/database"
	authRoutes "prepdesk/routers/authRoutes"
	examRoutes "prepdesk/routers/examRoutes"
	practiceRoutes "prepdesk/routers/practiceRoutes"
	statsRoutes "prepdesk/routers/statsRoutes"
	"prepdesk/services"
	"prepdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	db := database.ConnectDb()

	// Assemble services with their database handle and hand them to the
	// controllers; nothing service-like lives at package level
	statsService := services.NewStatsService(db)
	sessionService := services.NewSessionService(db, statsService, services.NewTimerRegistry())

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app, authController.New(db))
	practiceRoutes.SetupPracticeRoutes(app, practiceController.New(sessionService))
	examRoutes.SetupExamRoutes(app, examController.New(sessionService))
	statsRoutes.SetupStatsRoutes(app, statsController.New(statsService))

	utils.InitializeSessionReaper(db, config.AppConfig.SessionTTLHours)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
