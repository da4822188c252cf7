package statsController

import (
	"log"

	"prepdesk/middleware"
	"prepdesk/services"

	"github.com/gofiber/fiber/v2"
)

// Controller serves the profile aggregate and the leaderboard
type Controller struct {
	stats *services.StatsService
}

func New(stats *services.StatsService) *Controller {
	return &Controller{stats: stats}
}

// GetMyStats returns the calling user's running aggregate
func (ctl *Controller) GetMyStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	stats, err := ctl.stats.GetUserStats(userID)
	if err != nil {
		log.Printf("Error fetching user stats: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", fiber.Map{
		"stats":    stats,
		"accuracy": stats.Accuracy(),
	})
}

// GetLeaderboard returns the top users by ranking points
func (ctl *Controller) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := ctl.stats.GetLeaderboard(c.QueryInt("limit", 10))
	if err != nil {
		log.Printf("Error fetching leaderboard: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch leaderboard!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Leaderboard fetched successfully!", fiber.Map{
		"leaderboard": entries,
	})
}
