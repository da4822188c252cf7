package practiceValidator

import (
	"strings"

	"prepdesk/middleware"

	"github.com/gofiber/fiber/v2"
)

func CreateSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Category         string `json:"category"`
			QuestionCount    int    `json:"questionCount"`
			TimeLimitMinutes int    `json:"timeLimitMinutes"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Category
		if strings.TrimSpace(reqData.Category) == "" {
			errors["category"] = "Category is required!"
		}

		// Validate QuestionCount (optional, defaults server-side)
		if reqData.QuestionCount < 0 {
			errors["questionCount"] = "Question count must not be negative!"
		} else if reqData.QuestionCount > 100 {
			errors["questionCount"] = "Question count must not exceed 100!"
		}

		// Validate TimeLimitMinutes
		if reqData.TimeLimitMinutes < 1 {
			errors["timeLimitMinutes"] = "Time limit must be greater than 0!"
		}

		// Respond with validation errors if any exist
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func SubmitAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			QuestionID       uint `json:"questionId"`
			TimeSpentSeconds int  `json:"timeSpentSeconds"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.QuestionID == 0 {
			errors["questionId"] = "Question id is required!"
		}
		if reqData.TimeSpentSeconds < 0 {
			errors["timeSpentSeconds"] = "Time spent must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func CompleteSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []struct {
				QuestionID uint `json:"questionId"`
			} `json:"answers"`
			TimeSpentSeconds int `json:"timeSpentSeconds"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.TimeSpentSeconds < 0 {
			errors["timeSpentSeconds"] = "Time spent must not be negative!"
		}
		for _, a := range reqData.Answers {
			if a.QuestionID == 0 {
				errors["answers"] = "Each answer needs a question id!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}
