package examValidator

import (
	"fmt"
	"strings"

	"prepdesk/middleware"

	"github.com/gofiber/fiber/v2"
)

func CreateExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ExamName        string `json:"examName"`
			DurationMinutes int    `json:"durationMinutes"`
			Distribution    []struct {
				Category         string  `json:"category"`
				Count            int     `json:"count"`
				MarksPerQuestion float64 `json:"marksPerQuestion"`
			} `json:"questionDistribution"`
			NegativeMarking    bool    `json:"negativeMarking"`
			NegativeMarksRatio float64 `json:"negativeMarksRatio"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate ExamName
		if strings.TrimSpace(reqData.ExamName) == "" {
			errors["examName"] = "Exam name is required!"
		}

		// Validate DurationMinutes
		if reqData.DurationMinutes < 1 {
			errors["durationMinutes"] = "Duration must be greater than 0!"
		}

		// Validate Distribution
		if len(reqData.Distribution) == 0 {
			errors["questionDistribution"] = "At least one distribution entry is required!"
		}
		for i, entry := range reqData.Distribution {
			if strings.TrimSpace(entry.Category) == "" {
				errors[fmt.Sprintf("questionDistribution[%d].category", i)] = "Category is required!"
			}
			if entry.Count < 1 {
				errors[fmt.Sprintf("questionDistribution[%d].count", i)] = "Count must be greater than 0!"
			}
			if entry.MarksPerQuestion < 0 {
				errors[fmt.Sprintf("questionDistribution[%d].marksPerQuestion", i)] = "Marks must not be negative!"
			}
		}

		// Validate NegativeMarksRatio
		if reqData.NegativeMarking && (reqData.NegativeMarksRatio <= 0 || reqData.NegativeMarksRatio > 1) {
			errors["negativeMarksRatio"] = "Negative marks ratio must be between 0 and 1!"
		}

		// Respond with validation errors if any exist
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func CompleteExam() fiber.Handler {
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
