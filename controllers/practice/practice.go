package practiceController

import (
	"errors"
	"log"

	"prepdesk/middleware"
	session "prepdesk/models/session"
	"prepdesk/services"

	"github.com/gofiber/fiber/v2"
)

// Controller handles practice session routes
type Controller struct {
	sessions *services.SessionService
}

func New(sessions *services.SessionService) *Controller {
	return &Controller{sessions: sessions}
}

// CreateSession builds a practice session for one category and starts it immediately
func (ctl *Controller) CreateSession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var spec services.PracticeSpec
	if err := c.BodyParser(&spec); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	sess, err := ctl.sessions.CreatePracticeSession(userID, spec)
	if err != nil {
		if errors.Is(err, services.ErrNoQuestions) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No questions found for this category!", nil)
		}
		log.Printf("Error creating practice session: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create practice session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Practice session created!", fiber.Map{
		"sessionId":        sess.SessionID,
		"status":           sess.Status,
		"totalQuestions":   sess.TotalQuestions,
		"timeLimitMinutes": sess.DurationMinutes,
		"questions":        services.QuestionViews(sess),
	})
}

// SubmitAnswer records one answer while the session is running
func (ctl *Controller) SubmitAnswer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	sessionID := c.Params("sessionId")

	var sub services.AnswerSubmission
	if err := c.BodyParser(&sub); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if err := ctl.sessions.SubmitAnswer(sessionID, userID, sub); err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		case errors.Is(err, services.ErrSessionClosed):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Session is no longer open!", nil)
		default:
			log.Printf("Error submitting answer: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit answer!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer recorded!", nil)
}

// CompleteSession scores the session from the stored snapshots and returns the summary
func (ctl *Controller) CompleteSession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	sessionID := c.Params("sessionId")

	reqData := new(struct {
		Answers          []services.AnswerSubmission `json:"answers"`
		TimeSpentSeconds int                         `json:"timeSpentSeconds"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	sess, already, err := ctl.sessions.CompleteSession(sessionID, userID, reqData.Answers, reqData.TimeSpentSeconds)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		case errors.Is(err, services.ErrSessionClosed):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Session is no longer open!", nil)
		default:
			log.Printf("Error completing practice session: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete session!", nil)
		}
	}

	message := "Session completed!"
	if already {
		message = "Session was already completed."
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"sessionId":          sess.SessionID,
		"totalQuestions":     sess.TotalQuestions,
		"questionsAttempted": sess.QuestionsAttempted,
		"correctAnswers":     sess.CorrectAnswers,
		"incorrectAnswers":   sess.IncorrectAnswers,
		"skippedQuestions":   sess.SkippedQuestions,
		"marksObtained":      sess.MarksObtained,
		"totalMarks":         sess.TotalMarks,
		"percentage":         sess.Percentage,
		"timeSpentSeconds":   sess.TimeSpentSeconds,
	})
}

// GetHistory lists the user's recent practice sessions
func (ctl *Controller) GetHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sessions, err := ctl.sessions.SessionHistory(userID, session.ModePractice, c.QueryInt("limit", 50))
	if err != nil {
		log.Printf("Error fetching practice history: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "History fetched successfully!", fiber.Map{
		"sessions": sessions,
	})
}
