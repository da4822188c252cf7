package examController

import (
	"errors"
	"log"

	"prepdesk/middleware"
	session "prepdesk/models/session"
	"prepdesk/services"

	"github.com/gofiber/fiber/v2"
)

// Controller handles dynamic exam routes
type Controller struct {
	sessions *services.SessionService
}

func New(sessions *services.SessionService) *Controller {
	return &Controller{sessions: sessions}
}

// CreateExam assembles a dynamic exam from its question distribution.
// Questions are not returned here; the exam starts when they are fetched.
func (ctl *Controller) CreateExam(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var spec services.ExamSpec
	if err := c.BodyParser(&spec); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	sess, err := ctl.sessions.CreateExamSession(userID, spec)
	if err != nil {
		if errors.Is(err, services.ErrNoQuestions) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No questions found for the requested distribution!", nil)
		}
		log.Printf("Error creating dynamic exam: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam created!", fiber.Map{
		"sessionId":       sess.SessionID,
		"examName":        sess.ExamName,
		"status":          sess.Status,
		"totalQuestions":  sess.TotalQuestions,
		"totalMarks":      sess.TotalMarks,
		"durationMinutes": sess.DurationMinutes,
	})
}

// GetQuestions returns the assembled question set; the first fetch starts the exam
func (ctl *Controller) GetQuestions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	sessionID := c.Params("sessionId")

	sess, err := ctl.sessions.GetSessionQuestions(sessionID, userID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		}
		log.Printf("Error fetching exam questions: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", fiber.Map{
		"sessionId":          sess.SessionID,
		"examName":           sess.ExamName,
		"status":             sess.Status,
		"durationMinutes":    sess.DurationMinutes,
		"negativeMarking":    sess.NegativeMarking,
		"negativeMarksRatio": sess.NegativeMarksRatio,
		"questions":          services.QuestionViews(sess),
	})
}

// CompleteExam finalizes the exam. The body may carry client-computed totals
// but the server rescores everything from the stored snapshots; only the
// answers and reported time are read.
func (ctl *Controller) CompleteExam(c *fiber.Ctx) error {
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
			log.Printf("Error completing exam: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete exam!", nil)
		}
	}

	message := "Exam completed!"
	if already {
		message = "Exam was already completed."
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"sessionId":          sess.SessionID,
		"examName":           sess.ExamName,
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

// GetHistory lists the user's recent dynamic exams
func (ctl *Controller) GetHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sessions, err := ctl.sessions.SessionHistory(userID, session.ModeDynamicExam, c.QueryInt("limit", 50))
	if err != nil {
		log.Printf("Error fetching exam history: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "History fetched successfully!", fiber.Map{
		"sessions": sessions,
	})
}

// GetStats summarizes the user's completed dynamic exams
func (ctl *Controller) GetStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	summary, err := ctl.sessions.ExamStats(userID)
	if err != nil {
		log.Printf("Error fetching exam stats: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", summary)
}
