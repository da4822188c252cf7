package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"prepdesk/models"
	session "prepdesk/models/session"
	"prepdesk/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is no longer open")
	ErrNoQuestions     = errors.New("no questions available for the requested selection")
)

// PracticeSpec describes a practice session request
type PracticeSpec struct {
	Category         string `json:"category"`
	Topic            string `json:"topic"`
	QuestionCount    int    `json:"questionCount"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
}

// DistributionEntry says how many questions a dynamic exam draws from one category
type DistributionEntry struct {
	Category         string  `json:"category"`
	Topic            string  `json:"topic"`
	Count            int     `json:"count"`
	MarksPerQuestion float64 `json:"marksPerQuestion"`
}

// ExamSpec describes a dynamic exam request. TotalMarks is a client hint
// only; the stored total is derived from the sampled questions.
type ExamSpec struct {
	ExamName           string              `json:"examName"`
	TotalMarks         float64             `json:"totalMarks"`
	DurationMinutes    int                 `json:"durationMinutes"`
	Distribution       []DistributionEntry `json:"questionDistribution"`
	NegativeMarking    bool                `json:"negativeMarking"`
	NegativeMarksRatio float64             `json:"negativeMarksRatio"`
}

// AnswerSubmission is one per-question answer reported at completion time
type AnswerSubmission struct {
	QuestionID       uint   `json:"questionId"`
	Answer           string `json:"answer"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

// SessionService builds, runs and completes practice and exam sessions
type SessionService struct {
	db     *gorm.DB
	stats  *StatsService
	timers *TimerRegistry
}

func NewSessionService(db *gorm.DB, stats *StatsService, timers *TimerRegistry) *SessionService {
	return &SessionService{db: db, stats: stats, timers: timers}
}

// defaultPracticeCount is used when a practice request omits the question count
const defaultPracticeCount = 10

// CreatePracticeSession samples questions for one category and starts the
// session immediately
func (s *SessionService) CreatePracticeSession(userID uint, spec PracticeSpec) (*session.Session, error) {
	if spec.QuestionCount <= 0 {
		spec.QuestionCount = defaultPracticeCount
	}
	picked, err := s.sampleQuestions(spec.Category, spec.Topic, spec.QuestionCount, 0)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, ErrNoQuestions
	}

	nowTime := time.Now()
	sess := &session.Session{
		SessionID:       uuid.New().String(),
		UserID:          userID,
		Mode:            session.ModePractice,
		Category:        spec.Category,
		Topic:           spec.Topic,
		Status:          session.StatusInProgress,
		DurationMinutes: spec.TimeLimitMinutes,
		StartedAt:       &nowTime,
	}
	attachSnapshots(sess, picked)

	if err := s.db.Create(sess).Error; err != nil {
		return nil, err
	}
	return sess, nil
}

// CreateExamSession assembles a dynamic exam from its question distribution.
// It is persisted not_started; the countdown begins when the questions are
// first fetched.
func (s *SessionService) CreateExamSession(userID uint, spec ExamSpec) (*session.Session, error) {
	var picked []session.SessionQuestion
	for _, entry := range spec.Distribution {
		part, err := s.sampleQuestions(entry.Category, entry.Topic, entry.Count, entry.MarksPerQuestion)
		if err != nil {
			return nil, err
		}
		picked = append(picked, part...)
	}
	if len(picked) == 0 {
		return nil, ErrNoQuestions
	}

	// Second shuffle so the categories interleave instead of appearing in blocks
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	sess := &session.Session{
		SessionID:          uuid.New().String(),
		UserID:             userID,
		Mode:               session.ModeDynamicExam,
		ExamName:           spec.ExamName,
		Status:             session.StatusNotStarted,
		DurationMinutes:    spec.DurationMinutes,
		NegativeMarking:    spec.NegativeMarking,
		NegativeMarksRatio: spec.NegativeMarksRatio,
	}
	attachSnapshots(sess, picked)

	if err := s.db.Create(sess).Error; err != nil {
		return nil, err
	}
	return sess, nil
}

// sampleQuestions draws up to count questions from a category's active pool,
// without replacement. A pool smaller than count yields everything it has;
// short pools are never an error and never padded.
func (s *SessionService) sampleQuestions(categoryName, topic string, count int, marksOverride float64) ([]session.SessionQuestion, error) {
	var category models.Category
	err := s.db.Where("name = ? AND is_active = ? AND is_deleted = ?", categoryName, true, false).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // unknown category contributes an empty pool
	}
	if err != nil {
		return nil, err
	}

	query := s.db.Preload("Options").
		Where("category_id = ? AND is_active = ? AND is_deleted = ?", category.ID, true, false)
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}

	var pool []models.Question
	if err := query.Find(&pool).Error; err != nil {
		return nil, err
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if count < len(pool) {
		pool = pool[:count]
	}

	snapshots := make([]session.SessionQuestion, 0, len(pool))
	for _, q := range pool {
		opts := make([]scoring.Option, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, scoring.Option{ID: o.OptionID, Text: o.Text})
		}

		marks := q.Marks
		if marksOverride > 0 {
			marks = marksOverride
		}

		snapshots = append(snapshots, session.SessionQuestion{
			QuestionID:        q.ID,
			Prompt:            q.Prompt,
			OptionsJSON:       scoring.MarshalOptions(opts),
			CorrectOptionID:   q.CorrectOptionID,
			CorrectAnswerText: q.CorrectAnswerText,
			Category:          categoryName,
			Topic:             q.Topic,
			Difficulty:        q.Difficulty,
			Marks:             marks,
		})
	}
	return snapshots, nil
}

// attachSnapshots numbers the selected questions, resets their answer state
// and fills the session's totals
func attachSnapshots(sess *session.Session, picked []session.SessionQuestion) {
	total := 0.0
	for i := range picked {
		picked[i].Position = i + 1
		picked[i].UserAnswer = ""
		picked[i].IsCorrect = false
		picked[i].MarksObtained = 0
		picked[i].TimeSpentSeconds = 0
		total += picked[i].Marks
	}
	sess.Questions = picked
	sess.TotalQuestions = len(picked)
	sess.TotalMarks = total
}

// GetSession loads a session with its snapshots, scoped to the owning user
func (s *SessionService) GetSession(sessionID string, userID uint) (*session.Session, error) {
	var sess session.Session
	err := s.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("session_id = ? AND user_id = ?", sessionID, userID).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetSessionQuestions returns the assembled question set. The first fetch of
// a not_started exam starts it: status flips to in_progress, the clock is
// stamped and the server-side countdown is armed.
func (s *SessionService) GetSessionQuestions(sessionID string, userID uint) (*session.Session, error) {
	sess, err := s.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	if sess.Status == session.StatusNotStarted {
		nowTime := time.Now()
		res := s.db.Model(&session.Session{}).
			Where("id = ? AND status = ?", sess.ID, session.StatusNotStarted).
			Updates(map[string]interface{}{"status": session.StatusInProgress, "started_at": nowTime})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			sess.Status = session.StatusInProgress
			sess.StartedAt = &nowTime
			s.armTimer(sess)
		}
	}

	return sess, nil
}

// armTimer starts the server-side countdown that force-completes an exam at
// its deadline, scoring whatever answers were recorded by then
func (s *SessionService) armTimer(sess *session.Session) {
	if sess.Mode != session.ModeDynamicExam || sess.DurationMinutes <= 0 {
		return
	}

	budget := sess.DurationMinutes * 60
	sessionID := sess.SessionID
	userID := sess.UserID
	s.timers.Arm(sessionID, budget, func() {
		if _, _, err := s.CompleteSession(sessionID, userID, nil, budget); err != nil {
			log.Printf("[SESSION-TIMER] Auto-completion of session %s failed: %v", sessionID, err)
		}
	})
}

// SubmitAnswer records one answer on an open session's snapshot
func (s *SessionService) SubmitAnswer(sessionID string, userID uint, sub AnswerSubmission) error {
	sess, err := s.GetSession(sessionID, userID)
	if err != nil {
		return err
	}
	if sess.Status != session.StatusInProgress {
		return ErrSessionClosed
	}

	res := s.db.Model(&session.SessionQuestion{}).
		Where("session_ref = ? AND question_id = ?", sess.ID, sub.QuestionID).
		Updates(map[string]interface{}{
			"user_answer":        sub.Answer,
			"time_spent_seconds": sub.TimeSpentSeconds,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("question %d is not part of session %s", sub.QuestionID, sessionID)
	}
	return nil
}

// CompleteSession finalizes a session: it applies the submitted answers to
// the stored snapshots, rescores everything server-side and folds the result
// into the user's aggregates, all in one transaction. A session completes at
// most once; calling again returns the stored result untouched, with
// alreadyCompleted set.
func (s *SessionService) CompleteSession(sessionID string, userID uint, answers []AnswerSubmission, timeSpentSeconds int) (sess *session.Session, alreadyCompleted bool, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var loaded session.Session
		lookupErr := tx.Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).Where("session_id = ? AND user_id = ?", sessionID, userID).First(&loaded).Error
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		if lookupErr != nil {
			return lookupErr
		}
		sess = &loaded

		switch sess.Status {
		case session.StatusCompleted:
			alreadyCompleted = true
			return nil
		case session.StatusAbandoned:
			return ErrSessionClosed
		}

		applyAnswers(sess, answers)
		summary := scoring.Score(sess)

		nowTime := time.Now()
		// Status guard: only an open session may flip to completed, and the
		// conditional update makes sure exactly one caller wins a race
		res := tx.Model(&session.Session{}).
			Where("id = ? AND status IN ?", sess.ID,
				[]string{session.StatusNotStarted, session.StatusInProgress}).
			Updates(map[string]interface{}{
				"status":              session.StatusCompleted,
				"completed_at":        nowTime,
				"questions_attempted": summary.QuestionsAttempted,
				"correct_answers":     summary.CorrectAnswers,
				"incorrect_answers":   summary.IncorrectAnswers,
				"skipped_questions":   summary.SkippedQuestions,
				"marks_obtained":      summary.MarksObtained,
				"percentage":          summary.Percentage,
				"time_spent_seconds":  clampTimeSpent(timeSpentSeconds, sess.DurationMinutes),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost a concurrent completion; leave aggregates alone
			alreadyCompleted = true
			return nil
		}

		for i := range sess.Questions {
			q := &sess.Questions[i]
			if saveErr := tx.Model(&session.SessionQuestion{}).Where("id = ?", q.ID).
				Updates(map[string]interface{}{
					"user_answer":        q.UserAnswer,
					"is_correct":         q.IsCorrect,
					"marks_obtained":     q.MarksObtained,
					"time_spent_seconds": q.TimeSpentSeconds,
				}).Error; saveErr != nil {
				return saveErr
			}
		}

		sess.Status = session.StatusCompleted
		sess.CompletedAt = &nowTime
		sess.QuestionsAttempted = summary.QuestionsAttempted
		sess.CorrectAnswers = summary.CorrectAnswers
		sess.IncorrectAnswers = summary.IncorrectAnswers
		sess.SkippedQuestions = summary.SkippedQuestions
		sess.MarksObtained = summary.MarksObtained
		sess.Percentage = summary.Percentage
		sess.TimeSpentSeconds = clampTimeSpent(timeSpentSeconds, sess.DurationMinutes)

		return s.stats.ApplySessionResult(tx, sess)
	})
	if err != nil {
		return nil, false, err
	}

	s.timers.Disarm(sessionID)
	return sess, alreadyCompleted, nil
}

// applyAnswers copies bulk-submitted answers onto the matching snapshots.
// Answers recorded earlier through SubmitAnswer stay in place unless the
// completion payload overrides them.
func applyAnswers(sess *session.Session, answers []AnswerSubmission) {
	if len(answers) == 0 {
		return
	}
	byQuestion := make(map[uint]AnswerSubmission, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}
	for i := range sess.Questions {
		if a, ok := byQuestion[sess.Questions[i].QuestionID]; ok {
			sess.Questions[i].UserAnswer = a.Answer
			sess.Questions[i].TimeSpentSeconds = a.TimeSpentSeconds
		}
	}
}

// clampTimeSpent bounds the client-reported duration to the session's budget;
// the report is an untrusted hint
func clampTimeSpent(reported, durationMinutes int) int {
	if reported < 0 {
		return 0
	}
	if budget := durationMinutes * 60; budget > 0 && reported > budget {
		return budget
	}
	return reported
}

// SessionHistory lists the user's most recent sessions of one mode
func (s *SessionService) SessionHistory(userID uint, mode string, limit int) ([]session.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []session.Session
	err := s.db.Where("user_id = ? AND mode = ?", userID, mode).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// QuestionView is the client-facing shape of a snapshot: options decoded,
// answer key withheld
type QuestionView struct {
	QuestionID uint             `json:"questionId"`
	Position   int              `json:"position"`
	Prompt     string           `json:"prompt"`
	Options    []scoring.Option `json:"options"`
	Category   string           `json:"category"`
	Topic      string           `json:"topic,omitempty"`
	Difficulty string           `json:"difficulty"`
	Marks      float64          `json:"marks"`
}

// QuestionViews converts a session's snapshots for delivery to the client
func QuestionViews(sess *session.Session) []QuestionView {
	views := make([]QuestionView, 0, len(sess.Questions))
	for _, q := range sess.Questions {
		views = append(views, QuestionView{
			QuestionID: q.QuestionID,
			Position:   q.Position,
			Prompt:     q.Prompt,
			Options:    scoring.ParseOptions(q.OptionsJSON),
			Category:   q.Category,
			Topic:      q.Topic,
			Difficulty: q.Difficulty,
			Marks:      q.Marks,
		})
	}
	return views
}

// ExamStatsSummary aggregates a user's completed dynamic exams
type ExamStatsSummary struct {
	TotalExams         int     `json:"total_exams"`
	AveragePercentage  float64 `json:"average_percentage"`
	BestPercentage     int     `json:"best_percentage"`
	TotalMarksObtained float64 `json:"total_marks_obtained"`
	TotalQuestions     int     `json:"total_questions"`
	TotalCorrect       int     `json:"total_correct"`
}

// ExamStats summarizes the user's completed dynamic exams
func (s *SessionService) ExamStats(userID uint) (*ExamStatsSummary, error) {
	var summary ExamStatsSummary
	err := s.db.Model(&session.Session{}).
		Select(`COUNT(*) AS total_exams,
			COALESCE(AVG(percentage), 0) AS average_percentage,
			COALESCE(MAX(percentage), 0) AS best_percentage,
			COALESCE(SUM(marks_obtained), 0) AS total_marks_obtained,
			COALESCE(SUM(total_questions), 0) AS total_questions,
			COALESCE(SUM(correct_answers), 0) AS total_correct`).
		Where("user_id = ? AND mode = ? AND status = ?", userID, session.ModeDynamicExam, session.StatusCompleted).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
