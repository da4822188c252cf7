package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"prepdesk/database"
	"prepdesk/models"
	session "prepdesk/models/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "prepdesk.db")), &gorm.Config{})
	require.NoError(t, err)

	database.RunMigrations(db)
	return db
}

func newTestServices(db *gorm.DB) (*SessionService, *StatsService) {
	stats := NewStatsService(db)
	return NewSessionService(db, stats, NewTimerRegistry()), stats
}

func seedUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()

	user := models.User{Name: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

// seedCategory inserts count questions whose correct option is always id 2
// with text "Right <n>"
func seedCategory(t *testing.T, db *gorm.DB, name string, count int) {
	t.Helper()

	category := models.Category{Name: name, IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	for i := 1; i <= count; i++ {
		q := models.Question{
			CategoryID:        category.ID,
			Prompt:            fmt.Sprintf("%s question %d", name, i),
			CorrectOptionID:   2,
			CorrectAnswerText: fmt.Sprintf("Right %d", i),
			Difficulty:        "medium",
			Marks:             1,
			IsActive:          true,
			Options: []models.QuestionOption{
				{OptionID: 1, Text: fmt.Sprintf("Wrong A %d", i)},
				{OptionID: 2, Text: fmt.Sprintf("Right %d", i)},
				{OptionID: 3, Text: fmt.Sprintf("Wrong B %d", i)},
				{OptionID: 4, Text: fmt.Sprintf("Wrong C %d", i)},
			},
		}
		require.NoError(t, db.Create(&q).Error)
	}
}

func TestCreatePracticeSessionSamplesWithoutReplacement(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 10)

	sess, err := svc.CreatePracticeSession(userID, PracticeSpec{
		Category:         "history",
		QuestionCount:    5,
		TimeLimitMinutes: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, session.StatusInProgress, sess.Status)
	assert.NotEmpty(t, sess.SessionID)
	assert.NotNil(t, sess.StartedAt)
	assert.Equal(t, 5, sess.TotalQuestions)
	require.Len(t, sess.Questions, 5)

	seen := make(map[uint]bool)
	for _, q := range sess.Questions {
		assert.False(t, seen[q.QuestionID], "question %d sampled twice", q.QuestionID)
		seen[q.QuestionID] = true
		assert.Empty(t, q.UserAnswer)
		assert.False(t, q.IsCorrect)
		assert.Zero(t, q.MarksObtained)
	}
}

func TestCreatePracticeSessionShortPool(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 5)

	// asking for more than the pool holds yields everything available
	sess, err := svc.CreatePracticeSession(userID, PracticeSpec{
		Category:         "history",
		QuestionCount:    10,
		TimeLimitMinutes: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, sess.TotalQuestions)
	assert.Len(t, sess.Questions, 5)
}

func TestCreatePracticeSessionUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")

	_, err := svc.CreatePracticeSession(userID, PracticeSpec{
		Category:         "no-such-category",
		QuestionCount:    5,
		TimeLimitMinutes: 10,
	})
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestCreateExamSessionDistribution(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 8)
	seedCategory(t, db, "polity", 8)

	sess, err := svc.CreateExamSession(userID, ExamSpec{
		ExamName:        "Mock Test 1",
		DurationMinutes: 30,
		Distribution: []DistributionEntry{
			{Category: "history", Count: 4, MarksPerQuestion: 2},
			{Category: "polity", Count: 3, MarksPerQuestion: 1},
		},
		NegativeMarking:    true,
		NegativeMarksRatio: 0.25,
	})
	require.NoError(t, err)

	assert.Equal(t, session.StatusNotStarted, sess.Status)
	assert.Nil(t, sess.StartedAt)
	assert.Equal(t, 7, sess.TotalQuestions)
	assert.InDelta(t, 11.0, sess.TotalMarks, 1e-9) // 4*2 + 3*1

	byCategory := make(map[string]int)
	for _, q := range sess.Questions {
		byCategory[q.Category]++
	}
	assert.Equal(t, 4, byCategory["history"])
	assert.Equal(t, 3, byCategory["polity"])
}

func TestGetSessionQuestionsStartsExam(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 5)

	created, err := svc.CreateExamSession(userID, ExamSpec{
		ExamName:        "Mock Test 1",
		DurationMinutes: 30,
		Distribution:    []DistributionEntry{{Category: "history", Count: 3, MarksPerQuestion: 1}},
	})
	require.NoError(t, err)

	sess, err := svc.GetSessionQuestions(created.SessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusInProgress, sess.Status)
	assert.NotNil(t, sess.StartedAt)

	// second fetch keeps the original start
	again, err := svc.GetSessionQuestions(created.SessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusInProgress, again.Status)

	svc.timers.Disarm(created.SessionID)
}

func TestCompleteSessionScoresServerSide(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 4)

	created, err := svc.CreateExamSession(userID, ExamSpec{
		ExamName:        "Mock Test 1",
		DurationMinutes: 30,
		Distribution:    []DistributionEntry{{Category: "history", Count: 4, MarksPerQuestion: 2}},
		NegativeMarking: true, NegativeMarksRatio: 0.25,
	})
	require.NoError(t, err)

	started, err := svc.GetSessionQuestions(created.SessionID, userID)
	require.NoError(t, err)

	// 2 correct, 1 incorrect, 1 skipped
	answers := []AnswerSubmission{
		{QuestionID: started.Questions[0].QuestionID, Answer: "2", TimeSpentSeconds: 30},
		{QuestionID: started.Questions[1].QuestionID, Answer: "2", TimeSpentSeconds: 40},
		{QuestionID: started.Questions[2].QuestionID, Answer: "3", TimeSpentSeconds: 50},
	}

	sess, already, err := svc.CompleteSession(created.SessionID, userID, answers, 600)
	require.NoError(t, err)
	assert.False(t, already)

	assert.Equal(t, session.StatusCompleted, sess.Status)
	assert.NotNil(t, sess.CompletedAt)
	assert.Equal(t, 2, sess.CorrectAnswers)
	assert.Equal(t, 1, sess.IncorrectAnswers)
	assert.Equal(t, 1, sess.SkippedQuestions)
	assert.Equal(t, 3, sess.QuestionsAttempted)
	assert.InDelta(t, 3.5, sess.MarksObtained, 1e-9)
	assert.Equal(t, 44, sess.Percentage)
	assert.Equal(t, 600, sess.TimeSpentSeconds)

	// totals always add up
	assert.Equal(t, sess.TotalQuestions, sess.QuestionsAttempted+sess.SkippedQuestions)
	assert.Equal(t, sess.QuestionsAttempted, sess.CorrectAnswers+sess.IncorrectAnswers)

	// the scored snapshots were persisted
	var stored []session.SessionQuestion
	require.NoError(t, db.Where("session_ref = ?", sess.ID).Order("position ASC").Find(&stored).Error)
	correct := 0
	for _, q := range stored {
		if q.IsCorrect {
			correct++
		}
	}
	assert.Equal(t, 2, correct)
}

func TestCompleteSessionClampsReportedTime(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 2)

	created, err := svc.CreatePracticeSession(userID, PracticeSpec{
		Category: "history", QuestionCount: 2, TimeLimitMinutes: 1,
	})
	require.NoError(t, err)

	// a manipulated report cannot exceed the session's budget
	sess, _, err := svc.CompleteSession(created.SessionID, userID, nil, 99999)
	require.NoError(t, err)
	assert.Equal(t, 60, sess.TimeSpentSeconds)
}

func TestCompleteSessionIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc, stats := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 3)

	created, err := svc.CreatePracticeSession(userID, PracticeSpec{
		Category: "history", QuestionCount: 3, TimeLimitMinutes: 10,
	})
	require.NoError(t, err)

	answers := []AnswerSubmission{
		{QuestionID: created.Questions[0].QuestionID, Answer: "2"},
	}

	first, already, err := svc.CompleteSession(created.SessionID, userID, answers, 120)
	require.NoError(t, err)
	require.False(t, already)

	before, err := stats.GetUserStats(userID)
	require.NoError(t, err)
	require.Equal(t, 1, before.TotalSessions)

	// a second completion returns the stored result and leaves the
	// aggregates untouched
	second, already, err := svc.CompleteSession(created.SessionID, userID, nil, 999)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, first.CorrectAnswers, second.CorrectAnswers)
	assert.Equal(t, first.Percentage, second.Percentage)
	assert.Equal(t, first.TimeSpentSeconds, second.TimeSpentSeconds)

	after, err := stats.GetUserStats(userID)
	require.NoError(t, err)
	assert.Equal(t, before.TotalSessions, after.TotalSessions)
	assert.Equal(t, before.TotalCorrect, after.TotalCorrect)
	assert.InDelta(t, before.RankingPoints, after.RankingPoints, 1e-9)
}

func TestSubmitAnswerOnClosedSession(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 2)

	created, err := svc.CreatePracticeSession(userID, PracticeSpec{
		Category: "history", QuestionCount: 2, TimeLimitMinutes: 10,
	})
	require.NoError(t, err)

	_, _, err = svc.CompleteSession(created.SessionID, userID, nil, 10)
	require.NoError(t, err)

	err = svc.SubmitAnswer(created.SessionID, userID, AnswerSubmission{
		QuestionID: created.Questions[0].QuestionID,
		Answer:     "2",
	})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSubmitAnswerThenCompleteWithoutBulkAnswers(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 2)

	created, err := svc.CreatePracticeSession(userID, PracticeSpec{
		Category: "history", QuestionCount: 2, TimeLimitMinutes: 10,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SubmitAnswer(created.SessionID, userID, AnswerSubmission{
		QuestionID:       created.Questions[0].QuestionID,
		Answer:           "2",
		TimeSpentSeconds: 15,
	}))

	// incremental answers survive a completion with an empty payload
	sess, _, err := svc.CompleteSession(created.SessionID, userID, nil, 15)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.CorrectAnswers)
	assert.Equal(t, 1, sess.SkippedQuestions)
}

func TestSessionNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")

	_, err := svc.GetSession("missing-id", userID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, _, err = svc.CompleteSession("missing-id", userID, nil, 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionOwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	owner := seedUser(t, db, "asha")
	other := seedUser(t, db, "ravi")
	seedCategory(t, db, "history", 2)

	created, err := svc.CreatePracticeSession(owner, PracticeSpec{
		Category: "history", QuestionCount: 2, TimeLimitMinutes: 10,
	})
	require.NoError(t, err)

	_, err = svc.GetSession(created.SessionID, other)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExamStatsSummary(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(db)
	userID := seedUser(t, db, "asha")
	seedCategory(t, db, "history", 4)

	for i := 0; i < 2; i++ {
		created, err := svc.CreateExamSession(userID, ExamSpec{
			ExamName:        "Mock",
			DurationMinutes: 30,
			Distribution:    []DistributionEntry{{Category: "history", Count: 2, MarksPerQuestion: 1}},
		})
		require.NoError(t, err)

		answers := []AnswerSubmission{
			{QuestionID: created.Questions[0].QuestionID, Answer: "2"},
		}
		_, _, err = svc.CompleteSession(created.SessionID, userID, answers, 60)
		require.NoError(t, err)
	}

	summary, err := svc.ExamStats(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalExams)
	assert.Equal(t, 50, summary.BestPercentage)
	assert.InDelta(t, 2.0, summary.TotalMarksObtained, 1e-9)
	assert.Equal(t, 4, summary.TotalQuestions)
	assert.Equal(t, 2, summary.TotalCorrect)
}
