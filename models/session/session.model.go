package session

import (
	"time"

	"gorm.io/gorm"
)

// Session statuses
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// Session modes
const (
	ModePractice    = "practice"
	ModeDynamicExam = "dynamic_exam"
)

// Session is one attempt (practice or dynamic exam) by a user at a set of
// questions. Sessions are kept forever for history and leaderboard use.
type Session struct {
	gorm.Model
	SessionID string `json:"session_id" gorm:"uniqueIndex;not null"` // public uuid
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	Mode      string `json:"mode" gorm:"index;not null"` // practice, dynamic_exam
	ExamName  string `json:"exam_name"`
	Category  string `json:"category"` // practice sessions only
	Topic     string `json:"topic"`

	Status          string  `json:"status" gorm:"index;default:'not_started'"`
	TotalQuestions  int     `json:"total_questions"`
	TotalMarks      float64 `json:"total_marks"`
	DurationMinutes int     `json:"duration_minutes"`

	NegativeMarking    bool    `json:"negative_marking" gorm:"default:false"`
	NegativeMarksRatio float64 `json:"negative_marks_ratio" gorm:"default:0"`

	QuestionsAttempted int     `json:"questions_attempted" gorm:"default:0"`
	CorrectAnswers     int     `json:"correct_answers" gorm:"default:0"`
	IncorrectAnswers   int     `json:"incorrect_answers" gorm:"default:0"`
	SkippedQuestions   int     `json:"skipped_questions" gorm:"default:0"`
	MarksObtained      float64 `json:"marks_obtained" gorm:"default:0"`
	// Percentage is signed: heavy negative marking can push it below zero
	Percentage       int `json:"percentage" gorm:"default:0"`
	TimeSpentSeconds int `json:"time_spent_seconds" gorm:"default:0"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Questions []SessionQuestion `json:"questions" gorm:"foreignKey:SessionRef"`
}

// SessionQuestion is a copy of a bank question taken at session build time,
// plus the per-session answer state. Snapshotting decouples scoring from
// later edits to the question bank.
type SessionQuestion struct {
	gorm.Model
	SessionRef uint `json:"-" gorm:"index;not null"` // Session primary key
	QuestionID uint `json:"question_id" gorm:"index;not null"`
	Position   int  `json:"position"`

	Prompt            string  `json:"prompt"`
	OptionsJSON       string  `json:"options_json"` // JSON array of {id, text}
	CorrectOptionID   int     `json:"-"`
	CorrectAnswerText string  `json:"-"`
	Category          string  `json:"category"`
	Topic             string  `json:"topic"`
	Difficulty        string  `json:"difficulty"`
	Marks             float64 `json:"marks"`

	UserAnswer       string  `json:"user_answer"`
	IsCorrect        bool    `json:"is_correct"`
	MarksObtained    float64 `json:"marks_obtained"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

// Attempted reports whether the user submitted anything for this question
func (q *SessionQuestion) Attempted() bool {
	return q.UserAnswer != ""
}
