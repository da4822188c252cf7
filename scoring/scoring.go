// Package scoring is the single answer-validation and marking implementation
// shared by practice sessions and dynamic exams. The server always scores from
// the stored question snapshots; client-computed totals are never trusted.
package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	session "prepdesk/models/session"
)

// Option mirrors one answer choice inside a snapshot's OptionsJSON
type Option struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Summary holds the aggregate result of scoring one session
type Summary struct {
	TotalQuestions     int     `json:"total_questions"`
	QuestionsAttempted int     `json:"questions_attempted"`
	CorrectAnswers     int     `json:"correct_answers"`
	IncorrectAnswers   int     `json:"incorrect_answers"`
	SkippedQuestions   int     `json:"skipped_questions"`
	MarksObtained      float64 `json:"marks_obtained"`
	TotalMarks         float64 `json:"total_marks"`
	Percentage         int     `json:"percentage"`
}

// ParseOptions decodes a snapshot's OptionsJSON. A malformed blob yields an
// empty list, which downgrades validation to the id and legacy-text checks.
func ParseOptions(raw string) []Option {
	var opts []Option
	if raw == "" {
		return opts
	}
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return nil
	}
	return opts
}

// MarshalOptions encodes options for storage in a snapshot
func MarshalOptions(opts []Option) string {
	data, err := json.Marshal(opts)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func optionText(opts []Option, id int) (string, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o.Text, true
		}
	}
	return "", false
}

func sameText(a, b string) bool {
	return b != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ValidateAnswer decides whether a submitted answer is correct. The fallback
// order matters: the question bank's CorrectAnswerText drifts out of sync with
// CorrectOptionID often enough that text comparison has to back up the id check.
//
//  1. submitted parses as an option id equal to CorrectOptionID
//  2. the submitted option's text equals the correct option's text
//  3. the submitted option's text equals the legacy CorrectAnswerText
//
// An empty submission is never correct (callers count it as skipped).
func ValidateAnswer(correctOptionID int, correctAnswerText string, options []Option, submitted string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}

	// Step 1: direct option id match
	submittedText := submitted
	if id, err := strconv.Atoi(submitted); err == nil {
		if id == correctOptionID {
			return true
		}
		// Resolve the chosen option to its text for the fallback checks;
		// an unknown id keeps the raw string
		if text, ok := optionText(options, id); ok {
			submittedText = text
		}
	}

	// Step 2: text of the chosen option vs text of the correct option
	if correctText, ok := optionText(options, correctOptionID); ok && sameText(submittedText, correctText) {
		return true
	}

	// Step 3: legacy correct-answer text field
	return sameText(submittedText, correctAnswerText)
}

// ScoreQuestion validates one snapshot in place and assigns its marks:
// full marks when correct, zero when skipped, and with negative marking a
// penalty of marks*ratio when attempted but wrong.
func ScoreQuestion(q *session.SessionQuestion, negativeMarking bool, negativeMarksRatio float64) {
	if !q.Attempted() {
		q.IsCorrect = false
		q.MarksObtained = 0
		return
	}

	q.IsCorrect = ValidateAnswer(q.CorrectOptionID, q.CorrectAnswerText, ParseOptions(q.OptionsJSON), q.UserAnswer)
	switch {
	case q.IsCorrect:
		q.MarksObtained = q.Marks
	case negativeMarking:
		q.MarksObtained = -(q.Marks * negativeMarksRatio)
	default:
		q.MarksObtained = 0
	}
}

// Score validates and marks every snapshot of s and returns the aggregate.
// The percentage is rounded, not clamped: with heavy negative marking it can
// legitimately go below zero, and the leaderboard math relies on the sign.
func Score(s *session.Session) Summary {
	sum := Summary{TotalQuestions: len(s.Questions)}

	for i := range s.Questions {
		q := &s.Questions[i]
		ScoreQuestion(q, s.NegativeMarking, s.NegativeMarksRatio)

		sum.TotalMarks += q.Marks
		sum.MarksObtained += q.MarksObtained
		switch {
		case !q.Attempted():
			sum.SkippedQuestions++
		case q.IsCorrect:
			sum.CorrectAnswers++
		default:
			sum.IncorrectAnswers++
		}
	}

	sum.QuestionsAttempted = sum.CorrectAnswers + sum.IncorrectAnswers
	if sum.TotalMarks > 0 {
		sum.Percentage = int(math.Round(sum.MarksObtained / sum.TotalMarks * 100))
	}
	return sum
}
