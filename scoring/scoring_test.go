package scoring

import (
	"testing"

	session "prepdesk/models/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fourOptions = []Option{
	{ID: 1, Text: "Delhi"},
	{ID: 2, Text: "Mumbai"},
	{ID: 3, Text: "Kolkata"},
	{ID: 4, Text: "Chennai"},
}

func TestValidateAnswerFallbackChain(t *testing.T) {
	tests := []struct {
		name            string
		correctOptionID int
		correctText     string
		submitted       string
		want            bool
	}{
		{"option id match", 3, "Kolkata", "3", true},
		{"option id mismatch", 3, "Kolkata", "1", false},
		{"raw text matches correct option text", 3, "Kolkata", "kolkata", true},
		{"raw text with whitespace", 3, "Kolkata", "  Kolkata  ", true},
		{"raw text matches legacy field only", 3, "Mumbai", "mumbai", true},
		{"unanswered", 3, "Kolkata", "", false},
		{"whitespace only", 3, "Kolkata", "   ", false},
		{"garbage", 3, "Kolkata", "not an option", false},
		{"unknown option id", 3, "Kolkata", "9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAnswer(tt.correctOptionID, tt.correctText, fourOptions, tt.submitted)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A bank inconsistency: the submitted option's id is wrong by the id check,
// but its text matches the legacy correct-answer field verbatim. The third
// fallback step has to mark it correct.
func TestValidateAnswerLegacyTextInconsistency(t *testing.T) {
	options := []Option{
		{ID: 1, Text: "Akbar"},
		{ID: 2, Text: "Ashoka"},
		{ID: 3, Text: "Chandragupta"},
	}

	got := ValidateAnswer(3, "Ashoka", options, "2")
	assert.True(t, got, "option text matching the legacy field must win via fallback step 3")
}

func TestValidateAnswerResolvedTextBeatsIDMismatch(t *testing.T) {
	// Two options carry the same text under different ids; choosing either
	// counts once the texts line up
	options := []Option{
		{ID: 1, Text: "True"},
		{ID: 2, Text: "true"},
	}

	assert.True(t, ValidateAnswer(1, "True", options, "2"))
}

func newSnapshot(id uint, correctID int, correctText, optionsJSON, answer string, marks float64) session.SessionQuestion {
	return session.SessionQuestion{
		QuestionID:        id,
		CorrectOptionID:   correctID,
		CorrectAnswerText: correctText,
		OptionsJSON:       optionsJSON,
		UserAnswer:        answer,
		Marks:             marks,
	}
}

func TestScoreNegativeMarking(t *testing.T) {
	opts := MarshalOptions(fourOptions)

	// 4 questions, 2 marks each, ratio 0.25: 2 correct, 1 incorrect, 1 skipped
	sess := &session.Session{
		NegativeMarking:    true,
		NegativeMarksRatio: 0.25,
		Questions: []session.SessionQuestion{
			newSnapshot(1, 2, "Mumbai", opts, "2", 2),
			newSnapshot(2, 3, "Kolkata", opts, "3", 2),
			newSnapshot(3, 1, "Delhi", opts, "4", 2),
			newSnapshot(4, 1, "Delhi", opts, "", 2),
		},
	}

	sum := Score(sess)

	assert.Equal(t, 4, sum.TotalQuestions)
	assert.Equal(t, 2, sum.CorrectAnswers)
	assert.Equal(t, 1, sum.IncorrectAnswers)
	assert.Equal(t, 1, sum.SkippedQuestions)
	assert.Equal(t, 3, sum.QuestionsAttempted)
	assert.InDelta(t, 3.5, sum.MarksObtained, 1e-9) // 2 + 2 - 0.5 + 0
	assert.InDelta(t, 8.0, sum.TotalMarks, 1e-9)
	assert.Equal(t, 44, sum.Percentage) // round(3.5/8*100)

	// per-question marks
	assert.InDelta(t, 2.0, sess.Questions[0].MarksObtained, 1e-9)
	assert.InDelta(t, -0.5, sess.Questions[2].MarksObtained, 1e-9)
	assert.Zero(t, sess.Questions[3].MarksObtained, "skipped questions are never penalized")
}

func TestScoreInvariants(t *testing.T) {
	opts := MarshalOptions(fourOptions)

	sess := &session.Session{
		NegativeMarking:    true,
		NegativeMarksRatio: 0.5,
		Questions: []session.SessionQuestion{
			newSnapshot(1, 1, "Delhi", opts, "1", 1),
			newSnapshot(2, 2, "Mumbai", opts, "4", 1),
			newSnapshot(3, 3, "Kolkata", opts, "", 1),
			newSnapshot(4, 4, "Chennai", opts, "bogus", 1),
			newSnapshot(5, 1, "Delhi", opts, "", 1),
		},
	}

	sum := Score(sess)

	assert.Equal(t, sum.TotalQuestions, sum.QuestionsAttempted+sum.SkippedQuestions)
	assert.Equal(t, sum.QuestionsAttempted, sum.CorrectAnswers+sum.IncorrectAnswers)
}

func TestScorePercentageCanGoNegative(t *testing.T) {
	opts := MarshalOptions(fourOptions)

	sess := &session.Session{
		NegativeMarking:    true,
		NegativeMarksRatio: 1,
		Questions: []session.SessionQuestion{
			newSnapshot(1, 1, "Delhi", opts, "2", 2),
			newSnapshot(2, 1, "Delhi", opts, "3", 2),
		},
	}

	sum := Score(sess)

	assert.InDelta(t, -4.0, sum.MarksObtained, 1e-9)
	assert.Equal(t, -100, sum.Percentage, "percentage is signed, never clamped")
}

func TestScoreWithoutNegativeMarking(t *testing.T) {
	opts := MarshalOptions(fourOptions)

	sess := &session.Session{
		Questions: []session.SessionQuestion{
			newSnapshot(1, 1, "Delhi", opts, "3", 2),
		},
	}

	sum := Score(sess)

	require.Equal(t, 1, sum.IncorrectAnswers)
	assert.Zero(t, sum.MarksObtained, "wrong answers cost nothing without negative marking")
	assert.Zero(t, sum.Percentage)
}

func TestScoreQuestionSkippedWithNegativeMarking(t *testing.T) {
	q := newSnapshot(1, 1, "Delhi", MarshalOptions(fourOptions), "", 2)

	ScoreQuestion(&q, true, 0.5)

	assert.False(t, q.IsCorrect)
	assert.Zero(t, q.MarksObtained)
}

func TestParseOptionsMalformed(t *testing.T) {
	assert.Empty(t, ParseOptions(""))
	assert.Empty(t, ParseOptions("not json"))

	opts := ParseOptions(MarshalOptions(fourOptions))
	require.Len(t, opts, 4)
	assert.Equal(t, "Chennai", opts[3].Text)
}
