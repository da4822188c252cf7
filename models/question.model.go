package models

import "gorm.io/gorm"

// Category groups questions into a named bank (e.g. "history", "polity")
type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsDeleted   bool   `gorm:"default:false"`
}

// Question is one multiple-choice question in a category's bank
type Question struct {
	gorm.Model
	CategoryID uint             `json:"category_id" gorm:"index;not null"`
	Topic      string           `json:"topic" gorm:"index"`
	Prompt     string           `json:"prompt" gorm:"not null"`
	Options    []QuestionOption `json:"options" gorm:"foreignKey:QuestionID"`
	// CorrectOptionID is the per-question option id, not a row primary key
	CorrectOptionID int `json:"correct_option_id" gorm:"not null"`
	// CorrectAnswerText duplicates the correct option's text; kept in sync
	// informally by imports and admin edits, so scoring falls back to it
	CorrectAnswerText string  `json:"correct_answer_text"`
	Explanation       string  `json:"explanation"`
	Difficulty        string  `json:"difficulty" gorm:"default:'medium'"` // easy, medium, hard
	Marks             float64 `json:"marks" gorm:"default:1"`
	IsActive          bool    `json:"is_active" gorm:"default:true"`
	IsDeleted         bool    `gorm:"default:false"`
}

// QuestionOption is one answer choice; OptionID is the small integer id
// used by the question bank format (1..n within a question)
type QuestionOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionID   int    `json:"option_id" gorm:"not null"`
	Text       string `json:"text"`
	IsDeleted  bool   `gorm:"default:false"`
}
