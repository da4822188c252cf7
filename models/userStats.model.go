package models

import (
	"time"

	"gorm.io/gorm"
)

// UserStats is the per-user running aggregate consumed by the profile and
// leaderboard views. It is updated incrementally inside the session
// completion transaction, never recomputed from scratch on the hot path.
type UserStats struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	TotalSessions  int `json:"total_sessions" gorm:"default:0"`
	TotalQuestions int `json:"total_questions" gorm:"default:0"`
	TotalAttempted int `json:"total_attempted" gorm:"default:0"`
	TotalCorrect   int `json:"total_correct" gorm:"default:0"`

	// Rollups are re-queried over the current calendar window on each
	// completion; cheap at this write volume
	WeeklySessions  int `json:"weekly_sessions" gorm:"default:0"`
	WeeklyCorrect   int `json:"weekly_correct" gorm:"default:0"`
	MonthlySessions int `json:"monthly_sessions" gorm:"default:0"`
	MonthlyCorrect  int `json:"monthly_correct" gorm:"default:0"`

	CurrentStreak    int        `json:"current_streak" gorm:"default:0"`
	LongestStreak    int        `json:"longest_streak" gorm:"default:0"`
	LastActivityDate *time.Time `json:"last_activity_date"`

	RankingPoints float64 `json:"ranking_points" gorm:"default:0"`
}

// Accuracy returns overall correct/attempted as a percentage (0 when nothing attempted)
func (s *UserStats) Accuracy() float64 {
	if s.TotalAttempted == 0 {
		return 0
	}
	return float64(s.TotalCorrect) / float64(s.TotalAttempted) * 100
}
