package services

import (
	"errors"
	"time"

	"prepdesk/models"
	session "prepdesk/models/session"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// StatsService maintains the per-user aggregates behind the profile and
// leaderboard views
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// LeaderboardEntry is one row of the ranking-points leaderboard
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserID        uint    `json:"user_id"`
	Name          string  `json:"name"`
	RankingPoints float64 `json:"ranking_points"`
	TotalSessions int     `json:"total_sessions"`
	CurrentStreak int     `json:"current_streak"`
}

// ApplySessionResult folds one freshly completed session into the owner's
// aggregate. It runs inside the completion transaction so a completion and
// its stats update commit or fail together, and it is called at most once per
// session because the caller's status guard admits only one completion.
func (s *StatsService) ApplySessionResult(tx *gorm.DB, sess *session.Session) error {
	var stats models.UserStats
	err := tx.Where("user_id = ?", sess.UserID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{UserID: sess.UserID}
	} else if err != nil {
		return err
	}

	stats.TotalSessions++
	stats.TotalQuestions += sess.TotalQuestions
	stats.TotalAttempted += sess.QuestionsAttempted
	stats.TotalCorrect += sess.CorrectAnswers

	updateStreak(&stats, time.Now())

	// Positive marks feed the leaderboard; a net-negative exam earns nothing
	if sess.MarksObtained > 0 {
		stats.RankingPoints += sess.MarksObtained
	}

	// Rollups re-query the calendar windows instead of incrementing, so a
	// window rollover corrects itself on the next completion. The session
	// being committed is already marked completed in this transaction.
	weekly, err := s.rollup(tx, sess.UserID, now.BeginningOfWeek())
	if err != nil {
		return err
	}
	monthly, err := s.rollup(tx, sess.UserID, now.BeginningOfMonth())
	if err != nil {
		return err
	}
	stats.WeeklySessions = weekly.Sessions
	stats.WeeklyCorrect = weekly.Correct
	stats.MonthlySessions = monthly.Sessions
	stats.MonthlyCorrect = monthly.Correct

	return tx.Save(&stats).Error
}

type rollupCounts struct {
	Sessions int
	Correct  int
}

func (s *StatsService) rollup(tx *gorm.DB, userID uint, since time.Time) (rollupCounts, error) {
	var r rollupCounts
	err := tx.Model(&session.Session{}).
		Select("COUNT(*) AS sessions, COALESCE(SUM(correct_answers), 0) AS correct").
		Where("user_id = ? AND status = ? AND completed_at >= ?", userID, session.StatusCompleted, since).
		Scan(&r).Error
	return r, err
}

// updateStreak advances the consecutive-day counters: activity yesterday
// extends the streak, activity today leaves it alone, anything older resets
// it to 1
func updateStreak(stats *models.UserStats, at time.Time) {
	today := dateOnly(at)

	switch {
	case stats.LastActivityDate == nil:
		stats.CurrentStreak = 1
	case dateOnly(*stats.LastActivityDate).Equal(today):
		// second session today, streak unchanged
	case dateOnly(*stats.LastActivityDate).Equal(today.AddDate(0, 0, -1)):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}

	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	stats.LastActivityDate = &today
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetUserStats returns the user's aggregate, or an empty one if nothing has
// been completed yet
func (s *StatsService) GetUserStats(userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetLeaderboard returns the top users by ranking points, 1-indexed
func (s *StatsService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []LeaderboardEntry
	err := s.db.Model(&models.UserStats{}).
		Select("user_stats.user_id, users.name, user_stats.ranking_points, user_stats.total_sessions, user_stats.current_streak").
		Joins("JOIN users ON users.id = user_stats.user_id").
		Where("users.is_deleted = ?", false).
		Order("user_stats.ranking_points DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
