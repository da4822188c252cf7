package utils

import (
	"log"
	"time"

	session "prepdesk/models/session"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeSessionReaper sets up the hourly sweep that collects sessions
// left in_progress past their TTL. Navigating away mid-session leaves the row
// open forever otherwise; abandoned sessions never reach the user aggregates.
func InitializeSessionReaper(db *gorm.DB, ttlHours int) {
	log.Println("[SESSION-REAPER] Initializing session reaper...")

	c := cron.New()

	// Run at the top of every hour
	c.AddFunc("0 * * * *", func() {
		ReapAbandonedSessions(db, ttlHours)
	})

	c.Start()
	log.Printf("[SESSION-REAPER] Session reaper started - sweeps hourly, TTL %dh", ttlHours)
}

// ReapAbandonedSessions marks stale open sessions as abandoned
func ReapAbandonedSessions(db *gorm.DB, ttlHours int) {
	cutoff := time.Now().Add(-time.Duration(ttlHours) * time.Hour)

	result := db.Model(&session.Session{}).
		Where("status IN ? AND updated_at < ?",
			[]string{session.StatusNotStarted, session.StatusInProgress}, cutoff).
		Update("status", session.StatusAbandoned)

	if result.Error != nil {
		log.Printf("[SESSION-REAPER] Error reaping sessions: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[SESSION-REAPER] Marked %d stale sessions as abandoned", result.RowsAffected)
	}
}
