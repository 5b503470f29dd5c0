package utils

import (
	"time"

	"github.com/K33ngston/Gamescope/config"
	"github.com/K33ngston/Gamescope/models"
)

// StartSessionCleaner launches a background goroutine that periodically
// deletes expired session rows. Expired sessions are also removed on
// touch by the auth middleware; this sweep only keeps the table from
// accumulating rows for users who never come back.
func StartSessionCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			res := db.Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
			if res.Error != nil {
				if Sugar != nil {
					Sugar.Warnf("session cleaner delete failed: %v", res.Error)
				}
				continue
			}
			if res.RowsAffected > 0 && Sugar != nil {
				Sugar.Infof("session cleaner removed %d expired sessions", res.RowsAffected)
			}
		}
	}()
}
