package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/K33ngston/Gamescope/config"
	"github.com/K33ngston/Gamescope/models"
)

const dateLayout = "2006-01-02"

// Point history action labels.
const (
	ActionReview     = "review"
	ActionDailyBonus = "daily_bonus"
)

// GamificationService owns the per-user gamification record, the points
// audit trail, and badge awards. Writes that touch the record run inside
// a transaction so the record, the history entry, and any new badge
// awards land together.
type GamificationService struct {
	db *gorm.DB
}

// NewGamificationService creates a service bound to a database handle.
func NewGamificationService(db *gorm.DB) *GamificationService {
	return &GamificationService{db: db}
}

// Record returns the user's gamification record, creating a zeroed row on
// first access.
func (g *GamificationService) Record(userID uint) (*models.GamificationRecord, error) {
	return ensureRecord(g.db, userID)
}

func ensureRecord(tx *gorm.DB, userID uint) (*models.GamificationRecord, error) {
	var rec models.GamificationRecord
	if err := tx.Where(&models.GamificationRecord{UserID: userID}).FirstOrCreate(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// PlayerStats is the caller-facing aggregate view.
type PlayerStats struct {
	Points  int      `json:"points"`
	Reviews int      `json:"reviews"`
	Upvotes int      `json:"upvotes"`
	Streak  int      `json:"streak"`
	Badges  []string `json:"badges"`
}

// Stats assembles the stats payload for one user. Review and upvote
// counts come from the reviews table; points and streak from the record.
func (g *GamificationService) Stats(userID uint) (*PlayerStats, error) {
	rec, err := ensureRecord(g.db, userID)
	if err != nil {
		return nil, err
	}

	var reviews int64
	if err := g.db.Model(&models.Review{}).Where("user_id = ?", userID).Count(&reviews).Error; err != nil {
		return nil, err
	}

	var upvotes int64
	if err := g.db.Model(&models.Review{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(helpful_count),0)").Scan(&upvotes).Error; err != nil {
		return nil, err
	}

	badges, err := g.badgeIDs(g.db, userID)
	if err != nil {
		return nil, err
	}

	return &PlayerStats{
		Points:  rec.TotalPoints,
		Reviews: int(reviews),
		Upvotes: int(upvotes),
		Streak:  rec.CurrentStreak,
		Badges:  badges,
	}, nil
}

// EarnedBadge is a badge award joined with its catalog metadata.
type EarnedBadge struct {
	Badge
	EarnedAt time.Time `json:"earned_at"`
}

// EarnedBadges lists the user's badge awards with catalog metadata, in
// award order.
func (g *GamificationService) EarnedBadges(userID uint) ([]EarnedBadge, error) {
	var awards []models.BadgeAward
	if err := g.db.Where("user_id = ?", userID).Order("earned_at ASC, id ASC").Find(&awards).Error; err != nil {
		return nil, err
	}
	earned := make([]EarnedBadge, 0, len(awards))
	for _, a := range awards {
		if b, ok := CatalogEntry(BadgeID(a.Badge)); ok {
			earned = append(earned, EarnedBadge{Badge: b, EarnedAt: a.EarnedAt})
		}
	}
	return earned, nil
}

// DailyBonusResult reports the outcome of a successful claim.
type DailyBonusResult struct {
	Points        int       `json:"points_awarded"`
	Streak        int       `json:"streak"`
	LongestStreak int       `json:"longest_streak"`
	NewBadges     []BadgeID `json:"new_badges,omitempty"`
}

// ClaimDailyBonus grants the fixed daily reward at most once per calendar
// date per user. A claim the day after the previous one extends the
// streak; any gap resets it to 1. The state change is a guarded UPDATE
// conditioned on last_activity_date, so two concurrent claims for the
// same user serialize at the database and the loser observes a conflict.
func (g *GamificationService) ClaimDailyBonus(userID uint, now time.Time) (*DailyBonusResult, error) {
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	reward := config.Get().DailyBonusPoints

	var result DailyBonusResult
	err := g.db.Transaction(func(tx *gorm.DB) error {
		rec, err := ensureRecord(tx, userID)
		if err != nil {
			return err
		}
		if rec.LastActivityDate == today {
			return ErrAlreadyClaimed
		}

		streak := 1
		if rec.LastActivityDate == yesterday {
			streak = rec.CurrentStreak + 1
		}
		longest := rec.LongestStreak
		if streak > longest {
			longest = streak
		}

		update := tx.Model(&models.GamificationRecord{}).
			Where("user_id = ? AND last_activity_date <> ?", userID, today).
			Updates(map[string]interface{}{
				"total_points":       gorm.Expr("total_points + ?", reward),
				"current_streak":     streak,
				"longest_streak":     longest,
				"last_activity_date": today,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			// lost the race to a concurrent claim
			return ErrAlreadyClaimed
		}

		if err := tx.Create(&models.PointsHistoryEntry{
			UserID: userID,
			Action: ActionDailyBonus,
			Points: reward,
		}).Error; err != nil {
			return err
		}

		stats, err := g.badgeStats(tx, userID, streak)
		if err != nil {
			return err
		}
		newBadges, err := g.awardBadges(tx, userID, stats)
		if err != nil {
			return err
		}

		result = DailyBonusResult{
			Points:        reward,
			Streak:        streak,
			LongestStreak: longest,
			NewBadges:     newBadges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// badgeStats gathers the aggregate statistics the badge rules read.
// The streak is passed in because callers already hold the fresh value.
func (g *GamificationService) badgeStats(tx *gorm.DB, userID uint, currentStreak int) (BadgeStats, error) {
	stats := BadgeStats{CurrentStreak: currentStreak}

	var n int64
	if err := tx.Model(&models.Review{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return stats, err
	}
	stats.Reviews = int(n)

	if err := tx.Model(&models.Review{}).Where("user_id = ? AND rating = 5", userID).Count(&n).Error; err != nil {
		return stats, err
	}
	stats.FiveStarReviews = int(n)

	var upvotes int64
	if err := tx.Model(&models.Review{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(helpful_count),0)").Scan(&upvotes).Error; err != nil {
		return stats, err
	}
	stats.Upvotes = int(upvotes)

	// SQL cannot count words, so long-review detection reads the texts back.
	var texts []string
	if err := tx.Model(&models.Review{}).Where("user_id = ?", userID).
		Pluck("review_text", &texts).Error; err != nil {
		return stats, err
	}
	for _, t := range texts {
		if wordCount(t) > 500 {
			stats.LongReviews++
		}
	}

	return stats, nil
}

// awardBadges persists newly unlocked badges and returns their ids. The
// insert is idempotent twice over: already-held badges are filtered out
// first, and the unique (user, badge) index plus ON CONFLICT DO NOTHING
// absorbs anything racing past the filter.
func (g *GamificationService) awardBadges(tx *gorm.DB, userID uint, stats BadgeStats) ([]BadgeID, error) {
	held, err := g.heldBadges(tx, userID)
	if err != nil {
		return nil, err
	}

	earned := eligibleBadges(stats, held)
	for _, id := range earned {
		award := models.BadgeAward{UserID: userID, Badge: string(id), EarnedAt: time.Now()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&award).Error; err != nil {
			return nil, err
		}
	}
	return earned, nil
}

func (g *GamificationService) heldBadges(tx *gorm.DB, userID uint) (map[BadgeID]bool, error) {
	var rows []models.BadgeAward
	if err := tx.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	held := make(map[BadgeID]bool, len(rows))
	for _, r := range rows {
		held[BadgeID(r.Badge)] = true
	}
	return held, nil
}

func (g *GamificationService) badgeIDs(tx *gorm.DB, userID uint) ([]string, error) {
	var ids []string
	if err := tx.Model(&models.BadgeAward{}).Where("user_id = ?", userID).
		Order("earned_at ASC, id ASC").Pluck("badge", &ids).Error; err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
