package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/K33ngston/Gamescope/models"
)

// SubmitReview persists a review and runs the scoring pipeline: the
// review row, the points-history entry, the record update, and the badge
// re-evaluation commit or roll back together. Input validation (rating
// range, empty text) is the controller's responsibility.
func (g *GamificationService) SubmitReview(userID uint, gameName string, rating int, text string) (*models.Review, PointsBreakdown, []BadgeID, error) {
	breakdown := ScoreBreakdown(rating, text)

	var review models.Review
	var newBadges []BadgeID
	err := g.db.Transaction(func(tx *gorm.DB) error {
		rec, err := ensureRecord(tx, userID)
		if err != nil {
			return err
		}

		review = models.Review{
			UserID:       userID,
			GameName:     gameName,
			Rating:       rating,
			ReviewText:   text,
			PointsEarned: breakdown.Total,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.PointsHistoryEntry{
			UserID: userID,
			Action: ActionReview,
			Points: breakdown.Total,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.GamificationRecord{}).
			Where("user_id = ?", userID).
			UpdateColumn("total_points", gorm.Expr("total_points + ?", breakdown.Total)).Error; err != nil {
			return err
		}

		stats, err := g.badgeStats(tx, userID, rec.CurrentStreak)
		if err != nil {
			return err
		}
		newBadges, err = g.awardBadges(tx, userID, stats)
		return err
	})
	if err != nil {
		return nil, breakdown, nil, err
	}
	return &review, breakdown, newBadges, nil
}

// VoteHelpful records a helpful-vote and bumps the review's counter.
// One vote per (review, voter): a repeat returns ErrAlreadyVoted, an
// unknown review ErrNotFound.
func (g *GamificationService) VoteHelpful(userID, reviewID uint) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing models.ReviewVote
		err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&existing).Error
		if err == nil {
			return ErrAlreadyVoted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.ReviewVote{ReviewID: reviewID, UserID: userID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumn("helpful_count", gorm.Expr("helpful_count + 1")).Error
	})
}
