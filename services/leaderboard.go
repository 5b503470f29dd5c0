package services

import (
	"fmt"
	"time"

	"github.com/K33ngston/Gamescope/config"
	"github.com/K33ngston/Gamescope/models"
)

// Leaderboard periods.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAll     = "all"
)

// ValidPeriod reports whether p names a supported leaderboard window.
func ValidPeriod(p string) bool {
	return p == PeriodWeekly || p == PeriodMonthly || p == PeriodAll
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	UserID   uint     `json:"user_id"`
	Username string   `json:"username"`
	Points   int      `json:"points"`
	Reviews  int      `json:"reviews"`
	Upvotes  int      `json:"upvotes"`
	Badges   []string `json:"badges"`
}

// Leaderboard ranks users by points inside the period: weekly sums the
// points history over the current ISO week (Monday start), monthly over
// the current calendar month, and "all" reads lifetime totals off the
// gamification records. Users with zero points in the window are
// excluded. Ties break by ascending user id.
func (g *GamificationService) Leaderboard(period string, now time.Time) ([]LeaderboardEntry, error) {
	limit := config.Get().LeaderboardSize

	type pointsRow struct {
		UserID uint
		Points int
	}
	var rows []pointsRow

	switch period {
	case PeriodWeekly, PeriodMonthly:
		var since, until time.Time
		if period == PeriodWeekly {
			since = isoWeekStart(now)
			until = since.AddDate(0, 0, 7)
		} else {
			since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
			until = since.AddDate(0, 1, 0)
		}
		err := g.db.Model(&models.PointsHistoryEntry{}).
			Select("user_id, SUM(points) AS points").
			Where("created_at >= ? AND created_at < ?", since, until).
			Group("user_id").
			Having("SUM(points) > 0").
			Order("points DESC, user_id ASC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
	case PeriodAll:
		err := g.db.Model(&models.GamificationRecord{}).
			Select("user_id, total_points AS points").
			Where("total_points > 0").
			Order("total_points DESC, user_id ASC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	if len(rows) == 0 {
		return entries, nil
	}

	userIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.UserID)
	}

	var users []models.User
	if err := g.db.Find(&users, userIDs).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	type reviewAgg struct {
		UserID  uint
		Reviews int
		Upvotes int
	}
	var aggs []reviewAgg
	if err := g.db.Model(&models.Review{}).
		Select("user_id, COUNT(*) AS reviews, COALESCE(SUM(helpful_count),0) AS upvotes").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&aggs).Error; err != nil {
		return nil, err
	}
	byUser := make(map[uint]reviewAgg, len(aggs))
	for _, a := range aggs {
		byUser[a.UserID] = a
	}

	var awards []models.BadgeAward
	if err := g.db.Where("user_id IN ?", userIDs).Find(&awards).Error; err != nil {
		return nil, err
	}
	badges := make(map[uint][]string, len(userIDs))
	for _, a := range awards {
		badges[a.UserID] = append(badges[a.UserID], a.Badge)
	}

	for _, r := range rows {
		entry := LeaderboardEntry{
			UserID:   r.UserID,
			Username: names[r.UserID],
			Points:   r.Points,
			Reviews:  byUser[r.UserID].Reviews,
			Upvotes:  byUser[r.UserID].Upvotes,
			Badges:   badges[r.UserID],
		}
		if entry.Badges == nil {
			entry.Badges = []string{}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// isoWeekStart returns local midnight of the Monday of t's ISO week.
func isoWeekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -daysSinceMonday)
}
