package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/K33ngston/Gamescope/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// In-memory sqlite is per-connection; keep the pool at one.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.GamificationRecord{},
		&models.PointsHistoryEntry{},
		&models.BadgeAward{},
		&models.Review{},
		&models.ReviewVote{},
		&models.Event{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestSubmitReviewPersistsPipeline(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	user := newTestUser(t, db, "alice")

	review, breakdown, newBadges, err := svc.SubmitReview(user.ID, "Hollow Knight", 5, "tough but fair")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if review.PointsEarned != breakdown.Total {
		t.Errorf("review stored %d points, breakdown says %d", review.PointsEarned, breakdown.Total)
	}

	var rec models.GamificationRecord
	if err := db.First(&rec, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.TotalPoints != breakdown.Total {
		t.Errorf("total points = %d, want %d", rec.TotalPoints, breakdown.Total)
	}

	var history int64
	db.Model(&models.PointsHistoryEntry{}).
		Where("user_id = ? AND action = ?", user.ID, ActionReview).Count(&history)
	if history != 1 {
		t.Errorf("points history rows = %d, want 1", history)
	}

	if len(newBadges) != 1 || newBadges[0] != BadgeFirstReview {
		t.Errorf("new badges = %v, want [first_review]", newBadges)
	}

	// Second submission must not re-award first_review.
	_, _, newBadges, err = svc.SubmitReview(user.ID, "Celeste", 4, "lovely")
	if err != nil {
		t.Fatalf("second SubmitReview: %v", err)
	}
	for _, id := range newBadges {
		if id == BadgeFirstReview {
			t.Error("first_review awarded twice")
		}
	}
	var awards int64
	db.Model(&models.BadgeAward{}).
		Where("user_id = ? AND badge = ?", user.ID, string(BadgeFirstReview)).Count(&awards)
	if awards != 1 {
		t.Errorf("first_review award rows = %d, want 1", awards)
	}
}

func TestClaimDailyBonusOncePerDay(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	user := newTestUser(t, db, "bob")
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	res, err := svc.ClaimDailyBonus(user.ID, now)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if res.Points != 10 || res.Streak != 1 {
		t.Errorf("first claim = %+v, want 10 points streak 1", res)
	}

	if _, err := svc.ClaimDailyBonus(user.ID, now.Add(5*time.Hour)); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("same-day second claim err = %v, want ErrAlreadyClaimed", err)
	}

	var rec models.GamificationRecord
	if err := db.First(&rec, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.TotalPoints != 10 || rec.CurrentStreak != 1 {
		t.Errorf("state after rejected claim = %d points streak %d, want unchanged 10/1", rec.TotalPoints, rec.CurrentStreak)
	}
	var history int64
	db.Model(&models.PointsHistoryEntry{}).Where("user_id = ?", user.ID).Count(&history)
	if history != 1 {
		t.Errorf("history rows = %d, want 1", history)
	}
}

func TestDailyBonusStreakProgression(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	user := newTestUser(t, db, "carol")
	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
	}

	steps := []struct {
		day        int
		wantStreak int
	}{
		{10, 1},
		{11, 2}, // consecutive day extends
		{13, 1}, // skipped the 12th, streak resets
		{14, 2},
	}
	for _, s := range steps {
		res, err := svc.ClaimDailyBonus(user.ID, day(s.day))
		if err != nil {
			t.Fatalf("claim on day %d: %v", s.day, err)
		}
		if res.Streak != s.wantStreak {
			t.Errorf("day %d streak = %d, want %d", s.day, res.Streak, s.wantStreak)
		}
	}

	var rec models.GamificationRecord
	if err := db.First(&rec, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.LongestStreak != 2 {
		t.Errorf("longest streak = %d, want 2", rec.LongestStreak)
	}
	if rec.TotalPoints != 40 {
		t.Errorf("total points = %d, want 40", rec.TotalPoints)
	}
}

func TestHotStreakBadgeAtSevenDays(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	user := newTestUser(t, db, "dave")

	start := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	var last *DailyBonusResult
	for i := 0; i < 7; i++ {
		res, err := svc.ClaimDailyBonus(user.ID, start.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		last = res
	}
	if last.Streak != 7 {
		t.Fatalf("streak after 7 days = %d", last.Streak)
	}
	found := false
	for _, id := range last.NewBadges {
		if id == BadgeHotStreak {
			found = true
		}
	}
	if !found {
		t.Errorf("day-7 claim badges = %v, want hot_streak included", last.NewBadges)
	}
}

func TestVoteHelpful(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	author := newTestUser(t, db, "erin")
	voter := newTestUser(t, db, "frank")

	review, _, _, err := svc.SubmitReview(author.ID, "Hades", 5, "slick")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}

	if err := svc.VoteHelpful(voter.ID, review.ID); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := svc.VoteHelpful(voter.ID, review.ID); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("second vote err = %v, want ErrAlreadyVoted", err)
	}
	if err := svc.VoteHelpful(voter.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("vote on unknown review err = %v, want ErrNotFound", err)
	}

	var fresh models.Review
	if err := db.First(&fresh, review.ID).Error; err != nil {
		t.Fatalf("reload review: %v", err)
	}
	if fresh.HelpfulCount != 1 {
		t.Errorf("helpful count = %d, want 1", fresh.HelpfulCount)
	}
}

func TestLeaderboardAllTime(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)

	users := make([]models.User, 4)
	for i := range users {
		users[i] = newTestUser(t, db, fmt.Sprintf("player%d", i))
	}
	totals := []int{50, 120, 120, 0} // ties between players 1 and 2, player 3 excluded
	for i, pts := range totals {
		rec := models.GamificationRecord{UserID: users[i].ID, TotalPoints: pts}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	entries, err := svc.Leaderboard(PeriodAll, time.Now())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (zero-point user excluded)", len(entries))
	}
	wantOrder := []uint{users[1].ID, users[2].ID, users[0].ID}
	for i, want := range wantOrder {
		if entries[i].UserID != want {
			t.Errorf("rank %d user = %d, want %d", i, entries[i].UserID, want)
		}
	}
	if entries[0].Username != users[1].Username {
		t.Errorf("rank 0 username = %q, want %q", entries[0].Username, users[1].Username)
	}
	if entries[0].Badges == nil {
		t.Error("badges must serialize as an empty list, not null")
	}
}

func TestLeaderboardWeeklyWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewGamificationService(db)
	inside := newTestUser(t, db, "thisweek")
	outside := newTestUser(t, db, "lastweek")

	// 2026-08-26 is a Wednesday; the ISO week runs Mon 24th through Sun 30th.
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	entries := []models.PointsHistoryEntry{
		{UserID: inside.ID, Action: ActionReview, Points: 30, CreatedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)},
		{UserID: inside.ID, Action: ActionDailyBonus, Points: 10, CreatedAt: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		{UserID: outside.ID, Action: ActionReview, Points: 500, CreatedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)},
	}
	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	ranked, err := svc.Leaderboard(PeriodWeekly, now)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("got %d entries, want 1 (last week's points excluded)", len(ranked))
	}
	if ranked[0].UserID != inside.ID || ranked[0].Points != 40 {
		t.Errorf("entry = user %d with %d points, want user %d with 40", ranked[0].UserID, ranked[0].Points, inside.ID)
	}

	if _, err := svc.Leaderboard("fortnightly", now); err == nil {
		t.Error("unknown period accepted")
	}
}
