package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/K33ngston/Gamescope/models"
	"github.com/K33ngston/Gamescope/utils"
)

// StatsController provides public community totals for the landing page.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the community.
func (s *StatsController) GetStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:stats"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var userCount int64
	var reviewCount int64
	var eventCount int64
	var pointsToday int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}
	if err := s.db.Model(&models.Review{}).Count(&reviewCount).Error; err != nil {
		reviewCount = 0
	}
	if err := s.db.Model(&models.Event{}).Count(&eventCount).Error; err != nil {
		eventCount = 0
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.db.Model(&models.PointsHistoryEntry{}).
		Where("created_at >= ?", todayStart).
		Select("COALESCE(SUM(points),0)").
		Scan(&pointsToday).Error; err != nil {
		pointsToday = 0
	}

	payload := gin.H{
		"user_count":           userCount,
		"review_count":         reviewCount,
		"event_count":          eventCount,
		"points_awarded_today": pointsToday,
	}
	utils.CacheSetJSON("cache:stats", wrap(payload), 5*time.Minute)
	utils.Success(ctx, payload)
}
