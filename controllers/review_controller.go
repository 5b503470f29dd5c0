package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/K33ngston/Gamescope/models"
	"github.com/K33ngston/Gamescope/services"
	"github.com/K33ngston/Gamescope/utils"
)

// ReviewController manages the review feed and helpful-votes. Writes are
// delegated to the gamification service so points and badges stay in
// step with the review rows.
type ReviewController struct {
	db  *gorm.DB
	svc *services.GamificationService
}

// NewReviewController creates a new ReviewController instance.
func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{db: db, svc: services.NewGamificationService(db)}
}

// ListReviews returns the paginated feed, newest first, with authors.
func (r *ReviewController) ListReviews(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:reviews:list:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var reviews []models.Review
	var total int64
	q := r.db.Preload("User").Order("created_at DESC")
	if err := q.Model(&models.Review{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to count reviews")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&reviews).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list reviews")
		return
	}

	payload := gin.H{
		"items": reviews,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	utils.CacheSetJSON(cacheKey, wrap(payload), time.Minute)
	utils.Success(ctx, payload)
}

// CreateReview validates the submission, sanitizes the text, and runs the
// scoring pipeline. Returns the review with its points breakdown and any
// badges the submission unlocked.
func (r *ReviewController) CreateReview(ctx *gin.Context) {
	var req struct {
		GameName   string `json:"gameName" binding:"required"`
		ReviewText string `json:"reviewText" binding:"required"`
		Rating     int    `json:"rating" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	gameName := utils.Sanitize(strings.TrimSpace(req.GameName))
	if gameName == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "game name cannot be empty")
		return
	}
	text := utils.Sanitize(strings.TrimSpace(req.ReviewText))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "review text cannot be empty")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.Error(ctx, http.StatusBadRequest, 40023, "rating must be between 1 and 5")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	review, breakdown, newBadges, err := r.svc.SubmitReview(userID, gameName, req.Rating, text)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to create review")
		return
	}

	utils.InvalidateByPrefix("cache:reviews:list:")
	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.InvalidateByPrefix("cache:stats")

	utils.Success(ctx, gin.H{
		"review":     review,
		"breakdown":  breakdown,
		"new_badges": newBadges,
	})
}

// VoteReview registers a helpful-vote, once per (review, voter) pair.
func (r *ReviewController) VoteReview(ctx *gin.Context) {
	var req struct {
		ReviewID uint `json:"reviewId" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := r.svc.VoteHelpful(userID, req.ReviewID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40420, "review not found")
		case errors.Is(err, services.ErrAlreadyVoted):
			utils.Error(ctx, http.StatusConflict, 40920, "already voted on this review")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to record vote")
		}
		return
	}

	utils.InvalidateByPrefix("cache:reviews:list:")

	utils.Success(ctx, gin.H{"message": "vote recorded"})
}
