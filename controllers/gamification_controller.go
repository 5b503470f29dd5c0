package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/K33ngston/Gamescope/services"
	"github.com/K33ngston/Gamescope/utils"
)

// GamificationController exposes stats, badges, the leaderboard, and the
// daily bonus through a single action-dispatched endpoint pair, matching
// the historical API surface.
type GamificationController struct {
	svc *services.GamificationService
}

// NewGamificationController creates a new controller instance.
func NewGamificationController(db *gorm.DB) *GamificationController {
	return &GamificationController{svc: services.NewGamificationService(db)}
}

// Get dispatches on ?action=stats|badges|leaderboard.
func (g *GamificationController) Get(ctx *gin.Context) {
	switch ctx.Query("action") {
	case "stats":
		g.stats(ctx)
	case "badges":
		g.badges(ctx)
	case "leaderboard":
		g.leaderboard(ctx)
	default:
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid action")
	}
}

// Post dispatches on the action field; "daily-bonus" is the only action.
func (g *GamificationController) Post(ctx *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Action != "daily-bonus" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid action")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result, err := g.svc.ClaimDailyBonus(userID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrAlreadyClaimed) {
			utils.Error(ctx, http.StatusConflict, 40930, "already claimed today")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to claim daily bonus")
		return
	}

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.InvalidateByPrefix("cache:stats")

	utils.Success(ctx, result)
}

func (g *GamificationController) stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	stats, err := g.svc.Stats(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load stats")
		return
	}
	utils.Success(ctx, stats)
}

func (g *GamificationController) badges(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	earned, err := g.svc.EarnedBadges(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load badges")
		return
	}
	utils.Success(ctx, gin.H{
		"earned":  earned,
		"catalog": services.Catalog,
	})
}

func (g *GamificationController) leaderboard(ctx *gin.Context) {
	period := ctx.DefaultQuery("period", services.PeriodWeekly)
	if !services.ValidPeriod(period) {
		utils.Error(ctx, http.StatusBadRequest, 40032, "period must be weekly, monthly or all")
		return
	}

	cacheKey := fmt.Sprintf("cache:leaderboard:period=%s", period)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	entries, err := g.svc.Leaderboard(period, time.Now())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to build leaderboard")
		return
	}

	payload := gin.H{"period": period, "entries": entries}
	utils.CacheSetJSON(cacheKey, wrap(payload), 5*time.Minute)
	utils.Success(ctx, payload)
}
