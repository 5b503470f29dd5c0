package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/K33ngston/Gamescope/config"
	"github.com/K33ngston/Gamescope/controllers"
	"github.com/K33ngston/Gamescope/middleware"
	"github.com/K33ngston/Gamescope/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}
	r.Use(middleware.RequestID())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	reviewController := controllers.NewReviewController(db)
	gamificationController := controllers.NewGamificationController(db)
	eventController := controllers.NewEventController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/sign-up", authController.SignUp)
	authGroup.POST("/sign-in", authController.SignIn)
	authGroup.GET("/session", middleware.SessionRequired(db), authController.Session)
	authGroup.POST("/logout", middleware.SessionRequired(db), authController.Logout)

	// Public reads
	api.GET("/reviews", reviewController.ListReviews)
	api.GET("/events", eventController.ListEvents)
	api.GET("/stats", statsController.GetStats)

	protected := api.Group("")
	protected.Use(middleware.SessionRequired(db), middleware.RateLimitMiddleware())
	protected.POST("/reviews", reviewController.CreateReview)
	protected.PUT("/reviews", reviewController.VoteReview)
	protected.GET("/gamification", gamificationController.Get)
	protected.POST("/gamification", gamificationController.Post)
	protected.POST("/events", eventController.CreateEvent)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
