package main

import (
	"time"

	"github.com/K33ngston/Gamescope/config"
	"github.com/K33ngston/Gamescope/models"
	"github.com/K33ngston/Gamescope/routes"
	"github.com/K33ngston/Gamescope/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Session{},
		&models.GamificationRecord{},
		&models.PointsHistoryEntry{},
		&models.BadgeAward{},
		&models.Review{},
		&models.ReviewVote{},
		&models.Event{},
	)

	r := routes.SetupRouter(db)

	// Purge expired sessions in the background (best-effort)
	utils.StartSessionCleaner(10 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
