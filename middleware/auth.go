package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/K33ngston/Gamescope/models"
	"github.com/K33ngston/Gamescope/utils"
)

const (
	// SessionCookieName is the http-only cookie carrying the opaque session token.
	SessionCookieName = "gs_token"
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextSessionTokenKey stores the raw session token inside Gin context.
	ContextSessionTokenKey = "session_token"
)

// SessionRequired authenticates the request by resolving the session
// cookie against the sessions table. Expired session rows are deleted on
// touch. On success the user id and token are placed in the Gin context.
func SessionRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(SessionCookieName)
		if err != nil || token == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			ctx.Abort()
			return
		}

		var session models.Session
		if err := db.Where("token = ?", token).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid session")
			} else {
				utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to load session")
			}
			ctx.Abort()
			return
		}

		if session.Expired(time.Now()) {
			_ = db.Delete(&models.Session{}, session.ID).Error
			utils.Error(ctx, http.StatusUnauthorized, 40103, "session expired")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, session.UserID)
		ctx.Set(ContextSessionTokenKey, token)
		ctx.Next()
	}
}
