package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/K33ngston/Gamescope/config"
	"github.com/K33ngston/Gamescope/middleware"
	"github.com/K33ngston/Gamescope/models"
	"github.com/K33ngston/Gamescope/utils"
)

// AuthController handles account creation and cookie-session lifecycle.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// SignUp registers a local account with bcrypt hashing and opens a session.
func (a *AuthController) SignUp(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=72"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may only contain letters, digits, '-' and '_'")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already taken")
		return
	}
	if err := a.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40902, "email already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create user")
		return
	}

	if err := a.openSession(ctx, user.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create session")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"user": publicUser(user)})
}

// SignIn authenticates by username/password and opens a session.
func (a *AuthController) SignIn(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		// same answer for unknown user and wrong password
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	if err := a.openSession(ctx, user.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create session")
		return
	}

	utils.Success(ctx, gin.H{"user": publicUser(user)})
}

// Session returns the authenticated caller's account.
func (a *AuthController) Session(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40104, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "account no longer exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{"user": publicUser(user)})
}

// Logout deletes the session row and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token, ok := ctx.Get(middleware.ContextSessionTokenKey); ok {
		if t, _ := token.(string); t != "" {
			_ = a.db.Where("token = ?", t).Delete(&models.Session{}).Error
		}
	}
	clearSessionCookie(ctx)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// openSession issues an opaque token, stores the session row, and sets
// the http-only cookie.
func (a *AuthController) openSession(ctx *gin.Context, userID uint) error {
	token, err := utils.NewSessionToken()
	if err != nil {
		return err
	}

	cfg := config.Get()
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	session := models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := a.db.Create(&session).Error; err != nil {
		return err
	}

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middleware.SessionCookieName, token, int(ttl.Seconds()), "/", "", cfg.CookieSecure, true)
	return nil
}

func clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", config.Get().CookieSecure, true)
}

func publicUser(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	}
}

// validUsername allows letters, digits, '-' and '_'.
func validUsername(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
