package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/K33ngston/Gamescope/models"
	"github.com/K33ngston/Gamescope/utils"
)

// EventController manages community event listings. Events are created
// by any authenticated user and never mutated afterwards.
type EventController struct {
	db *gorm.DB
}

// NewEventController creates a new EventController instance.
func NewEventController(db *gorm.DB) *EventController {
	return &EventController{db: db}
}

// ListEvents returns paginated events ordered by event date, newest first.
func (e *EventController) ListEvents(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:events:list:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var events []models.Event
	var total int64
	q := e.db.Preload("User").Order("event_date DESC")
	if err := q.Model(&models.Event{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to count events")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list events")
		return
	}

	payload := gin.H{
		"items": events,
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

// CreateEvent validates and stores a listing. Date and optional time
// arrive as separate fields and are merged into one timestamp.
func (e *EventController) CreateEvent(ctx *gin.Context) {
	var req struct {
		Title           string `json:"title" binding:"required"`
		Description     string `json:"description"`
		EventDate       string `json:"eventDate" binding:"required"`
		EventTime       string `json:"eventTime"`
		Location        string `json:"location" binding:"required"`
		EventType       string `json:"eventType" binding:"required"`
		CustomType      string `json:"customType"`
		DurationMinutes *int   `json:"durationMinutes"`
		MaxAttendees    *int   `json:"maxAttendees"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	location := utils.Sanitize(strings.TrimSpace(req.Location))
	if title == "" || location == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "title and location cannot be empty")
		return
	}

	timePart := strings.TrimSpace(req.EventTime)
	if timePart == "" {
		timePart = "00:00"
	}
	eventDate, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(req.EventDate)+" "+timePart, time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid date or time")
		return
	}

	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40043, "duration must be positive")
		return
	}
	if req.MaxAttendees != nil && *req.MaxAttendees <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40044, "max attendees must be positive")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	event := models.Event{
		UserID:          userID,
		Title:           title,
		Description:     utils.Sanitize(req.Description),
		EventDate:       eventDate,
		Location:        location,
		EventType:       strings.TrimSpace(req.EventType),
		CustomType:      strings.TrimSpace(req.CustomType),
		DurationMinutes: req.DurationMinutes,
		MaxAttendees:    req.MaxAttendees,
	}
	if err := e.db.Create(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to create event")
		return
	}

	utils.InvalidateByPrefix("cache:events:list:")
	utils.InvalidateByPrefix("cache:stats")

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"event": event})
}
