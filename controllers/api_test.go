package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/K33ngston/Gamescope/middleware"
	"github.com/K33ngston/Gamescope/models"
)

// newTestRouter wires the controllers onto a bare engine backed by an
// in-memory database. Access logging, CORS, and rate limiting are left
// off; they are orthogonal to the handler contracts under test.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	r := gin.New()
	auth := NewAuthController(db)
	reviews := NewReviewController(db)
	gamification := NewGamificationController(db)
	events := NewEventController(db)
	stats := NewStatsController(db)

	api := r.Group("/api")
	api.POST("/auth/sign-up", auth.SignUp)
	api.POST("/auth/sign-in", auth.SignIn)
	api.GET("/auth/session", middleware.SessionRequired(db), auth.Session)
	api.POST("/auth/logout", middleware.SessionRequired(db), auth.Logout)
	api.GET("/reviews", reviews.ListReviews)
	api.GET("/events", events.ListEvents)
	api.GET("/stats", stats.GetStats)

	protected := api.Group("", middleware.SessionRequired(db))
	protected.POST("/reviews", reviews.CreateReview)
	protected.PUT("/reviews", reviews.VoteReview)
	protected.GET("/gamification", gamification.Get)
	protected.POST("/gamification", gamification.Post)
	protected.POST("/events", events.CreateEvent)

	return r, db
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func perform(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: non-envelope body %q", method, path, w.Body.String())
	}
	return w, env
}

// signUp registers a user and returns the session cookie.
func signUp(t *testing.T, r *gin.Engine, name string) *http.Cookie {
	t.Helper()
	w, _ := perform(t, r, http.MethodPost, "/api/auth/sign-up", gin.H{
		"username": name,
		"email":    name + "@example.com",
		"password": "hunter22",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("sign-up %s: status %d body %s", name, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("sign-up %s: no %s cookie set", name, middleware.SessionCookieName)
	return nil
}

func TestSignUpOpensSession(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := signUp(t, r, "alice")

	if !cookie.HttpOnly {
		t.Error("session cookie is not http-only")
	}

	w, env := perform(t, r, http.MethodGet, "/api/auth/session", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("session: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode session data: %v", err)
	}
	if data.User.Username != "alice" || data.User.Email != "alice@example.com" {
		t.Errorf("session user = %+v", data.User)
	}
}

func TestSignUpDuplicates(t *testing.T) {
	r, _ := newTestRouter(t)
	signUp(t, r, "bob")

	w, _ := perform(t, r, http.MethodPost, "/api/auth/sign-up", gin.H{
		"username": "bob",
		"email":    "other@example.com",
		"password": "hunter22",
	}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate username: status %d, want 409", w.Code)
	}

	w, _ = perform(t, r, http.MethodPost, "/api/auth/sign-up", gin.H{
		"username": "bob2",
		"email":    "bob@example.com",
		"password": "hunter22",
	}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate email: status %d, want 409", w.Code)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	r, _ := newTestRouter(t)
	signUp(t, r, "carol")

	w, _ := perform(t, r, http.MethodPost, "/api/auth/sign-in", gin.H{
		"username": "carol",
		"password": "wrong-password",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", w.Code)
	}

	w, _ = perform(t, r, http.MethodPost, "/api/auth/sign-in", gin.H{
		"username": "nobody",
		"password": "hunter22",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status %d, want 401", w.Code)
	}

	w, _ = perform(t, r, http.MethodPost, "/api/auth/sign-in", gin.H{
		"username": "carol",
		"password": "hunter22",
	}, nil)
	if w.Code != http.StatusOK {
		t.Errorf("valid sign-in: status %d, want 200", w.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := signUp(t, r, "dora")

	w, _ := perform(t, r, http.MethodPost, "/api/auth/logout", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}

	w, _ = perform(t, r, http.MethodGet, "/api/auth/session", nil, cookie)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("session after logout: status %d, want 401", w.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := perform(t, r, http.MethodPost, "/api/reviews", gin.H{
		"gameName": "Doom", "reviewText": "rip and tear", "rating": 5,
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("create review without session: status %d, want 401", w.Code)
	}

	w, _ = perform(t, r, http.MethodGet, "/api/gamification?action=stats", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("stats without session: status %d, want 401", w.Code)
	}

	bogus := &http.Cookie{Name: middleware.SessionCookieName, Value: "deadbeef"}
	w, _ = perform(t, r, http.MethodGet, "/api/gamification?action=stats", nil, bogus)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("stats with bogus token: status %d, want 401", w.Code)
	}
}

func TestReviewSubmissionFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := signUp(t, r, "erin")

	w, env := perform(t, r, http.MethodPost, "/api/reviews", gin.H{
		"gameName": "Outer Wilds", "reviewText": "a perfect loop", "rating": 5,
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("create review: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Review struct {
			ID           uint `json:"id"`
			PointsEarned int  `json:"points_earned"`
		} `json:"review"`
		Breakdown struct {
			Total int `json:"total"`
		} `json:"breakdown"`
		NewBadges []string `json:"new_badges"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode review data: %v", err)
	}
	if data.Review.PointsEarned != data.Breakdown.Total {
		t.Errorf("points_earned %d != breakdown total %d", data.Review.PointsEarned, data.Breakdown.Total)
	}
	if len(data.NewBadges) != 1 || data.NewBadges[0] != "first_review" {
		t.Errorf("new_badges = %v, want [first_review]", data.NewBadges)
	}

	// Bad ratings are rejected before anything is persisted.
	w, _ = perform(t, r, http.MethodPost, "/api/reviews", gin.H{
		"gameName": "Doom", "reviewText": "x", "rating": 6,
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("rating 6: status %d, want 400", w.Code)
	}

	// The feed is public and carries the author.
	w, env = perform(t, r, http.MethodGet, "/api/reviews", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list reviews: status %d", w.Code)
	}
	var feed struct {
		Items []struct {
			GameName string `json:"game_name"`
			Author   struct {
				Username string `json:"username"`
			} `json:"author"`
		} `json:"items"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if feed.Pagination.Total != 1 || len(feed.Items) != 1 {
		t.Fatalf("feed = %+v, want one review", feed)
	}
	if feed.Items[0].Author.Username != "erin" {
		t.Errorf("feed author = %q, want erin", feed.Items[0].Author.Username)
	}
}

func TestVoteOncePerVoter(t *testing.T) {
	r, _ := newTestRouter(t)
	author := signUp(t, r, "frank")
	voter := signUp(t, r, "grace")

	w, env := perform(t, r, http.MethodPost, "/api/reviews", gin.H{
		"gameName": "Hades", "reviewText": "one more run", "rating": 4,
	}, author)
	if w.Code != http.StatusOK {
		t.Fatalf("create review: status %d", w.Code)
	}
	var created struct {
		Review struct {
			ID uint `json:"id"`
		} `json:"review"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w, _ = perform(t, r, http.MethodPut, "/api/reviews", gin.H{"reviewId": created.Review.ID}, voter)
	if w.Code != http.StatusOK {
		t.Fatalf("first vote: status %d body %s", w.Code, w.Body.String())
	}
	w, _ = perform(t, r, http.MethodPut, "/api/reviews", gin.H{"reviewId": created.Review.ID}, voter)
	if w.Code != http.StatusConflict {
		t.Errorf("second vote: status %d, want 409", w.Code)
	}
	w, _ = perform(t, r, http.MethodPut, "/api/reviews", gin.H{"reviewId": uint(9999)}, voter)
	if w.Code != http.StatusNotFound {
		t.Errorf("vote on missing review: status %d, want 404", w.Code)
	}
}

func TestDailyBonusEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := signUp(t, r, "henry")

	w, env := perform(t, r, http.MethodPost, "/api/gamification", gin.H{"action": "daily-bonus"}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("first claim: status %d body %s", w.Code, w.Body.String())
	}
	var res struct {
		Points int `json:"points_awarded"`
		Streak int `json:"streak"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Points != 10 || res.Streak != 1 {
		t.Errorf("claim = %+v, want 10 points streak 1", res)
	}

	w, _ = perform(t, r, http.MethodPost, "/api/gamification", gin.H{"action": "daily-bonus"}, cookie)
	if w.Code != http.StatusConflict {
		t.Errorf("second claim: status %d, want 409", w.Code)
	}

	w, _ = perform(t, r, http.MethodPost, "/api/gamification", gin.H{"action": "restart"}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown action: status %d, want 400", w.Code)
	}
}

func TestGamificationGetActions(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := signUp(t, r, "iris")

	perform(t, r, http.MethodPost, "/api/reviews", gin.H{
		"gameName": "Celeste", "reviewText": "climb the mountain", "rating": 5,
	}, cookie)

	w, env := perform(t, r, http.MethodGet, "/api/gamification?action=stats", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d", w.Code)
	}
	var stats struct {
		Points  int      `json:"points"`
		Reviews int      `json:"reviews"`
		Badges  []string `json:"badges"`
	}
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Reviews != 1 || stats.Points == 0 {
		t.Errorf("stats = %+v, want one scored review", stats)
	}
	if len(stats.Badges) != 1 || stats.Badges[0] != "first_review" {
		t.Errorf("stats badges = %v", stats.Badges)
	}

	w, env = perform(t, r, http.MethodGet, "/api/gamification?action=badges", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("badges: status %d", w.Code)
	}
	var badges struct {
		Earned  []json.RawMessage `json:"earned"`
		Catalog []json.RawMessage `json:"catalog"`
	}
	if err := json.Unmarshal(env.Data, &badges); err != nil {
		t.Fatalf("decode badges: %v", err)
	}
	if len(badges.Earned) != 1 || len(badges.Catalog) != 7 {
		t.Errorf("badges = %d earned, %d catalog, want 1 and 7", len(badges.Earned), len(badges.Catalog))
	}

	w, _ = perform(t, r, http.MethodGet, "/api/gamification?action=leaderboard&period=all", nil, cookie)
	if w.Code != http.StatusOK {
		t.Errorf("leaderboard: status %d", w.Code)
	}
	w, _ = perform(t, r, http.MethodGet, "/api/gamification?action=leaderboard&period=daily", nil, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad period: status %d, want 400", w.Code)
	}
	w, _ = perform(t, r, http.MethodGet, "/api/gamification?action=unknown", nil, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad action: status %d, want 400", w.Code)
	}
}

func TestStatsEndpointCounts(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := signUp(t, r, "judy")
	perform(t, r, http.MethodPost, "/api/reviews", gin.H{
		"gameName": "Portal", "reviewText": "still alive", "rating": 5,
	}, cookie)

	w, env := perform(t, r, http.MethodGet, "/api/stats", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		UserCount          int `json:"user_count"`
		ReviewCount        int `json:"review_count"`
		EventCount         int `json:"event_count"`
		PointsAwardedToday int `json:"points_awarded_today"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if data.UserCount != 1 || data.ReviewCount != 1 || data.EventCount != 0 {
		t.Errorf("stats = %+v", data)
	}
	if data.PointsAwardedToday == 0 {
		t.Error("points_awarded_today = 0, want the review's points")
	}
}

func TestEventEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := signUp(t, r, "kate")

	w, env := perform(t, r, http.MethodPost, "/api/events", gin.H{
		"title":       "Speedrun night",
		"description": "Any% races all evening",
		"eventDate":   "2026-09-12",
		"eventTime":   "19:00",
		"location":    "Community Discord",
		"eventType":   "tournament",
	}, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: status %d body %s", w.Code, w.Body.String())
	}

	w, env = perform(t, r, http.MethodGet, "/api/events", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list events: status %d", w.Code)
	}
	var list struct {
		Items []struct {
			Title     string `json:"title"`
			EventType string `json:"event_type"`
			Organizer struct {
				Username string `json:"username"`
			} `json:"organizer"`
		} `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("events = %d, want 1", len(list.Items))
	}
	if list.Items[0].Title != "Speedrun night" || list.Items[0].Organizer.Username != "kate" {
		t.Errorf("event = %+v", list.Items[0])
	}

	w, _ = perform(t, r, http.MethodPost, "/api/events", gin.H{
		"title": "missing everything else",
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("event without required fields: status %d, want 400", w.Code)
	}
}
