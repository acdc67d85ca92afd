package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
)

// Handlers bundles the JSON endpoints over the application services.
type Handlers struct {
	catalog *app.CatalogService
	users   *app.UserService
	stats   *app.StatsService
	board   *app.LeaderboardService
	log     *zap.Logger
}

func NewHandlers(catalog *app.CatalogService, users *app.UserService, stats *app.StatsService, board *app.LeaderboardService, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{catalog: catalog, users: users, stats: stats, board: board, log: log}
}

// UpsertUser creates or refreshes the caller's account from the
// verified token claims.
func (h *Handlers) UpsertUser(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondError(c, h.log, domain.ErrUnauthorized)
		return
	}
	user, err := h.users.UpsertFromProvider(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CurrentUser returns the caller's own record.
func (h *Handlers) CurrentUser(c *gin.Context) {
	user, ok := userFrom(c)
	if !ok {
		respondError(c, h.log, domain.ErrUserNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) ListSubjects(c *gin.Context) {
	subjects, err := h.catalog.ListSubjects(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

func (h *Handlers) CreateSubject(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	subject, err := h.catalog.CreateSubject(c.Request.Context(), body.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

func (h *Handlers) ListYears(c *gin.Context) {
	years, err := h.catalog.ListYears(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, years)
}

func (h *Handlers) CreateYear(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	year, err := h.catalog.CreateYear(c.Request.Context(), body.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, year)
}

func (h *Handlers) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handlers) CreateCourse(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), body.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// ListQuestions serves the admin console; each filter is optional.
func (h *Handlers) ListQuestions(c *gin.Context) {
	filter := app.QuestionFilter{
		SubjectID: queryID(c, "subjectId"),
		YearID:    queryID(c, "yearId"),
		CourseID:  queryID(c, "courseId"),
	}
	questions, err := h.catalog.ListQuestions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *Handlers) CreateQuestion(c *gin.Context) {
	var q domain.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	created, err := h.catalog.CreateQuestion(c.Request.Context(), &q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) UpdateQuestion(c *gin.Context) {
	var q domain.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	updated, err := h.catalog.UpdateQuestion(c.Request.Context(), &q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SubmitQuiz is the direct result-submission endpoint; the session
// engine posts the same contract internally on Finish.
func (h *Handlers) SubmitQuiz(c *gin.Context) {
	var result domain.QuizResult
	if err := c.ShouldBindJSON(&result); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	avg, err := h.stats.SubmitResult(c.Request.Context(), &result)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Quiz submitted successfully",
		"avgScore": avg,
	})
}

func (h *Handlers) CheckStreak(c *gin.Context) {
	status, err := h.stats.CheckStreak(c.Request.Context(), c.Query("userId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handlers) UpdateStreak(c *gin.Context) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	days, err := h.stats.UpdateStreak(c.Request.Context(), body.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"streakDays": days,
		"message":    "Streak updated successfully",
	})
}

func (h *Handlers) Leaderboard(c *gin.Context) {
	entries, err := h.board.TopUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handlers) UserStats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context(), c.Query("userId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers backs the admin console user table.
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"totalUsers": len(users),
	})
}

// UpdateUserRoles is the admin full-row role update (PUT /api/users).
func (h *Handlers) UpdateUserRoles(c *gin.Context) {
	var body struct {
		ID       string `json:"id"`
		IsAdmin  bool   `json:"isAdmin"`
		IsBanned bool   `json:"isBanned"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	user, err := h.users.SetRoles(c.Request.Context(), body.ID, body.IsAdmin, body.IsBanned)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) BanUser(c *gin.Context) {
	var body struct {
		UserID   string `json:"userId"`
		IsBanned bool   `json:"isBanned"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	user, err := h.users.SetBanned(c.Request.Context(), body.UserID, body.IsBanned)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) SetUserAccess(c *gin.Context) {
	var body struct {
		UserID    string `json:"userId"`
		HasAccess bool   `json:"hasAccess"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	user, err := h.users.SetAccess(c.Request.Context(), body.UserID, body.HasAccess)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func queryID(c *gin.Context, name string) int64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
