package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
)

// QuizHandler exposes the session engine. Every route below /api/quiz
// requires an authenticated caller; sessions are only visible to the
// user who started them.
type QuizHandler struct {
	sessions *app.SessionService
	log      *zap.Logger
}

func NewQuizHandler(sessions *app.SessionService, log *zap.Logger) *QuizHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizHandler{sessions: sessions, log: log}
}

func (h *QuizHandler) Start(c *gin.Context) {
	user, ok := userFrom(c)
	if !ok {
		respondError(c, h.log, domain.ErrUnauthorized)
		return
	}
	var body struct {
		SubjectID int64 `json:"subjectId"`
		YearID    int64 `json:"yearId"`
		CourseID  int64 `json:"courseId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	view, err := h.sessions.Start(c.Request.Context(), user.ID, body.SubjectID, body.YearID, body.CourseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *QuizHandler) Get(c *gin.Context) {
	view, err := h.owned(c, func(id string) (domain.SessionView, error) {
		return h.sessions.Get(c.Request.Context(), id)
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *QuizHandler) Answer(c *gin.Context) {
	var body struct {
		Answer string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	view, err := h.owned(c, func(id string) (domain.SessionView, error) {
		return h.sessions.SelectAnswer(c.Request.Context(), id, body.Answer)
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *QuizHandler) Next(c *gin.Context) {
	view, err := h.owned(c, func(id string) (domain.SessionView, error) {
		return h.sessions.Next(c.Request.Context(), id)
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *QuizHandler) Previous(c *gin.Context) {
	view, err := h.owned(c, func(id string) (domain.SessionView, error) {
		return h.sessions.Previous(c.Request.Context(), id)
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *QuizHandler) Jump(c *gin.Context) {
	var body struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	view, err := h.owned(c, func(id string) (domain.SessionView, error) {
		return h.sessions.JumpTo(c.Request.Context(), id, body.Index)
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Finish scores the attempt. Without confirmed=true a session with
// unanswered questions parks in ReviewPending and the view alone is
// returned, prompting the client to confirm.
func (h *QuizHandler) Finish(c *gin.Context) {
	var body struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}
	if err := h.checkOwnership(c); err != nil {
		respondError(c, h.log, err)
		return
	}
	result, view, err := h.sessions.Finish(c.Request.Context(), c.Param("id"), body.Confirmed)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"review": view})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) owned(c *gin.Context, fn func(id string) (domain.SessionView, error)) (domain.SessionView, error) {
	if err := h.checkOwnership(c); err != nil {
		return domain.SessionView{}, err
	}
	return fn(c.Param("id"))
}

// checkOwnership hides other users' sessions behind a not-found.
func (h *QuizHandler) checkOwnership(c *gin.Context) error {
	user, ok := userFrom(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	owner, err := h.sessions.Owner(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if owner != user.ID {
		return domain.ErrSessionNotFound
	}
	return nil
}
