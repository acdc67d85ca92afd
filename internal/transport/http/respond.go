package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prepquiz-service/internal/domain"
)

// errorBody is the uniform error envelope for every failed request.
type errorBody struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto the uniform error body. Anything
// unrecognized becomes a generic 500; the cause is logged server-side
// only.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrNoQuestions):
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrStreakNotReady):
		c.AbortWithStatusJSON(http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrBanned):
		c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: err.Error()})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
	}
}
