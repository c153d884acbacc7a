package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "task-user-service/pkg/errors"
	"task-user-service/pkg/logger"
)

// Response is the envelope of every API response body.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Message: "OK", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Message: "Created", Data: data})
}

// Fail writes an error envelope with empty data.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Message: message, Data: gin.H{}})
}

// respondError maps err to a status and message. Server-side failures are
// reported with fallback; their detail stays in the log.
func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	log = logger.WithContext(c.Request.Context(), log)

	status := pkgerrors.StatusOf(err)
	msg, public := pkgerrors.PublicMessage(err)
	if status >= http.StatusInternalServerError || !public {
		log.Error(fallback, zap.Error(err))
		Fail(c, http.StatusInternalServerError, fallback)
		return
	}

	log.Debug("request rejected", zap.Int("status", status), zap.String("reason", msg))
	Fail(c, status, msg)
}
