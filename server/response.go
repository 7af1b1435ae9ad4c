package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/sessionkit/errors"
	"github.com/kbukum/sessionkit/logger"
)

// RespondWithError writes err as the JSON error body. Non-AppErrors become
// INTERNAL_ERROR. Causes of 5xx errors are logged, never written.
func RespondWithError(c *gin.Context, log *logger.Logger, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError && log != nil {
		fields := logger.Fields("code", string(appErr.Code), "path", c.FullPath())
		if appErr.Cause != nil {
			fields[logger.FieldError] = appErr.Cause.Error()
		}
		log.WithContext(c.Request.Context()).Error("Request failed", fields)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
