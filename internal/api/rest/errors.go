package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/api/shared/errors"
	"github.com/feral-file/ff-launchpad/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errors.NewValidationError(message))
}

// respondForbidden responds with a forbidden error
func respondForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, errors.NewForbiddenError(message))
}

// respondError maps a coordinator error to its HTTP status
func respondError(c *gin.Context, err error, fields ...zap.Field) {
	status, apiErr := errors.FromError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err, fields...)
	} else {
		logger.InfoCtx(c.Request.Context(), "Request rejected",
			append(fields, zap.String("code", string(apiErr.Code)), zap.Error(err))...)
	}
	c.JSON(status, apiErr)
}
