package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/models"
)

var categoryStatus = map[core.ErrorCategory]int{
	core.CategoryValidation: http.StatusBadRequest,
	core.CategoryPermission: http.StatusForbidden,
	core.CategoryNotFound:   http.StatusNotFound,
	core.CategoryBusiness:   http.StatusConflict,
	core.CategoryNetwork:    http.StatusServiceUnavailable,
	core.CategoryUnknown:    http.StatusInternalServerError,
}

// respondError writes the classified error. Details carry the wrapped error text for
// caller-fixable categories only.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	classified := core.ClassifyError(err)
	statusCode := categoryStatus[classified.Category]
	if errors.Is(err, identity.ErrInvalidToken) {
		statusCode = http.StatusUnauthorized
	}

	resp := models.ErrorResponse{Error: classified.Message, Category: string(classified.Category)}
	switch classified.Category {
	case core.CategoryValidation, core.CategoryBusiness, core.CategoryNotFound:
		resp.Details = err.Error()
	}

	fields := []zap.Field{
		zap.String("category", string(classified.Category)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Debug("Request rejected", fields...)
	}
	_ = c.Error(err)
	c.JSON(statusCode, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:    "Invalid request payload",
		Details:  err.Error(),
		Category: string(core.CategoryValidation),
	})
}
