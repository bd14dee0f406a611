// Package handler holds the gin handlers of the order desk API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mehmetnuribasa/boreksan/internal/application/desk"
	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/backend"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/dto"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", getRequestID(c), details))
}

// BindJSON binds and validates the request body, answering 400 itself when
// that fails.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	var sliceErrs binding.SliceValidationError
	if errors.As(err, &validationErrs) || errors.As(err, &sliceErrs) {
		middleware.HandleValidationError(c, err)
		return false
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	return false
}

// BindQuery binds and validates query parameters, answering 400 itself when
// that fails.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	err := c.ShouldBindQuery(obj)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		middleware.HandleValidationError(c, err)
		return false
	}
	h.BadRequest(c, "Invalid query parameters")
	return false
}

// HandleError converts an error from the desk services to a response
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.HandleErrorWithData(c, err, nil)
}

// HandleErrorWithData is HandleError for failures that still carry a result
func (h *BaseHandler) HandleErrorWithData(c *gin.Context, err error, data any) {
	if err == nil {
		return
	}
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("request failed", zap.String("code", code), zap.Error(err))
	}
	_ = c.Error(err)

	resp := dto.NewErrorResponseWithRequestID(code, message, getRequestID(c))
	resp.Data = data
	c.JSON(status, resp)
}

func classify(err error) (status int, code, message string) {
	var (
		batchErr  *desk.BatchError
		domainErr *shared.DomainError
		apiErr    *backend.APIError
	)
	switch {
	case errors.Is(err, shared.ErrSessionExpired):
		return http.StatusUnauthorized, dto.ErrCodeSessionExpired, shared.ErrSessionExpired.Message
	case errors.As(err, &batchErr):
		return http.StatusUnprocessableEntity, dto.ErrCodeReconcileFailed, batchErr.Error()
	case errors.As(err, &domainErr):
		code = dto.NormalizeErrorCode(domainErr.Code)
		return dto.GetHTTPStatus(code), code, domainErr.Message
	case errors.As(err, &apiErr):
		switch {
		case apiErr.Status == http.StatusNotFound:
			return http.StatusNotFound, dto.ErrCodeNotFound, apiErr.Message
		case apiErr.Status >= http.StatusInternalServerError:
			return http.StatusBadGateway, dto.ErrCodeBackend, "Order backend failed: " + apiErr.Message
		default:
			return http.StatusUnprocessableEntity, dto.ErrCodeBackendRejected, apiErr.Message
		}
	case errors.Is(err, backend.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, dto.ErrCodeBackendUnavailable, "Order backend is not reachable"
	}
	return http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"
}

// parseDay reads a YYYY-MM-DD query parameter in loc, defaulting to today
func parseDay(c *gin.Context, key string, loc *time.Location, today time.Time) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return today, true
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
