package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger *slog.Logger
}

func NewBaseHandler(logger *slog.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// ParseStringIDParam extracts a non-empty path parameter, writing a 400
// response and returning "" when it is missing.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
	}
	return idStr
}

// handleServiceError maps service-layer errors onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var importError *services.ImportError
	if errors.As(err, &importError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: importError.Message,
			Details: map[string]interface{}{
				"fileName": importError.FileName,
			},
		})
		return
	}

	switch {
	case services.IsAuthRequired(err):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Authentication required for remote data source",
			Code:    "AUTH_REQUIRED",
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
		})
	case errors.Is(err, services.ErrSurveyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Survey already exists",
		})
	case errors.Is(err, services.ErrUnsupportedExportFormat):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case services.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Remote data source unavailable",
		})
	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
