package handlers

import (
	"log/slog"
	"net/http"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger *slog.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

func fetchOptionsFromQuery(c *gin.Context) services.FetchOptions {
	return services.FetchOptions{
		ExerciseID:   c.Query("exerciseId"),
		GameConfigID: c.Query("gameConfigId"),
		UseCache:     c.DefaultQuery("useCache", "true") != "false",
	}
}

// GetResponses retrieves all normalized responses for a survey
// @Summary Get survey responses
// @Tags responses
// @Produce json
// @Param id path string true "Survey ID"
// @Param exerciseId query string false "Exercise filter"
// @Param gameConfigId query string false "Game config filter"
// @Param useCache query bool false "Serve from cache when fresh (default true)"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /surveys/{id}/responses [get]
func (h *ResponseHandler) GetResponses(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	responses, err := h.responseService.FetchResponses(c.Request.Context(), id, fetchOptionsFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"surveyId":  id,
		"responses": responses,
		"total":     len(responses),
	})
}

// SaveResponse stores a single survey response
// @Summary Save survey response
// @Tags responses
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Param response body models.SurveyResponse true "Survey response"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /surveys/{id}/responses [post]
func (h *ResponseHandler) SaveResponse(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var response models.SurveyResponse
	if err := c.ShouldBindJSON(&response); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	response.SurveyID = id

	if err := h.responseService.SaveResponse(c.Request.Context(), &response); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Response saved",
		Data:    gin.H{"id": response.ID},
	})
}

// ClearResponses removes all stored responses for a survey
// @Summary Clear survey responses
// @Tags responses
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Router /surveys/{id}/responses [delete]
func (h *ResponseHandler) ClearResponses(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.responseService.ClearResponses(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Responses cleared"})
}

// PlatformHealth reports remote data source availability
// @Summary Remote source health
// @Tags platform
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /platform/health [get]
func (h *ResponseHandler) PlatformHealth(c *gin.Context) {
	status := h.responseService.RemoteHealth(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"available":    status.Available,
		"authRequired": status.AuthRequired,
		"checkedAt":    status.CheckedAt,
	})
}
