package handlers

import (
	"log/slog"
	"net/http"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
}

func NewSurveyHandler(surveyService services.SurveyService, logger *slog.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
	}
}

// CreateSurvey creates a new survey definition
// @Summary Create survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param survey body models.Survey true "Survey definition"
// @Success 201 {object} models.Survey
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys [post]
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var survey models.Survey
	if err := c.ShouldBindJSON(&survey); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	created, err := h.surveyService.Create(c.Request.Context(), &survey)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetSurvey retrieves a survey by ID
// @Summary Get survey
// @Tags surveys
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} models.Survey
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	survey, err := h.surveyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// ListSurveys lists all survey definitions
// @Summary List surveys
// @Tags surveys
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /surveys [get]
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	surveys, err := h.surveyService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"surveys": surveys,
		"total":   len(surveys),
	})
}
