package handlers

import (
	"log/slog"
	"net/http"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	BaseHandler
	statisticsService services.StatisticsService
}

func NewStatisticsHandler(statisticsService services.StatisticsService, logger *slog.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		BaseHandler:       NewBaseHandler(logger),
		statisticsService: statisticsService,
	}
}

// GetSurveyStatistics computes aggregate statistics for a survey
// @Summary Get survey statistics
// @Tags statistics
// @Produce json
// @Param id path string true "Survey ID"
// @Param exerciseId query string false "Exercise filter"
// @Param gameConfigId query string false "Game config filter"
// @Param useCache query bool false "Serve responses from cache when fresh (default true)"
// @Success 200 {object} models.SurveyStatistics
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /surveys/{id}/statistics [get]
func (h *StatisticsHandler) GetSurveyStatistics(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	stats, err := h.statisticsService.GetSurveyStatistics(c.Request.Context(), id, fetchOptionsFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
