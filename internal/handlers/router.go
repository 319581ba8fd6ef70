package handlers

import (
	"log/slog"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	surveyHandler       *SurveyHandler
	responseHandler     *ResponseHandler
	statisticsHandler   *StatisticsHandler
	importExportHandler *ImportExportHandler
}

func NewHandlerManager(
	surveyService services.SurveyService,
	responseService services.ResponseService,
	statisticsService services.StatisticsService,
	importExportService services.ImportExportService,
	logger *slog.Logger,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:       NewSurveyHandler(surveyService, logger),
		responseHandler:     NewResponseHandler(responseService, logger),
		statisticsHandler:   NewStatisticsHandler(statisticsService, logger),
		importExportHandler: NewImportExportHandler(importExportService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "survey-response-engine",
		})
	})

	v1 := router.Group("/api/v1")
	{
		surveys := v1.Group("/surveys")
		{
			surveys.POST("", hm.surveyHandler.CreateSurvey)
			surveys.GET("", hm.surveyHandler.ListSurveys)
			surveys.GET("/:id", hm.surveyHandler.GetSurvey)

			surveys.GET("/:id/responses", hm.responseHandler.GetResponses)
			surveys.POST("/:id/responses", hm.responseHandler.SaveResponse)
			surveys.DELETE("/:id/responses", hm.responseHandler.ClearResponses)

			surveys.POST("/:id/responses/import", hm.importExportHandler.ImportResponses)
			surveys.GET("/:id/responses/export", hm.importExportHandler.ExportResponses)

			surveys.GET("/:id/statistics", hm.statisticsHandler.GetSurveyStatistics)
		}

		v1.GET("/import-jobs/:id", hm.importExportHandler.GetImportJob)
		v1.GET("/platform/health", hm.responseHandler.PlatformHealth)
	}
}
