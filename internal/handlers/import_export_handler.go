package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type ImportExportHandler struct {
	BaseHandler
	importExportService services.ImportExportService
}

func NewImportExportHandler(importExportService services.ImportExportService, logger *slog.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler:         NewBaseHandler(logger),
		importExportService: importExportService,
	}
}

// ImportResponses imports survey responses from an uploaded CSV or JSON file
// @Summary Import survey responses
// @Tags import-export
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Survey ID"
// @Param file formData file true "CSV or JSON export file"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /surveys/{id}/responses/import [post]
func (h *ImportExportHandler) ImportResponses(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := h.importExportService.ImportResponsesFromFile(c.Request.Context(), file, fileHeader.Filename, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportResponses exports all responses for a survey in the requested format
// @Summary Export survey responses
// @Tags import-export
// @Produce json
// @Param id path string true "Survey ID"
// @Param format query string false "Export format: csv, json or xlsx (default csv)"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/responses/export [get]
func (h *ImportExportHandler) ExportResponses(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	format := c.DefaultQuery("format", "csv")

	data, contentType, err := h.importExportService.ExportResponses(c.Request.Context(), id, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("survey_%s_responses.%s", id, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// GetImportJob retrieves the record of a past import run
// @Summary Get import job
// @Tags import-export
// @Produce json
// @Param id path string true "Import job ID"
// @Success 200 {object} models.ImportJob
// @Failure 404 {object} ErrorResponse
// @Router /import-jobs/{id} [get]
func (h *ImportExportHandler) GetImportJob(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	job, err := h.importExportService.GetImportJob(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}
