package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/events"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/normalize"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportExportService handles response-file import and export for a survey.
type ImportExportService interface {
	// Import operations
	ImportResponsesFromFile(ctx context.Context, reader io.Reader, filename, surveyID string) (*ImportResult, error)
	ImportResponsesFromCSV(ctx context.Context, reader io.Reader, filename, surveyID string) (*ImportResult, error)
	ImportResponsesFromJSON(ctx context.Context, reader io.Reader, filename, surveyID string) (*ImportResult, error)

	// Export operations
	ExportResponses(ctx context.Context, surveyID, format string) ([]byte, string, error)

	// Job management
	GetImportJob(ctx context.Context, jobID string) (*models.ImportJob, error)
}

type ImportResult struct {
	JobID        string                  `json:"job_id"`
	TotalRows    int                     `json:"total_rows"`
	SuccessCount int                     `json:"success_count"`
	SkippedCount int                     `json:"skipped_count"`
	Errors       []models.ImportRowError `json:"errors"`
	Status       models.ImportJobStatus  `json:"status"`
}

type importExportService struct {
	surveys   repositories.SurveyRepository
	store     repositories.ResponseStore
	jobs      repositories.ImportJobRepository
	responses ResponseService
	mapper    *normalize.Mapper
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewImportExportService(
	surveys repositories.SurveyRepository,
	store repositories.ResponseStore,
	jobs repositories.ImportJobRepository,
	responses ResponseService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) ImportExportService {
	return &importExportService{
		surveys:   surveys,
		store:     store,
		jobs:      jobs,
		responses: responses,
		mapper:    normalize.NewMapper(logger),
		publisher: publisher,
		logger:    logger,
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportResponsesFromFile(ctx context.Context, reader io.Reader, filename, surveyID string) (*ImportResult, error) {
	s.logger.Info("Starting response import", "filename", filename, "survey_id", surveyID)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportResponsesFromCSV(ctx, reader, filename, surveyID)
	case ".json":
		return s.ImportResponsesFromJSON(ctx, reader, filename, surveyID)
	default:
		return nil, NewImportError(filename, fmt.Sprintf("unsupported file format %q", ext), ErrUnsupportedFormat)
	}
}

func (s *importExportService) ImportResponsesFromCSV(ctx context.Context, reader io.Reader, filename, surveyID string) (*ImportResult, error) {
	text, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	records := normalize.SplitRecords(string(text))
	if len(records) < 2 {
		return nil, NewImportError(filename, "CSV must have a header row and at least one data row", ErrNoValidRows)
	}

	// Column names match case-insensitively; the same line parser handles
	// the header and every data row.
	header := normalize.ParseLine(records[0])
	columns := make([]string, len(header))
	hasData := false
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
		if strings.EqualFold(columns[i], "DATA") {
			hasData = true
		}
	}
	if !hasData {
		return nil, NewImportError(filename, "CSV is missing the required DATA column", ErrMissingDataColumn)
	}

	hints := s.importHints(ctx, surveyID, "csv")
	var imported []*models.SurveyResponse
	var rowErrors []models.ImportRowError
	excluded := 0

	for rowIndex, record := range records[1:] {
		fields := normalize.ParseLine(record)
		raw := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(fields) && fields[i] != "" {
				raw[col] = fields[i]
			}
		}
		resp, outcome := s.mapper.MapToResponse(raw, hints, rowIndex)
		switch outcome {
		case normalize.MapExcluded:
			excluded++
			continue
		case normalize.MapFault:
			rowErrors = append(rowErrors, models.ImportRowError{
				Row:     rowIndex + 2, // 1-based, after the header
				Message: "row could not be normalized",
				Value:   truncate(record, 120),
			})
			continue
		}
		imported = append(imported, resp)
	}

	return s.finishImport(ctx, filename, "csv", surveyID, len(records)-1, imported, excluded, rowErrors)
}

func (s *importExportService) ImportResponsesFromJSON(ctx context.Context, reader io.Reader, filename, surveyID string) (*ImportResult, error) {
	blob, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	rows, err := decodeImportDocument(blob)
	if err != nil {
		return nil, NewImportError(filename, "file is not valid JSON", err)
	}
	if len(rows) == 0 {
		return nil, NewImportError(filename, "file contains no response objects", ErrNoValidRows)
	}

	hints := s.importHints(ctx, surveyID, "json")
	var imported []*models.SurveyResponse
	var rowErrors []models.ImportRowError
	excluded := 0

	for rowIndex, raw := range rows {
		resp, outcome := s.mapper.MapToResponse(raw, hints, rowIndex)
		switch outcome {
		case normalize.MapExcluded:
			excluded++
			continue
		case normalize.MapFault:
			rowErrors = append(rowErrors, models.ImportRowError{
				Row:     rowIndex + 1,
				Message: "object could not be normalized",
			})
			continue
		}
		imported = append(imported, resp)
	}

	return s.finishImport(ctx, filename, "json", surveyID, len(rows), imported, excluded, rowErrors)
}

// decodeImportDocument accepts the three known JSON import shapes: a bare
// array of response objects, an object with a "responses" array, or a
// single platform envelope with a "data" field.
func decodeImportDocument(blob []byte) ([]map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(blob, &decoded); err != nil {
		return nil, err
	}

	toRows := func(items []any) []map[string]any {
		rows := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
			}
		}
		return rows
	}

	switch doc := decoded.(type) {
	case []any:
		return toRows(doc), nil
	case map[string]any:
		if items, ok := doc["responses"].([]any); ok {
			return toRows(items), nil
		}
		// Single platform envelope.
		return []map[string]any{doc}, nil
	}
	return nil, fmt.Errorf("unexpected top-level JSON value")
}

func (s *importExportService) importHints(ctx context.Context, surveyID, source string) normalize.SourceHints {
	hints := normalize.SourceHints{
		Source:          source,
		DefaultSurveyID: surveyID,
		FilterSurveyID:  surveyID,
	}
	if survey, err := s.surveys.GetByID(ctx, surveyID); err == nil {
		hints.DefaultSurveyTitle = survey.Title
	}
	return hints
}

// finishImport applies the all-or-nothing rule for fatal faults: a file in
// which no row was valid is rejected without writing. Rows excluded by the
// survey filter were valid, so an all-excluded file completes with nothing
// to append. Anything imported is appended in file order.
func (s *importExportService) finishImport(
	ctx context.Context,
	filename, fileType, surveyID string,
	totalRows int,
	imported []*models.SurveyResponse,
	excluded int,
	rowErrors []models.ImportRowError,
) (*ImportResult, error) {
	now := time.Now()
	job := &models.ImportJob{
		ID:           uuid.NewString(),
		SurveyID:     surveyID,
		FileName:     filename,
		FileType:     fileType,
		Status:       models.ImportProcessing,
		TotalRows:    totalRows,
		SuccessCount: len(imported),
		SkippedCount: excluded + len(rowErrors),
		StartedAt:    &now,
	}
	if blob, err := json.Marshal(rowErrors); err == nil {
		job.Errors = blob
	}
	s.recordJob(ctx, job)

	if len(imported) == 0 && excluded == 0 {
		s.closeJob(ctx, job, models.ImportFailed)
		return nil, NewImportError(filename, "no rows produced a valid response", ErrNoValidRows)
	}

	if len(imported) > 0 {
		if err := s.store.Append(ctx, surveyID, imported...); err != nil {
			s.closeJob(ctx, job, models.ImportFailed)
			return nil, fmt.Errorf("failed to store imported responses: %w", err)
		}

		if err := s.publisher.PublishIngestEvent(ctx, events.NewResponsesImportedEvent(
			job.ID, surveyID, fileType, totalRows, len(imported), len(rowErrors))); err != nil {
			s.logger.Warn("failed to publish import event", "job_id", job.ID, "error", err)
		}
	}

	s.closeJob(ctx, job, models.ImportCompleted)

	s.logger.Info("Response import completed",
		"job_id", job.ID,
		"survey_id", surveyID,
		"total_rows", totalRows,
		"success_count", len(imported),
		"excluded_count", excluded,
		"skipped_count", job.SkippedCount)

	return &ImportResult{
		JobID:        job.ID,
		TotalRows:    totalRows,
		SuccessCount: len(imported),
		SkippedCount: job.SkippedCount,
		Errors:       rowErrors,
		Status:       job.Status,
	}, nil
}

func (s *importExportService) recordJob(ctx context.Context, job *models.ImportJob) {
	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Warn("failed to record import job", "job_id", job.ID, "error", err)
	}
}

func (s *importExportService) closeJob(ctx context.Context, job *models.ImportJob, status models.ImportJobStatus) {
	completed := time.Now()
	job.Status = status
	job.CompletedAt = &completed
	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Warn("failed to update import job", "job_id", job.ID, "error", err)
	}
}

func (s *importExportService) GetImportJob(ctx context.Context, jobID string) (*models.ImportJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// ===== EXPORT OPERATIONS =====

// ExportResponses renders a survey's responses in the requested format and
// returns the bytes plus a content type.
func (s *importExportService) ExportResponses(ctx context.Context, surveyID, format string) ([]byte, string, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrSurveyNotFound
		}
		return nil, "", fmt.Errorf("failed to load survey %s: %w", surveyID, err)
	}

	responses, err := s.responses.FetchResponses(ctx, surveyID, FetchOptions{UseCache: true})
	if err != nil {
		return nil, "", err
	}

	switch strings.ToLower(format) {
	case "csv":
		out, err := exportCSV(survey, responses)
		return out, "text/csv", err
	case "json":
		out, err := exportJSON(survey, responses)
		return out, "application/json", err
	case "xlsx":
		out, err := exportExcel(survey, responses)
		return out, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return nil, "", ErrUnsupportedExportFormat
	}
}

var exportMetaColumns = []string{
	"Response ID", "Survey ID", "Timestamp", "Completed At", "Session ID",
	"Time Spent (s)", "Status", "User ID", "Organization ID", "Exercise ID",
}

func exportCSV(survey *models.Survey, responses []*models.SurveyResponse) ([]byte, error) {
	var b strings.Builder

	header := append([]string{}, exportMetaColumns...)
	for _, q := range survey.Questions {
		header = append(header, q.Text)
	}
	b.WriteString(normalize.WriteLine(header))
	b.WriteByte('\n')

	for _, r := range responses {
		b.WriteString(normalize.WriteLine(exportRow(survey, r)))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func exportRow(survey *models.Survey, r *models.SurveyResponse) []string {
	timeSpent := ""
	if r.TimeSpent != nil {
		timeSpent = strconv.Itoa(*r.TimeSpent)
	}
	row := []string{
		r.ID, r.SurveyID, r.Timestamp, r.CompletedAt, r.SessionID,
		timeSpent, string(r.Status), r.UserID, r.OrganizationID, r.ExerciseID,
	}
	for _, q := range survey.Questions {
		row = append(row, formatAnswer(r.Answers[q.ID]))
	}
	return row
}

// formatAnswer renders any answer shape as one spreadsheet cell.
func formatAnswer(v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return a
	case []any:
		parts := make([]string, 0, len(a))
		for _, item := range a {
			parts = append(parts, normalize.Stringify(item))
		}
		return strings.Join(parts, "; ")
	case []string:
		return strings.Join(a, "; ")
	case map[string]any:
		// Ranking answers: render option:rank pairs in rank order.
		type ranked struct {
			option string
			rank   int
		}
		pairs := make([]ranked, 0, len(a))
		for opt, rv := range a {
			if n, ok := rv.(float64); ok {
				pairs = append(pairs, ranked{option: opt, rank: int(n)})
			}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].rank < pairs[j].rank })
		parts := make([]string, 0, len(pairs))
		for _, p := range pairs {
			parts = append(parts, fmt.Sprintf("%s:%d", p.option, p.rank))
		}
		return strings.Join(parts, "; ")
	}
	return normalize.Stringify(v)
}

type exportDocument struct {
	Survey         exportSurvey             `json:"survey"`
	ExportedAt     string                   `json:"exportedAt"`
	TotalResponses int                      `json:"totalResponses"`
	Responses      []*models.SurveyResponse `json:"responses"`
}

type exportSurvey struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func exportJSON(survey *models.Survey, responses []*models.SurveyResponse) ([]byte, error) {
	doc := exportDocument{
		Survey:         exportSurvey{ID: survey.ID, Title: survey.Title},
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
		TotalResponses: len(responses),
		Responses:      responses,
	}
	if survey.Description != nil {
		doc.Survey.Description = *survey.Description
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}
	return out, nil
}

func exportExcel(survey *models.Survey, responses []*models.SurveyResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Responses"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := append([]string{}, exportMetaColumns...)
	for _, q := range survey.Questions {
		header = append(header, q.Text)
	}
	for i, title := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address Excel cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, title)
	}

	for rowIndex, r := range responses {
		for colIndex, value := range exportRow(survey, r) {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address Excel cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
