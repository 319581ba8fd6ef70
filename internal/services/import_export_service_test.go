package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/events"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/platform"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories"
)

// fakeResponseService serves a fixed response collection to export paths.
type fakeResponseService struct {
	responses []*models.SurveyResponse
	err       error
}

func (f *fakeResponseService) FetchResponses(ctx context.Context, surveyID string, opts FetchOptions) ([]*models.SurveyResponse, error) {
	return f.responses, f.err
}

func (f *fakeResponseService) SaveResponse(ctx context.Context, response *models.SurveyResponse) error {
	return nil
}

func (f *fakeResponseService) ClearResponses(ctx context.Context, surveyID string) error {
	return nil
}

func (f *fakeResponseService) RemoteHealth(ctx context.Context) platform.HealthStatus {
	return platform.HealthStatus{}
}

type importFixture struct {
	surveys   *MockSurveyRepository
	store     *MockResponseStore
	jobs      *MockImportJobRepository
	responses *fakeResponseService
	publisher *events.MockEventPublisher
	svc       ImportExportService
}

func newImportFixture() *importFixture {
	f := &importFixture{
		surveys:   &MockSurveyRepository{},
		store:     &MockResponseStore{},
		jobs:      &MockImportJobRepository{},
		responses: &fakeResponseService{},
		publisher: events.NewMockEventPublisher(discardLogger()),
	}
	f.svc = NewImportExportService(f.surveys, f.store, f.jobs, f.responses, f.publisher, discardLogger())
	return f
}

func exportSurveyFixture() *models.Survey {
	return &models.Survey{
		ID:    "s1",
		Title: "Team Health Check",
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionYesNo, Text: "Would you recommend us?", Position: 1},
			{
				ID: "q2", Type: models.QuestionCheckbox, Text: "Which features do you use?", Position: 2,
				Options: datatypes.JSON([]byte(`["Import","Export"]`)),
			},
		},
	}
}

func TestImportResponsesFromCSV(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)
	f.store.On("Append", mock.Anything, "s1", mock.Anything).Return(nil)
	f.jobs.On("Create", mock.Anything, mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Status == models.ImportProcessing
	})).Return(nil)
	f.jobs.On("Update", mock.Anything, mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Status == models.ImportCompleted && job.CompletedAt != nil
	})).Return(nil)

	csv := strings.Join([]string{
		`id,DATA`,
		`g1,"{""surveyId"":""s1"",""answers"":{""q1"":""yes""}}"`,
		`g2,"{""answers"":{""q1"":""no""}}"`,
		`totals,`,
	}, "\n")

	result, err := f.svc.ImportResponsesFromFile(context.Background(), strings.NewReader(csv), "responses.csv", "s1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, models.ImportCompleted, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row) // 1-based, after the header

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResponsesImported, published[0].Type)

	f.jobs.AssertExpectations(t)
}

func TestImportResponsesFromCSV_MissingDataColumn(t *testing.T) {
	f := newImportFixture()

	csv := "id,surveyId\nr1,s1\n"
	_, err := f.svc.ImportResponsesFromCSV(context.Background(), strings.NewReader(csv), "responses.csv", "s1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDataColumn)
	assert.True(t, IsFatalImport(err))
	f.store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportResponsesFromCSV_HeaderOnly(t *testing.T) {
	f := newImportFixture()

	_, err := f.svc.ImportResponsesFromCSV(context.Background(), strings.NewReader("id,DATA\n"), "responses.csv", "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidRows)
}

func TestImportResponsesFromFile_UnsupportedFormat(t *testing.T) {
	f := newImportFixture()

	_, err := f.svc.ImportResponsesFromFile(context.Background(), strings.NewReader("x"), "responses.xml", "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportResponsesFromJSON_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		document string
		expected int
	}{
		{
			name:     "bare array",
			document: `[{"surveyId":"s1","answers":{"q1":"a"}},{"surveyId":"s1","answers":{"q1":"b"}}]`,
			expected: 2,
		},
		{
			name:     "responses wrapper",
			document: `{"responses":[{"surveyId":"s1","answers":{"q1":"a"}}]}`,
			expected: 1,
		},
		{
			name:     "single platform envelope",
			document: `{"id":"g1","data":{"surveyId":"s1","answers":{"q1":"a"}}}`,
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture()
			f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)
			f.store.On("Append", mock.Anything, "s1", mock.Anything).Return(nil)
			f.jobs.On("Create", mock.Anything, mock.Anything).Return(nil)
			f.jobs.On("Update", mock.Anything, mock.Anything).Return(nil)

			result, err := f.svc.ImportResponsesFromJSON(context.Background(), strings.NewReader(tt.document), "responses.json", "s1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.SuccessCount)
		})
	}
}

func TestImportResponsesFromJSON_InvalidDocument(t *testing.T) {
	f := newImportFixture()

	_, err := f.svc.ImportResponsesFromJSON(context.Background(), strings.NewReader("{broken"), "responses.json", "s1")
	require.Error(t, err)
	assert.True(t, IsFatalImport(err))
}

func TestImport_ZeroValidRowsWritesNothing(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)
	f.jobs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.jobs.On("Update", mock.Anything, mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Status == models.ImportFailed && job.SuccessCount == 0
	})).Return(nil)

	// No row carries answers or a survey reference, so nothing is valid.
	document := `[{"note":"totals"},{"count":12}]`
	_, err := f.svc.ImportResponsesFromJSON(context.Background(), strings.NewReader(document), "responses.json", "s1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidRows)
	f.store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	f.jobs.AssertExpectations(t)
}

func TestImport_FilteredRowsAreNotErrors(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)
	f.jobs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.jobs.On("Update", mock.Anything, mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Status == models.ImportCompleted
	})).Return(nil)

	// Valid rows for another survey are excluded, not faulted: the import
	// completes with nothing to write and no error entries.
	document := `[{"surveyId":"other","answers":{"q1":"a"}},{"surveyId":"other","answers":{"q1":"b"}}]`
	result, err := f.svc.ImportResponsesFromJSON(context.Background(), strings.NewReader(document), "responses.json", "s1")

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 2, result.SkippedCount)
	assert.Empty(t, result.Errors)
	assert.Equal(t, models.ImportCompleted, result.Status)

	f.store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.GetPublishedEvents())
	f.jobs.AssertExpectations(t)
}

func TestImport_EmptyPayloadRowsAreSkipped(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)
	f.store.On("Append", mock.Anything, "s1", mock.MatchedBy(func(responses []*models.SurveyResponse) bool {
		return len(responses) == 1
	})).Return(nil)
	f.jobs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.jobs.On("Update", mock.Anything, mock.Anything).Return(nil)

	// A DATA cell that decodes to an empty object must not be fabricated
	// into a response for the target survey.
	csv := strings.Join([]string{
		`id,DATA`,
		`g1,"{""surveyId"":""s1"",""answers"":{""q1"":""yes""}}"`,
		`g2,"{}"`,
	}, "\n")

	result, err := f.svc.ImportResponsesFromCSV(context.Background(), strings.NewReader(csv), "responses.csv", "s1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
}

func TestExportResponses_CSV(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)
	f.responses.responses = []*models.SurveyResponse{
		{
			ID: "r1", SurveyID: "s1", Timestamp: "2024-02-01T10:00:00Z",
			Status:  models.StatusCompleted,
			Answers: map[string]any{"q1": "Yes", "q2": []any{"Import", "Export"}},
		},
	}

	data, contentType, err := f.svc.ExportResponses(context.Background(), "s1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Response ID,Survey ID,"))
	assert.Contains(t, lines[0], "Would you recommend us?")
	assert.Contains(t, lines[1], "r1,s1,")
	assert.Contains(t, lines[1], "Yes")
	assert.Contains(t, lines[1], "Import; Export")
}

func TestExportResponses_JSON(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)
	f.responses.responses = []*models.SurveyResponse{
		{ID: "r1", SurveyID: "s1", Status: models.StatusCompleted, Answers: map[string]any{"q1": "Yes"}},
	}

	data, contentType, err := f.svc.ExportResponses(context.Background(), "s1", "json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	var doc struct {
		Survey struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"survey"`
		TotalResponses int                      `json:"totalResponses"`
		Responses      []*models.SurveyResponse `json:"responses"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "s1", doc.Survey.ID)
	assert.Equal(t, "Team Health Check", doc.Survey.Title)
	assert.Equal(t, 1, doc.TotalResponses)
	require.Len(t, doc.Responses, 1)
	assert.Equal(t, "r1", doc.Responses[0].ID)
}

func TestExportResponses_Excel(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)
	f.responses.responses = []*models.SurveyResponse{
		{ID: "r1", SurveyID: "s1", Status: models.StatusCompleted, Answers: map[string]any{"q1": "Yes"}},
	}

	data, contentType, err := f.svc.ExportResponses(context.Background(), "s1", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType)
	assert.NotEmpty(t, data)
}

func TestExportResponses_UnsupportedFormat(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "s1").Return(exportSurveyFixture(), nil)

	_, _, err := f.svc.ExportResponses(context.Background(), "s1", "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedExportFormat)
}

func TestExportResponses_SurveyNotFound(t *testing.T) {
	f := newImportFixture()
	f.surveys.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)

	_, _, err := f.svc.ExportResponses(context.Background(), "missing", "csv")
	assert.ErrorIs(t, err, ErrSurveyNotFound)
	assert.True(t, IsNotFound(err))
}

func TestGetImportJob_NotFound(t *testing.T) {
	f := newImportFixture()
	f.jobs.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)

	_, err := f.svc.GetImportJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
