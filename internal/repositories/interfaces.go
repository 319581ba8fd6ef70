package repositories

import (
	"context"
	"errors"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
)

var ErrNotFound = errors.New("record not found")

// SurveyRepository stores survey definitions. The engine needs them for
// question order and titles; authoring lives elsewhere.
type SurveyRepository interface {
	Create(ctx context.Context, survey *models.Survey) error
	GetByID(ctx context.Context, id string) (*models.Survey, error)
	List(ctx context.Context) ([]*models.Survey, error)
}

// ResponseStore is the local fallback store for canonical responses: one
// blob per survey key, append-only plus bulk clear.
type ResponseStore interface {
	GetBySurvey(ctx context.Context, surveyID string) ([]*models.SurveyResponse, error)
	Append(ctx context.Context, surveyID string, responses ...*models.SurveyResponse) error
	Clear(ctx context.Context, surveyID string) error
}

// ImportJobRepository persists response-import job records.
type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Update(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
}

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
