package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/validator"
	"github.com/google/uuid"
)

// SurveyService registers and serves survey definitions. The engine only
// needs enough of them for statistics and import context; authoring lives
// in the wizard application.
type SurveyService interface {
	Create(ctx context.Context, survey *models.Survey) (*models.Survey, error)
	GetByID(ctx context.Context, id string) (*models.Survey, error)
	List(ctx context.Context) ([]*models.Survey, error)
}

type surveyService struct {
	repo      repositories.SurveyRepository
	validator *validator.Validator
	logger    *slog.Logger
}

func NewSurveyService(repo repositories.SurveyRepository, v *validator.Validator, logger *slog.Logger) SurveyService {
	return &surveyService{repo: repo, validator: v, logger: logger}
}

func (s *surveyService) Create(ctx context.Context, survey *models.Survey) (*models.Survey, error) {
	if survey.ID == "" {
		survey.ID = uuid.NewString()
	}
	for i := range survey.Questions {
		if survey.Questions[i].ID == "" {
			survey.Questions[i].ID = fmt.Sprintf("q%d", i+1)
		}
		if !survey.Questions[i].Type.Valid() {
			return nil, NewValidationError("questions", fmt.Sprintf("unknown question type %q", survey.Questions[i].Type), survey.Questions[i].Type)
		}
	}
	if err := s.validator.ValidateStruct(survey); err != nil {
		return nil, s.validator.ToValidationErrors(err)
	}

	if err := s.repo.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}
	s.logger.Info("Survey registered", "survey_id", survey.ID, "questions", len(survey.Questions))
	return survey, nil
}

func (s *surveyService) GetByID(ctx context.Context, id string) (*models.Survey, error) {
	survey, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	return survey, nil
}

func (s *surveyService) List(ctx context.Context) ([]*models.Survey, error) {
	return s.repo.List(ctx)
}
