package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/stats"
)

// StatisticsService produces display-ready statistics for a survey.
type StatisticsService interface {
	GetSurveyStatistics(ctx context.Context, surveyID string, opts FetchOptions) (*models.SurveyStatistics, error)
}

type statisticsService struct {
	surveys   repositories.SurveyRepository
	responses ResponseService
	logger    *slog.Logger
}

func NewStatisticsService(
	surveys repositories.SurveyRepository,
	responses ResponseService,
	logger *slog.Logger,
) StatisticsService {
	return &statisticsService{
		surveys:   surveys,
		responses: responses,
		logger:    logger,
	}
}

func (s *statisticsService) GetSurveyStatistics(ctx context.Context, surveyID string, opts FetchOptions) (*models.SurveyStatistics, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to load survey %s: %w", surveyID, err)
	}

	responses, err := s.responses.FetchResponses(ctx, surveyID, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("computing survey statistics",
		"survey_id", surveyID, "responses", len(responses))
	return stats.ComputeSurveyStatistics(survey, responses), nil
}
