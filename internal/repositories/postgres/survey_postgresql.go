package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories"
	"gorm.io/gorm"
)

type SurveyPostgreSQL struct {
	db *gorm.DB
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{db: db}
}

func (s *SurveyPostgreSQL) Create(ctx context.Context, survey *models.Survey) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range survey.Questions {
			survey.Questions[i].SurveyID = survey.ID
			if survey.Questions[i].Position == 0 {
				survey.Questions[i].Position = i
			}
		}
		if err := tx.Create(survey).Error; err != nil {
			return fmt.Errorf("failed to create survey: %w", err)
		}
		return nil
	})
}

func (s *SurveyPostgreSQL) GetByID(ctx context.Context, id string) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&survey, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get survey %s: %w", id, err)
	}
	return &survey, nil
}

func (s *SurveyPostgreSQL) List(ctx context.Context) ([]*models.Survey, error) {
	var surveys []*models.Survey
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&surveys).Error; err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, nil
}
