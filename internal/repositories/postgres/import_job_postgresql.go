package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories"
	"gorm.io/gorm"
)

type ImportJobPostgreSQL struct {
	db *gorm.DB
}

func NewImportJobPostgreSQL(db *gorm.DB) repositories.ImportJobRepository {
	return &ImportJobPostgreSQL{db: db}
}

func (r *ImportJobPostgreSQL) Create(ctx context.Context, job *models.ImportJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

func (r *ImportJobPostgreSQL) Update(ctx context.Context, job *models.ImportJob) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to update import job %s: %w", job.ID, err)
	}
	return nil
}

func (r *ImportJobPostgreSQL) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	var job models.ImportJob
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get import job %s: %w", id, err)
	}
	return &job, nil
}
