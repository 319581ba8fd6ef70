package models

import (
	"time"

	"gorm.io/datatypes"
)

type ImportJobStatus string

const (
	ImportPending    ImportJobStatus = "pending"
	ImportProcessing ImportJobStatus = "processing"
	ImportCompleted  ImportJobStatus = "completed"
	ImportFailed     ImportJobStatus = "failed"
)

// ImportJob records one response-file import: how many rows the file held,
// how many produced canonical responses, and the per-row faults for the rest.
type ImportJob struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"` // UUID
	SurveyID string `json:"survey_id" gorm:"index;size:64"`

	FileName string `json:"file_name" gorm:"size:255"`
	FileType string `json:"file_type" gorm:"size:20"` // csv, json

	Status ImportJobStatus `json:"status" gorm:"default:pending;index"`

	TotalRows    int `json:"total_rows"`
	SuccessCount int `json:"success_count"`
	SkippedCount int `json:"skipped_count"`

	// Errors stores []ImportRowError.
	Errors datatypes.JSON `json:"errors" gorm:"type:jsonb"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (ImportJob) TableName() string {
	return "response_import_jobs"
}

// ImportRowError is a per-row fault: the row is skipped, the batch continues.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}
