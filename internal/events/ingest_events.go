package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the ingest lifecycle events the engine publishes
type EventType string

const (
	// Import events
	EventResponsesImported EventType = "responses.imported"
	EventResponsesCleared  EventType = "responses.cleared"

	// Remote source events
	EventRemoteFetchDegraded EventType = "remote.fetch_degraded"
)

// IngestEvent is the base event structure for all ingest events
type IngestEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ResponsesImportedEvent reports one completed file import.
type ResponsesImportedEvent struct {
	JobID     string `json:"job_id"`
	SurveyID  string `json:"survey_id"`
	FileType  string `json:"file_type"`
	TotalRows int    `json:"total_rows"`
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
}

// ResponsesClearedEvent reports a bulk clear of a survey's response store.
type ResponsesClearedEvent struct {
	SurveyID string `json:"survey_id"`
}

// RemoteFetchDegradedEvent reports a remote fetch that fell back to the
// local store.
type RemoteFetchDegradedEvent struct {
	SurveyID string `json:"survey_id"`
	Reason   string `json:"reason"`
}

func NewResponsesImportedEvent(jobID, surveyID, fileType string, totalRows, imported, skipped int) *IngestEvent {
	return &IngestEvent{
		ID:        uuid.NewString(),
		Type:      EventResponsesImported,
		Timestamp: time.Now(),
		Source:    "survey-response-engine",
		Version:   "1.0",
		Data: ResponsesImportedEvent{
			JobID:     jobID,
			SurveyID:  surveyID,
			FileType:  fileType,
			TotalRows: totalRows,
			Imported:  imported,
			Skipped:   skipped,
		},
	}
}

func NewResponsesClearedEvent(surveyID string) *IngestEvent {
	return &IngestEvent{
		ID:        uuid.NewString(),
		Type:      EventResponsesCleared,
		Timestamp: time.Now(),
		Source:    "survey-response-engine",
		Version:   "1.0",
		Data:      ResponsesClearedEvent{SurveyID: surveyID},
	}
}

func NewRemoteFetchDegradedEvent(surveyID, reason string) *IngestEvent {
	return &IngestEvent{
		ID:        uuid.NewString(),
		Type:      EventRemoteFetchDegraded,
		Timestamp: time.Now(),
		Source:    "survey-response-engine",
		Version:   "1.0",
		Data:      RemoteFetchDegradedEvent{SurveyID: surveyID, Reason: reason},
	}
}
