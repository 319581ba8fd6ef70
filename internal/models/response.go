package models

import "time"

type ResponseStatus string

const (
	StatusCompleted ResponseStatus = "completed"
	StatusPartial   ResponseStatus = "partial"
	StatusAbandoned ResponseStatus = "abandoned"
)

func (s ResponseStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusAbandoned:
		return true
	}
	return false
}

// SurveyResponse is the canonical response record every ingest source is
// normalized into. Instances are created by the response mapper and never
// mutated afterwards; the only deletion path is a bulk clear of a survey's
// response store.
//
// Answers maps question id to an answer value whose shape depends on the
// question type: string for text/radio/likert/yesno, []string (or a JSON
// array) for checkbox, an integer 1-5 for rating, and a map of option to
// rank for ranking questions.
type SurveyResponse struct {
	ID          string         `json:"id"`
	SurveyID    string         `json:"surveyId"`
	SurveyTitle string         `json:"surveyTitle,omitempty"`
	Answers     map[string]any `json:"answers"`

	// Timestamp is ISO-8601; CompletedAt is set only for completed
	// responses.
	Timestamp   string `json:"timestamp"`
	CompletedAt string `json:"completedAt,omitempty"`

	SessionID string         `json:"sessionId,omitempty"`
	TimeSpent *int           `json:"timeSpent,omitempty"`
	Status    ResponseStatus `json:"status"`

	// Provenance from the platform envelope, when present.
	UserID         string `json:"userId,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	ExerciseID     string `json:"exerciseId,omitempty"`
}

// Time parses the response timestamp. ok is false for a missing or
// unparsable value; such responses are excluded from the over-time
// series only, never from counts.
func (r *SurveyResponse) Time() (time.Time, bool) {
	if r.Timestamp == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, r.Timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Answered reports whether the response carries a non-empty answer for
// the given question id.
func (r *SurveyResponse) Answered(questionID string) bool {
	v, ok := r.Answers[questionID]
	if !ok || v == nil {
		return false
	}
	switch a := v.(type) {
	case string:
		return a != ""
	case []any:
		return len(a) > 0
	case []string:
		return len(a) > 0
	case map[string]any:
		return len(a) > 0
	}
	return true
}
