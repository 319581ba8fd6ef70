package normalize

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
)

// SourceHints carries per-batch context into the mapper: which source the
// rows came from (for log lines), the survey to assume when a row does not
// name one, and an optional survey filter.
type SourceHints struct {
	// Source labels the ingest origin: "csv", "json", "platform", "query".
	Source string

	// DefaultSurveyID/Title apply when neither the inner payload nor the
	// outer envelope name a survey (importing into a known survey context).
	DefaultSurveyID    string
	DefaultSurveyTitle string

	// FilterSurveyID, when set, excludes rows that resolve to a different
	// survey. Exclusion is not an error.
	FilterSurveyID string
}

// MapOutcome classifies one mapping attempt. Only MapFault counts against
// the batch; an excluded row belongs to another survey and is simply not
// part of the result.
type MapOutcome int

const (
	MapOK MapOutcome = iota
	MapExcluded
	MapFault
)

// Mapper turns one raw record into a canonical SurveyResponse. Every
// failure path returns nil with a logged warning naming the source row; it
// never panics and never aborts a batch.
type Mapper struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewMapper(logger *slog.Logger) *Mapper {
	return &Mapper{logger: logger, now: time.Now}
}

// MapToResponse normalizes one raw record. rowIndex identifies the row in
// its batch, both for log lines and for synthetic response ids.
func (m *Mapper) MapToResponse(raw map[string]any, hints SourceHints, rowIndex int) (*models.SurveyResponse, MapOutcome) {
	inner := raw
	if dataField, ok := Resolve(raw, DataAliases); ok {
		payload, err := Unwrap(dataField)
		if err != nil {
			m.logger.Warn("skipping response row",
				"source", hints.Source, "row", rowIndex, "error", err)
			return nil, MapFault
		}
		inner = payload
	}

	answers := extractAnswers(inner)

	// A record whose payload carries neither answers nor a survey reference
	// is not a response row at all (stray CSV line, empty envelope).
	if len(answers) == 0 &&
		ResolveString(inner, SurveyIDAliases) == "" &&
		ResolveString(raw, SurveyIDAliases) == "" {
		m.logger.Warn("skipping response row with no payload",
			"source", hints.Source, "row", rowIndex)
		return nil, MapFault
	}

	surveyID := ResolveString(inner, SurveyIDAliases)
	if surveyID == "" {
		surveyID = ResolveString(raw, SurveyIDAliases)
	}
	if surveyID == "" {
		surveyID = hints.DefaultSurveyID
	}
	if hints.FilterSurveyID != "" && surveyID != hints.FilterSurveyID {
		return nil, MapExcluded
	}

	surveyTitle := ResolveString(inner, SurveyTitleAliases)
	if surveyTitle == "" {
		surveyTitle = hints.DefaultSurveyTitle
	}

	id := ResolveString(inner, IDAliases)
	if id == "" {
		id = ResolveString(raw, IDAliases)
	}
	if id == "" {
		// Row index keeps ids unique within a batch even when rows share
		// a millisecond.
		id = fmt.Sprintf("response_%d_%d", m.now().UnixMilli(), rowIndex)
	}

	timestamp := m.resolveTimestamp(inner, raw)

	status := models.ResponseStatus(ResolveString(inner, StatusAliases))
	if !status.Valid() {
		status = models.StatusCompleted
	}

	resp := &models.SurveyResponse{
		ID:             id,
		SurveyID:       surveyID,
		SurveyTitle:    surveyTitle,
		Answers:        answers,
		Timestamp:      timestamp,
		CompletedAt:    m.resolveOptionalTime(inner, raw, CompletedAtAliases),
		SessionID:      resolveEither(inner, raw, SessionIDAliases),
		TimeSpent:      coerceTimeSpent(resolveValueEither(inner, raw, TimeSpentAliases)),
		Status:         status,
		UserID:         resolveEither(inner, raw, UserIDAliases),
		OrganizationID: resolveEither(inner, raw, OrgIDAliases),
		ExerciseID:     resolveEither(inner, raw, ExerciseIDAliases),
	}
	return resp, MapOK
}

func (m *Mapper) resolveTimestamp(inner, outer map[string]any) string {
	if v, ok := Resolve(inner, TimestampAliases); ok {
		if ts := coerceTimestamp(v); ts != "" {
			return ts
		}
	}
	if v, ok := Resolve(outer, TimestampAliases); ok {
		if ts := coerceTimestamp(v); ts != "" {
			return ts
		}
	}
	// Creation-timestamp column from the platform envelope or CSV export.
	if v, ok := Resolve(outer, CreationTSAliases); ok {
		if ts := coerceTimestamp(v); ts != "" {
			return ts
		}
	}
	return m.now().UTC().Format(time.RFC3339)
}

func (m *Mapper) resolveOptionalTime(inner, outer map[string]any, aliases []string) string {
	if v, ok := Resolve(inner, aliases); ok {
		return coerceTimestamp(v)
	}
	if v, ok := Resolve(outer, aliases); ok {
		return coerceTimestamp(v)
	}
	return ""
}

func resolveEither(inner, outer map[string]any, aliases []string) string {
	if s := ResolveString(inner, aliases); s != "" {
		return s
	}
	return ResolveString(outer, aliases)
}

func resolveValueEither(inner, outer map[string]any, aliases []string) any {
	if v, ok := Resolve(inner, aliases); ok {
		return v
	}
	v, _ := Resolve(outer, aliases)
	return v
}

// extractAnswers pulls the answers mapping from the inner payload. A
// response with zero answers is still valid (an abandoned session, say), so
// absence or a wrong shape yields an empty map, not a fault.
func extractAnswers(inner map[string]any) map[string]any {
	v, ok := Resolve(inner, AnswersAliases)
	if !ok {
		return map[string]any{}
	}
	answers, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return answers
}

// coerceTimeSpent turns a raw time-spent value into non-negative seconds.
// Non-numeric and negative values are dropped, not fatal.
func coerceTimeSpent(v any) *int {
	if v == nil {
		return nil
	}
	var seconds int
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		seconds = int(n)
	case int:
		seconds = n
	case int64:
		seconds = int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil
		}
		seconds = parsed
	default:
		return nil
	}
	if seconds < 0 {
		return nil
	}
	return &seconds
}

// coerceTimestamp renders a raw timestamp value as ISO-8601. Numeric values
// are epoch milliseconds from the platform's creationTimestamp; CSV exports
// carry the same milliseconds as digit strings.
func coerceTimestamp(v any) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if millis, err := strconv.ParseInt(s, 10, 64); err == nil && millis > 100_000_000_000 {
			return time.UnixMilli(millis).UTC().Format(time.RFC3339)
		}
		return s
	case float64:
		if t <= 0 {
			return ""
		}
		return time.UnixMilli(int64(t)).UTC().Format(time.RFC3339)
	case int64:
		if t <= 0 {
			return ""
		}
		return time.UnixMilli(t).UTC().Format(time.RFC3339)
	}
	return ""
}
