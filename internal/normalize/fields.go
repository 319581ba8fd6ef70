// Package normalize converts raw survey-response records from any ingest
// source (analytical query rows, CSV exports, JSON imports, platform API
// DTOs) into the canonical SurveyResponse model.
package normalize

import (
	"strconv"
	"strings"
)

// Alias tables for the logical fields of a response record. Each list is a
// priority order: the most specific spelling first. The resolver consults
// them through Resolve instead of scattering per-source conditionals.
var (
	DataAliases        = []string{"data", "DATA", "survey_data", "SURVEY_DATA", "game_data", "GAME_DATA"}
	IDAliases          = []string{"id", "ID", "response_id", "RESPONSE_ID"}
	SurveyIDAliases    = []string{"surveyId", "survey_id", "SURVEY_ID"}
	SurveyTitleAliases = []string{"surveyTitle", "survey_title", "SURVEY_TITLE", "title"}
	TimestampAliases   = []string{"timestamp", "TIMESTAMP", "createdAt", "created_at"}
	CreationTSAliases  = []string{"creationTimestamp", "creation_ts", "CREATION_TS"}
	CompletedAtAliases = []string{"completedAt", "completed_at", "COMPLETED_AT"}
	SessionIDAliases   = []string{"sessionId", "session_id", "SESSION_ID"}
	TimeSpentAliases   = []string{"timeSpent", "time_spent", "TIME_SPENT"}
	StatusAliases      = []string{"status", "STATUS"}
	UserIDAliases      = []string{"userId", "user_id", "USER_ID"}
	OrgIDAliases       = []string{"organizationId", "organization_id", "ORGANIZATION_ID"}
	ExerciseIDAliases  = []string{"exerciseId", "exercise_id", "EXERCISE_ID"}
	AnswersAliases     = []string{"answers", "ANSWERS"}
)

// Resolve looks up a logical field on a raw record. For each candidate key,
// in order, it checks the exact key, then its uppercase form, then its
// lowercase form, and returns the first value present that is not nil.
// Absence is a valid, silent outcome.
func Resolve(record map[string]any, candidates []string) (any, bool) {
	if len(record) == 0 {
		return nil, false
	}
	for _, key := range candidates {
		for _, k := range []string{key, strings.ToUpper(key), strings.ToLower(key)} {
			if v, ok := record[k]; ok && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

// ResolveString resolves a field and renders it as a string. Numeric values
// are formatted without an exponent; other non-string values resolve to "".
func ResolveString(record map[string]any, candidates []string) string {
	v, ok := Resolve(record, candidates)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify renders scalar values the way the response model stores them.
func Stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}
