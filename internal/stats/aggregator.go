// Package stats computes per-question and survey-level statistics from a
// collection of canonical responses.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/normalize"
)

// ComputeSurveyStatistics aggregates a response collection against a survey
// definition. Question statistics follow the survey's question order.
func ComputeSurveyStatistics(survey *models.Survey, responses []*models.SurveyResponse) *models.SurveyStatistics {
	result := &models.SurveyStatistics{
		SurveyID:          survey.ID,
		TotalResponses:    len(responses),
		QuestionStats:     make([]models.QuestionStatistics, 0, len(survey.Questions)),
		ResponsesOverTime: responsesOverTime(responses),
		GeneratedAt:       time.Now(),
	}

	completed := 0
	timeSpentSum, timeSpentCount := 0, 0
	for _, r := range responses {
		if r.Status != models.StatusCompleted {
			continue
		}
		completed++
		if r.TimeSpent != nil {
			timeSpentSum += *r.TimeSpent
			timeSpentCount++
		}
	}
	if len(responses) > 0 {
		result.CompletionRate = round2(100 * float64(completed) / float64(len(responses)))
	}
	if timeSpentCount > 0 {
		result.AverageTimeSpent = int(math.Round(float64(timeSpentSum) / float64(timeSpentCount)))
	}

	questions := make([]models.Question, len(survey.Questions))
	copy(questions, survey.Questions)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Position < questions[j].Position })
	for _, q := range questions {
		result.QuestionStats = append(result.QuestionStats, ComputeQuestionStatistics(q, responses))
	}
	return result
}

// ComputeQuestionStatistics aggregates answers to one question, dispatching
// on the question type. The response-rate denominator is always the full
// collection size, answered or not.
func ComputeQuestionStatistics(q models.Question, responses []*models.SurveyResponse) models.QuestionStatistics {
	qs := models.QuestionStatistics{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		QuestionType: q.Type,
	}

	for _, r := range responses {
		if r.Answered(q.ID) {
			qs.TotalResponses++
		}
	}
	if len(responses) > 0 {
		qs.ResponseRate = round2(100 * float64(qs.TotalResponses) / float64(len(responses)))
	}

	switch q.Type {
	case models.QuestionText:
		qs.TextResponses = collectText(q.ID, responses)
	case models.QuestionRadio, models.QuestionYesNo:
		qs.OptionCounts = countSingleChoice(q.ID, responses)
	case models.QuestionCheckbox:
		qs.OptionCounts = countMultiChoice(q.ID, responses)
	case models.QuestionRating, models.QuestionLikert:
		qs.AverageRating, qs.RatingDistribution = aggregateRatings(q, responses)
	case models.QuestionRanking:
		// Ranking answers are stored but not aggregated into summary
		// distributions.
	}
	return qs
}

func collectText(questionID string, responses []*models.SurveyResponse) []string {
	var texts []string
	for _, r := range responses {
		if s, ok := r.Answers[questionID].(string); ok && s != "" {
			texts = append(texts, s)
		}
	}
	return texts
}

func countSingleChoice(questionID string, responses []*models.SurveyResponse) map[string]int {
	counts := map[string]int{}
	for _, r := range responses {
		if !r.Answered(questionID) {
			continue
		}
		if s := normalize.Stringify(r.Answers[questionID]); s != "" {
			counts[s]++
		}
	}
	return counts
}

// countMultiChoice increments one bucket per selected option, so a single
// response can contribute to several buckets.
func countMultiChoice(questionID string, responses []*models.SurveyResponse) map[string]int {
	counts := map[string]int{}
	for _, r := range responses {
		switch selected := r.Answers[questionID].(type) {
		case []any:
			for _, opt := range selected {
				if s := normalize.Stringify(opt); s != "" {
					counts[s]++
				}
			}
		case []string:
			for _, s := range selected {
				if s != "" {
					counts[s]++
				}
			}
		}
	}
	return counts
}

func aggregateRatings(q models.Question, responses []*models.SurveyResponse) (*float64, map[string]int) {
	options := q.OptionList()
	distribution := map[string]int{}
	sum, count := 0, 0
	for _, r := range responses {
		if !r.Answered(q.ID) {
			continue
		}
		v, ok := resolveRating(r.Answers[q.ID], options)
		if !ok {
			continue
		}
		distribution[strconv.Itoa(v)]++
		sum += v
		count++
	}
	if count == 0 {
		return nil, distribution
	}
	avg := round2(float64(sum) / float64(count))
	return &avg, distribution
}

// resolveRating coerces a rating/likert answer to an integer. Numbers pass
// through, numeric strings are parsed, and any other string resolves as its
// 1-based index within the question's options. Everything else is dropped.
func resolveRating(v any, options []string) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		if parsed, err := strconv.Atoi(s); err == nil {
			return parsed, true
		}
		for i, opt := range options {
			if opt == s {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// responsesOverTime buckets responses by the UTC calendar date of their
// timestamp, ascending. Responses with a missing or invalid timestamp are
// excluded from this series only.
func responsesOverTime(responses []*models.SurveyResponse) []models.ResponsesByDate {
	byDate := map[string]int{}
	for _, r := range responses {
		t, ok := r.Time()
		if !ok {
			continue
		}
		byDate[t.UTC().Format("2006-01-02")]++
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	series := make([]models.ResponsesByDate, 0, len(dates))
	for _, d := range dates {
		series = append(series, models.ResponsesByDate{Date: d, Count: byDate[d]})
	}
	return series
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
