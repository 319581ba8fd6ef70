package models

import "time"

// QuestionStatistics summarizes answers to one question across a response
// collection. Which optional fields are populated depends on the question
// type: OptionCounts for choice types, TextResponses for free text,
// AverageRating and RatingDistribution for rating/likert scales. Ranking
// answers are stored but not aggregated.
type QuestionStatistics struct {
	QuestionID   string       `json:"questionId"`
	QuestionText string       `json:"questionText"`
	QuestionType QuestionType `json:"questionType"`

	// TotalResponses counts responses with a non-empty answer for this
	// question; ResponseRate is relative to the full collection size.
	TotalResponses int     `json:"totalResponses"`
	ResponseRate   float64 `json:"responseRate"`

	OptionCounts       map[string]int `json:"optionCounts,omitempty"`
	TextResponses      []string       `json:"textResponses,omitempty"`
	AverageRating      *float64       `json:"averageRating,omitempty"`
	RatingDistribution map[string]int `json:"ratingDistribution,omitempty"`
}

type ResponsesByDate struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Count int    `json:"count"`
}

type SurveyStatistics struct {
	SurveyID       string  `json:"surveyId"`
	TotalResponses int     `json:"totalResponses"`
	CompletionRate float64 `json:"completionRate"`

	// AverageTimeSpent is in seconds, averaged over completed responses
	// that reported a time spent value.
	AverageTimeSpent int `json:"averageTimeSpent"`

	// QuestionStats follows the survey's question order.
	QuestionStats     []QuestionStatistics `json:"questionStats"`
	ResponsesOverTime []ResponsesByDate    `json:"responsesOverTime"`

	GeneratedAt time.Time `json:"generatedAt"`
}
