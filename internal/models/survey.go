package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionRating   QuestionType = "rating"
	QuestionLikert   QuestionType = "likert"
	QuestionYesNo    QuestionType = "yesno"
	QuestionRanking  QuestionType = "ranking"
)

// HasOptions reports whether the question type carries an option list.
func (t QuestionType) HasOptions() bool {
	switch t {
	case QuestionRadio, QuestionCheckbox, QuestionLikert, QuestionYesNo, QuestionRanking:
		return true
	}
	return false
}

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionRadio, QuestionCheckbox, QuestionRating,
		QuestionLikert, QuestionYesNo, QuestionRanking:
		return true
	}
	return false
}

type Survey struct {
	ID          string  `json:"id" gorm:"primaryKey;size:64"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description,omitempty" gorm:"type:text" validate:"omitempty,max=2000"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Ordered by Position; statistics follow this order.
	Questions []Question `json:"questions" gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" validate:"dive"`
}

// Question definitions are immutable once responses reference them;
// answers keyed by a question id that no longer exists are simply
// skipped by the aggregator.
type Question struct {
	ID       string       `json:"id" gorm:"primaryKey;size:64"`
	SurveyID string       `json:"surveyId" gorm:"index;size:64"`
	Type     QuestionType `json:"type" gorm:"not null;size:16" validate:"required"`
	Text     string       `json:"text" gorm:"not null;type:text" validate:"required"`
	Required bool         `json:"required"`
	Position int          `json:"position"`

	// Options holds a JSON array of option strings for choice, scale and
	// ranking types; empty otherwise.
	Options datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"`
}

func (Survey) TableName() string {
	return "surveys"
}

func (Question) TableName() string {
	return "survey_questions"
}

// OptionList decodes the stored option array. A missing or malformed
// options column yields an empty list, never an error.
func (q Question) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
