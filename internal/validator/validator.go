// Package validator wraps struct-tag validation for the engine's request
// DTOs and survey definitions.
package validator

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/CAPTRSTEAM/survey-app-sub000/internal/errors"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
)

type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ToValidationErrors converts a validator error into the shared typed form
func (v *Validator) ToValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
		return converted
	}
	return err
}

func registerCustomValidators(v *validator.Validate) {
	v.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return models.QuestionType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("response_status", func(fl validator.FieldLevel) bool {
		return models.ResponseStatus(fl.Field().String()).Valid()
	})
}
