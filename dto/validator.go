package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/lac-hong-legacy/learnhub/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("difficulty", validateDifficulty)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateDifficulty(fl validator.FieldLevel) bool {
	_, err := model.ParseDifficulty(fl.Field().String())
	return err == nil
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "min":
				message = fieldError.Field() + " must be at least " + fieldError.Param()
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param()
			case "oneof":
				message = fieldError.Field() + " must be one of: " + fieldError.Param()
			case "difficulty":
				message = fieldError.Field() + " must be EASY, MEDIUM or HARD"
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}

// Validate runs struct validation and returns the formatted field errors, if any.
func Validate(v interface{}) []ValidationError {
	if err := validate.Struct(v); err != nil {
		if errs := FormatValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return []ValidationError{{Field: "", Message: err.Error()}}
	}
	return nil
}
