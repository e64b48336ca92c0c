package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("date_ymd", validateDateYMD)
	validator.RegisterValidation("iana_tz", validateTimezone)

	return validator
}

func validateDateYMD(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateTimezone(fl validator.FieldLevel) bool {
	_, err := time.LoadLocation(fl.Field().String())
	return err == nil
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "date_ymd":
		return "must be a date in YYYY-MM-DD form"
	case "iana_tz":
		return "must be a valid IANA timezone name"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
