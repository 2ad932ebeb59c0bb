// Package validation wraps validator/v10 with the tags shared by every
// scheduling payload.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"staffbook/pkg/clock"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/logger"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type FieldErrors []FieldError

func (v FieldErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type Validator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func New(log *logger.Logger) *Validator {
	v := validator.New()

	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("valid_time", func(fl validator.FieldLevel) bool {
		return clock.IsTime(fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register 'valid_time' validator", "error", err)
	}
	if err := v.RegisterValidation("valid_date", func(fl validator.FieldLevel) bool {
		return clock.IsDate(fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register 'valid_date' validator", "error", err)
	}

	return &Validator{validate: v, log: log}
}

// Struct runs the struct tags and returns FieldErrors on failure.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) FieldErrors {
	var out FieldErrors
	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "required_with":
			message = fmt.Sprintf("%s is required when %s is set", err.Field(), err.Param())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid id", err.Field())
		case "valid_time":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		case "valid_date":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		}

		out = append(out, FieldError{Field: err.Field(), Message: message})
	}
	return out
}

// AsAppError turns a validation failure into the VALIDATION_ERROR response.
// Errors that already are AppErrors pass through.
func AsAppError(message string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	var fields FieldErrors
	if errors.As(err, &fields) {
		return apperrors.Validation(message, map[string]any{"errors": []FieldError(fields)})
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// Field builds a single-field failure for cross-field rules the tags cannot express.
func Field(field, message string) error {
	return FieldErrors{{Field: field, Message: message}}
}
