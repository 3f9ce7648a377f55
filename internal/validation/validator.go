// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package validation provides struct validation using go-playground/validator
// v10 behind a thread-safe singleton, with custom validators for the catalog
// domain enums and error translation to the API's field-level detail format.
//
// Example usage:
//
//	type SearchRequest struct {
//	    Type   string `validate:"omitempty,listingtype"`
//	    SortBy string `validate:"omitempty,sortkey"`
//	    Limit  int    `validate:"min=0,max=100"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    // reject with 400 and apiErr details
//	}
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kardolabs/estatesync/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// langTagPattern matches BCP-47-ish language tags the catalog accepts:
// a two or three letter primary tag with an optional region subtag.
var langTagPattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2})?$`)

// ValidationError is a single field validation failure.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string { return e.tag }

// Error returns a human-readable error message.
func (e *ValidationError) Error() string { return e.message }

// RequestValidationError is a collection of field validation failures for
// one request.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (ve *RequestValidationError) Errors() []ValidationError { return ve.errors }

// Error implements the error interface.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	var messages []string
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ToAPIError converts the validation failures to the API error shape with
// field-level details.
func (ve *RequestValidationError) ToAPIError() *models.APIError {
	if len(ve.errors) == 0 {
		return &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: "Validation failed",
		}
	}

	if len(ve.errors) == 1 {
		err := ve.errors[0]
		return &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: err.message,
			Details: map[string]interface{}{
				"field": err.field,
				"tag":   err.tag,
				"value": err.value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	var messages []string
	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
		messages = append(messages, fmt.Sprintf("%s: %s", err.field, err.message))
	}

	return &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{
			"fields": fields,
		},
	}
}

// GetValidator returns the singleton validator with the catalog's custom
// validators registered. Thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Domain enum validators. Registration errors only occur for
		// empty tags or nil funcs, so they are impossible here.
		_ = validate.RegisterValidation("listingtype", func(fl validator.FieldLevel) bool {
			return models.ValidListingType(fl.Field().String())
		})
		_ = validate.RegisterValidation("offertype", func(fl validator.FieldLevel) bool {
			return models.ValidOfferType(fl.Field().String())
		})
		_ = validate.RegisterValidation("liststatus", func(fl validator.FieldLevel) bool {
			return models.ValidListingStatus(fl.Field().String())
		})
		_ = validate.RegisterValidation("inquirystatus", func(fl validator.FieldLevel) bool {
			return models.ValidInquiryStatus(fl.Field().String())
		})
		_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.ValidRole(fl.Field().String())
		})
		_ = validate.RegisterValidation("sortkey", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "price", "date", "views":
				return true
			}
			return false
		})
		_ = validate.RegisterValidation("sortorder", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "asc", "desc":
				return true
			}
			return false
		})
		_ = validate.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
			return langTagPattern.MatchString(fl.Field().String())
		})
	})

	return validate
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil on success, or *RequestValidationError on failure.
func ValidateStruct(s interface{}) *RequestValidationError {
	v := GetValidator()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":      "%s is required",
	"email":         "%s must be a valid email address",
	"latitude":      "%s must be a valid latitude (-90 to 90)",
	"longitude":     "%s must be a valid longitude (-180 to 180)",
	"listingtype":   "%s must be one of: house, apartment, villa, land",
	"offertype":     "%s must be one of: sale, rent",
	"liststatus":    "%s must be one of: active, sold, inactive",
	"inquirystatus": "%s must be one of: pending, replied, closed",
	"role":          "%s must be one of: customer, agent, admin, super-admin",
	"sortkey":       "%s must be one of: price, date, views",
	"sortorder":     "%s must be one of: asc, desc",
	"langtag":       "%s must be a language tag like en or ar-IQ",
	"uuid":          "%s must be a valid UUID",
}

// errorMessageWithParam maps validation tags to templates that include the
// tag parameter.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

// translateError converts a validator.FieldError to a human-readable
// message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
