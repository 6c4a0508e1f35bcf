// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package validation provides struct and field validation for simrec inputs
// using go-playground/validator v10.
//
// A single validator instance is shared process-wide. It carries the custom
// tags used by simrec configuration and interaction records:
//
//   - simmetric: the value names a registered similarity metric
//   - recmode:   the value names a recommendation mode
//
// Failures come back as *Errors, a list of *ValidationError values. Code
// that rejects a single value outside of struct validation (the pair store
// refusing a non-canonical pair, for example) builds a *ValidationError
// directly with NewFieldError so callers can match the cause with errors.Is.
//
//	type Interaction struct {
//	    UserID int64  `validate:"gt=0"`
//	    Kind   string `validate:"oneof=view favorite anonymous_view"`
//	}
//
//	if err := validation.ValidateStruct(&in); err != nil {
//	    return err
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tomtom215/simrec/internal/recommend"
	"github.com/tomtom215/simrec/internal/recommend/similarity"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is a single field that failed validation.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   any
	message string
	err     error
}

// NewFieldError builds a ValidationError for a value rejected outside of
// struct validation. cause is returned by Unwrap.
func NewFieldError(field, tag string, value any, cause error) *ValidationError {
	msg := fmt.Sprintf("%s failed %s validation", field, tag)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", field, cause)
	}
	return &ValidationError{field: field, tag: tag, value: value, message: msg, err: cause}
}

// Field returns the name of the field that failed validation.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string { return e.tag }

// Param returns the tag parameter, e.g. "100" for "max=100".
func (e *ValidationError) Param() string { return e.param }

// Value returns the rejected value.
func (e *ValidationError) Value() any { return e.value }

// Error returns a human-readable message.
func (e *ValidationError) Error() string { return e.message }

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error { return e.err }

// Errors collects the field errors of one validation pass.
type Errors struct {
	errors []*ValidationError
}

// Errors returns the individual field errors.
func (ve *Errors) Errors() []*ValidationError {
	return ve.errors
}

// Error joins the field messages.
func (ve *Errors) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// Unwrap exposes the field errors to errors.Is and errors.As.
func (ve *Errors) Unwrap() []error {
	out := make([]error, len(ve.errors))
	for i, err := range ve.errors {
		out[i] = err
	}
	return out
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails for an empty tag or nil func.
		_ = validate.RegisterValidation("simmetric", func(fl validator.FieldLevel) bool {
			_, err := similarity.Lookup[string](similarity.Metric(fl.Field().String()))
			return err == nil
		})
		_ = validate.RegisterValidation("recmode", func(fl validator.FieldLevel) bool {
			_, err := recommend.ParseMode(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// ValidateStruct validates s. It returns nil or an *Errors.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Errors{errors: []*ValidationError{{
			field:   "unknown",
			tag:     "unknown",
			message: err.Error(),
			err:     err,
		}}}
	}

	out := make([]*ValidationError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = &ValidationError{
			field:   fe.Namespace(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe),
		}
	}
	return &Errors{errors: out}
}

var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"simmetric": "%s must name a similarity metric (cosine, sorensen, euclidean, pearson, dot)",
	"recmode":   "%s must be raw_sum or weighted_average",
	"file":      "%s must be an existing file",
	"dir":       "%s must be an existing directory",
	"url":       "%s must be a valid URL",
}

var errorMessageWithParam = map[string]string{
	"oneof":           "%s must be one of: %s",
	"gte":             "%s must be greater than or equal to %s",
	"lte":             "%s must be less than or equal to %s",
	"gt":              "%s must be greater than %s",
	"lt":              "%s must be less than %s",
	"required_if":     "%s is required when %s",
	"required_unless": "%s is required unless %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Namespace()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

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
