// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects field errors from catalog and session inputs and
// reports them as one VALIDATION_ERROR.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/fichas/internal/platform/apperr"
)

// ErrInvalidJSON rejects a session command body that does not decode.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

const failedMessage = "Validation failed"

// Validator is used once per call and is not safe for concurrent use.
//
//	err := (&validate.Validator{}).
//		Required("id", recordID).
//		Range("page_size", size, 1, 100).
//		Err()
type Validator struct {
	errs []apperr.FieldError
}

// Required rejects a blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(field, strings.TrimSpace(value) == "", "This field is required")
}

// MaxLen counts runes, so accented search text is not cut short.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	return v.Custom(field, utf8.RuneCountInString(value) > max, fmt.Sprintf("Maximum %d characters", max))
}

// Range accepts min and max themselves.
func (v *Validator) Range(field string, value, min, max int) *Validator {
	return v.Custom(field, value < min || value > max, fmt.Sprintf("Must be between %d and %d", min, max))
}

// Custom records message against field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err is nil when every rule passed.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError(failedMessage, v.errs...)
}

// RequiredError reports a single failed field.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError(failedMessage, apperr.FieldError{Field: field, Message: message})
}
