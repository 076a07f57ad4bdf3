package application

import (
	"errors"
	"strings"
)

var (
	// ErrRestaurantNotFound is returned for unknown restaurant IDs.
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrReviewNotFound is returned for unknown review IDs.
	ErrReviewNotFound = errors.New("review not found")

	// ErrBiomeNotFound is returned for unknown biome IDs.
	ErrBiomeNotFound = errors.New("biome not found")

	// ErrNotReviewOwner rejects edits by anyone but the original
	// reviewer. The reviewer email is the demo identity surrogate.
	ErrNotReviewOwner = errors.New("review belongs to another reviewer")
)

// FieldError carries a field-level validation message.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every field failure of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

type validationCollector struct {
	fields []FieldError
}

func (c *validationCollector) add(field, message string) {
	c.fields = append(c.fields, FieldError{Field: field, Message: message})
}

func (c *validationCollector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}
