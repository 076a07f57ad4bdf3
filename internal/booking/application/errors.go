package application

import (
	"errors"
	"strings"
)

var (
	// ErrRestaurantNotFound is returned when an availability check or
	// booking references an unknown restaurant. Never treated as
	// "zero capacity".
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrReservationNotFound is returned for unknown reservation IDs.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrSlotUnavailable signals that the capacity policy rejected the
	// requested slot. Distinct from validation failures so callers can
	// offer alternative slots.
	ErrSlotUnavailable = errors.New("slot is not available at this time")

	// ErrReservationCancelled guards updates against terminal
	// cancelled reservations.
	ErrReservationCancelled = errors.New("reservation has been cancelled")

	// ErrInvalidTransition rejects status changes outside the
	// pending → confirmed → completed / cancelled machine.
	ErrInvalidTransition = errors.New("invalid reservation status transition")
)

// FieldError carries a field-level validation message.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every field failure of a request so the
// caller sees the full list at once; nothing is partially applied.
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

// validationCollector accumulates field errors during request checks.
type validationCollector struct {
	fields []FieldError
}

func (c *validationCollector) add(field string, err error) {
	if err != nil {
		c.fields = append(c.fields, FieldError{Field: field, Message: err.Error()})
	}
}

func (c *validationCollector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}
