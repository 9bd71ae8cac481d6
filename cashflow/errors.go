/*
errors.go - Centralized error types for the projection engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every failure is fatal to the run that produced it: a financial
  projection built from an incomplete input set is worse than none.

ERROR CATEGORIES:
  1. Range errors      - Expansion asked for an empty or inverted interval
  2. Definition errors - A definition lacks (or has a bad) kind-specific field
  3. Parse errors      - Malformed Hebrew-calendar day designator
  4. Pipeline errors   - A calculator ran before the metric it reads existed
  5. Store errors      - Lookups of missing definitions

USAGE:
  if errors.Is(err, cashflow.ErrMissingField) {
      var mf *cashflow.MissingFieldError
      errors.As(err, &mf)
      fmt.Println(mf.Definition, mf.Field)
  }

SEE ALSO:
  - expander.go: Raises range/definition/parse errors
  - api/handlers.go: Maps errors to HTTP status codes
*/
package cashflow

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when an expansion interval has start >= end.
	ErrInvalidRange = errors.New("invalid range: start must be before end")

	// ErrMissingField is returned when a definition lacks a field its
	// recurrence kind needs (e.g. a monthly bill without a day of month).
	ErrMissingField = errors.New("missing field")

	// ErrInvalidField is returned when a field is present but out of range.
	ErrInvalidField = errors.New("invalid field")

	// ErrParse is returned for malformed Hebrew-calendar day designators.
	ErrParse = errors.New("parse error")

	// ErrMetricMissing is returned when a calculator runs before the metric
	// it depends on has been stamped (latent needs balance, lead needs latent).
	ErrMetricMissing = errors.New("metric not stamped")

	// ErrInvalidControl is returned for malformed control parameters.
	ErrInvalidControl = errors.New("invalid control parameters")

	// ErrUnknownKind is returned when a recurrence kind name is not recognized.
	ErrUnknownKind = errors.New("unknown recurrence kind")

	// ErrDefinitionNotFound is returned when a referenced definition doesn't exist.
	ErrDefinitionNotFound = errors.New("definition not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RangeError reports the offending interval.
type RangeError struct {
	Start Date
	End   Date
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: %s is not before %s", e.Start, e.End)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// MissingFieldError identifies the definition and the absent field.
type MissingFieldError struct {
	Definition string
	Kind       Kind
	Field      string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("definition %q (%s): missing field %s", e.Definition, e.Kind, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// FieldError reports a field whose value is unusable.
type FieldError struct {
	Definition string
	Field      string
	Value      any
	Reason     string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("definition %q: field %s=%v: %s", e.Definition, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidField }

// ParseError reports a designator that couldn't be parsed.
type ParseError struct {
	Definition string
	Input      string
	Err        error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("cannot parse %q", e.Input)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Definition == "" {
		return msg
	}
	return fmt.Sprintf("definition %q: %s", e.Definition, msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// MetricMissingError names the metric a calculator expected.
type MetricMissingError struct {
	Metric string
	Index  int
}

func (e *MetricMissingError) Error() string {
	return fmt.Sprintf("metric %s not stamped on instance %d", e.Metric, e.Index)
}

func (e *MetricMissingError) Unwrap() error { return ErrMetricMissing }

// ControlError names the control key that failed to parse.
type ControlError struct {
	Key   string
	Value string
	Err   error
}

func (e *ControlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("control %s=%q: %v", e.Key, e.Value, e.Err)
	}
	return fmt.Sprintf("control %s is required", e.Key)
}

func (e *ControlError) Unwrap() error { return ErrInvalidControl }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrInvalidControl) ||
		errors.Is(err, ErrUnknownKind)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}
