// Package apperr defines the error kinds study workflows return to the
// presentation layers: ingestion, generation, not-found and validation.
package apperr

import (
	"errors"
	"fmt"
)

// IngestionError reports that a document could not be staged, read,
// embedded or written to its backing store.
type IngestionError struct {
	Op  string
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed: %s: %v", e.Op, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// GenerationError reports that the assistant could not produce a reply or
// a well-formed quiz.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NotFoundError reports an unknown topic.
type NotFoundError struct {
	Topic string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("topic %q not found", e.Topic)
}

// ValidationError reports a request that is malformed or not allowed in
// the current state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Ingestion(op string, err error) error  { return &IngestionError{Op: op, Err: err} }
func Generation(op string, err error) error { return &GenerationError{Op: op, Err: err} }
func NotFound(topic string) error           { return &NotFoundError{Topic: topic} }

// Invalid builds a ValidationError with a formatted message.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsIngestion(err error) bool {
	var e *IngestionError
	return errors.As(err, &e)
}

func IsGeneration(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// Kind names the error kind for wire encodings: "ingestion", "generation",
// "not_found", "validation" or "internal".
func Kind(err error) string {
	switch {
	case IsNotFound(err):
		return "not_found"
	case IsValidation(err):
		return "validation"
	case IsIngestion(err):
		return "ingestion"
	case IsGeneration(err):
		return "generation"
	default:
		return "internal"
	}
}
