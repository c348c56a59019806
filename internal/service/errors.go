package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/pkg/validate"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("not allowed to access this resource")
	ErrRegistrationClosed = errors.New("registration deadline has passed")
	ErrEventFull          = errors.New("event is full")
	ErrDuplicateFeedback  = errors.New("feedback already submitted for this event")
)

// ValidationError reports malformed or incomplete input.
type ValidationError struct {
	Fields []validate.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: []validate.FieldError{{Field: field, Message: msg}}}
}

func invalidFields(fields []validate.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// StoreError reports a failed or timed-out call to the remote store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// storeErr maps repository errors onto the service taxonomy.
func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return &StoreError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
