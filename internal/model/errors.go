package model

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindConfiguration   ErrorKind = "configuration"
	KindValidation      ErrorKind = "validation"
	KindExternalService ErrorKind = "external_service"
	KindPersistenceRead ErrorKind = "persistence_read"
)

// Error carries a kind and a message safe to show the user. Err keeps the
// underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotConfigured)
// holds for every configuration failure.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

const BreakdownFailedMessage = "could not break down the task, try again"

var (
	ErrNotConfigured   = &Error{Kind: KindConfiguration, Message: "task breakdown is not configured"}
	ErrEmptyText       = &Error{Kind: KindValidation, Message: "text is empty"}
	ErrBreakdownFailed = &Error{Kind: KindExternalService, Message: BreakdownFailedMessage}
	ErrCorruptStore    = &Error{Kind: KindPersistenceRead, Message: "stored tasks are unreadable"}
)

// Wrap returns a copy of base carrying cause.
func Wrap(base *Error, cause error) *Error {
	return &Error{Kind: base.Kind, Message: base.Message, Err: cause}
}

// KindOf returns the kind of the first *Error in the chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
