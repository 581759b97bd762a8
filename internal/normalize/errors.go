package normalize

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedChoiceKey is matched by errors for choice codes that are
	// not integers.
	ErrMalformedChoiceKey = errors.New("malformed choice key")

	// ErrDuplicateChoiceCode is matched by errors for enumerations that
	// declare the same code twice.
	ErrDuplicateChoiceCode = errors.New("duplicate choice code")
)

type MalformedChoiceKeyError struct {
	Code string
	Err  error
}

func (e *MalformedChoiceKeyError) Error() string {
	return fmt.Sprintf("choice code %q is not an integer: %v", e.Code, e.Err)
}

func (e *MalformedChoiceKeyError) Is(target error) bool { return target == ErrMalformedChoiceKey }
func (e *MalformedChoiceKeyError) Unwrap() error        { return e.Err }

type DuplicateChoiceCodeError struct {
	Code   string
	Labels [2]string
}

func (e *DuplicateChoiceCodeError) Error() string {
	return fmt.Sprintf("choice code %s declared twice (%q, %q)", e.Code, e.Labels[0], e.Labels[1])
}

func (e *DuplicateChoiceCodeError) Is(target error) bool { return target == ErrDuplicateChoiceCode }

// SignalError names the message and signal a fatal error was raised for.
type SignalError struct {
	Message string
	Signal  string
	Err     error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("message %q signal %q: %v", e.Message, e.Signal, e.Err)
}

func (e *SignalError) Unwrap() error { return e.Err }
