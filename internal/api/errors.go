package api

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindTransport: the backend could not be reached or answered with
	// something that is not JSON.
	KindTransport Kind = iota
	// KindBackend: a non-2xx answer.
	KindBackend
)

// Error is the single failure shape of every Client call. Status is 0 for
// transport failures.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Kind() Kind {
	if e.Status == 0 {
		return KindTransport
	}
	return KindBackend
}

func transportError(op string, err error) *Error {
	return &Error{Message: fmt.Sprintf("%s: %v", op, err), Err: err}
}

// IsTransport reports whether err is a Client failure that never reached a
// backend handler.
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind() == KindTransport
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
