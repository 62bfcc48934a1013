package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrOutOfRange is a sentinel for index arguments outside a collection.
	ErrOutOfRange = errors.New("out of range")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: content failed its contract. Never retried.
	KindValidation
	// KindTransient: network/storage failure. Retryable with bounded attempts.
	KindTransient
	// KindAuth: session expired or token rejected. Propagated, never retried.
	KindAuth
)

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("error (kind %d)", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(code string, err error) *Error {
	return &Error{Kind: KindValidation, Code: code, Err: err}
}

func Transient(code string, err error) *Error {
	return &Error{Kind: KindTransient, Code: code, Err: err}
}

func Auth(code string, err error) *Error {
	return &Error{Kind: KindAuth, Code: code, Err: err}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrUnauthorized) {
		return KindAuth
	}
	return KindUnknown
}

func IsValidation(err error) bool { return kindOf(err) == KindValidation }
func IsTransient(err error) bool  { return kindOf(err) == KindTransient }
func IsAuth(err error) bool       { return kindOf(err) == KindAuth }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
