package errors

import (
	"errors"
)

// Is reports whether err matches target. Two nil errors do not match.
func Is(err, target error) bool {
	if err == nil && target == nil {
		return false
	}
	return errors.Is(err, target)
}

func As[T error](err error, target *T) bool {
	if err == nil {
		return false
	}
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}

// GetErrorCode returns the code of the first coded error in err's chain.
func GetErrorCode(err error) Code {
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return ""
}

// Detail returns the first detail named key of type T on a coded error in
// err's tree. Joined errors are searched in order, depth first, so the
// location of a failed preload is found behind PreloadAll's join.
func Detail[T any](err error, key string) (T, bool) {
	var zero T
	if err == nil {
		return zero, false
	}

	if e, ok := err.(*Error); ok {
		if v, ok := e.Details[key].(T); ok {
			return v, true
		}
	}

	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return Detail[T](u.Unwrap(), key)
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if v, ok := Detail[T](inner, key); ok {
				return v, true
			}
		}
	}
	return zero, false
}
