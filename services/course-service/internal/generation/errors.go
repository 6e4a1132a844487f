package generation

import (
	"errors"
	"fmt"
	"net/http"
)

// Class is the closed set of failure kinds a generation call can end with
type Class int

const (
	ClassUnknown Class = iota
	ClassRateLimited
	ClassServiceUnavailable
	ClassUnauthorized
)

func (c Class) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassServiceUnavailable:
		return "service_unavailable"
	case ClassUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// ErrEmptyResponse is wrapped when the provider answered without any text
var ErrEmptyResponse = errors.New("empty response from AI provider")

// Error is a classified provider failure
type Error struct {
	Class      Class
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation failed (%s, status %d): %v", e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClassOf returns the class of a generation error, ClassUnknown for anything else
func ClassOf(err error) Class {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Class
	}
	return ClassUnknown
}

// ClassifyStatus maps an HTTP status code to a failure class
func ClassifyStatus(code int) Class {
	switch code {
	case http.StatusTooManyRequests:
		return ClassRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ClassServiceUnavailable
	case http.StatusUnauthorized, http.StatusForbidden:
		return ClassUnauthorized
	default:
		return ClassUnknown
	}
}

// switchable reports whether a failure of the primary credential should move traffic to the fallback
func switchable(c Class) bool {
	return c == ClassRateLimited || c == ClassServiceUnavailable
}
