package service

import (
	"errors"
	"fmt"
)

// FailureKind tags why a location lookup failed
type FailureKind int

const (
	// FailureTransport: the upstream could not be reached or refused the call
	FailureTransport FailureKind = iota + 1
	// FailureDecode: the upstream body was not valid JSON
	FailureDecode
	// FailureUnexpected: anything else, e.g. JSON of the wrong shape
	FailureUnexpected
)

// String returns the metric/log label for the kind
func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureDecode:
		return "decode"
	default:
		return "unexpected"
	}
}

// Message is the plain-text body returned to the client for this kind
func (k FailureKind) Message() string {
	switch k {
	case FailureTransport:
		return "Error fetching location (curl failed)"
	case FailureDecode:
		return "Error fetching location (JSON decode error)"
	default:
		return "Error fetching location (Unexpected error)"
	}
}

func (k FailureKind) logMessage() string {
	switch k {
	case FailureTransport:
		return "Error calling geolocation upstream"
	case FailureDecode:
		return "Error decoding JSON from geolocation upstream"
	default:
		return "An unexpected error occurred while fetching location"
	}
}

// LookupError is the failure variant of a location lookup
type LookupError struct {
	Kind FailureKind
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("location lookup failed (%s): %v", e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, or FailureUnexpected when
// err is not a *LookupError
func KindOf(err error) FailureKind {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Kind
	}
	return FailureUnexpected
}

// ErrInvalidUTF8 is returned for POST bodies that are not valid UTF-8
var ErrInvalidUTF8 = errors.New("body is not valid UTF-8")
