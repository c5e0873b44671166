package carbone

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyValue       = errors.New("carbone: empty value")
	ErrTemplateNotFound = errors.New("carbone: template file not found")
	ErrIsDirectory      = errors.New("carbone: template path is a directory")
	ErrInvalidConfig    = errors.New("carbone: invalid config")
	ErrConfigNotFound   = errors.New("carbone: config file not found")
	ErrInvalidToken     = errors.New("carbone: invalid api token")
)

// EmptyValueError reports a value that must not be empty, such as an
// identifier or the render options payload.
type EmptyValueError struct {
	Kind string
}

func (e *EmptyValueError) Error() string {
	return fmt.Sprintf("carbone: %s can not be empty", e.Kind)
}

func (e *EmptyValueError) Is(target error) bool { return target == ErrEmptyValue }

// TransportError wraps failures to reach the Service: connection errors,
// timeouts, TLS failures and cancelled contexts. They are never retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("carbone: %s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError is returned when the Service answers with a failure envelope.
// Message and Code are copied verbatim from the envelope.
type RejectedError struct {
	Op         string
	StatusCode int
	Message    string
	Code       string
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request rejected"
	}
	if e.Code != "" {
		return fmt.Sprintf("carbone: %s: %s (code: %s, status: %d)", e.Op, msg, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("carbone: %s: %s (status: %d)", e.Op, msg, e.StatusCode)
}

// DecodeError means a response body did not match the envelope shape, or a
// successful envelope lacked the field the caller asked for.
type DecodeError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("carbone: decode response: %v", e.Err)
	}
	return fmt.Sprintf("carbone: %s: decode response (status: %d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsRejected reports whether err carries a failure envelope from the Service.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

// IsTransport reports whether err is a transport level failure.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
