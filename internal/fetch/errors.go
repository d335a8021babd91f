package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures to obtain a response: connection errors,
	// request construction errors and response body read errors.
	ErrTransport = errors.New("transport error")

	// ErrMalformed marks response bodies that cannot be decoded or parsed.
	ErrMalformed = errors.New("malformed source")

	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid URL: expected an absolute http or https URL")

	// ErrDisallowed is returned when robots.txt forbids fetching a URL.
	ErrDisallowed = errors.New("disallowed by robots.txt")

	// ErrStatus is returned by Document.CheckStatus for non-2xx responses.
	ErrStatus = errors.New("unexpected HTTP status")
)

// Error describes a failed fetch.
// errors.Is matches Kind as well as the wrapped cause.
type Error struct {
	// Kind is ErrTransport, ErrMalformed, ErrInvalidURL or ErrDisallowed.
	Kind error

	// URL is the requested URL.
	URL string

	// Err is the underlying cause. It may be nil.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %v: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	// URL is the final response URL.
	URL string

	// Code is the HTTP status code.
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned %d", ErrStatus, e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}
