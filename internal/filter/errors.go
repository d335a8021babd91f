package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrBodyReplaced is returned when a filter detaches or renames the body
	// element instead of working on its contents.
	ErrBodyReplaced = errors.New("filter replaced the body element")

	// ErrNotBody is returned when a chain is applied to something other than
	// a <body> element.
	ErrNotBody = errors.New("filters must be applied to a <body> element")

	// ErrUnknownFilter is returned by Lookup and Resolve for unregistered names.
	ErrUnknownFilter = errors.New("unknown filter")
)

// Error reports which filter of a chain failed.
type Error struct {
	// Index is the position of the filter in the chain.
	Index int

	// Name is the name of the filter.
	Name string

	// Err is the error returned by the filter.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("filter %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
