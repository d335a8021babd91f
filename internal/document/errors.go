package document

import "errors"

// ErrNilDocument is returned when rendering a nil document.
var ErrNilDocument = errors.New("document: nil document")
