package rawdoc

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument matches every *MalformedDocumentError with errors.Is.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedDocumentError reports markup that cannot be read into a tree.
// It is the only fatal error of a conversion.
type MalformedDocumentError struct {
	Offset int64 // byte offset where reading stopped
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedDocument.
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

func malformed(offset int64, format string, args ...any) *MalformedDocumentError {
	return &MalformedDocumentError{Offset: offset, Err: fmt.Errorf(format, args...)}
}
