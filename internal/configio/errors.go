package configio

import (
	"errors"
	"fmt"
)

// ParseError is the single "invalid configuration" error kind.
type ParseError struct {
	FileType string
	Line     int // 1-based; 0 when the failure is not tied to a line.
	Err      error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s, line %d: %v", e.FileType, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.FileType, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Wrap tags err with the file type and line it came from. A nil err stays nil.
func Wrap(fileType string, line int, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{FileType: fileType, Line: line, Err: err}
}

// IsParseError reports whether err carries a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
