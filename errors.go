package mdiff

import (
	"errors"
	"fmt"
)

// ErrUsage is returned when fewer than two inputs are named.
var ErrUsage = errors.New("usage")

// OpenError reports an input that could not be opened for reading.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError reports an I/O failure after an input was opened successfully.
// Offset is the position of the byte that could not be read.
type ReadError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s at 0x%x: %v", e.Path, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failure to write a report line.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write report: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
