package mdiff

import (
	"fmt"
	"io"
)

const (
	bothFormat  = "diff at 0x%x: 0x%x (%c) != 0x%x (%c)\n"
	leftFormat  = "diff at 0x%x: 0x%x (%c)\n"
	rightFormat = "diff at 0x%x:             0x%x (%c)\n"
	plainFormat = "diff at 0x%x\n"
	extraFormat = "extra data in %s at 0x%x\n"
)

// isPrint matches the C locale's printable class, 0x20 through 0x7e.
func isPrint(b byte) bool {
	return b >= 0x20 && b <= 0x7e
}

// writeMismatch writes the report line for one differing position. A side
// with ok unset is exhausted and is formatted like an unprintable byte.
func writeMismatch(w io.Writer, off int64, b1 byte, ok1 bool, b2 byte, ok2 bool) error {
	p1 := ok1 && isPrint(b1)
	p2 := ok2 && isPrint(b2)

	var err error
	switch {
	case p1 && p2:
		_, err = fmt.Fprintf(w, bothFormat, off, b1, b1, b2, b2)
	case p1:
		_, err = fmt.Fprintf(w, leftFormat, off, b1, b1)
	case p2:
		_, err = fmt.Fprintf(w, rightFormat, off, b2, b2)
	default:
		_, err = fmt.Fprintf(w, plainFormat, off)
	}
	if err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func writeExtra(w io.Writer, name string, off int64) error {
	if _, err := fmt.Fprintf(w, extraFormat, name, off); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}
