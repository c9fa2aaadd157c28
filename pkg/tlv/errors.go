package tlv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTooShort is returned when fewer than 2 bytes are available for a unit.
	ErrTooShort = errors.New("tlv: input too short")

	// ErrTruncated is returned when a tag continuation, a length field or a
	// value region runs past the available bytes, or when the children of a
	// constructed unit do not fill its value region exactly.
	ErrTruncated = errors.New("tlv: premature end of data")

	// ErrLengthTooLarge is returned when a long-form length announces more
	// than 4 length bytes.
	ErrLengthTooLarge = errors.New("tlv: length field too large")

	// ErrDepthExceeded is returned when constructed units nest deeper than the
	// decoder limit.
	ErrDepthExceeded = errors.New("tlv: nesting too deep")

	// ErrInvalidHex is returned by ParseHex on odd digit counts or non-hex characters.
	ErrInvalidHex = errors.New("tlv: invalid hex string")

	// ErrOutOfRange is returned by Slice when the requested window exceeds the buffer.
	ErrOutOfRange = errors.New("tlv: slice out of range")

	// ErrTagNotFound is returned by GetValue when no unit carries the requested tag.
	ErrTagNotFound = errors.New("tlv: tag not found")
)

// DecodeError describes where decoding stopped.
// Offset is absolute in the buffer given to Decode. Tag is set once the
// failing unit's tag was fully read.
type DecodeError struct {
	Offset int
	Tag    []byte
	Err    error
}

func (e *DecodeError) Error() string {
	var s strings.Builder
	s.WriteString(e.Err.Error())
	fmt.Fprintf(&s, " at offset %d", e.Offset)
	if len(e.Tag) > 0 {
		fmt.Fprintf(&s, " (tag %X)", e.Tag)
	}
	return s.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
