package tlv

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hexify renders data as uppercase byte pairs separated by single spaces ("6F 1A 84").
func Hexify(data []byte) string {
	return fmt.Sprintf("% X", data)
}

// ParseHex decodes a hex string, ignoring spaces ("00 A4 04 00").
// Odd digit counts and non-hex characters are rejected with ErrInvalidHex.
func ParseHex(s string) ([]byte, error) {
	clean := strings.ReplaceAll(s, " ", "")

	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidHex, s, err)
	}
	return data, nil
}

// Hex constructs a byte slice from a series of hex strings.
// It panics on malformed input and is meant for literals and tests.
func Hex(parts ...string) []byte {
	data, err := ParseHex(strings.Join(parts, ""))
	if err != nil {
		panic(err.Error())
	}
	return data
}

// Slice returns a copy of length bytes of data starting at offset.
func Slice(data []byte, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset > len(data) || length > len(data)-offset {
		return nil, fmt.Errorf("%w: offset %d length %d in %d bytes", ErrOutOfRange, offset, length, len(data))
	}
	return bytes.Clone(data[offset : offset+length]), nil
}

// Concat returns a new buffer holding a followed by b.
func Concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
