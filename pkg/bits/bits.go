// Package bits holds the small bit helpers shared by the TLV tag classifier and
// the ISO 7816 header decoders. Bits are numbered 1 (LSB) to 8 (MSB), the way
// ISO/IEC 7816-4 and the BER tag tables number them.
package bits

// Bit returns a byte with only the n-th bit set (1 to 8).
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet checks if the n-th bit is set (1 to 8).
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// HasAll reports whether every bit of mask is set in b.
// An empty mask never matches.
func HasAll(b, mask byte) bool {
	return mask != 0 && b&mask == mask
}

// GetRange extracts the value from a range of bits (e.g., bits 8 to 7).
// Example: GetRange(0b1100_0000, 8, 7) returns 3 (0b11)
func GetRange(b byte, high, low uint) byte {
	if high < low || high > 8 || low < 1 {
		return 0
	}

	width := high - low + 1
	mask := byte((1 << width) - 1)

	return (b >> (low - 1)) & mask
}

// Set returns b with the n-th bit raised.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}
