package iso7816

import (
	"fmt"

	"github.com/gregLibert/tlv-reader/pkg/tlv"
)

// APDU ENCODING (ISO/IEC 7816-3 section 12.1):
//
//	Case 1: CLA INS P1 P2
//	Case 2: CLA INS P1 P2 Le
//	Case 3: CLA INS P1 P2 Lc Data
//	Case 4: CLA INS P1 P2 Lc Data Le
//
// Short form carries Lc on 1 byte (1-255) and Le on 1 byte (00 means 256).
// Extended form is used as soon as Nc > 255 or Ne > 256: Lc becomes 00 + 2
// bytes, Le becomes 2 bytes (0000 means 65536) and gets a leading 00 when no
// Lc precedes it.

const (
	MaxShortLc    = 255
	MaxShortLe    = 256
	MaxExtendedLc = 65535
	MaxExtendedLe = 65536
)

// CommandAPDU represents a command sent to the card.
type CommandAPDU struct {
	Class       Class
	Instruction Instruction
	P1, P2      byte
	Data        []byte
	Ne          int // Expected response length (0 means none)
}

// NewCommandAPDU creates a basic command.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{
		Class:       cla,
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
		Ne:          ne,
	}
}

// Bytes encodes the command, choosing short or extended lengths.
func (c *CommandAPDU) Bytes() ([]byte, error) {
	nc, ne := len(c.Data), c.Ne
	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("command data too long: %d bytes", nc)
	}
	if ne < 0 || ne > MaxExtendedLe {
		return nil, fmt.Errorf("expected length out of range: %d", ne)
	}

	cla, err := c.Class.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode Class: %w", err)
	}

	out := make([]byte, 0, 4+3+nc+3)
	out = append(out, cla, byte(c.Instruction.Raw), c.P1, c.P2)

	extended := nc > MaxShortLc || ne > MaxShortLe

	if nc > 0 {
		if extended {
			out = append(out, 0x00, byte(nc>>8), byte(nc))
		} else {
			out = append(out, byte(nc))
		}
		out = append(out, c.Data...)
	}

	if ne > 0 {
		switch {
		case !extended:
			out = append(out, byte(ne)) // 256 wraps to 00
		default:
			if nc == 0 {
				out = append(out, 0x00)
			}
			out = append(out, byte(ne>>8), byte(ne)) // 65536 wraps to 0000
		}
	}

	return out, nil
}

// String returns a readable representation of the command meta-data.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Instruction.Verbose(), c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU is a card reply split into data field and status word.
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU splits raw bytes into data and the trailing SW1 SW2.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("response too short: length %d", len(raw))
	}

	end := len(raw) - 2
	return &ResponseAPDU{
		Data:   raw[:end:end],
		Status: NewStatusWord(raw[end], raw[end+1]),
	}, nil
}

// Tree decodes the data field as a single BER-TLV unit.
func (r *ResponseAPDU) Tree() (tlv.Node, error) {
	return tlv.Decode(r.Data)
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
