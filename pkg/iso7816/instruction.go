package iso7816

import (
	"fmt"

	"github.com/gregLibert/tlv-reader/pkg/bits"
)

// INSTRUCTION BYTE (INS), ISO/IEC 7816-4 section 5.4.2:
//   - Under the interindustry class an odd INS (b1 = 1) announces BER-TLV
//     encoded data, e.g. READ RECORD 'B2' vs READ RECORD (BER-TLV) 'B3'.
//   - '6X' and '9X' are invalid: they collide with SW1 procedure bytes.

// InsCode is a typed representation of the instruction byte.
type InsCode byte

const (
	INS_VERIFY                InsCode = 0x20
	INS_EXTERNAL_AUTHENTICATE InsCode = 0x82 // LOAD KEYS under CLA 'FF'
	INS_GET_CHALLENGE         InsCode = 0x84
	INS_GENERAL_AUTHENTICATE  InsCode = 0x86
	INS_INTERNAL_AUTHENTICATE InsCode = 0x88
	INS_SELECT                InsCode = 0xA4
	INS_READ_BINARY           InsCode = 0xB0
	INS_READ_BINARY_BER       InsCode = 0xB1
	INS_READ_RECORD           InsCode = 0xB2
	INS_READ_RECORD_BER       InsCode = 0xB3
	INS_GET_RESPONSE          InsCode = 0xC0
	INS_GET_DATA              InsCode = 0xCA
	INS_GET_DATA_BER          InsCode = 0xCB
	INS_UPDATE_BINARY         InsCode = 0xD6
	INS_UPDATE_RECORD         InsCode = 0xDC
)

// INS_LOAD_KEY is the PC/SC name of 'FF 82', loading a key into the reader.
const INS_LOAD_KEY = INS_EXTERNAL_AUTHENTICATE

var insNames = map[InsCode]string{
	INS_VERIFY:                "VERIFY",
	INS_EXTERNAL_AUTHENTICATE: "EXTERNAL AUTHENTICATE / LOAD KEY",
	INS_GET_CHALLENGE:         "GET CHALLENGE",
	INS_GENERAL_AUTHENTICATE:  "GENERAL AUTHENTICATE",
	INS_INTERNAL_AUTHENTICATE: "INTERNAL AUTHENTICATE",
	INS_SELECT:                "SELECT",
	INS_READ_BINARY:           "READ BINARY",
	INS_READ_BINARY_BER:       "READ BINARY (BER-TLV)",
	INS_READ_RECORD:           "READ RECORD",
	INS_READ_RECORD_BER:       "READ RECORD (BER-TLV)",
	INS_GET_RESPONSE:          "GET RESPONSE",
	INS_GET_DATA:              "GET DATA",
	INS_GET_DATA_BER:          "GET DATA (BER-TLV)",
	INS_UPDATE_BINARY:         "UPDATE BINARY",
	INS_UPDATE_RECORD:         "UPDATE RECORD",
}

func (i InsCode) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("InsCode(0x%02X)", byte(i))
}

// Instruction is a validated INS byte.
type Instruction struct {
	Raw      InsCode
	IsBERTLV bool
}

// NewInstruction validates ins, rejecting the '6X' and '9X' ranges.
func NewInstruction(ins InsCode) (Instruction, error) {
	switch byte(ins) & 0xF0 {
	case 0x60, 0x90:
		return Instruction{}, fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", byte(ins))
	}

	return Instruction{
		Raw:      ins,
		IsBERTLV: bits.IsSet(byte(ins), 1),
	}, nil
}

// mustInstruction is for the package's own builders, which only use valid codes.
func mustInstruction(ins InsCode) Instruction {
	i, err := NewInstruction(ins)
	if err != nil {
		panic(err)
	}
	return i
}

// Verbose returns a human-readable description of the instruction.
func (i Instruction) Verbose() string {
	format := "Standard"
	if i.IsBERTLV {
		format = "BER-TLV"
	}
	return fmt.Sprintf("INS: 0x%02X | Command: %s | Format: %s", byte(i.Raw), i.Raw, format)
}
