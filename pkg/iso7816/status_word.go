package iso7816

import (
	"fmt"

	"github.com/gregLibert/tlv-reader/pkg/bits"
)

// STATUS WORD (SW1 SW2), ISO/IEC 7816-4 section 5.6:
//
//	9000      normal processing
//	61XX      XX more bytes available, fetch with GET RESPONSE
//	6CXX      wrong Le, XX is the exact length to ask for
//	62XX/63XX warnings, 63CX carries a counter in the low nibble
//	64XX-6FXX errors

// StatusWord is the two-byte trailer of every response.
type StatusWord uint16

const (
	SW_NO_ERROR StatusWord = 0x9000

	SW_WARN_NO_INFO          StatusWord = 0x6200
	SW_WARN_DATA_CORRUPTED   StatusWord = 0x6281
	SW_WARN_EOF_REACHED      StatusWord = 0x6282
	SW_WARN_FILE_DEACTIVATED StatusWord = 0x6283
	SW_WARN_FCI_BAD_FORMAT   StatusWord = 0x6284
	SW_WARN_NV_CHANGED       StatusWord = 0x6300
	SW_WARN_COUNTER_0        StatusWord = 0x63C0

	SW_ERR_EXEC_NO_INFO       StatusWord = 0x6400
	SW_ERR_MEMORY_FAILURE     StatusWord = 0x6581
	SW_ERR_WRONG_LENGTH       StatusWord = 0x6700
	SW_ERR_CHECKING_NO_INFO   StatusWord = 0x6800
	SW_ERR_CMD_NOT_ALLOWED    StatusWord = 0x6900
	SW_ERR_SECURITY_NOT_SAT   StatusWord = 0x6982
	SW_ERR_AUTH_BLOCKED       StatusWord = 0x6983
	SW_ERR_COND_OF_USE        StatusWord = 0x6985
	SW_ERR_INCORRECT_DATA     StatusWord = 0x6A80
	SW_ERR_FUNC_NOT_SUPPORTED StatusWord = 0x6A81
	SW_ERR_FILE_NOT_FOUND     StatusWord = 0x6A82
	SW_ERR_RECORD_NOT_FOUND   StatusWord = 0x6A83
	SW_ERR_INCORRECT_P1P2     StatusWord = 0x6A86
	SW_ERR_REF_DATA_NOT_FOUND StatusWord = 0x6A88
	SW_ERR_WRONG_P1P2         StatusWord = 0x6B00
	SW_ERR_INS_INVALID        StatusWord = 0x6D00
	SW_ERR_CLA_NOT_SUPPORTED  StatusWord = 0x6E00
	SW_ERR_UNKNOWN            StatusWord = 0x6F00
)

var swNames = map[StatusWord]string{
	SW_NO_ERROR:               "No error",
	SW_WARN_NO_INFO:           "Warning: no information given",
	SW_WARN_DATA_CORRUPTED:    "Warning: part of returned data may be corrupted",
	SW_WARN_EOF_REACHED:       "Warning: end of file or record reached before reading Ne bytes",
	SW_WARN_FILE_DEACTIVATED:  "Warning: selected file deactivated",
	SW_WARN_FCI_BAD_FORMAT:    "Warning: file control information not formatted correctly",
	SW_WARN_NV_CHANGED:        "Warning: NV memory changed, no information given",
	SW_ERR_EXEC_NO_INFO:       "Execution error: NV memory unchanged",
	SW_ERR_MEMORY_FAILURE:     "Execution error: memory failure",
	SW_ERR_WRONG_LENGTH:       "Wrong length",
	SW_ERR_CHECKING_NO_INFO:   "Function in CLA not supported",
	SW_ERR_CMD_NOT_ALLOWED:    "Command not allowed",
	SW_ERR_SECURITY_NOT_SAT:   "Security status not satisfied",
	SW_ERR_AUTH_BLOCKED:       "Authentication method blocked",
	SW_ERR_COND_OF_USE:        "Conditions of use not satisfied",
	SW_ERR_INCORRECT_DATA:     "Incorrect parameters in the command data field",
	SW_ERR_FUNC_NOT_SUPPORTED: "Function not supported",
	SW_ERR_FILE_NOT_FOUND:     "File or application not found",
	SW_ERR_RECORD_NOT_FOUND:   "Record not found",
	SW_ERR_INCORRECT_P1P2:     "Incorrect parameters P1-P2",
	SW_ERR_REF_DATA_NOT_FOUND: "Referenced data not found",
	SW_ERR_WRONG_P1P2:         "Wrong parameters P1-P2",
	SW_ERR_INS_INVALID:        "Instruction code not supported or invalid",
	SW_ERR_CLA_NOT_SUPPORTED:  "Class not supported",
	SW_ERR_UNKNOWN:            "No precise diagnosis",
}

// NewStatusWord builds a StatusWord from SW1 and SW2.
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

func (sw StatusWord) SW1() byte { return byte(sw >> 8) }
func (sw StatusWord) SW2() byte { return byte(sw) }

func (sw StatusWord) String() string {
	if name, ok := swNames[sw]; ok {
		return name
	}
	return fmt.Sprintf("StatusWord(0x%04X)", uint16(sw))
}

// IsSuccess reports 9000 or 61XX.
func (sw StatusWord) IsSuccess() bool {
	return sw == SW_NO_ERROR || sw.SW1() == 0x61
}

// IsWarning reports 62XX or 63XX.
func (sw StatusWord) IsWarning() bool {
	return sw.SW1() == 0x62 || sw.SW1() == 0x63
}

// IsError reports 64XX through 6FXX.
func (sw StatusWord) IsError() bool {
	return sw.SW1() >= 0x64 && sw.SW1() <= 0x6F
}

// IsCounter reports 63CX, where X is a counter such as remaining PIN tries.
func (sw StatusWord) IsCounter() bool {
	return sw.SW1() == 0x63 && bits.GetRange(sw.SW2(), 8, 5) == 0x0C
}

// Verbose returns a human-readable description, resolving the dynamic ranges first.
func (sw StatusWord) Verbose() string {
	sw1, sw2 := sw.SW1(), sw.SW2()

	switch {
	case sw1 == 0x61:
		return fmt.Sprintf("[%04X] Process completed, %d bytes available", uint16(sw), sw2)
	case sw1 == 0x6C:
		return fmt.Sprintf("[%04X] Wrong length, correct Le is %d", uint16(sw), sw2)
	case sw.IsCounter():
		return fmt.Sprintf("[%04X] Warning: counter = %d", uint16(sw), bits.GetRange(sw2, 4, 1))
	}

	if name, ok := swNames[sw]; ok {
		return fmt.Sprintf("[%04X] %s", uint16(sw), name)
	}
	return fmt.Sprintf("[%04X] %s", uint16(sw), sw.category())
}

func (sw StatusWord) category() string {
	switch sw.SW1() {
	case 0x62:
		return "Warning: NV memory unchanged"
	case 0x63:
		return "Warning: NV memory changed"
	case 0x64:
		return "Execution error: NV memory unchanged"
	case 0x65:
		return "Execution error: NV memory changed"
	case 0x66:
		return "Execution error: security issue"
	case 0x68:
		return "Checking error: function in CLA not supported"
	case 0x69:
		return "Checking error: command not allowed"
	case 0x6A:
		return "Checking error: wrong parameters"
	default:
		return "Unknown status"
	}
}
