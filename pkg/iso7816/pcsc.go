package iso7816

import "fmt"

// PC/SC part 3 pseudo-APDUs. These are executed by the reader itself, always
// with CLA 'FF', and are how contactless memory cards are driven.

// KeyType selects which MIFARE key authenticates a block.
type KeyType byte

const (
	KeyA KeyType = 0x60
	KeyB KeyType = 0x61
)

func (k KeyType) String() string {
	switch k {
	case KeyA:
		return "A"
	case KeyB:
		return "B"
	default:
		return fmt.Sprintf("KeyType(0x%02X)", byte(k))
	}
}

// MifareKeyLen is the size of a MIFARE Classic key.
const MifareKeyLen = 6

// GetUID asks the reader for the UID of the card in the field: FF CA 00 00 00.
func GetUID() *CommandAPDU {
	return NewCommandAPDU(ReaderClass(), mustInstruction(INS_GET_DATA), 0x00, 0x00, nil, MaxShortLe)
}

// LoadKey stores a 6-byte key in the reader's volatile slot: FF 82 00 slot 06 key.
func LoadKey(slot byte, key []byte) (*CommandAPDU, error) {
	if len(key) != MifareKeyLen {
		return nil, fmt.Errorf("key must be %d bytes, got %d", MifareKeyLen, len(key))
	}
	return NewCommandAPDU(ReaderClass(), mustInstruction(INS_LOAD_KEY), 0x00, slot, key, 0), nil
}

// Authenticate authenticates block with the key held in slot:
// FF 86 00 00 05 01 00 block type slot.
func Authenticate(block byte, kt KeyType, slot byte) (*CommandAPDU, error) {
	if kt != KeyA && kt != KeyB {
		return nil, fmt.Errorf("unsupported key type %s", kt)
	}
	data := []byte{0x01, 0x00, block, byte(kt), slot}
	return NewCommandAPDU(ReaderClass(), mustInstruction(INS_GENERAL_AUTHENTICATE), 0x00, 0x00, data, 0), nil
}

// ReadBinary reads length bytes from block: FF B0 00 block length.
func ReadBinary(block byte, length int) (*CommandAPDU, error) {
	if length < 1 || length > MaxShortLe {
		return nil, fmt.Errorf("read length %d out of range (1-%d)", length, MaxShortLe)
	}
	return NewCommandAPDU(ReaderClass(), mustInstruction(INS_READ_BINARY), 0x00, block, nil, length), nil
}
