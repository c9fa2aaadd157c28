package iso7816

import (
	"fmt"

	"github.com/gregLibert/tlv-reader/pkg/bits"
)

// CLASS BYTE (CLA), ISO/IEC 7816-4 section 5.4.1:
//
//	b8 = 1              proprietary class, the rest is reader/card specific
//	b8-b7 = 00          first interindustry: b5 chaining, b4-b3 SM, b2-b1 channel 0-3
//	b8-b7 = 01          further interindustry: b6 SM, b5 chaining, b4-b1 channel 4-19
//
// 0xFF is invalid as an interindustry class. PC/SC readers still use it for
// their pseudo-APDUs, see ReaderClass.

// SecureMessaging is the secure messaging indication carried by CLA.
type SecureMessaging int

const (
	SMNone         SecureMessaging = 0
	SMProprietary  SecureMessaging = 1 // first interindustry only
	SMHeaderNoProc SecureMessaging = 2
	SMHeaderAuth   SecureMessaging = 3 // first interindustry only
)

func (sm SecureMessaging) String() string {
	switch sm {
	case SMNone:
		return "None"
	case SMProprietary:
		return "Proprietary"
	case SMHeaderNoProc:
		return "ISO (Header not processed)"
	case SMHeaderAuth:
		return "ISO (Header authenticated)"
	default:
		return "Unknown"
	}
}

// Class is a decoded CLA byte.
type Class struct {
	Raw             byte
	IsProprietary   bool
	IsChained       bool
	SecureMessaging SecureMessaging
	Channel         uint8 // 0-19
}

// NewClass decodes a raw CLA byte. 0xFF is rejected.
func NewClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("invalid CLA value: 0xFF is reserved")
	}

	c := Class{Raw: cla}

	if bits.IsSet(cla, 8) {
		c.IsProprietary = true
		return c, nil
	}

	c.IsChained = bits.IsSet(cla, 5)

	if bits.IsSet(cla, 7) {
		if bits.IsSet(cla, 6) {
			c.SecureMessaging = SMHeaderNoProc
		}
		c.Channel = bits.GetRange(cla, 4, 1) + 4
		return c, nil
	}

	c.SecureMessaging = SecureMessaging(bits.GetRange(cla, 4, 3))
	c.Channel = bits.GetRange(cla, 2, 1)
	return c, nil
}

// ReaderClass returns the proprietary CLA 'FF' used by PC/SC reader pseudo-APDUs.
func ReaderClass() Class {
	return Class{Raw: 0xFF, IsProprietary: true}
}

// NewInterindustryClass builds a Class from its fields, picking the first or
// further interindustry layout from the channel number.
func NewInterindustryClass(isChained bool, sm SecureMessaging, channel uint8) (Class, error) {
	if channel > 19 {
		return Class{}, fmt.Errorf("channel %d out of range (max 19)", channel)
	}
	if channel >= 4 && (sm == SMProprietary || sm == SMHeaderAuth) {
		return Class{}, fmt.Errorf("SM indicator %s not supported on channel %d", sm, channel)
	}

	c := Class{IsChained: isChained, SecureMessaging: sm, Channel: channel}

	raw, err := c.Encode()
	if err != nil {
		return Class{}, err
	}
	c.Raw = raw
	return c, nil
}

// Encode returns the CLA byte. Proprietary classes are returned as stored.
func (c *Class) Encode() (byte, error) {
	if c.IsProprietary {
		return c.Raw, nil
	}
	if c.Channel > 19 {
		return 0, fmt.Errorf("channel %d out of range (max 19)", c.Channel)
	}

	var res byte
	if c.IsChained {
		res = bits.Set(res, 5)
	}

	if c.Channel <= 3 {
		res |= byte(c.SecureMessaging&0x03) << 2
		res |= c.Channel
		return res, nil
	}

	res = bits.Set(res, 7)
	if c.SecureMessaging != SMNone {
		res = bits.Set(res, 6)
	}
	res |= c.Channel - 4
	return res, nil
}

// Verbose returns a human-readable description of the CLA byte.
func (c Class) Verbose() string {
	if c.IsProprietary {
		return fmt.Sprintf("Class: Proprietary (0x%02X)", c.Raw)
	}

	rangeName := "First Interindustry (Ch 0-3)"
	if c.Channel >= 4 {
		rangeName = "Further Interindustry (Ch 4-19)"
	}

	chaining := "Last or only command"
	if c.IsChained {
		chaining = "More commands follow (Chaining)"
	}

	return fmt.Sprintf(
		"Range: %s\nChaining: %s\nSecure Messaging: %s\nLogical Channel: %d",
		rangeName, chaining, c.SecureMessaging, c.Channel,
	)
}
