package tlv

import (
	"bytes"

	"github.com/gregLibert/tlv-reader/pkg/bits"
)

// BER-TLV DECODING (ISO/IEC 8825-1 as used by ISO/IEC 7816-4 and EMV):
//
// TAG:
//   - Byte 1 bits 8-7: class. Bit 6: constructed flag.
//   - If bits 5-1 of byte 1 are all set (xxx1 1111) the tag number continues:
//     every following byte with bit 8 set announces one more byte, the first
//     byte with bit 8 cleared ends the tag.
//
// LENGTH:
//   - Short form: one byte 0xxx xxxx, length 0-127.
//   - Long form: 1nnn nnnn followed by n big-endian length bytes. At most 4
//     length bytes are accepted. 0x80 (n = 0) reads as length 0, indefinite
//     lengths are not supported.
//
// VALUE:
//   - Primitive: the raw bytes.
//   - Constructed: a sequence of units that must fill the region exactly.

// DefaultMaxDepth bounds the nesting of constructed units when no limit is set.
const DefaultMaxDepth = 64

const maxLengthBytes = 4

// Decoder holds decoding limits. The zero value is ready to use.
type Decoder struct {
	// MaxDepth is the deepest nesting level accepted, the outermost unit
	// being level 1. Values <= 0 select DefaultMaxDepth.
	MaxDepth int
}

// Decode parses the first TLV unit of data with the default limits.
// Bytes following that unit are ignored.
func Decode(data []byte) (Node, error) {
	var d Decoder
	return d.Decode(data)
}

// DecodeAll parses consecutive TLV units until data is exhausted.
// An empty buffer yields no nodes and no error.
func DecodeAll(data []byte) ([]Node, error) {
	var d Decoder
	return d.DecodeAll(data)
}

// Decode parses the first TLV unit of data. Bytes following that unit are ignored.
func (d *Decoder) Decode(data []byte) (Node, error) {
	n, _, err := d.parse(bytes.Clone(data), 0, 1)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// DecodeAll parses consecutive TLV units until data is exhausted.
func (d *Decoder) DecodeAll(data []byte) ([]Node, error) {
	buf := bytes.Clone(data)

	var nodes []Node
	for pos := 0; pos < len(buf); {
		n, size, err := d.parse(buf[pos:], pos, 1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		pos += size
	}
	return nodes, nil
}

func (d *Decoder) maxDepth() int {
	if d == nil || d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}

// parse decodes one unit from the front of data and returns it with the
// number of bytes it spans. base is the absolute offset of data[0], used for
// error reporting only. Nodes keep sub-slices of data, which callers own.
func (d *Decoder) parse(data []byte, base, level int) (Node, int, error) {
	if level > d.maxDepth() {
		return nil, 0, &DecodeError{Offset: base, Err: ErrDepthExceeded}
	}
	if len(data) < 2 {
		return nil, 0, &DecodeError{Offset: base, Err: ErrTooShort}
	}

	tagLen, ok := tagLength(data)
	if !ok {
		return nil, 0, &DecodeError{Offset: base + len(data), Err: ErrTruncated}
	}
	tag := data[:tagLen:tagLen]

	length, lengthLen, err := readLength(data[tagLen:])
	if err != nil {
		return nil, 0, &DecodeError{Offset: base + tagLen, Tag: bytes.Clone(tag), Err: err}
	}

	start := tagLen + lengthLen
	if uint64(len(data)-start) < length {
		return nil, 0, &DecodeError{Offset: base + start, Tag: bytes.Clone(tag), Err: ErrTruncated}
	}
	end := start + int(length)
	region := data[start:end:end]

	if encodingOf(tag) == Primitive {
		return &PrimitiveNode{tag: tag, value: region}, end, nil
	}

	parts, err := d.parseParts(region, base+start, level)
	if err != nil {
		return nil, 0, err
	}
	return &ConstructedNode{tag: tag, content: region, parts: parts}, end, nil
}

// parseParts decodes the children of a constructed unit. The children must
// end exactly on the region boundary.
func (d *Decoder) parseParts(region []byte, base, level int) ([]Node, error) {
	parts := make([]Node, 0, 4)

	for pos := 0; pos < len(region); {
		if len(region)-pos < 2 {
			return nil, &DecodeError{Offset: base + pos, Err: ErrTruncated}
		}
		child, size, err := d.parse(region[pos:], base+pos, level+1)
		if err != nil {
			return nil, err
		}
		parts = append(parts, child)
		pos += size
	}
	return parts, nil
}

// tagLength returns how many bytes the tag at the front of data occupies.
// It reports false when the continuation runs past the end of data.
func tagLength(data []byte) (int, bool) {
	if !bits.HasAll(data[0], 0x1F) {
		return 1, true
	}
	for i := 1; i < len(data); i++ {
		if !bits.IsSet(data[i], 8) {
			return i + 1, true
		}
	}
	return 0, false
}

// readLength decodes the length field at the front of data and returns the
// announced length with the size of the field itself.
func readLength(data []byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, ErrTruncated
	}

	first := data[0]
	if !bits.IsSet(first, 8) {
		return uint64(first), 1, nil
	}

	n := int(first & 0x7F)
	if n > maxLengthBytes {
		return 0, 0, ErrLengthTooLarge
	}
	if len(data) < 1+n {
		return 0, 0, ErrTruncated
	}

	var length uint64
	for _, b := range data[1 : 1+n] {
		length = length<<8 | uint64(b)
	}
	return length, 1 + n, nil
}
