// Package tlv decodes BER-TLV (Basic Encoding Rules - Tag-Length-Value) data
// into an immutable tree of nodes, and maps decoded trees onto Go structures
// using struct tags.
//
// A decoded unit is either a Primitive (tag + raw value) or a Constructed
// (tag + ordered child units). Both satisfy the sealed Node interface:
//
//	root, err := tlv.Decode(resp.Data)
//	if err != nil {
//	    return err
//	}
//	if label, ok := tlv.Find(root, "A5", "50"); ok {
//	    fmt.Println(label)
//	}
package tlv

import (
	"bytes"

	"github.com/gregLibert/tlv-reader/pkg/bits"
)

// Encoding tells whether a unit carries raw bytes or nested units (bit 6 of the first tag byte).
type Encoding int

const (
	Primitive Encoding = iota
	Constructed
)

func (e Encoding) String() string {
	if e == Constructed {
		return "CONSTRUCTED"
	}
	return "PRIMITIVE"
}

// Class is the 2-bit tag class held in bits 8-7 of the first tag byte.
//
// The mapping is 00 Universal, 01 Application, 10 Private, 11 Context-specific.
// This differs from X.690 (where 10 is Context-specific) and is kept as-is for
// compatibility with existing card tooling reports.
type Class int

const (
	Universal Class = iota
	Application
	Private
	ContextSpecific
)

func (c Class) String() string {
	switch c {
	case Universal:
		return "UNIVERSAL"
	case Application:
		return "APPLICATION"
	case Private:
		return "PRIVATE"
	default:
		return "CONTEXT_SPECIFIC"
	}
}

// Node is one decoded TLV unit. The only implementations are *PrimitiveNode
// and *ConstructedNode, both created by the decoder and never mutated.
type Node interface {
	// Tag returns a copy of the tag bytes, continuation bytes included.
	Tag() []byte
	Encoding() Encoding
	Class() Class
	// TagEquals compares the tag against a hex string such as "9F 38" or "9f38".
	TagEquals(hexTag string) bool
	// Part returns the first immediate child carrying tag.
	Part(tag []byte) (Node, bool)
	// PartHex is Part with a hex tag.
	PartHex(hexTag string) (Node, bool)
	// Parts returns the immediate children in parse order.
	Parts() []Node
	String() string

	node()
}

// PrimitiveNode holds a unit whose value is raw bytes.
type PrimitiveNode struct {
	tag   []byte
	value []byte
}

// ConstructedNode holds a unit whose value is a sequence of nested units.
type ConstructedNode struct {
	tag     []byte
	content []byte
	parts   []Node
}

var (
	_ Node = (*PrimitiveNode)(nil)
	_ Node = (*ConstructedNode)(nil)
)

func (*PrimitiveNode) node()   {}
func (*ConstructedNode) node() {}

func (p *PrimitiveNode) Tag() []byte        { return bytes.Clone(p.tag) }
func (p *PrimitiveNode) Encoding() Encoding { return Primitive }
func (p *PrimitiveNode) Class() Class       { return classOf(p.tag) }

// Value returns a copy of the raw value bytes.
func (p *PrimitiveNode) Value() []byte {
	if p.value == nil {
		return []byte{}
	}
	return bytes.Clone(p.value)
}

// Len returns the value length without copying it.
func (p *PrimitiveNode) Len() int { return len(p.value) }

func (c *ConstructedNode) Tag() []byte        { return bytes.Clone(c.tag) }
func (c *ConstructedNode) Encoding() Encoding { return Constructed }
func (c *ConstructedNode) Class() Class       { return classOf(c.tag) }

// Content returns a copy of the encoded children, i.e. the value region as it
// appeared on the wire.
func (c *ConstructedNode) Content() []byte {
	if c.content == nil {
		return []byte{}
	}
	return bytes.Clone(c.content)
}

// Len returns the number of immediate children.
func (c *ConstructedNode) Len() int { return len(c.parts) }

// encodingOf reads bit 6 (0x20) of the first tag byte.
func encodingOf(tag []byte) Encoding {
	if bits.IsSet(tag[0], 6) {
		return Constructed
	}
	return Primitive
}

// classOf reads bits 8-7 of the first tag byte.
func classOf(tag []byte) Class {
	switch bits.GetRange(tag[0], 8, 7) {
	case 0b00:
		return Universal
	case 0b01:
		return Application
	case 0b10:
		return Private
	default:
		return ContextSpecific
	}
}

// RawValue returns the bytes a node carries: the value of a primitive, or the
// encoded children of a constructed node.
func RawValue(n Node) []byte {
	switch v := n.(type) {
	case *PrimitiveNode:
		return v.Value()
	case *ConstructedNode:
		return v.Content()
	default:
		return nil
	}
}
