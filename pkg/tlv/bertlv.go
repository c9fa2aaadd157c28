package tlv

import (
	"fmt"

	"github.com/moov-io/bertlv"
)

// Packet converts a decoded tree into its github.com/moov-io/bertlv form, for
// code written against that package. Tags use the uppercase compact hex form ("9F38").
func Packet(n Node) bertlv.TLV {
	p := bertlv.TLV{Tag: fmt.Sprintf("%X", rawTag(n))}

	switch v := n.(type) {
	case *PrimitiveNode:
		p.Value = v.Value()
	case *ConstructedNode:
		p.TLVs = Packets(v.parts)
	}
	return p
}

// Packets converts sibling nodes, preserving order.
func Packets(nodes []Node) []bertlv.TLV {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]bertlv.TLV, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Packet(n))
	}
	return out
}
