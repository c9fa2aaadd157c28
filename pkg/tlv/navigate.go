package tlv

import (
	"bytes"
	"slices"
)

// Part on a primitive node is a usage error: it is logged and reports not found.
func (p *PrimitiveNode) Part(tag []byte) (Node, bool) {
	diagnostics().Warn().
		Str("tag", Hexify(p.tag)).
		Str("wanted", Hexify(tag)).
		Msg("part lookup on primitive BER-TLV node")
	return nil, false
}

func (p *PrimitiveNode) PartHex(hexTag string) (Node, bool) {
	tag, err := ParseHex(hexTag)
	if err != nil {
		diagnostics().Warn().Err(err).Msg("part lookup with malformed tag")
		return nil, false
	}
	return p.Part(tag)
}

// Parts of a primitive node is always empty.
func (p *PrimitiveNode) Parts() []Node {
	return []Node{}
}

func (p *PrimitiveNode) TagEquals(hexTag string) bool {
	return tagEquals(p.tag, hexTag)
}

func (c *ConstructedNode) Part(tag []byte) (Node, bool) {
	for _, part := range c.parts {
		if bytes.Equal(rawTag(part), tag) {
			return part, true
		}
	}
	return nil, false
}

func (c *ConstructedNode) PartHex(hexTag string) (Node, bool) {
	tag, err := ParseHex(hexTag)
	if err != nil {
		diagnostics().Warn().Err(err).Msg("part lookup with malformed tag")
		return nil, false
	}
	return c.Part(tag)
}

func (c *ConstructedNode) Parts() []Node {
	return slices.Clone(c.parts)
}

func (c *ConstructedNode) TagEquals(hexTag string) bool {
	return tagEquals(c.tag, hexTag)
}

// Find follows a chain of hex tags from n, one level per tag.
// An empty path returns n itself.
func Find(n Node, path ...string) (Node, bool) {
	if n == nil {
		return nil, false
	}
	cur := n
	for _, hexTag := range path {
		next, ok := cur.PartHex(hexTag)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

func tagEquals(tag []byte, hexTag string) bool {
	want, err := ParseHex(hexTag)
	if err != nil {
		return false
	}
	return bytes.Equal(tag, want)
}

// rawTag returns the tag without copying it. Callers must not modify it.
func rawTag(n Node) []byte {
	switch v := n.(type) {
	case *PrimitiveNode:
		return v.tag
	case *ConstructedNode:
		return v.tag
	default:
		return n.Tag()
	}
}
