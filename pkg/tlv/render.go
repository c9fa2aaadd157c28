package tlv

import (
	"fmt"
	"strings"
)

const renderIndent = "  "

// Render returns the multi-line debug representation of a tree:
//
//	TAG: 6F (CONSTRUCTED)
//	  TAG: 84 (PRIMITIVE)
//	  VALUE: A0 00 00 00 03 10 10
func Render(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func (p *PrimitiveNode) String() string {
	return fmt.Sprintf("TAG: %s (%s)\nVALUE: %s", Hexify(p.tag), Primitive, Hexify(p.value))
}

func (c *ConstructedNode) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TAG: %s (%s)", Hexify(c.tag), Constructed)

	for _, part := range c.parts {
		sb.WriteString("\n")
		sb.WriteString(indentLines(part.String(), renderIndent))
	}
	return sb.String()
}

func indentLines(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
