package tlv

import (
	"fmt"
	"reflect"
	"strings"
)

// WriteStructFields inspects a mapped struct and writes one line per non-empty
// []byte field and per unknown node. Lines are joined with newlines without a
// trailing one; if sb already holds text, a newline separates the new block.
//
// Byte fields honour a `fmt` struct tag: "ascii" appends a printable rendering,
// "int" appends the big-endian decimal value.
func WriteStructFields(sb *strings.Builder, prefix string, s interface{}) {
	val := reflect.ValueOf(s)

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	var lines []string

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !fieldType.IsExported() {
			continue
		}

		switch {
		case isByteSlice(field):
			if line := formatByteSliceField(prefix, field, fieldType); line != "" {
				lines = append(lines, line)
			}
		case field.Type() == nodeSliceType:
			lines = append(lines, formatUnknownField(prefix, field)...)
		}
	}

	if len(lines) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(lines, "\n"))
	}
}

func formatByteSliceField(prefix string, field reflect.Value, fieldType reflect.StructField) string {
	if field.Len() == 0 {
		return ""
	}

	name := fieldType.Name
	if tagHex, ok := fieldTLVTag(fieldType); ok {
		name = fmt.Sprintf("%s (%s)", name, strings.ToUpper(tagHex))
	}

	displayVal := formatByteValue(field.Bytes(), fieldType.Tag.Get("fmt"))
	return fmt.Sprintf("    - %s.%s: %s", prefix, name, displayVal)
}

func formatUnknownField(prefix string, field reflect.Value) []string {
	if field.Len() == 0 {
		return nil
	}

	nodes := field.Interface().([]Node)
	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		lines = append(lines, fmt.Sprintf("    - %s.Unknown Tag %X: %X", prefix, rawTag(n), RawValue(n)))
	}
	return lines
}

func formatByteValue(data []byte, format string) string {
	switch format {
	case "ascii":
		return fmt.Sprintf("%X (%q)", data, MakeSafeASCII(data))
	case "int":
		var integer uint64
		for _, b := range data {
			integer = integer<<8 | uint64(b)
		}
		return fmt.Sprintf("%X (Dec: %d)", data, integer)
	default:
		return fmt.Sprintf("%X", data)
	}
}

// MakeSafeASCII replaces every byte outside the printable ASCII range with '.'.
func MakeSafeASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
