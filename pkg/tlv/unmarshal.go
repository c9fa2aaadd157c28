package tlv

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
)

// STRUCT MAPPING:
// Decoded nodes are mapped onto struct fields through `tlv:"<hex tag>"` tags.
//
//	type FCI struct {
//	    DFName      []byte      `tlv:"84"`
//	    Proprietary Proprietary `tlv:"A5"` // nested template
//	    Unknown     []tlv.Node  `tlv:",unknown"`
//	}
//
// Supported field types: []byte (value, or encoded children for constructed
// units), string (lowercase hex), tlv.Node, struct or *struct (recursive),
// slices of any of those (one element per occurrence), and any type
// implementing Unmarshaler. Nodes not claimed by a field land in the field
// tagged `tlv:",unknown"` (or named Unknown) when its type is []tlv.Node.

// Unmarshaler allows custom types to implement their own TLV parsing logic.
type Unmarshaler interface {
	UnmarshalTLV(data []byte) error
}

var (
	nodeType      = reflect.TypeOf((*Node)(nil)).Elem()
	nodeSliceType = reflect.TypeOf([]Node(nil))
)

// Unmarshal decodes every TLV unit of data and maps them into target, which
// must be a non-nil pointer to a struct.
func Unmarshal(data []byte, target interface{}) error {
	nodes, err := DecodeAll(data)
	if err != nil {
		return fmt.Errorf("tlv decode failed: %w", err)
	}
	return UnmarshalNodes(nodes, target)
}

// UnmarshalNodes maps already decoded sibling nodes into target.
// Multiple occurrences of a tag are all kept when the field is a slice; for
// scalar fields the last occurrence wins.
func UnmarshalNodes(nodes []Node, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must point to a struct (got %s)", v.Kind())
	}
	t := v.Type()

	consumed := make([]bool, len(nodes))

	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		tagHex, ok := fieldTLVTag(fieldType)
		if !ok {
			continue
		}

		want, err := ParseHex(tagHex)
		if err != nil {
			return fmt.Errorf("field %s: %w", fieldType.Name, err)
		}

		for idx, n := range nodes {
			if !bytes.Equal(rawTag(n), want) {
				continue
			}
			if err := mapNodeToField(n, v.Field(i)); err != nil {
				return fmt.Errorf("field %s (%s): %w", fieldType.Name, strings.ToUpper(tagHex), err)
			}
			consumed[idx] = true
		}
	}

	return handleUnknownFields(v, t, nodes, consumed)
}

// fieldTLVTag returns the hex tag a field is bound to.
func fieldTLVTag(f reflect.StructField) (string, bool) {
	if !f.IsExported() || f.Name == "Unknown" {
		return "", false
	}
	tagConfig := f.Tag.Get("tlv")
	tagHex := strings.TrimSpace(strings.Split(tagConfig, ",")[0])
	if tagHex == "" {
		return "", false
	}
	return tagHex, true
}

// mapNodeToField grows slice fields by one element per occurrence.
func mapNodeToField(n Node, field reflect.Value) error {
	if field.Kind() == reflect.Slice && !isByteSlice(field) {
		elem := reflect.New(field.Type().Elem()).Elem()
		if err := decodeToValue(n, elem); err != nil {
			return err
		}
		field.Set(reflect.Append(field, elem))
		return nil
	}

	return decodeToValue(n, field)
}

func decodeToValue(n Node, field reflect.Value) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalTLV(RawValue(n))
		}
	}

	switch {
	case field.Type() == nodeType:
		field.Set(reflect.ValueOf(n))
		return nil

	case isByteSlice(field):
		field.SetBytes(RawValue(n))
		return nil

	case field.Kind() == reflect.String:
		field.SetString(hex.EncodeToString(RawValue(n)))
		return nil

	case isStructOrPtrToStruct(field):
		target := getTargetField(field)
		if c, ok := n.(*ConstructedNode); ok {
			return UnmarshalNodes(c.parts, target.Interface())
		}
		// Some cards flag templates as primitive; try to read the value as TLV.
		return Unmarshal(RawValue(n), target.Interface())
	}

	return nil
}

func handleUnknownFields(v reflect.Value, t reflect.Type, nodes []Node, consumed []bool) error {
	unknownField, found := findUnknownField(v, t)
	if !found {
		return nil
	}

	var leftovers []Node
	for idx, n := range nodes {
		if !consumed[idx] {
			leftovers = append(leftovers, n)
		}
	}

	if len(leftovers) > 0 && unknownField.CanSet() {
		unknownField.Set(reflect.ValueOf(leftovers))
	}
	return nil
}

func findUnknownField(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	for i := 0; i < v.NumField(); i++ {
		f := t.Field(i)
		if f.Type != nodeSliceType {
			continue
		}
		if f.Tag.Get("tlv") == ",unknown" || f.Name == "Unknown" {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// GetValue scans the top-level units of data for tag and returns its raw payload.
func GetValue(data []byte, tag uint) ([]byte, error) {
	nodes, err := DecodeAll(data)
	if err != nil {
		return nil, err
	}

	want := tagBytes(tag)
	for _, n := range nodes {
		if bytes.Equal(rawTag(n), want) {
			return RawValue(n), nil
		}
	}
	return nil, fmt.Errorf("%w: %X", ErrTagNotFound, want)
}

// tagBytes turns 0x9F38 into {0x9F, 0x38}.
func tagBytes(tag uint) []byte {
	if tag == 0 {
		return []byte{0x00}
	}
	var out []byte
	for ; tag > 0; tag >>= 8 {
		out = append([]byte{byte(tag)}, out...)
	}
	return out
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func isStructOrPtrToStruct(v reflect.Value) bool {
	if v.Kind() == reflect.Struct {
		return true
	}
	return v.Kind() == reflect.Ptr && v.Type().Elem().Kind() == reflect.Struct
}

func getTargetField(field reflect.Value) reflect.Value {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return field
	}
	return field.Addr()
}
