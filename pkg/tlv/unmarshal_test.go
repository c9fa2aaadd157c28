package tlv

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type customType struct {
	Val string
}

func (c *customType) UnmarshalTLV(data []byte) error {
	c.Val = "custom:" + hex.EncodeToString(data)
	return nil
}

type nestedStruct struct {
	Version []byte `tlv:"82"`
}

type testStruct struct {
	AID     []byte       `tlv:"84"`
	Label   string       `tlv:"50"`
	Details nestedStruct `tlv:"A5"`
	Custom  customType   `tlv:"9F02"`
	Other   []Node       `tlv:",unknown"`
}

func TestUnmarshal(t *testing.T) {
	rawData := Hex(
		"84 02 1122",   // AID
		"50 03 414243", // Label "ABC"
		"A5 03 8201FF", // Nested Details (Template A5, Tag 82)
		"9F02 01 AA",   // Custom type (Tag 9F02)
		"DF01 01 BB",   // Unknown tag
	)

	var result testStruct
	if err := Unmarshal(rawData, &result); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !bytes.Equal(result.AID, Hex("1122")) {
		t.Errorf("Expected AID 1122, got %X", result.AID)
	}
	if result.Label != "414243" {
		t.Errorf("Expected Label 414243, got %s", result.Label)
	}
	if !bytes.Equal(result.Details.Version, []byte{0xFF}) {
		t.Errorf("Expected nested Version FF, got %X", result.Details.Version)
	}
	if result.Custom.Val != "custom:aa" {
		t.Errorf("Expected custom:aa, got %s", result.Custom.Val)
	}
	if len(result.Other) != 1 || !result.Other[0].TagEquals("DF01") {
		t.Errorf("Unknown tag DF01 not captured correctly: %v", result.Other)
	}
}

type directoryEntry struct {
	AID   []byte `tlv:"4F"`
	Label []byte `tlv:"50"`
}

type directory struct {
	Entries  []directoryEntry `tlv:"61"`
	Raw      [][]byte         `tlv:"61"`
	Template Node             `tlv:"73"`
	Extra    *nestedStruct    `tlv:"A5"`
	Unknown  []Node
}

func TestUnmarshalNodes_RepeatedAndPointerFields(t *testing.T) {
	root, err := Decode(Hex(
		"70 19",
		"61 07 4F 02 A001 50 01 41",
		"61 07 4F 02 A002 50 01 42",
		"73 03 9F4D00",
		"A5 00",
	))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var dir directory
	if err := UnmarshalNodes(root.Parts(), &dir); err != nil {
		t.Fatalf("UnmarshalNodes() error = %v", err)
	}

	want := []directoryEntry{
		{AID: Hex("A001"), Label: []byte("A")},
		{AID: Hex("A002"), Label: []byte("B")},
	}
	if diff := cmp.Diff(want, dir.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}

	if len(dir.Raw) != 2 || !bytes.Equal(dir.Raw[1], Hex("4F 02 A002 50 01 42")) {
		t.Errorf("Raw = %X", dir.Raw)
	}
	if dir.Template == nil || !dir.Template.TagEquals("73") {
		t.Errorf("Template = %v", dir.Template)
	}
	if dir.Extra == nil {
		t.Error("pointer field should be allocated for an empty template")
	}
	if len(dir.Unknown) != 0 {
		t.Errorf("Unknown = %v, want none", dir.Unknown)
	}
}

func TestUnmarshal_PrimitiveTemplateFallback(t *testing.T) {
	// Template flagged as primitive (tag 85) but carrying TLV bytes.
	type wrapper struct {
		Inner nestedStruct `tlv:"85"`
	}

	var w wrapper
	if err := Unmarshal(Hex("85 03 8201AB"), &w); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !bytes.Equal(w.Inner.Version, []byte{0xAB}) {
		t.Errorf("Version = %X, want AB", w.Inner.Version)
	}
}

func TestGetValue(t *testing.T) {
	rawData := Hex(
		"84 02 1122",   // AID
		"50 03 414243", // Label "ABC"
		"BF0C 03 9F4D00",
	)

	t.Run("Existing Tag", func(t *testing.T) {
		val, err := GetValue(rawData, 0x84)
		if err != nil {
			t.Fatalf("GetValue failed: %v", err)
		}
		if !bytes.Equal(val, Hex("1122")) {
			t.Errorf("Expected 1122, got %X", val)
		}
	})

	t.Run("Constructed Tag", func(t *testing.T) {
		val, err := GetValue(rawData, 0xBF0C)
		if err != nil {
			t.Fatalf("GetValue failed: %v", err)
		}
		if !bytes.Equal(val, Hex("9F4D00")) {
			t.Errorf("Expected 9F4D00, got %X", val)
		}
	})

	t.Run("Missing Tag", func(t *testing.T) {
		_, err := GetValue(rawData, 0x99)
		if !errors.Is(err, ErrTagNotFound) {
			t.Errorf("Expected ErrTagNotFound, got %v", err)
		}
	})

	t.Run("Malformed Data", func(t *testing.T) {
		_, err := GetValue(Hex("84 05 11"), 0x84)
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("Expected ErrTruncated, got %v", err)
		}
	})
}

func TestUnmarshalErrors(t *testing.T) {
	t.Run("Non-pointer target", func(t *testing.T) {
		err := Unmarshal(Hex("84 00"), testStruct{})
		if err == nil || !strings.Contains(err.Error(), "pointer") {
			t.Errorf("Expected pointer error, got %v", err)
		}
	})

	t.Run("Pointer to non-struct", func(t *testing.T) {
		var s string
		err := Unmarshal(Hex("84 00"), &s)
		if err == nil || !strings.Contains(err.Error(), "struct") {
			t.Errorf("Expected struct error, got %v", err)
		}
	})

	t.Run("Invalid field tag", func(t *testing.T) {
		var bad struct {
			Field []byte `tlv:"8G"`
		}
		err := Unmarshal(Hex("84 00"), &bad)
		if !errors.Is(err, ErrInvalidHex) {
			t.Errorf("Expected ErrInvalidHex, got %v", err)
		}
	})

	t.Run("Decode failure is wrapped", func(t *testing.T) {
		var result testStruct
		err := Unmarshal(Hex("84 05 11"), &result)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("Expected *DecodeError, got %v", err)
		}
	})
}
