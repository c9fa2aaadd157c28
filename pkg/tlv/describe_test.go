package tlv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type MockTemplate struct {
	FileID     []byte `tlv:"84"`
	Label      []byte `tlv:"50" fmt:"ascii"`
	Priority   []byte `tlv:"87" fmt:"int"`
	RawData    []byte // No tag
	EmptyField []byte `tlv:"99"`
	Unknown    []Node `tlv:",unknown"`
}

func TestWriteStructFields(t *testing.T) {
	unknown, err := DecodeAll(Hex("9F01 02 1234", "A1 03 8001FF"))
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}

	mock := MockTemplate{
		FileID:   []byte{0xA0, 0x00, 0x01},
		Label:    []byte{'V', 'I', 'S', 'A', 0x00},
		Priority: []byte{0x01, 0x00},
		RawData:  []byte{0xCA, 0xFE},
		Unknown:  unknown,
	}

	tests := []struct {
		name          string
		prefix        string
		input         interface{}
		expectedLines []string
	}{
		{
			name:   "Struct Pointer Input",
			prefix: "Test",
			input:  &mock,
			expectedLines: []string{
				"    - Test.FileID (84): A00001",
				`    - Test.Label (50): 5649534100 ("VISA.")`,
				"    - Test.Priority (87): 0100 (Dec: 256)",
				"    - Test.RawData: CAFE",
				"    - Test.Unknown Tag 9F01: 1234",
				"    - Test.Unknown Tag A1: 8001FF",
			},
		},
		{
			name:   "Struct Value Input",
			prefix: "Val",
			input:  mock,
			expectedLines: []string{
				"    - Val.FileID (84): A00001",
				`    - Val.Label (50): 5649534100 ("VISA.")`,
				"    - Val.Priority (87): 0100 (Dec: 256)",
				"    - Val.RawData: CAFE",
				"    - Val.Unknown Tag 9F01: 1234",
				"    - Val.Unknown Tag A1: 8001FF",
			},
		},
		{
			name:          "Nil Pointer",
			prefix:        "Nil",
			input:         (*MockTemplate)(nil),
			expectedLines: []string{""},
		},
		{
			name:          "Not a struct",
			prefix:        "Str",
			input:         "hello",
			expectedLines: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			WriteStructFields(&sb, tt.prefix, tt.input)
			actualLines := strings.Split(sb.String(), "\n")

			if diff := cmp.Diff(tt.expectedLines, actualLines); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteStructFields_AppendsBlocks(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("=== HEADER ===")
	WriteStructFields(&sb, "A", MockTemplate{FileID: []byte{0x01}})
	WriteStructFields(&sb, "B", MockTemplate{})

	want := "=== HEADER ===\n    - A.FileID (84): 01"
	if got := sb.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMakeSafeASCII(t *testing.T) {
	input := []byte{0x41, 0x42, 0x00, 0x1F, 0x7F, 0x43} // AB, null, US, DEL, C
	want := "AB...C"

	if got := MakeSafeASCII(input); got != want {
		t.Errorf("MakeSafeASCII() = %q, want %q", got, want)
	}
}
