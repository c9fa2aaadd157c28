package iso7816

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gregLibert/tlv-reader/pkg/tlv"
)

func TestCommandAPDU_Bytes(t *testing.T) {
	cls, _ := NewClass(0x00)
	insSelect := mustInstruction(INS_SELECT)
	insRead := mustInstruction(INS_READ_BINARY)

	tests := []struct {
		name string
		cmd  *CommandAPDU
		want []byte
	}{
		{
			name: "Case 1: header only",
			cmd:  NewCommandAPDU(cls, insSelect, 0x01, 0x02, nil, 0),
			want: tlv.Hex("00A40102"),
		},
		{
			name: "Case 2 short: Le 256 encodes as 00",
			cmd:  NewCommandAPDU(cls, insRead, 0x00, 0x00, nil, MaxShortLe),
			want: tlv.Hex("00B00000 00"),
		},
		{
			name: "Case 3 short",
			cmd:  NewCommandAPDU(cls, insSelect, 0x04, 0x00, []byte{0xA0, 0x00}, 0),
			want: tlv.Hex("00A40400 02 A000"),
		},
		{
			name: "Case 4 short",
			cmd:  NewCommandAPDU(cls, insSelect, 0x00, 0x00, []byte{0x01}, 10),
			want: tlv.Hex("00A40000 01 01 0A"),
		},
		{
			name: "Case 3 extended: data above 255 bytes",
			cmd:  NewCommandAPDU(cls, insSelect, 0x00, 0x00, make([]byte, 260), 0),
			want: append(tlv.Hex("00A40000 000104"), make([]byte, 260)...),
		},
		{
			name: "Case 4 extended: Le has no leading 00",
			cmd:  NewCommandAPDU(cls, insSelect, 0x00, 0x00, make([]byte, 300), 10),
			want: append(append(tlv.Hex("00A40000 00012C"), make([]byte, 300)...), 0x00, 0x0A),
		},
		{
			name: "Case 2 extended: Le 65536 encodes as 000000",
			cmd:  NewCommandAPDU(cls, insRead, 0x00, 0x00, nil, MaxExtendedLe),
			want: tlv.Hex("00B00000 000000"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Bytes() = %X, want %X", got, tt.want)
			}
		})
	}
}

func TestCommandAPDU_BytesErrors(t *testing.T) {
	cls, _ := NewClass(0x00)
	ins := mustInstruction(INS_SELECT)

	tests := []struct {
		name string
		cmd  *CommandAPDU
	}{
		{"Data too long", NewCommandAPDU(cls, ins, 0, 0, make([]byte, MaxExtendedLc+1), 0)},
		{"Le too large", NewCommandAPDU(cls, ins, 0, 0, nil, MaxExtendedLe+1)},
		{"Negative Le", NewCommandAPDU(cls, ins, 0, 0, nil, -1)},
		{"Bad channel", NewCommandAPDU(Class{Channel: 25}, ins, 0, 0, nil, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cmd.Bytes(); err == nil {
				t.Error("expected an encoding error")
			}
		})
	}
}

func TestParseResponseAPDU(t *testing.T) {
	resp, err := ParseResponseAPDU(tlv.Hex("6F 02 84 00 90 00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &ResponseAPDU{Data: tlv.Hex("6F 02 84 00"), Status: SW_NO_ERROR}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	tree, err := resp.Tree()
	if err != nil {
		t.Fatalf("Tree() error: %v", err)
	}
	if !tree.TagEquals("6F") || len(tree.Parts()) != 1 {
		t.Errorf("unexpected tree:\n%s", tlv.Render(tree))
	}

	if !strings.Contains(resp.String(), "Data (4 bytes)") {
		t.Errorf("String() = %q", resp.String())
	}

	if _, err := ParseResponseAPDU([]byte{0x90}); err == nil {
		t.Error("a single byte response should be rejected")
	}
}

func TestResponseAPDU_TreeError(t *testing.T) {
	resp, _ := ParseResponseAPDU(tlv.Hex("6F 05 84 90 00"))
	if _, err := resp.Tree(); !errors.Is(err, tlv.ErrTruncated) {
		t.Errorf("Tree() error = %v, want ErrTruncated", err)
	}
}
