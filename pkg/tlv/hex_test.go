package tlv

import (
	"bytes"
	"errors"
	"testing"
)

func TestHexify(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte{}, ""},
		{[]byte{0x0A}, "0A"},
		{[]byte{0x00, 0xA4, 0x04, 0x00}, "00 A4 04 00"},
	}

	for _, tt := range tests {
		if got := Hexify(tt.in); got != tt.want {
			t.Errorf("Hexify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"APDU style", "FF CA 00 00 00", []byte{0xFF, 0xCA, 0x00, 0x00, 0x00}, false},
		{"Compact", "6f1a", []byte{0x6F, 0x1A}, false},
		{"Empty", "", []byte{}, false},
		{"Only spaces", "   ", []byte{}, false},
		{"Odd digit count", "ABC", nil, true},
		{"Non hex", "GG", nil, true},
		{"Tabs are not separators", "AA\tBB", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHex) {
					t.Errorf("error %v is not ErrInvalidHex", err)
				}
				return
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ParseHex() = %X, want %X", got, tt.want)
			}
		})
	}
}

func TestParseHex_RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x7F, 0x80, 0xFF, 0x6F}
	got, err := ParseHex(Hexify(data))
	if err != nil || !bytes.Equal(got, data) {
		t.Errorf("ParseHex(Hexify(x)) = %X, %v; want %X", got, err, data)
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []string
		want      []byte
		wantPanic bool
	}{
		{
			name:   "Simple Join",
			inputs: []string{"00", "A4"},
			want:   []byte{0x00, 0xA4},
		},
		{
			name:   "With Spaces",
			inputs: []string{"00 A4", " 04 00 "},
			want:   []byte{0x00, 0xA4, 0x04, 0x00},
		},
		{
			name:      "Invalid Hex",
			inputs:    []string{"ZZ"},
			wantPanic: true,
		},
		{
			name:      "Odd Length",
			inputs:    []string{"123"},
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if (r != nil) != tt.wantPanic {
					t.Errorf("Hex() panic = %v, wantPanic %v", r, tt.wantPanic)
				}
			}()

			got := Hex(tt.inputs...)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Hex() = %X, want %X", got, tt.want)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	data := Hex("01 02 03 04 05")

	got, err := Slice(data, 1, 3)
	if err != nil || !bytes.Equal(got, Hex("02 03 04")) {
		t.Fatalf("Slice(1, 3) = %X, %v", got, err)
	}
	got[0] = 0xFF
	if data[1] != 0x02 {
		t.Error("Slice must return a copy")
	}

	if got, err := Slice(data, 5, 0); err != nil || len(got) != 0 {
		t.Errorf("Slice(5, 0) = %X, %v; want empty", got, err)
	}

	for _, bad := range [][2]int{{4, 2}, {6, 0}, {-1, 1}, {0, -1}} {
		if _, err := Slice(data, bad[0], bad[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Slice(%d, %d) error = %v, want ErrOutOfRange", bad[0], bad[1], err)
		}
	}
}

func TestConcat(t *testing.T) {
	a := Hex("FF 82 00 00 06")
	b := Hex("FF FF FF FF FF FF")

	got := Concat(a, b)
	if !bytes.Equal(got, Hex("FF 82 00 00 06 FF FF FF FF FF FF")) {
		t.Errorf("Concat() = %X", got)
	}

	got[0] = 0x00
	if a[0] != 0xFF {
		t.Error("Concat must not share memory with its inputs")
	}

	if got := Concat(nil, nil); len(got) != 0 {
		t.Errorf("Concat(nil, nil) = %X", got)
	}
}
