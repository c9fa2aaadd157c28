package iso7816

import "testing"

func TestNewInstruction(t *testing.T) {
	for _, ins := range []InsCode{0x60, 0x6F, 0x90, 0x9A} {
		if _, err := NewInstruction(ins); err == nil {
			t.Errorf("NewInstruction(%02X) should fail", byte(ins))
		}
	}

	i, err := NewInstruction(INS_READ_RECORD_BER)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !i.IsBERTLV {
		t.Error("odd INS B3 should announce BER-TLV data")
	}

	i, _ = NewInstruction(INS_SELECT)
	if want := "INS: 0xA4 | Command: SELECT | Format: Standard"; i.Verbose() != want {
		t.Errorf("Verbose() = %q, want %q", i.Verbose(), want)
	}
}

func TestInsCode_String(t *testing.T) {
	if got := INS_GET_RESPONSE.String(); got != "GET RESPONSE" {
		t.Errorf("got %q", got)
	}
	if got := InsCode(0x12).String(); got != "InsCode(0x12)" {
		t.Errorf("got %q", got)
	}
}
