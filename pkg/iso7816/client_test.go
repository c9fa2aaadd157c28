package iso7816

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gregLibert/tlv-reader/pkg/tlv"
	"github.com/rs/zerolog"
)

// scriptedCard replays canned responses in order and records what it was sent.
type scriptedCard struct {
	responses [][]byte
	sent      [][]byte
}

func (c *scriptedCard) Transmit(cmd []byte) ([]byte, error) {
	c.sent = append(c.sent, bytes.Clone(cmd))
	if len(c.sent) > len(c.responses) {
		return nil, fmt.Errorf("unexpected command %X", cmd)
	}
	return c.responses[len(c.sent)-1], nil
}

type transmitFunc func([]byte) ([]byte, error)

func (f transmitFunc) Transmit(cmd []byte) ([]byte, error) { return f(cmd) }

func TestClient_Send(t *testing.T) {
	cls, _ := NewClass(0x00)

	tests := []struct {
		name      string
		cmd       *CommandAPDU
		responses []string
		wantSent  []string
		wantData  []byte
		wantSW    StatusWord
	}{
		{
			name:      "Direct answer",
			cmd:       SelectMF(cls),
			responses: []string{"6F00 9000"},
			wantSent:  []string{"00A4000000"},
			wantData:  tlv.Hex("6F00"),
			wantSW:    SW_NO_ERROR,
		},
		{
			name:      "61XX triggers GET RESPONSE",
			cmd:       SelectByAID(cls, tlv.Hex("A0000000031010")),
			responses: []string{"611C", "6F1A 840E 315041592E5359532E4444463031 A508 8801 02 5F2D 02 656E 9000"},
			wantSent:  []string{"00A4040007A0000000031010", "00C000001C"},
			wantData:  tlv.Hex("6F1A 840E 315041592E5359532E4444463031 A508 8801 02 5F2D 02 656E"),
			wantSW:    SW_NO_ERROR,
		},
		{
			name:      "6CXX re-sends with corrected Le",
			cmd:       NewCommandAPDU(cls, mustInstruction(INS_READ_BINARY), 0x00, 0x00, nil, MaxShortLe),
			responses: []string{"6C04", "01020304 9000"},
			wantSent:  []string{"00B0000000", "00B0000004"},
			wantData:  tlv.Hex("01020304"),
			wantSW:    SW_NO_ERROR,
		},
		{
			name:      "61XX on a logical channel stays on it",
			cmd:       SelectMF(Class{Raw: 0x01, Channel: 1}),
			responses: []string{"6102", "6F00 9000"},
			wantSent:  []string{"01A4000000", "01C0000002"},
			wantData:  tlv.Hex("6F00"),
			wantSW:    SW_NO_ERROR,
		},
		{
			name:      "Error is final",
			cmd:       SelectMF(cls),
			responses: []string{"6A82"},
			wantSent:  []string{"00A4000000"},
			wantData:  []byte{},
			wantSW:    SW_ERR_FILE_NOT_FOUND,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := &scriptedCard{}
			for _, r := range tt.responses {
				card.responses = append(card.responses, tlv.Hex(r))
			}

			trace, err := NewClient(card).Send(tt.cmd)
			if err != nil {
				t.Fatalf("Send() error: %v", err)
			}

			var want [][]byte
			for _, s := range tt.wantSent {
				want = append(want, tlv.Hex(s))
			}
			if diff := cmp.Diff(want, card.sent); diff != "" {
				t.Errorf("sent commands mismatch (-want +got):\n%s", diff)
			}

			if len(trace) != len(tt.responses) {
				t.Fatalf("trace has %d transactions, want %d", len(trace), len(tt.responses))
			}
			if diff := cmp.Diff(tt.wantData, trace.Data()); diff != "" {
				t.Errorf("final data mismatch (-want +got):\n%s", diff)
			}
			if got := trace.Last().Response.Status; got != tt.wantSW {
				t.Errorf("final status = %04X, want %04X", uint16(got), uint16(tt.wantSW))
			}
		})
	}
}

func TestClient_SendErrors(t *testing.T) {
	cls, _ := NewClass(0x00)

	t.Run("Transmit failure", func(t *testing.T) {
		boom := errors.New("reader removed")
		card := transmitFunc(func([]byte) ([]byte, error) { return nil, boom })

		_, err := NewClient(card).Send(SelectMF(cls))
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want wrapped %v", err, boom)
		}
	})

	t.Run("Short response", func(t *testing.T) {
		card := transmitFunc(func([]byte) ([]byte, error) { return []byte{0x90}, nil })

		if _, err := NewClient(card).Send(SelectMF(cls)); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("Endless 61XX", func(t *testing.T) {
		card := transmitFunc(func([]byte) ([]byte, error) { return tlv.Hex("6101"), nil })

		trace, err := NewClient(card, WithMaxFollowUps(2)).Send(SelectMF(cls))
		if !errors.Is(err, ErrTooManyFollowUps) {
			t.Fatalf("error = %v, want ErrTooManyFollowUps", err)
		}
		if len(trace) != 3 {
			t.Errorf("trace has %d transactions, want 3", len(trace))
		}
	})
}

func TestClient_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	card := &scriptedCard{responses: [][]byte{tlv.Hex("9000")}}
	cls, _ := NewClass(0x00)

	if _, err := NewClient(card, WithLogger(logger)).Send(SelectMF(cls)); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"capdu":"00a4000000"`, `"ins":"SELECT"`, `"sw":"9000"`, `"message":"receive"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
