package iso7816

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// The Client hides two T=0 transport procedures from callers:
//
//	61XX  the card holds XX bytes, the client sends GET RESPONSE with Le=XX
//	6CXX  Le was wrong, the client re-sends the same command with Le=XX
//
// Each physical exchange is appended to the returned Trace. A card that keeps
// asking for follow-ups is cut off after MaxFollowUps.

// DefaultMaxFollowUps bounds the 61XX/6CXX chain of a single Send.
const DefaultMaxFollowUps = 16

// ErrTooManyFollowUps is returned when the card never settles on a final status.
var ErrTooManyFollowUps = errors.New("too many 61XX/6CXX follow-ups")

// Transmitter abstracts the physical card connection.
// *scard.Card satisfies it.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client drives command exchanges over a Transmitter.
type Client struct {
	Card         Transmitter
	MaxFollowUps int
	log          zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger logs every exchange at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMaxFollowUps overrides DefaultMaxFollowUps.
func WithMaxFollowUps(n int) Option {
	return func(c *Client) { c.MaxFollowUps = n }
}

// NewClient creates a Client. Logging is off unless WithLogger is given.
func NewClient(card Transmitter, opts ...Option) *Client {
	c := &Client{
		Card:         card,
		MaxFollowUps: DefaultMaxFollowUps,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send transmits cmd and follows 61XX/6CXX until the card returns a final
// status. The trace is returned even on error, holding what was exchanged.
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	var trace Trace

	for followUps := 0; ; followUps++ {
		if followUps > c.MaxFollowUps {
			return trace, ErrTooManyFollowUps
		}

		resp, err := c.exchange(cmd)
		if err != nil {
			return trace, err
		}
		trace = append(trace, Transaction{Command: cmd, Response: resp})

		switch resp.Status.SW1() {
		case 0x61:
			// GET RESPONSE stays on the logical channel of the command it answers.
			cla := cmd.Class
			cla.IsChained = false
			cmd = NewCommandAPDU(cla, mustInstruction(INS_GET_RESPONSE), 0x00, 0x00, nil, leFromSW2(resp.Status.SW2()))
		case 0x6C:
			retry := *cmd
			retry.Ne = leFromSW2(resp.Status.SW2())
			cmd = &retry
		default:
			return trace, nil
		}
	}
}

func (c *Client) exchange(cmd *CommandAPDU) (*ResponseAPDU, error) {
	raw, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	c.log.Debug().Hex("capdu", raw).Stringer("ins", cmd.Instruction.Raw).Msg("transmit")

	rawResp, err := c.Card.Transmit(raw)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	resp, err := ParseResponseAPDU(rawResp)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Hex("data", resp.Data).
		Str("sw", fmt.Sprintf("%04X", uint16(resp.Status))).
		Msg("receive")

	return resp, nil
}

// leFromSW2 maps the XX of 61XX/6CXX to Ne, where 00 stands for 256.
func leFromSW2(sw2 byte) int {
	if sw2 == 0 {
		return MaxShortLe
	}
	return int(sw2)
}
