package iso7816

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gregLibert/tlv-reader/pkg/tlv"
)

// Result wraps the trace of one logical command and reports on it.
type Result struct {
	Trace
}

// NewResult wraps a non-empty trace whose transactions all carry a response.
func NewResult(t Trace) (*Result, error) {
	if len(t) == 0 {
		return nil, errors.New("cannot create result from empty trace")
	}
	for i, tx := range t {
		if tx.Command == nil || tx.Response == nil {
			return nil, fmt.Errorf("transaction %d is incomplete", i+1)
		}
	}
	return &Result{Trace: t}, nil
}

// Tree decodes the final response data as one BER-TLV unit.
func (r *Result) Tree() (tlv.Node, error) {
	if !r.IsSuccess() {
		return nil, fmt.Errorf("command failed with %s", r.Last().Response.Status.Verbose())
	}
	data := r.Data()
	if len(data) == 0 {
		return nil, errors.New("no response data")
	}
	return tlv.Decode(data)
}

// Describe reports the initial command, any 61XX/6CXX follow-ups, and the
// decoded response tree.
func (r *Result) Describe() string {
	var sb strings.Builder

	first := r.Trace[0]
	fmt.Fprintf(&sb, "=== %s REPORT ===\n", first.Command.Instruction.Raw)
	fmt.Fprintf(&sb, "[1] Command: %s\n", first.Command)
	if len(first.Command.Data) > 0 {
		fmt.Fprintf(&sb, "    + Data:    %X (%q)\n", first.Command.Data, tlv.MakeSafeASCII(first.Command.Data))
	}
	fmt.Fprintf(&sb, "    + Result:  %s\n", first.Response.Status.Verbose())

	for i, tx := range r.Trace[1:] {
		fmt.Fprintf(&sb, "[%d] Follow-up: %s (Le %d)\n", i+2, tx.Command.Instruction.Raw, tx.Command.Ne)
		fmt.Fprintf(&sb, "    + Result:  %s\n", tx.Response.Status.Verbose())
	}

	sb.WriteString("[=] FINAL OUTCOME:\n")

	data := r.Data()
	if len(data) > 0 {
		fmt.Fprintf(&sb, "    + Payload: %d bytes\n", len(data))
		fmt.Fprintf(&sb, "      Dump:    %X\n", data)
	}

	tree, err := r.Tree()
	switch {
	case err != nil && len(data) == 0:
		sb.WriteString("    - No data to decode")
	case err != nil:
		fmt.Fprintf(&sb, "    - TLV decoding failed: %v", err)
	default:
		sb.WriteString(indent(tlv.Render(tree), "    "))
	}

	return sb.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
