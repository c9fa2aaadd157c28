package emv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gregLibert/tlv-reader/pkg/tlv"
)

// FCI is the File Control Information returned by SELECT, template '6F'.
type FCI struct {
	DFName              []byte                 `tlv:"84" fmt:"ascii"`
	ProprietaryTemplate FCIProprietaryTemplate `tlv:"A5"`

	// Root is the decoded '6F' template, or the first unit when the card
	// omits the wrapper.
	Root tlv.Node
}

// FCIProprietaryTemplate is tag 'A5'.
type FCIProprietaryTemplate struct {
	SFI                          []byte `tlv:"88"`
	ApplicationLabel             []byte `tlv:"50" fmt:"ascii"`
	ApplicationPriorityIndicator []byte `tlv:"87" fmt:"int"`
	PDOL                         []byte `tlv:"9F38"`
	LanguagePreference           []byte `tlv:"5F2D" fmt:"ascii"`
	IssuerCodeTableIndex         []byte `tlv:"9F11" fmt:"int"`
	ApplicationPreferredName     []byte `tlv:"9F12" fmt:"ascii"`

	IssuerDiscretionaryData *FCIIssuerDiscretionaryData `tlv:"BF0C"`

	Unknown []tlv.Node `tlv:",unknown"`
}

// FCIIssuerDiscretionaryData is tag 'BF0C'. On a PPSE it holds the
// directory entries directly.
type FCIIssuerDiscretionaryData struct {
	LogEntry                           []byte `tlv:"9F4D"`
	IssuerIdentificationNumberExtended []byte `tlv:"9F0C"`
	IssuerCountryCodeAlpha3            []byte `tlv:"5F56" fmt:"ascii"`
	IssuerCountryCodeAlpha2            []byte `tlv:"5F55" fmt:"ascii"`
	BankIdentifierCode                 []byte `tlv:"5F54" fmt:"ascii"`
	IBAN                               []byte `tlv:"5F53" fmt:"ascii"`
	IssuerURL                          []byte `tlv:"5F50" fmt:"ascii"`
	IssuerIdentificationNumber         []byte `tlv:"42"`

	Applications []ApplicationTemplate `tlv:"61"`

	Unknown []tlv.Node `tlv:",unknown"`
}

// ParseFCI maps SELECT response data onto an FCI. The '6F' wrapper is
// optional.
func ParseFCI(data []byte) (*FCI, error) {
	if len(data) == 0 {
		return nil, errors.New("empty data cannot be parsed")
	}

	nodes, err := tlv.DecodeAll(data)
	if err != nil {
		return nil, fmt.Errorf("BER-TLV decode failed: %w", err)
	}

	fci := &FCI{Root: nodes[0]}

	fields := nodes
	if nodes[0].TagEquals("6F") {
		fields = nodes[0].Parts()
	}

	if err := tlv.UnmarshalNodes(fields, fci); err != nil {
		return nil, fmt.Errorf("failed to map structure: %w", err)
	}
	return fci, nil
}

// DirectorySFI returns the SFI of the directory EF announced in 'A5'/'88'.
func (f *FCI) DirectorySFI() (byte, bool) {
	sfi := f.ProprietaryTemplate.SFI
	if len(sfi) != 1 {
		return 0, false
	}
	return sfi[0], true
}

// Describe renders the mapped fields, one line each.
func (f *FCI) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV FCI TEMPLATE ===")

	tlv.WriteStructFields(&sb, "FCI", f)
	tlv.WriteStructFields(&sb, "Proprietary", f.ProprietaryTemplate)

	if dd := f.ProprietaryTemplate.IssuerDiscretionaryData; dd != nil {
		tlv.WriteStructFields(&sb, "Discretionary", dd)
		for i, app := range dd.Applications {
			writeApplication(&sb, fmt.Sprintf("App[%d]", i+1), app)
		}
	}

	return sb.String()
}
