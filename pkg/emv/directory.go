package emv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gregLibert/tlv-reader/pkg/tlv"
)

// DirectoryDiscretionaryTemplate is tag '73' of a directory entry.
type DirectoryDiscretionaryTemplate struct {
	ApplicationSelectionRegisteredProprietaryData []byte `tlv:"9F0A"`
	IssuerCountryCodeAlpha3                       []byte `tlv:"5F56" fmt:"ascii"`
	IssuerCountryCodeAlpha2                       []byte `tlv:"5F55" fmt:"ascii"`
	BankIdentifierCode                            []byte `tlv:"5F54" fmt:"ascii"`
	IBAN                                          []byte `tlv:"5F53" fmt:"ascii"`
	IssuerURL                                     []byte `tlv:"5F50" fmt:"ascii"`
	IssuerIdentificationNumber                    []byte `tlv:"42"`
	IssuerIdentificationNumberExtended            []byte `tlv:"9F0C"`
	LogEntry                                      []byte `tlv:"9F4D"`

	Unknown []tlv.Node `tlv:",unknown"`
}

// ApplicationTemplate (tag '61') is one entry of a payment system directory.
type ApplicationTemplate struct {
	AID                          []byte                         `tlv:"4F"`
	ApplicationLabel             []byte                         `tlv:"50" fmt:"ascii"`
	ApplicationPriorityIndicator []byte                         `tlv:"87" fmt:"int"`
	DirectoryDiscretionaryData   DirectoryDiscretionaryTemplate `tlv:"73"`
	ApplicationPreferredName     []byte                         `tlv:"9F12" fmt:"ascii"`
	DDFName                      []byte                         `tlv:"9D" fmt:"ascii"`

	Unknown []tlv.Node `tlv:",unknown"`
}

// DirectoryRecord is one READ RECORD answer from the directory EF,
// wrapped in a record template '70'.
type DirectoryRecord struct {
	Applications []ApplicationTemplate `tlv:"61"`

	Unknown []tlv.Node `tlv:",unknown"`
}

// ParseDirectoryRecord maps READ RECORD data onto a DirectoryRecord.
func ParseDirectoryRecord(data []byte) (*DirectoryRecord, error) {
	if len(data) == 0 {
		return nil, errors.New("empty record data")
	}

	root, err := tlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("BER-TLV decode failed: %w", err)
	}
	if !root.TagEquals("70") || root.Encoding() != tlv.Constructed {
		return nil, fmt.Errorf("missing mandatory record template (tag 70), got %X", root.Tag())
	}

	record := &DirectoryRecord{}
	if err := tlv.UnmarshalNodes(root.Parts(), record); err != nil {
		return nil, fmt.Errorf("failed to map directory record: %w", err)
	}
	return record, nil
}

// Describe renders every application entry of the record.
func (r *DirectoryRecord) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV DIRECTORY RECORD ===")

	tlv.WriteStructFields(&sb, "Record", r)
	for i, app := range r.Applications {
		writeApplication(&sb, fmt.Sprintf("App[%d]", i+1), app)
	}

	return sb.String()
}

func writeApplication(sb *strings.Builder, prefix string, app ApplicationTemplate) {
	tlv.WriteStructFields(sb, prefix, app)
	tlv.WriteStructFields(sb, prefix+".Discretionary", app.DirectoryDiscretionaryData)
}
