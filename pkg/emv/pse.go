package emv

import (
	"errors"
	"fmt"

	"github.com/gregLibert/tlv-reader/pkg/iso7816"
)

// Payment system environment names. The contact PSE points at a directory EF
// read record by record; the contactless PPSE carries its entries in the FCI.
const (
	PSEName  = "1PAY.SYS.DDF01"
	PPSEName = "2PAY.SYS.DDF01"
)

// DefaultMaxRecords bounds ReadDirectory when the card never answers 6A83.
const DefaultMaxRecords = 16

// SelectApplication selects aid and maps the answer onto an FCI.
// The Result is returned whenever the card answered, so callers can report
// the exchange even when the FCI could not be mapped.
func SelectApplication(c *iso7816.Client, cla iso7816.Class, aid []byte) (*iso7816.Result, *FCI, error) {
	trace, err := c.Send(iso7816.SelectByAID(cla, aid))
	if err != nil {
		return nil, nil, fmt.Errorf("select %X: %w", aid, err)
	}

	res, err := iso7816.NewResult(trace)
	if err != nil {
		return nil, nil, err
	}
	if !res.IsSuccess() {
		return res, nil, fmt.Errorf("select %X: %s", aid, res.Last().Response.Status.Verbose())
	}

	fci, err := ParseFCI(res.Data())
	if err != nil {
		return res, nil, fmt.Errorf("select %X: %w", aid, err)
	}
	return res, fci, nil
}

// SelectPSE selects the named payment system environment.
func SelectPSE(c *iso7816.Client, cla iso7816.Class, name string) (*iso7816.Result, *FCI, error) {
	return SelectApplication(c, cla, []byte(name))
}

// ReadDirectory reads records 1..maxRecords of the directory EF until the card
// answers 6A83 (record not found). Any other failure stops the walk.
func ReadDirectory(c *iso7816.Client, cla iso7816.Class, sfi byte, maxRecords int) ([]*DirectoryRecord, error) {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	var records []*DirectoryRecord
	for n := 1; n <= maxRecords; n++ {
		cmd, err := iso7816.ReadRecord(cla, sfi, byte(n))
		if err != nil {
			return records, err
		}

		trace, err := c.Send(cmd)
		if err != nil {
			return records, fmt.Errorf("read record %d: %w", n, err)
		}

		sw := trace.Last().Response.Status
		if sw == iso7816.SW_ERR_RECORD_NOT_FOUND {
			return records, nil
		}
		if !trace.IsSuccess() {
			return records, fmt.Errorf("read record %d: %s", n, sw.Verbose())
		}

		rec, err := ParseDirectoryRecord(trace.Data())
		if err != nil {
			return records, fmt.Errorf("record %d: %w", n, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ListApplications returns the directory entries reachable from a PSE or PPSE FCI.
// For a PSE the directory EF is read; a PPSE lists them under 'BF0C'.
func ListApplications(c *iso7816.Client, cla iso7816.Class, fci *FCI, maxRecords int) ([]ApplicationTemplate, error) {
	if dd := fci.ProprietaryTemplate.IssuerDiscretionaryData; dd != nil && len(dd.Applications) > 0 {
		return dd.Applications, nil
	}

	sfi, ok := fci.DirectorySFI()
	if !ok {
		return nil, errors.New("FCI carries neither directory entries nor a directory SFI")
	}

	records, err := ReadDirectory(c, cla, sfi, maxRecords)
	if err != nil {
		return nil, err
	}

	var apps []ApplicationTemplate
	for _, r := range records {
		apps = append(apps, r.Applications...)
	}
	return apps, nil
}
