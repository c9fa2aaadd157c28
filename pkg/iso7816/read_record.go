package iso7816

import "fmt"

// READ RECORD (INS 'B2'):
//
//	P1  record number or identifier, 00 is the current record
//	P2  b8-b4 SFI (0 is the current EF), b3-b1 addressing mode

// ReadRecordMode is b3-b1 of the READ RECORD P2.
type ReadRecordMode byte

const (
	RefByID_FirstOccurrence    ReadRecordMode = 0b000
	RefByID_LastOccurrence     ReadRecordMode = 0b001
	RefByID_NextOccurrence     ReadRecordMode = 0b010
	RefByID_PreviousOccurrence ReadRecordMode = 0b011

	RefByNum_ReadP1              ReadRecordMode = 0b100
	RefByNum_ReadAllFromP1       ReadRecordMode = 0b101
	RefByNum_ReadAllFromLastToP1 ReadRecordMode = 0b110
)

// MaxSFI is the largest short file identifier that fits P2.
const MaxSFI = 30

// NewReadRecordCommand builds a READ RECORD asking for up to 256 bytes.
func NewReadRecordCommand(cla Class, sfi, p1 byte, mode ReadRecordMode) (*CommandAPDU, error) {
	if sfi > MaxSFI {
		return nil, fmt.Errorf("SFI %d out of range (max %d)", sfi, MaxSFI)
	}
	p2 := sfi<<3 | byte(mode)&0x07
	return NewCommandAPDU(cla, mustInstruction(INS_READ_RECORD), p1, p2, nil, MaxShortLe), nil
}

// ReadRecord reads record number n of the EF identified by sfi.
func ReadRecord(cla Class, sfi, n byte) (*CommandAPDU, error) {
	return NewReadRecordCommand(cla, sfi, n, RefByNum_ReadP1)
}
