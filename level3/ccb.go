package level3

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// ccbFixedLength is the communications control block without destinations.
const ccbFixedLength = 20

// CCBHeader is the NWS communications control block in front of the inner
// WMO header of a zlib wrapped product (NWS TG 10).
type CCBHeader struct {
	Flag           uint8  // ff, top two bits of the first halfword
	Length         uint16 // halfwords, low 14 bits of the first halfword
	Mode           uint8
	SubMode        uint8
	Precedence     byte
	Classification byte
	Originator     string
	Category       uint8
	Subcategory    uint8
	UserDefined    uint16
	Year           uint8
	Month          uint8
	Day            uint8
	Hour           uint8
	Minute         uint8
	Destinations   []string
}

type ccbWire struct {
	FlagLength     uint16
	Mode           uint8
	SubMode        uint8
	Precedence     byte
	Classification byte
	Originator     [4]byte
	Category       uint8
	Subcategory    uint8
	UserDefined    uint16
	Year           uint8
	Month          uint8
	Day            uint8
	Hour           uint8
	Minute         uint8
	NumberOfDest   uint8
}

// readCCBHeader decodes a CCB header and skips any bytes its length declares
// beyond the destinations.
func readCCBHeader(r io.Reader, log logrus.Ext1FieldLogger) (*CCBHeader, error) {
	var w ccbWire
	if err := binary.Read(r, binary.BigEndian, &w); err != nil {
		return nil, fmt.Errorf("%w: CCB header: %v", ErrInvalidHeader, err)
	}

	h := &CCBHeader{
		Flag:           uint8(w.FlagLength >> 14),
		Length:         w.FlagLength & 0x3fff,
		Mode:           w.Mode,
		SubMode:        w.SubMode,
		Precedence:     w.Precedence,
		Classification: w.Classification,
		Originator:     strings.TrimRight(string(w.Originator[:]), " \x00"),
		Category:       w.Category,
		Subcategory:    w.Subcategory,
		UserDefined:    w.UserDefined,
		Year:           w.Year,
		Month:          w.Month,
		Day:            w.Day,
		Hour:           w.Hour,
		Minute:         w.Minute,
	}

	for i := 0; i < int(w.NumberOfDest); i++ {
		var dest [4]byte
		if _, err := io.ReadFull(r, dest[:]); err != nil {
			return nil, fmt.Errorf("%w: CCB destination %d: %v", ErrInvalidHeader, i, err)
		}
		h.Destinations = append(h.Destinations, strings.TrimRight(string(dest[:]), " \x00"))
	}

	consumed := ccbFixedLength + 4*int(w.NumberOfDest)
	if extra := int(h.Length)*2 - consumed; extra > 0 {
		log.Tracef("Skipping %s bytes of CCB header", color.CyanString("%d", extra))
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return nil, fmt.Errorf("%w: CCB header: %v", ErrInvalidHeader, err)
		}
	}
	return h, nil
}
