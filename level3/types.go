// Package level3 decodes WSR-88D Level III (NIDS) product files.
//
// A product is an 18 byte message header, a 102 byte product description
// block and up to three blocks located by halfword offsets from the start of
// the message: the product symbology block, the graphic alphanumeric block
// and the tabular alphanumeric block. Files received over NOAAPort carry a WMO
// heading in front and may wrap everything after it in zlib.
//
// The documents used and referenced in this package:
//   - RPG: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620001Y.pdf (Class 1 user ICD)
package level3

import (
	"errors"
	"fmt"
	"time"

	"github.com/jddeal/go-wxdata/wsr88d"
)

const (
	// MessageHeaderLength is the size of MessageHeader on the wire
	MessageHeaderLength = 18

	// DescriptionBlockLength is the size of DescriptionBlock on the wire
	DescriptionBlockLength = 102

	// block offsets in the description block count from the start of the
	// message header
	offsetBase = MessageHeaderLength + DescriptionBlockLength

	blockHeaderLength = 8

	maxMessageLength = 1329270
	maxSecondsOfDay  = 86399
)

var (
	// ErrInvalidHeader means a message header failed validation. Reading stops
	// at the first one.
	ErrInvalidHeader = errors.New("level3: invalid message header")

	// ErrInvalidMessage means a message body failed validation. The body was
	// consumed so decoding can carry on with the next message.
	ErrInvalidMessage = errors.New("level3: invalid message")

	// ErrInvalidBlock means a symbology, graphic or tabular block prolog was
	// malformed. The product is kept without that block.
	ErrInvalidBlock = errors.New("level3: invalid block")
)

// MessageHeader starts every product (RPG Figure 3-3, halfwords 1-9).
type MessageHeader struct {
	Code           int16
	Date           uint16 // julian date, 1 = 1 January 1970
	Time           uint32 // seconds past midnight GMT
	Length         uint32 // bytes, header included
	SourceID       uint16
	DestinationID  uint16
	NumberOfBlocks uint16
}

// DateTime the message was generated.
func (h MessageHeader) DateTime() time.Time {
	return wsr88d.SecondsPoint(uint32(h.Date), h.Time)
}

// DataSize is the length of the message following the header.
func (h MessageHeader) DataSize() int {
	return int(h.Length) - MessageHeaderLength
}

// Validate checks the header fields against the ranges allowed by the ICD.
func (h MessageHeader) Validate() error {
	switch {
	case h.Code < -131 || (h.Code > -16 && h.Code < 0) || h.Code > 211:
		return fmt.Errorf("%w: message code %d", ErrInvalidHeader, h.Code)
	case h.Date < 1 || h.Date > 32767:
		return fmt.Errorf("%w: date %d", ErrInvalidHeader, h.Date)
	case h.Time > maxSecondsOfDay:
		return fmt.Errorf("%w: time %d", ErrInvalidHeader, h.Time)
	case h.Length < MessageHeaderLength || h.Length > maxMessageLength:
		return fmt.Errorf("%w: length %d", ErrInvalidHeader, h.Length)
	case h.SourceID > 999:
		return fmt.Errorf("%w: source id %d", ErrInvalidHeader, h.SourceID)
	case h.DestinationID > 999:
		return fmt.Errorf("%w: destination id %d", ErrInvalidHeader, h.DestinationID)
	case h.NumberOfBlocks < 1 || h.NumberOfBlocks > 51:
		return fmt.Errorf("%w: number of blocks %d", ErrInvalidHeader, h.NumberOfBlocks)
	}
	return nil
}

func (h MessageHeader) String() string {
	return fmt.Sprintf("Message %d @ %v (%d bytes, source %d, %d blocks)",
		h.Code, h.DateTime(), h.Length, h.SourceID, h.NumberOfBlocks)
}

// BlockHeader is the prolog shared by the symbology, graphic and tabular
// blocks.
type BlockHeader struct {
	Divider int16  // always -1
	BlockID uint16 // 1 symbology, 2 graphic, 3 tabular
	Length  uint32 // bytes, prolog included
}

func (b BlockHeader) validate(id uint16) error {
	switch {
	case b.Divider != -1:
		return fmt.Errorf("%w: block divider %d", ErrInvalidBlock, b.Divider)
	case b.BlockID != id:
		return fmt.Errorf("%w: block id %d, expected %d", ErrInvalidBlock, b.BlockID, id)
	case b.Length < 10:
		return fmt.Errorf("%w: block length %d", ErrInvalidBlock, b.Length)
	}
	return nil
}
