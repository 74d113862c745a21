// Package archive2 provides structs and functions for decoding NEXRAD Archive II files.
//
// The documents used and referenced in this package:
//   - RDA/RPG: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620002T.pdf (high level details)
//   - User: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620010H.pdf (bulk of the format)
package archive2

import (
	"errors"
	"fmt"
	"time"

	"github.com/jddeal/go-wxdata/wsr88d"
)

const (
	// LegacyCTMHeaderLength sits in front of every LDM record
	LegacyCTMHeaderLength = 12

	// DefaultMetadataRecordLength is the frame size of the fixed-length messages
	DefaultMetadataRecordLength = 2432

	// MessageHeaderLength is the size of MessageHeader on the wire
	MessageHeaderLength = 16

	// AngleDataScale converts coded angles to degrees (User Table III-A)
	AngleDataScale = 0.005493125

	// AzElRateDataScale converts coded azimuth/elevation rates to degrees per second
	AzElRateDataScale = 0.001373291015625

	// largeMessageSize flags a message whose byte length is carried in the
	// segment fields instead (User 3.2.4.1)
	largeMessageSize = 65535

	maxMillisOfDay = 86399999
)

var (
	// ErrInvalidHeader means a message header failed validation. Reading stops at
	// the first one since there is no reliable way to find the next message.
	ErrInvalidHeader = errors.New("archive2: invalid message header")

	// ErrInvalidMessage means a message body failed validation. The body was
	// consumed so decoding can carry on with the next message.
	ErrInvalidMessage = errors.New("archive2: invalid message")
)

// VolumeHeaderRecord for NEXRAD Archive II Data Streams (RDA/RPG 7.3.3)
type VolumeHeaderRecord struct {
	TapeFilename    [9]byte // eg "AR2V0006."
	ExtensionNumber [3]byte // eg "001" (cycles through 0-999)
	ModifiedDate    uint32  // data's valid date (julian day since 1970)
	ModifiedTime    uint32  // data's valid time (milliseconds past midnight)
	ICAO            [4]byte // radar identifier
}

// Filename for this archive file
func (vh VolumeHeaderRecord) Filename() string {
	return string(vh.TapeFilename[:]) + string(vh.ExtensionNumber[:])
}

// Date and time this data is valid for
func (vh VolumeHeaderRecord) Date() time.Time {
	return wsr88d.TimePoint(vh.ModifiedDate, vh.ModifiedTime)
}

// Station is the radar identifier with any padding removed.
func (vh VolumeHeaderRecord) Station() string {
	return trimField(vh.ICAO[:])
}

// MessageHeader provides a high level description for a particular message. (User 3.2.4.1)
type MessageHeader struct {
	MessageSize         uint16 // halfwords, header included
	RDARedundantChannel uint8
	MessageType         uint8
	IDSequenceNumber    uint16
	JulianDate          uint16
	MillisOfDay         uint32
	NumMessageSegments  uint16
	MessageSegmentNum   uint16
}

// Date the message was generated
func (h MessageHeader) Date() time.Time {
	return wsr88d.TimePoint(uint32(h.JulianDate), h.MillisOfDay)
}

// DataSize is the length of the body following the header in bytes.
func (h MessageHeader) DataSize() int {
	if h.MessageSize == largeMessageSize {
		return int(uint32(h.NumMessageSegments)<<16|uint32(h.MessageSegmentNum)) - MessageHeaderLength
	}
	return int(h.MessageSize)*2 - MessageHeaderLength
}

// Segmented reports whether the body is one piece of a larger message.
func (h MessageHeader) Segmented() bool {
	return h.MessageSize != largeMessageSize && h.NumMessageSegments > 1
}

// Validate checks the header fields against the ranges allowed by the ICD.
func (h MessageHeader) Validate() error {
	if h.MessageSize < 9 {
		return fmt.Errorf("%w: message size %d", ErrInvalidHeader, h.MessageSize)
	}
	if h.MillisOfDay > maxMillisOfDay {
		return fmt.Errorf("%w: milliseconds %d", ErrInvalidHeader, h.MillisOfDay)
	}
	if h.MessageSize < largeMessageSize-1 && h.MessageSegmentNum > h.NumMessageSegments {
		return fmt.Errorf("%w: segment %d/%d", ErrInvalidHeader, h.MessageSegmentNum, h.NumMessageSegments)
	}
	if h.DataSize() < 0 {
		return fmt.Errorf("%w: data size %d", ErrInvalidHeader, h.DataSize())
	}
	return nil
}

func (h MessageHeader) String() string {
	return fmt.Sprintf("Message Type %d (segment %d/%d size: %d)",
		h.MessageType, h.MessageSegmentNum, h.NumMessageSegments, h.MessageSize)
}

func trimField(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return string(b[:end])
}
