package archive2

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	bypassMapRadials       = 360
	bypassMapRangeBins     = 512
	bypassMapCodedRangeBin = bypassMapRangeBins / 16
)

// ClutterFilterBypassMap Message Type 13 (User 3.2.4.12). Each radial holds
// 512 one bit range bins packed into 32 halfwords, most significant bit first.
type ClutterFilterBypassMap struct {
	Base
	MapGenerationDate uint16
	MapGenerationTime uint16 // minutes past midnight
	// Segments[elevation segment][radial][halfword]
	Segments [][bypassMapRadials][bypassMapCodedRangeBin]uint16
}

func newClutterFilterBypassMap(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	log.Trace("Parsing Clutter Filter Bypass Map (Message Type 13)")

	var header struct {
		Date     uint16
		Time     uint16
		Segments uint16
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, err
	}
	if err := validateMapHeader(header.Date, header.Time, header.Segments); err != nil {
		return nil, err
	}

	m := &ClutterFilterBypassMap{
		Base:              base,
		MapGenerationDate: header.Date,
		MapGenerationTime: header.Time,
		Segments:          make([][bypassMapRadials][bypassMapCodedRangeBin]uint16, header.Segments),
	}
	for e := range m.Segments {
		var segmentNumber uint16 // redundant
		if err := binary.Read(r, binary.BigEndian, &segmentNumber); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &m.Segments[e]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Bypassed reports whether the clutter filter is bypassed for the given
// elevation segment, radial (0-359) and range bin (0-511).
func (m *ClutterFilterBypassMap) Bypassed(segment, radial, bin int) bool {
	if segment < 0 || segment >= len(m.Segments) || radial < 0 || radial >= bypassMapRadials ||
		bin < 0 || bin >= bypassMapRangeBins {
		return false
	}
	word := m.Segments[segment][radial][bin/16]
	return word&(0x8000>>(bin%16)) != 0
}

func validateMapHeader(date, minutes, segments uint16) error {
	if date < 1 {
		return fmt.Errorf("%w: map date %d", ErrInvalidMessage, date)
	}
	if minutes > 1440 {
		return fmt.Errorf("%w: map time %d", ErrInvalidMessage, minutes)
	}
	if segments < 1 || segments > 5 {
		return fmt.Errorf("%w: elevation segments %d", ErrInvalidMessage, segments)
	}
	return nil
}
