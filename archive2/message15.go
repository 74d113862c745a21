package archive2

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const clutterMapAzimuthSegments = 360

// RangeZone of a clutter filter map azimuth segment.
type RangeZone struct {
	OpCode   uint16 // 0 bypass filter, 1 bypass map in control, 2 force filter
	EndRange uint16 // km
}

// ClutterFilterMap Message Type 15 (User 3.2.4.14)
type ClutterFilterMap struct {
	Base
	MapGenerationDate uint16
	MapGenerationTime uint16 // minutes past midnight
	// Zones[elevation segment][azimuth segment]
	Zones [][clutterMapAzimuthSegments][]RangeZone
}

func newClutterFilterMap(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	log.Trace("Parsing Clutter Filter Map (Message Type 15)")

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

	m := &ClutterFilterMap{
		Base:              base,
		MapGenerationDate: header.Date,
		MapGenerationTime: header.Time,
		Zones:             make([][clutterMapAzimuthSegments][]RangeZone, header.Segments),
	}
	for e := range m.Zones {
		for a := 0; a < clutterMapAzimuthSegments; a++ {
			var numZones uint16
			if err := binary.Read(r, binary.BigEndian, &numZones); err != nil {
				return nil, err
			}
			if numZones < 1 || numZones > 20 {
				return nil, fmt.Errorf("%w: range zones %d", ErrInvalidMessage, numZones)
			}

			zones := make([]RangeZone, numZones)
			if err := binary.Read(r, binary.BigEndian, zones); err != nil {
				return nil, err
			}
			for _, z := range zones {
				if z.OpCode > 2 {
					return nil, fmt.Errorf("%w: op code %d", ErrInvalidMessage, z.OpCode)
				}
				if z.EndRange > 511 {
					return nil, fmt.Errorf("%w: end range %d", ErrInvalidMessage, z.EndRange)
				}
			}
			m.Zones[e][a] = zones
		}
	}
	return m, nil
}
