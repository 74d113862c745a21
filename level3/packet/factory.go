package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type createFunc func(code uint16, r io.Reader, log logrus.Ext1FieldLogger) (Packet, error)

// create maps packet codes to decoders. It is filled by init, as SCIT packets
// decode their nested packets through Create, and never modified afterwards.
var create map[uint16]createFunc

func init() {
	create = map[uint16]createFunc{
		1:      newTextSymbol,
		2:      newTextSymbol,
		3:      newMesocyclone,
		4:      newWindBarbData,
		5:      newVectorArrowData,
		6:      newLinkedVector,
		7:      newUnlinkedVector,
		8:      newTextSymbol,
		9:      newLinkedVector,
		10:     newUnlinkedVector,
		11:     newMesocyclone,
		12:     newPointGraphic,
		13:     newPointGraphic,
		14:     newPointGraphic,
		15:     newStormID,
		16:     newDigitalRadialDataArray,
		17:     newDigitalPrecipitationDataArray,
		18:     newPrecipitationRateDataArray,
		19:     newHDAHail,
		20:     newPointFeature,
		21:     newCellTrendData,
		22:     newCellTrendVolumeScanTimes,
		23:     newSCITForecastData,
		24:     newSCITForecastData,
		25:     newSTICircle,
		26:     newPointGraphic,
		28:     newGenericData,
		29:     newGenericData,
		0x0802: newSetColorLevel,
		0x0E03: newLinkedContourVector,
		0x3501: newUnlinkedContourVector,
		0xAF1F: newRadialData,
		0xBA07: newRasterData,
		0xBA0F: newRasterData,
	}
}

// Known reports whether code has a registered decoder.
func Known(code uint16) bool {
	_, ok := create[code]
	return ok
}

// Create decodes the packet at the front of r.
//
// It returns io.EOF when r is exhausted before a packet code. Decode failures
// are wrapped in ErrInvalidPacket; after one the position of r inside the
// packet is undefined and the caller should discard the rest of its scope.
// Unknown codes are not an error: they produce an *Unknown holding the rest
// of r.
func Create(r io.Reader, log logrus.Ext1FieldLogger) (Packet, error) {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "packet")
	}

	var code uint16
	if err := binary.Read(r, binary.BigEndian, &code); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	fn, ok := create[code]
	if !ok {
		log.Warnf("Unknown packet code: %d (0x%04x)", code, code)
		return newUnknown(code, r)
	}

	log.Tracef("Found packet code: %d (0x%04x)", code, code)
	p, err := fn(code, r, log)
	if err != nil {
		return nil, fmt.Errorf("%w: code %d (0x%04x): %v", ErrInvalidPacket, code, code, err)
	}
	return p, nil
}

func lengthError(length uint16) error {
	return fmt.Errorf("length of block %d out of range", length)
}
