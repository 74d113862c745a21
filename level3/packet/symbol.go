package packet

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/stream"
)

// Special graphic symbol packets (Figure 3-15) share a length-of-block header
// followed by fixed size records.
const (
	minSymbolLength = 1
	maxSymbolLength = 32767
)

// MesocycloneSymbol is one record of packets 3 and 11.
type MesocycloneSymbol struct {
	I      int16
	J      int16
	Radius int16 // 1/4 km
}

// Mesocyclone Packet Codes 3 (mesocyclone) and 11 (3D correlated shear)
type Mesocyclone struct {
	Header
	Symbols []MesocycloneSymbol
}

func newMesocyclone(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, minSymbolLength, maxSymbolLength, func(h Header, body io.Reader) (Packet, error) {
		p := &Mesocyclone{Header: h}

		var err error
		p.Symbols, err = readRecords[MesocycloneSymbol](body, int(h.Length)/6)
		return p, err
	})
}

// PointGraphic Packet Codes 12 (TVS), 13 (positive hail), 14 (probable hail)
// and 26 (ETVS)
type PointGraphic struct {
	Header
	Points []Point
}

func newPointGraphic(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, minSymbolLength, maxSymbolLength, func(h Header, body io.Reader) (Packet, error) {
		p := &PointGraphic{Header: h}

		var err error
		p.Points, err = readRecords[Point](body, int(h.Length)/4)
		return p, err
	})
}

// StormIDSymbol is one record of packet 15.
type StormIDSymbol struct {
	I  int16
	J  int16
	ID [2]byte
}

// StormID returns the two character storm identifier.
func (s StormIDSymbol) StormID() string { return string(s.ID[:]) }

// StormID Packet Code 15
type StormID struct {
	Header
	Symbols []StormIDSymbol
}

func newStormID(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, minSymbolLength, maxSymbolLength, func(h Header, body io.Reader) (Packet, error) {
		p := &StormID{Header: h}

		var err error
		p.Symbols, err = readRecords[StormIDSymbol](body, int(h.Length)/6)
		return p, err
	})
}

// HDAHailSymbol is one record of packet 19.
type HDAHailSymbol struct {
	I                       int16
	J                       int16
	ProbabilityOfHail       int16 // percent, -999 when not computed
	ProbabilityOfSevereHail int16 // percent, -999 when not computed
	MaxHailSize             uint16 // inches
}

// HDAHail Packet Code 19
type HDAHail struct {
	Header
	Symbols []HDAHailSymbol
}

func newHDAHail(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, minSymbolLength, maxSymbolLength, func(h Header, body io.Reader) (Packet, error) {
		p := &HDAHail{Header: h}

		var err error
		p.Symbols, err = readRecords[HDAHailSymbol](body, int(h.Length)/10)
		return p, err
	})
}

// PointFeatureSymbol is one record of packet 20.
type PointFeatureSymbol struct {
	I         int16
	J         int16
	Type      uint16
	Attribute uint16 // radius in 1/4 km for mesocyclone types
}

// PointFeature Packet Code 20
type PointFeature struct {
	Header
	Symbols []PointFeatureSymbol
}

func newPointFeature(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, 8, 32760, func(h Header, body io.Reader) (Packet, error) {
		p := &PointFeature{Header: h}

		var err error
		p.Symbols, err = readRecords[PointFeatureSymbol](body, int(h.Length)/8)
		return p, err
	})
}

// STICircleSymbol is one record of packet 25.
type STICircleSymbol struct {
	I      int16
	J      int16
	Radius uint16
}

// STICircle Packet Code 25
type STICircle struct {
	Header
	Symbols []STICircleSymbol
}

func newSTICircle(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, minSymbolLength, maxSymbolLength, func(h Header, body io.Reader) (Packet, error) {
		p := &STICircle{Header: h}

		var err error
		p.Symbols, err = readRecords[STICircleSymbol](body, int(h.Length)/6)
		return p, err
	})
}

// SCITForecastData Packet Codes 23 (past) and 24 (forecast): storm cell
// tracks drawn with nested packets 2, 6 and 25.
type SCITForecastData struct {
	Header
	Data []byte

	// Packets decoded from Data. Decoding stops at the first packet that
	// does not fit.
	Packets []Packet
}

func newSCITForecastData(code uint16, r io.Reader, log logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, minSymbolLength, maxSymbolLength, func(h Header, body io.Reader) (Packet, error) {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}

		p := &SCITForecastData{Header: h, Data: data}
		nested := stream.NewBufferBytes(data)
		for {
			child, err := Create(nested, log)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				log.Debugf("SCIT packet %d: %v", code, err)
				break
			}
			p.Packets = append(p.Packets, child)
		}
		return p, nil
	})
}
