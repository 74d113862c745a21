package packet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// LinkedVector Packet Codes 6 and 9: a polyline from a start point. Code 9
// carries a color level.
type LinkedVector struct {
	Header
	Value  uint16 // color level, code 9 only
	StartI int16
	StartJ int16
	End    []Point
}

func newLinkedVector(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	fixed := uint16(4)
	if code == 9 {
		fixed = 6
	}

	return decodeBlock(code, r, fixed, 32767, func(h Header, body io.Reader) (Packet, error) {
		p := &LinkedVector{Header: h}
		if code == 9 {
			if err := binary.Read(body, binary.BigEndian, &p.Value); err != nil {
				return nil, err
			}
		}
		if err := binary.Read(body, binary.BigEndian, &p.StartI); err != nil {
			return nil, err
		}
		if err := binary.Read(body, binary.BigEndian, &p.StartJ); err != nil {
			return nil, err
		}

		var err error
		p.End, err = readRecords[Point](body, int(h.Length-fixed)/4)
		return p, err
	})
}

// UnlinkedVector Packet Codes 7 and 10: independent line segments. Code 10
// carries a color level.
type UnlinkedVector struct {
	Header
	Value   uint16 // color level, code 10 only
	Vectors []Vector
}

func newUnlinkedVector(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	fixed := uint16(0)
	if code == 10 {
		fixed = 2
	}

	return decodeBlock(code, r, fixed, 32767, func(h Header, body io.Reader) (Packet, error) {
		p := &UnlinkedVector{Header: h}
		if code == 10 {
			if err := binary.Read(body, binary.BigEndian, &p.Value); err != nil {
				return nil, err
			}
		}

		var err error
		p.Vectors, err = readRecords[Vector](body, int(h.Length-fixed)/8)
		return p, err
	})
}

// initialPointIndicator opens every linked contour vector packet.
const initialPointIndicator = 0x8000

// LinkedContourVector Packet Code 0x0E03 (Figure 3-8)
type LinkedContourVector struct {
	Code                  uint16
	InitialPointIndicator uint16
	StartI                int16
	StartJ                int16
	LengthOfVectors       uint16 // bytes
	End                   []Point
}

// PacketCode of the packet
func (p *LinkedContourVector) PacketCode() uint16 { return p.Code }

// DataSize covers the five leading halfwords and the vectors.
func (p *LinkedContourVector) DataSize() int { return int(p.LengthOfVectors) + 10 }

func newLinkedContourVector(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	p := &LinkedContourVector{Code: code}
	if err := binary.Read(r, binary.BigEndian, &p.InitialPointIndicator); err != nil {
		return nil, err
	}
	if p.InitialPointIndicator != initialPointIndicator {
		return nil, fmt.Errorf("initial point indicator 0x%04x", p.InitialPointIndicator)
	}
	if err := binary.Read(r, binary.BigEndian, &p.StartI); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &p.StartJ); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &p.LengthOfVectors); err != nil {
		return nil, err
	}
	if p.LengthOfVectors%4 != 0 {
		return nil, fmt.Errorf("length of vectors %d is not a whole number of points", p.LengthOfVectors)
	}

	var err error
	p.End, err = readRecords[Point](r, int(p.LengthOfVectors)/4)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UnlinkedContourVector Packet Code 0x3501 (Figure 3-10). Length is the
// length of vectors in bytes.
type UnlinkedContourVector struct {
	Header
	Vectors []Vector
}

func newUnlinkedContourVector(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, 0, 32767, func(h Header, body io.Reader) (Packet, error) {
		p := &UnlinkedContourVector{Header: h}

		var err error
		p.Vectors, err = readRecords[Vector](body, int(h.Length)/8)
		return p, err
	})
}

// colorValueIndicator is the only indicator defined for set color level.
const colorValueIndicator = 0x0002

// SetColorLevel Packet Code 0x0802 (Figure 3-9). Sets the color of the
// contour vectors that follow it.
type SetColorLevel struct {
	Code                uint16
	ColorValueIndicator uint16
	ValueOfContour      uint16
}

// PacketCode of the packet
func (p *SetColorLevel) PacketCode() uint16 { return p.Code }

// DataSize is fixed at three halfwords.
func (p *SetColorLevel) DataSize() int { return 6 }

func newSetColorLevel(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	p := &SetColorLevel{Code: code}
	if err := binary.Read(r, binary.BigEndian, &p.ColorValueIndicator); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &p.ValueOfContour); err != nil {
		return nil, err
	}
	if p.ColorValueIndicator != colorValueIndicator {
		return nil, fmt.Errorf("color value indicator 0x%04x", p.ColorValueIndicator)
	}
	return p, nil
}

// WindBarb is one barb of a wind barb data packet.
type WindBarb struct {
	Value     int16 // color level
	X         int16
	Y         int16
	Direction uint16 // degrees
	Speed     uint16 // knots
}

// WindBarbData Packet Code 4
type WindBarbData struct {
	Header
	Barbs []WindBarb
}

func newWindBarbData(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, 0, 32767, func(h Header, body io.Reader) (Packet, error) {
		p := &WindBarbData{Header: h}

		var err error
		p.Barbs, err = readRecords[WindBarb](body, int(h.Length)/10)
		return p, err
	})
}

// VectorArrow is one arrow of a vector arrow data packet.
type VectorArrow struct {
	I          int16
	J          int16
	Direction  uint16 // degrees
	Length     uint16 // pixels
	HeadLength uint16 // pixels
}

// VectorArrowData Packet Code 5
type VectorArrowData struct {
	Header
	Arrows []VectorArrow
}

func newVectorArrowData(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, 0, 32767, func(h Header, body io.Reader) (Packet, error) {
		p := &VectorArrowData{Header: h}

		var err error
		p.Arrows, err = readRecords[VectorArrow](body, int(h.Length)/10)
		return p, err
	})
}
