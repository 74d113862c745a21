package packet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// RadialArrayHeader follows the packet code of the radial packets (Figures
// 3-10 and 3-11c).
type RadialArrayHeader struct {
	Code             uint16
	FirstRangeBin    uint16
	RangeBinCount    uint16
	ICenterOfSweep   int16
	JCenterOfSweep   int16
	RangeScaleFactor uint16 // 0.001 for digital arrays
	RadialCount      uint16
}

// PacketCode of the packet
func (h RadialArrayHeader) PacketCode() uint16 { return h.Code }

// RadialHeader precedes each radial.
type RadialHeader struct {
	Length     uint16 // bytes (digital) or RLE halfwords (radial data)
	StartAngle uint16 // 0.1 degree
	AngleDelta uint16 // 0.1 degree
}

// StartAngleDegrees of the radial
func (h RadialHeader) StartAngleDegrees() float32 { return float32(h.StartAngle) * 0.1 }

// AngleDeltaDegrees is the width of the radial
func (h RadialHeader) AngleDeltaDegrees() float32 { return float32(h.AngleDelta) * 0.1 }

const radialArrayHeaderLength = 14

// readRadialArrayHeader reads the header fields after code.
func readRadialArrayHeader(code uint16, r io.Reader) (RadialArrayHeader, error) {
	h := RadialArrayHeader{}
	fields := []interface{}{&h.FirstRangeBin, &h.RangeBinCount, &h.ICenterOfSweep, &h.JCenterOfSweep,
		&h.RangeScaleFactor, &h.RadialCount}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return h, err
		}
	}
	h.Code = code
	return h, nil
}

// Radial is one radial of 4 bit run length encoded data.
type Radial struct {
	RadialHeader
	Data []byte // RLE bytes, trailing zero pad removed
}

// Levels expands the run length encoding into one color level per bin.
func (r Radial) Levels() []uint8 { return expandRLE(r.Data) }

// RadialData Packet Code 0xAF1F (Figure 3-10)
type RadialData struct {
	RadialArrayHeader
	Radials []Radial
	size    int
}

// DataSize is the header plus every radial.
func (p *RadialData) DataSize() int { return p.size }

func newRadialData(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	h, err := readRadialArrayHeader(code, r)
	if err != nil {
		return nil, err
	}
	if h.RangeBinCount < 1 || h.RangeBinCount > 460 {
		return nil, fmt.Errorf("number of range bins %d", h.RangeBinCount)
	}
	if h.RadialCount < 1 || h.RadialCount > 400 {
		return nil, fmt.Errorf("number of radials %d", h.RadialCount)
	}

	p := &RadialData{RadialArrayHeader: h, Radials: make([]Radial, h.RadialCount), size: radialArrayHeaderLength}
	for i := range p.Radials {
		radial := &p.Radials[i]
		if err := binary.Read(r, binary.BigEndian, &radial.RadialHeader); err != nil {
			return nil, err
		}
		if radial.Length < 1 || radial.Length > 230 {
			return nil, fmt.Errorf("number of RLE halfwords %d (radial %d)", radial.Length, i)
		}

		radial.Data = make([]byte, int(radial.Length)*2)
		if _, err := io.ReadFull(r, radial.Data); err != nil {
			return nil, err
		}
		if n := len(radial.Data); radial.Data[n-1] == 0 {
			radial.Data = radial.Data[:n-1]
		}
		p.size += 6 + int(radial.Length)*2
	}
	return p, nil
}

// DigitalRadial is one radial of 8 bit data levels.
type DigitalRadial struct {
	RadialHeader
	Levels []uint8 // one per range bin
}

// DigitalRadialDataArray Packet Code 16 (Figure 3-11c)
type DigitalRadialDataArray struct {
	RadialArrayHeader
	Radials []DigitalRadial
	size    int
}

// DataSize is the header plus every radial.
func (p *DigitalRadialDataArray) DataSize() int { return p.size }

func newDigitalRadialDataArray(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	h, err := readRadialArrayHeader(code, r)
	if err != nil {
		return nil, err
	}
	if h.FirstRangeBin > 230 {
		return nil, fmt.Errorf("index of first range bin %d", h.FirstRangeBin)
	}
	if h.RangeBinCount > 1840 {
		return nil, fmt.Errorf("number of range bins %d", h.RangeBinCount)
	}
	if h.RadialCount < 1 || h.RadialCount > 720 {
		return nil, fmt.Errorf("number of radials %d", h.RadialCount)
	}

	p := &DigitalRadialDataArray{RadialArrayHeader: h, Radials: make([]DigitalRadial, h.RadialCount),
		size: radialArrayHeaderLength}
	for i := range p.Radials {
		radial := &p.Radials[i]
		if err := binary.Read(r, binary.BigEndian, &radial.RadialHeader); err != nil {
			return nil, err
		}
		if radial.Length < 1 || radial.Length > 1840 {
			return nil, fmt.Errorf("number of bytes %d (radial %d)", radial.Length, i)
		}
		if radial.Length < h.RangeBinCount {
			return nil, fmt.Errorf("number of bytes %d < number of range bins %d (radial %d)",
				radial.Length, h.RangeBinCount, i)
		}

		// radials are padded to a halfword
		data := make([]byte, radial.Length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		radial.Levels = data[:h.RangeBinCount]
		p.size += 6 + int(radial.Length)
	}
	return p, nil
}
