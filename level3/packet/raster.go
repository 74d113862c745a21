package packet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// RasterHeader follows the packet code of a raster data packet (Figure 3-12).
type RasterHeader struct {
	OpFlags             [2]uint16
	ICoordinateStart    int16
	JCoordinateStart    int16
	XScaleInt           uint16
	XScaleFractional    uint16
	YScaleInt           uint16
	YScaleFractional    uint16
	NumberOfRows        uint16
	PackagingDescriptor uint16
}

const rasterHeaderLength = 22

// RasterRow is one row of 4 bit run length encoded data.
type RasterRow struct {
	Data []byte // RLE bytes, trailing zero pad removed
}

// Levels expands the run length encoding into one color level per box.
func (r RasterRow) Levels() []uint8 { return expandRLE(r.Data) }

// RasterData Packet Codes 0xBA0F and 0xBA07
type RasterData struct {
	Code uint16
	RasterHeader
	Rows []RasterRow
	size int
}

// PacketCode of the packet
func (p *RasterData) PacketCode() uint16 { return p.Code }

// DataSize is the header plus every row.
func (p *RasterData) DataSize() int { return p.size }

func newRasterData(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	p := &RasterData{Code: code, size: rasterHeaderLength}
	if err := binary.Read(r, binary.BigEndian, &p.RasterHeader); err != nil {
		return nil, err
	}
	if p.NumberOfRows < 1 || p.NumberOfRows > 464 {
		return nil, fmt.Errorf("number of rows %d", p.NumberOfRows)
	}

	p.Rows = make([]RasterRow, p.NumberOfRows)
	for i := range p.Rows {
		data, err := readRow(r, 920, i)
		if err != nil {
			return nil, err
		}
		p.size += 2 + len(data)
		if n := len(data); data[n-1] == 0 {
			data = data[:n-1]
		}
		p.Rows[i].Data = data
	}
	return p, nil
}

// readRow reads a row byte count and that many bytes. Counts are even and at
// least 2.
func readRow(r io.Reader, maxBytes uint16, row int) ([]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n < 2 || n > maxBytes || n%2 != 0 {
		return nil, fmt.Errorf("number of bytes in row %d (row %d)", n, row)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// LFMHeader follows the packet code of the LFM grid packets 17 and 18.
type LFMHeader struct {
	_                     [2]uint16
	NumberOfLFMBoxesInRow uint16
	NumberOfRows          uint16
}

const lfmHeaderLength = 10

// PrecipitationRun is one run of a digital precipitation row.
type PrecipitationRun struct {
	Run   uint8
	Level uint8
}

// DigitalPrecipitationRow is one row of 1/4 LFM boxes.
type DigitalPrecipitationRow struct {
	Runs []PrecipitationRun
}

// Levels expands the runs into one data level per box.
func (r DigitalPrecipitationRow) Levels() []uint8 {
	var levels []uint8
	for _, run := range r.Runs {
		for i := uint8(0); i < run.Run; i++ {
			levels = append(levels, run.Level)
		}
	}
	return levels
}

// DigitalPrecipitationDataArray Packet Code 17 (Figure 3-11a)
type DigitalPrecipitationDataArray struct {
	Code uint16
	LFMHeader
	Rows []DigitalPrecipitationRow
	size int
}

// PacketCode of the packet
func (p *DigitalPrecipitationDataArray) PacketCode() uint16 { return p.Code }

// DataSize is the header plus every row.
func (p *DigitalPrecipitationDataArray) DataSize() int { return p.size }

func newDigitalPrecipitationDataArray(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	p := &DigitalPrecipitationDataArray{Code: code, size: lfmHeaderLength}
	if err := binary.Read(r, binary.BigEndian, &p.LFMHeader); err != nil {
		return nil, err
	}
	if p.NumberOfRows != 131 {
		return nil, fmt.Errorf("number of rows %d", p.NumberOfRows)
	}

	p.Rows = make([]DigitalPrecipitationRow, p.NumberOfRows)
	for i := range p.Rows {
		data, err := readRow(r, 262, i)
		if err != nil {
			return nil, err
		}
		runs := make([]PrecipitationRun, len(data)/2)
		for j := range runs {
			runs[j] = PrecipitationRun{Run: data[2*j], Level: data[2*j+1]}
		}
		p.Rows[i].Runs = runs
		p.size += 2 + len(data)
	}
	return p, nil
}

// PrecipitationRateDataArray Packet Code 18 (Figure 3-11b): 4 bit run length
// encoded rows of LFM boxes.
type PrecipitationRateDataArray struct {
	Code uint16
	LFMHeader
	Rows []RasterRow
	size int
}

// PacketCode of the packet
func (p *PrecipitationRateDataArray) PacketCode() uint16 { return p.Code }

// DataSize is the header plus every row.
func (p *PrecipitationRateDataArray) DataSize() int { return p.size }

func newPrecipitationRateDataArray(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	p := &PrecipitationRateDataArray{Code: code, size: lfmHeaderLength}
	if err := binary.Read(r, binary.BigEndian, &p.LFMHeader); err != nil {
		return nil, err
	}
	if p.NumberOfRows != 13 {
		return nil, fmt.Errorf("number of rows %d", p.NumberOfRows)
	}

	p.Rows = make([]RasterRow, p.NumberOfRows)
	for i := range p.Rows {
		data, err := readRow(r, 14, i)
		if err != nil {
			return nil, err
		}
		p.size += 2 + len(data)
		if n := len(data); data[n-1] == 0 {
			data = data[:n-1]
		}
		p.Rows[i].Data = data
	}
	return p, nil
}
