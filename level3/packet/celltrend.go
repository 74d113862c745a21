package packet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// CellTrend is one trend of a cell trend data packet. Data holds the most
// recent values in a circular list; LatestVolumePointer indexes the newest
// (1 based).
type CellTrend struct {
	TrendCode           uint16
	NumberOfVolumes     uint8
	LatestVolumePointer uint8
	Data                []int16
}

// CellTrendData Packet Code 21 (Figure 3-14)
type CellTrendData struct {
	Header
	CellID [2]byte
	I      int16
	J      int16
	Trends []CellTrend
}

// StormID returns the two character cell identifier.
func (p *CellTrendData) StormID() string { return string(p.CellID[:]) }

func newCellTrendData(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, 12, 198, func(h Header, body io.Reader) (Packet, error) {
		p := &CellTrendData{Header: h}
		for _, f := range []interface{}{&p.CellID, &p.I, &p.J} {
			if err := binary.Read(body, binary.BigEndian, f); err != nil {
				return nil, err
			}
		}

		remaining := int(h.Length) - 6
		for remaining > 0 {
			t := CellTrend{}
			for _, f := range []interface{}{&t.TrendCode, &t.NumberOfVolumes, &t.LatestVolumePointer} {
				if err := binary.Read(body, binary.BigEndian, f); err != nil {
					return nil, err
				}
			}
			size := 4 + 2*int(t.NumberOfVolumes)
			if size > remaining {
				return nil, fmt.Errorf("trend %d overruns block", t.TrendCode)
			}

			var err error
			t.Data, err = readRecords[int16](body, int(t.NumberOfVolumes))
			if err != nil {
				return nil, err
			}
			p.Trends = append(p.Trends, t)
			remaining -= size
		}
		return p, nil
	})
}

// CellTrendVolumeScanTimes Packet Code 22 (Figure 3-14)
type CellTrendVolumeScanTimes struct {
	Header
	NumberOfVolumes     uint16
	LatestVolumePointer uint16
	VolumeTimes         []uint16 // minutes past midnight
}

func newCellTrendVolumeScanTimes(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	return decodeBlock(code, r, 4, 24, func(h Header, body io.Reader) (Packet, error) {
		p := &CellTrendVolumeScanTimes{Header: h}
		if err := binary.Read(body, binary.BigEndian, &p.NumberOfVolumes); err != nil {
			return nil, err
		}
		if err := binary.Read(body, binary.BigEndian, &p.LatestVolumePointer); err != nil {
			return nil, err
		}

		count := int(p.NumberOfVolumes)
		if limit := (int(h.Length) - 4) / 2; count > limit {
			return nil, fmt.Errorf("number of volumes %d exceeds block", count)
		}

		var err error
		p.VolumeTimes, err = readRecords[uint16](body, count)
		return p, err
	})
}
