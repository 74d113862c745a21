package archive2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/stream"
	"github.com/jddeal/go-wxdata/wsr88d"
)

// MomentType names a data moment block of message type 31.
type MomentType string

const (
	MomentREF MomentType = "REF"
	MomentVEL MomentType = "VEL"
	MomentSW  MomentType = "SW "
	MomentZDR MomentType = "ZDR"
	MomentPHI MomentType = "PHI"
	MomentRHO MomentType = "RHO"
	MomentCFP MomentType = "CFP"
)

// MomentTypes in the order they are indexed.
var MomentTypes = []MomentType{MomentREF, MomentVEL, MomentSW, MomentZDR, MomentPHI, MomentRHO, MomentCFP}

const (
	maxDataBlocks  = 10
	maxMomentGates = 1840
)

// RadialHeader is the non-data portions of message 31 (User 3.2.4.17)
type RadialHeader struct {
	RadarIdentifier              [4]byte // ICAO (eg KMPX for Minneapolis)
	CollectionTime               uint32  // CollectionTime Radial data collection time in milliseconds past midnight GMT
	CollectionDate               uint16  // CollectionDate Current Julian date - 2440586.5
	AzimuthNumber                uint16  // AzimuthNumber Radial number within elevation scan
	AzimuthAngle                 float32 // AzimuthAngle Azimuth angle at which radial data was collected
	CompressionIndicator         uint8   // CompressionIndicator Indicates if message type 31 is compressed and what method of compression is used. The Data Header Block is not compressed.
	Spare                        uint8   // unused
	RadialLength                 uint16  // RadialLength Uncompressed length of the radial in bytes including the Data Header block length
	AzimuthResolutionSpacingCode uint8   // AzimuthResolutionSpacing Code for the Azimuthal spacing between adjacent radials. 1 = .5 degrees, 2 = 1degree
	RadialStatus                 uint8   // RadialStatus Radial Status
	ElevationNumber              uint8   // ElevationNumber Elevation number within volume scan
	CutSectorNumber              uint8   // CutSectorNumber Sector Number within cut
	ElevationAngle               float32 // ElevationAngle Elevation angle at which radial radar data was collected
	RadialSpotBlankingStatus     uint8   // RadialSpotBlankingStatus Spot blanking status for current radial, elevation scan and volume scan
	AzimuthIndexingMode          uint8   // AzimuthIndexingMode Azimuth indexing value (Set if azimuth angle is keyed to constant angles)
	DataBlockCount               uint16  // Number of data blocks used
}

func (h RadialHeader) String() string {
	return fmt.Sprintf("Message 31 - %s @ %v az=%.2f tilt=%.2f",
		string(h.RadarIdentifier[:]),
		h.Date(),
		h.AzimuthAngle,
		h.ElevationAngle,
	)
}

// Date is the collection time of the radial.
func (h RadialHeader) Date() time.Time {
	return wsr88d.TimePoint(uint32(h.CollectionDate), h.CollectionTime)
}

// DigitalRadarData Message Type 31 - Digital Radar Data Generic Format (User 3.2.4.17)
type DigitalRadarData struct {
	Base
	Header        RadialHeader
	VolumeData    *VolumeData
	ElevationData *ElevationData
	RadialData    *RadialData
	Moments       map[MomentType]*DataMoment
}

func newDigitalRadarData(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	log.Trace("Parsing Digital Radar Data (Message Type 31)")

	// block pointers are offsets from the start of the body, so the whole
	// radial is buffered and seeked within
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body := stream.NewBufferBytes(data)

	m := &DigitalRadarData{Base: base, Moments: make(map[MomentType]*DataMoment)}
	if err := binary.Read(body, binary.BigEndian, &m.Header); err != nil {
		return nil, err
	}

	h := m.Header
	switch {
	case h.AzimuthNumber < 1 || h.AzimuthNumber > 720:
		return nil, fmt.Errorf("%w: azimuth number %d", ErrInvalidMessage, h.AzimuthNumber)
	case h.ElevationNumber < 1 || h.ElevationNumber > 32:
		return nil, fmt.Errorf("%w: elevation number %d", ErrInvalidMessage, h.ElevationNumber)
	case h.DataBlockCount < 4 || h.DataBlockCount > maxDataBlocks:
		return nil, fmt.Errorf("%w: data block count %d", ErrInvalidMessage, h.DataBlockCount)
	case h.CompressionIndicator != 0:
		return nil, fmt.Errorf("%w: compression %d not supported", ErrInvalidMessage, h.CompressionIndicator)
	}

	pointers := make([]uint32, h.DataBlockCount)
	if err := binary.Read(body, binary.BigEndian, pointers); err != nil {
		return nil, err
	}

	for _, ptr := range pointers {
		if _, err := body.Seek(int64(ptr), io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: data block pointer %d: %v", ErrInvalidMessage, ptr, err)
		}

		d := DataBlock{}
		if err := binary.Read(body, binary.BigEndian, &d); err != nil {
			return nil, err
		}

		blockName := string(d.DataName[:])
		switch blockName {
		case "VOL":
			m.VolumeData = &VolumeData{}
			err = binary.Read(body, binary.BigEndian, m.VolumeData)
		case "ELV":
			m.ElevationData = &ElevationData{}
			err = binary.Read(body, binary.BigEndian, m.ElevationData)
		case "RAD":
			m.RadialData = &RadialData{}
			err = binary.Read(body, binary.BigEndian, m.RadialData)
		case "REF", "VEL", "SW ", "ZDR", "PHI", "RHO", "CFP":
			var moment *DataMoment
			moment, err = readDataMoment(body)
			if err == nil {
				m.Moments[MomentType(blockName)] = moment
			} else if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				// a bad moment only loses that moment
				log.Warnf("Data Block %s: %v", blockName, err)
				err = nil
			}
		default:
			log.Warnf("Data Block - unknown type '%s'", blockName)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AzimuthResolutionSpacing in degrees, 0.5 for super resolution cuts.
func (m *DigitalRadarData) AzimuthResolutionSpacing() float32 {
	if m.Header.AzimuthResolutionSpacingCode == 1 {
		return 0.5
	}
	return 1
}

// Moment returns the named data moment or nil when the radial does not carry it.
func (m *DigitalRadarData) Moment(t MomentType) *DataMoment {
	return m.Moments[t]
}

// ElevationAngleRaw codes the radial's elevation angle the way a VCP does.
func (m *DigitalRadarData) ElevationAngleRaw() uint16 {
	return uint16(math.Round(float64(m.Header.ElevationAngle) / AngleDataScale))
}

// DataBlock is the type and name pair that starts every block a data block
// pointer refers to (User 3.2.4.17, tables XVII-B to XVII-H).
type DataBlock struct {
	DataBlockType [1]byte
	DataName      [3]byte
}

// GenericDataMoment is the fixed part of a moment block (User 3.2.4.17.2).
type GenericDataMoment struct {
	Reserved                      uint32  //
	NumberDataMomentGates         uint16  // NumberDataMomentGates Number of data moment gates for current radial
	DataMomentRange               uint16  // DataMomentRange Range to center of first range gate
	DataMomentRangeSampleInterval uint16  // DataMomentRangeSampleInterval Size of data moment sample interval
	TOVER                         uint16  // TOVER Threshold parameter which specifies the minimum difference in echo power between two resolution gates for them not to be labeled "overlayed"
	SNRThreshold                  int16   // SNRThreshold SNR threshold for valid data
	ControlFlags                  uint8   // ControlFlags Indicates special control features
	DataWordSize                  uint8   // DataWordSize Number of bits (DWS) used for storing data for each Data Moment gate
	Scale                         float32 // Scale value used to convert Data Moments from integer to floating point data
	Offset                        float32 // Offset value used to convert Data Moments from integer to floating point data
}

// VolumeData is the VOL block: site location and calibration (User 3.2.4.17.3).
type VolumeData struct {
	LRTUP                          uint16 // LRTUP Size of data block in bytes
	VersionMajor                   uint8
	VersionMinor                   uint8
	Lat                            float32
	Long                           float32
	SiteHeight                     int16
	FeedhornHeight                 uint16
	CalibrationConstant            float32
	SHVTXPowerHor                  float32
	SHVTXPowerVer                  float32
	SystemDifferentialReflectivity float32
	InitialSystemDifferentialPhase float32
	VolumeCoveragePatternNumber    uint16
	ProcessingStatus               uint16
}

// ElevationData is the ELV block (User 3.2.4.17.4).
type ElevationData struct {
	LRTUP      uint16  // LRTUP Size of data block in bytes
	ATMOS      int16   // ATMOS Atmospheric Attenuation Factor
	CalibConst float32 // CalibConst Scaling constant used by the Signal Processor for this elevation to calculate reflectivity
}

// RadialData is the RAD block (User 3.2.4.17.5).
type RadialData struct {
	LRTUP              uint16 // LRTUP Size of data block in bytes
	UnambiguousRange   uint16 // UnambiguousRange, Interval Size
	NoiseLevelHorz     float32
	NoiseLevelVert     float32
	NyquistVelocity    uint16
	RadialFlags        uint16
	CalibConstHorzChan float32
	CalibConstVertChan float32
}

// DataMoment is one moment of a radial with its gates (User 3.2.4.17.6). 8 bit
// gates are in Data, 16 bit gates in Data16.
type DataMoment struct {
	GenericDataMoment
	Data   []byte
	Data16 []uint16
}

func readDataMoment(r io.Reader) (*DataMoment, error) {
	m := GenericDataMoment{}
	if err := binary.Read(r, binary.BigEndian, &m); err != nil {
		return nil, err
	}
	if m.NumberDataMomentGates > maxMomentGates {
		return nil, fmt.Errorf("invalid number of data moment gates: %d", m.NumberDataMomentGates)
	}

	moment := &DataMoment{GenericDataMoment: m}
	switch m.DataWordSize {
	case 8:
		moment.Data = make([]byte, m.NumberDataMomentGates)
		if _, err := io.ReadFull(r, moment.Data); err != nil {
			return nil, err
		}
	case 16:
		moment.Data16 = make([]uint16, m.NumberDataMomentGates)
		if err := binary.Read(r, binary.BigEndian, moment.Data16); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid data word size: %d", m.DataWordSize)
	}
	return moment, nil
}

// Range to the center of the first gate in km
func (d *DataMoment) Range() float32 { return float32(d.DataMomentRange) * 0.001 }

// GateInterval is the gate spacing in km
func (d *DataMoment) GateInterval() float32 { return float32(d.DataMomentRangeSampleInterval) * 0.001 }

// SNR threshold in dB
func (d *DataMoment) SNR() float32 { return float32(d.SNRThreshold) * 0.1 }

const (
	// MomentDataBelowThreshold marks gates coded 0.
	MomentDataBelowThreshold = 999

	// MomentDataFolded marks range folded gates, coded 1.
	MomentDataFolded = 998
)

// ScaledData converts every gate to physical units. Codes 0 and 1 become
// MomentDataBelowThreshold and MomentDataFolded.
func (d *DataMoment) ScaledData() []float32 {
	if d.DataWordSize == 16 {
		scaledData := make([]float32, len(d.Data16))
		for idx, val := range d.Data16 {
			scaledData[idx] = d.scale(val)
		}
		return scaledData
	}

	scaledData := make([]float32, len(d.Data))
	for idx, val := range d.Data {
		scaledData[idx] = d.scale(uint16(val))
	}
	return scaledData
}

func (d *DataMoment) scale(val uint16) float32 {
	switch val {
	case 0:
		return MomentDataBelowThreshold
	case 1:
		return MomentDataFolded
	}
	return scaleUint(val, d.GenericDataMoment.Offset, d.GenericDataMoment.Scale)
}

// scaleUint applies F = (N - offset) / scale. A zero scale means the gates
// already hold floating point values.
func scaleUint(n uint16, offset, scale float32) float32 {
	val := float32(n)
	if scale == 0 {
		return val
	}
	return (val - offset) / scale
}
