package archive2

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// WaveformType of an elevation cut (User Table XI)
type WaveformType uint8

const (
	WaveformUnknown WaveformType = iota
	WaveformContiguousSurveillance
	WaveformContiguousDoppler             // with ambiguity resolution
	WaveformContiguousDopplerNoResolution // without ambiguity resolution
	WaveformBatch
	WaveformStaggeredPulsePair
)

var waveformNames = map[WaveformType]string{
	WaveformContiguousSurveillance:        "CS",
	WaveformContiguousDoppler:             "CDW",
	WaveformContiguousDopplerNoResolution: "CDWO",
	WaveformBatch:                         "B",
	WaveformStaggeredPulsePair:            "SPP",
}

func (w WaveformType) String() string {
	if name, ok := waveformNames[w]; ok {
		return name
	}
	return "Unknown"
}

// VolumeCoveragePattern Message Type 5 (User 3.2.4.10)
type VolumeCoveragePattern struct {
	Base
	VCPHeader
	ElevationCuts []ElevationCut
}

// VCPHeader is halfwords 1-11 of message type 5.
type VCPHeader struct {
	MessageSize               uint16 // halfwords
	PatternType               uint16
	PatternNumber             uint16
	NumberOfElevationCuts     uint16
	Version                   uint8
	ClutterMapGroupNumber     uint8
	DopplerVelocityResolution uint8 // 2 = 0.5 m/s, 4 = 1.0 m/s
	PulseWidth                uint8 // 2 = short, 4 = long
	_                         uint32
	VCPSequencing             uint16
	VCPSupplementalData       uint16
	_                         uint16
}

// Sector is one of the three azimuth sectors of an elevation cut.
type Sector struct {
	EdgeAngle                  uint16
	DopplerPRFNumber           uint16
	DopplerPRFPulseCountRadial uint16
}

// ElevationCut is a single 46 byte cut entry.
type ElevationCut struct {
	ElevationAngle                    uint16 // coded, see AngleDataScale
	ChannelConfiguration              uint8
	Waveform                          WaveformType
	SuperResolutionControl            uint8
	SurveillancePRFNumber             uint8
	SurveillancePRFPulseCountRadial   uint16
	AzimuthRate                       int16 // coded, see AzElRateDataScale
	ReflectivityThreshold             uint16
	VelocityThreshold                 uint16
	SpectrumWidthThreshold            uint16
	DifferentialReflectivityThreshold uint16
	DifferentialPhaseThreshold        uint16
	CorrelationCoefficientThreshold   uint16
	Sector1                           Sector
	SupplementalData                  uint16
	Sector2                           Sector
	EBCAngle                          uint16
	Sector3                           Sector
	_                                 uint16
}

func newVolumeCoveragePattern(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	log.Trace("Parsing Volume Coverage Pattern Data (Message Type 5)")

	m := &VolumeCoveragePattern{Base: base}
	if err := binary.Read(r, binary.BigEndian, &m.VCPHeader); err != nil {
		return nil, err
	}

	if m.MessageSize < 34 || m.MessageSize > 747 {
		return nil, fmt.Errorf("%w: VCP message size %d", ErrInvalidMessage, m.MessageSize)
	}
	if m.NumberOfElevationCuts < 1 || m.NumberOfElevationCuts > 32 {
		return nil, fmt.Errorf("%w: VCP elevation cuts %d", ErrInvalidMessage, m.NumberOfElevationCuts)
	}

	m.ElevationCuts = make([]ElevationCut, m.NumberOfElevationCuts)
	if err := binary.Read(r, binary.BigEndian, m.ElevationCuts); err != nil {
		return nil, err
	}

	bytesRead := binary.Size(m.VCPHeader) + binary.Size(m.ElevationCuts)
	if bytesRead != int(m.MessageSize)*2 {
		log.Warnf("Bytes read (%d) not equal to message size (%d)", bytesRead, int(m.MessageSize)*2)
	}
	return m, nil
}

// DopplerVelocityResolutionMPS in meters per second, 0 when unknown.
func (v *VolumeCoveragePattern) DopplerVelocityResolutionMPS() float32 {
	switch v.DopplerVelocityResolution {
	case 2:
		return 0.5
	case 4:
		return 1.0
	}
	return 0
}

// NumberOfElevations from the VCP sequencing field.
func (v *VolumeCoveragePattern) NumberOfElevations() uint16 { return v.VCPSequencing & 0x001f }

// MaximumSAILSCuts allowed by the sequencing field.
func (v *VolumeCoveragePattern) MaximumSAILSCuts() uint16 { return (v.VCPSequencing & 0x0060) >> 5 }

// SequenceActive is set when the VCP is part of an active sequence.
func (v *VolumeCoveragePattern) SequenceActive() bool { return v.VCPSequencing&0x2000 != 0 }

// TruncatedVCP is set when the VCP was truncated.
func (v *VolumeCoveragePattern) TruncatedVCP() bool { return v.VCPSequencing&0x4000 != 0 }

func (v *VolumeCoveragePattern) SAILS() bool { return v.VCPSupplementalData&0x0001 != 0 }
func (v *VolumeCoveragePattern) NumberOfSAILSCuts() uint16 { return (v.VCPSupplementalData & 0x000e) >> 1 }
func (v *VolumeCoveragePattern) MRLE() bool { return v.VCPSupplementalData&0x0010 != 0 }
func (v *VolumeCoveragePattern) NumberOfMRLECuts() uint16 { return (v.VCPSupplementalData & 0x00e0) >> 5 }
func (v *VolumeCoveragePattern) MPDA() bool { return v.VCPSupplementalData&0x0800 != 0 }
func (v *VolumeCoveragePattern) BaseTilt() bool { return v.VCPSupplementalData&0x1000 != 0 }
func (v *VolumeCoveragePattern) NumberOfBaseTilts() uint16 { return (v.VCPSupplementalData & 0xe000) >> 13 }

// Cut returns elevation cut e (0 based) or nil when out of range.
func (v *VolumeCoveragePattern) Cut(e int) *ElevationCut {
	if e < 0 || e >= len(v.ElevationCuts) {
		return nil
	}
	return &v.ElevationCuts[e]
}

// Angle in degrees
func (c ElevationCut) Angle() float64 { return float64(c.ElevationAngle) * AngleDataScale }

// AzimuthRateDPS in degrees per second
func (c ElevationCut) AzimuthRateDPS() float64 { return float64(c.AzimuthRate) * AzElRateDataScale }

// EBC is the elevation blockage correction angle in degrees
func (c ElevationCut) EBC() float64 { return float64(c.EBCAngle) * AngleDataScale }

// Threshold values are in dB
func (c ElevationCut) ReflectivityThresholdDB() float32 { return float32(c.ReflectivityThreshold) * 0.125 }
func (c ElevationCut) VelocityThresholdDB() float32 { return float32(c.VelocityThreshold) * 0.125 }

func (c ElevationCut) HalfDegreeAzimuth() bool { return c.SuperResolutionControl&0x01 != 0 }
func (c ElevationCut) QuarterKmReflectivity() bool { return c.SuperResolutionControl&0x02 != 0 }
func (c ElevationCut) DopplerTo300km() bool { return c.SuperResolutionControl&0x04 != 0 }
func (c ElevationCut) DualPolarizationTo300km() bool { return c.SuperResolutionControl&0x08 != 0 }

func (c ElevationCut) SAILSCut() bool { return c.SupplementalData&0x0001 != 0 }
func (c ElevationCut) SAILSSequenceNumber() uint16 { return (c.SupplementalData & 0x000e) >> 1 }
func (c ElevationCut) MRLECut() bool { return c.SupplementalData&0x0010 != 0 }
func (c ElevationCut) MRLESequenceNumber() uint16 { return (c.SupplementalData & 0x00e0) >> 5 }
func (c ElevationCut) MPDACut() bool { return c.SupplementalData&0x0200 != 0 }
func (c ElevationCut) BaseTiltCut() bool { return c.SupplementalData&0x0400 != 0 }

// EdgeAngle of sector s (0-2) in degrees
func (c ElevationCut) EdgeAngle(s int) float64 {
	switch s {
	case 0:
		return float64(c.Sector1.EdgeAngle) * AngleDataScale
	case 1:
		return float64(c.Sector2.EdgeAngle) * AngleDataScale
	case 2:
		return float64(c.Sector3.EdgeAngle) * AngleDataScale
	}
	return 0
}
