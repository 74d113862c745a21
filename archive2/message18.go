package archive2

import (
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"
)

// rdaAdaptationLength is the body size of message type 18 in bytes
const rdaAdaptationLength = 9468

// RDAAdaptationData Message Type 18 (User 3.2.4.15). Byte offsets in the
// section comments are from the start of the message body. Regions the ICD
// leaves to spares or per-site tables not broken out here are skipped.
type RDAAdaptationData struct {
	Base
	Adaptation AdaptationHeader
	Radar      RadarParameters
	Antenna    AntennaParameters
	Receiver   ReceiverParameters
}

// Flag is a four byte ICD boolean or character field. Only the first byte is
// significant.
type Flag [4]byte

// Bool reports whether the flag is set ('T').
func (f Flag) Bool() bool { return f[0] == 'T' }

// Char is the flag's character value, eg 'N' or 'W' for a hemisphere.
func (f Flag) Char() byte { return f[0] }

// AdaptationHeader is bytes 0-223.
type AdaptationHeader struct {
	FileName               [12]byte
	Format                 [4]byte
	Revision               [4]byte
	Date                   [12]byte
	Time                   [12]byte
	LowerPreLimit          float32 // deg
	AzLat                  float32 // s
	UpperPreLimit          float32 // deg
	ElLat                  float32 // s
	ParkAz                 float32 // deg
	ParkEl                 float32 // deg
	FuelConv               [11]float32
	MinShelterTemp         float32 // C
	MaxShelterTemp         float32
	MinShelterACTempDiff   float32
	MaxXmtrAirTemp         float32
	MaxRadTemp             float32
	MaxRadTempRise         float32
	LowerDeadLimit         float32 // deg
	UpperDeadLimit         float32 // deg
	_                      uint32
	MinGenRoomTemp         float32
	MaxGenRoomTemp         float32
	SPIP5VRegLim           float32
	SPIP15VRegLim          float32
	_                      [12]byte
	RPGCoLocated           Flag
	SpecFilterInstalled    Flag
	TPSInstalled           Flag
	RMSInstalled           Flag
	HVDLTestInterval       uint32  // hours
	RPGLTInterval          uint32  // hours
	MinStabUtilPowerTime   uint32  // s
	GenAutoExerInterval    uint32  // hours
	UtilPowerSwReqInterval uint32  // s
	LowFuelLevel           float32 // %
	ConfigChannelNumber    uint32
	_                      uint32
}

// RadarParameters is bytes 224-1323: calibration constants, transmitter
// limits and the site location.
type RadarParameters struct {
	RedundantChannelConfig uint32
	AttenuationTable       [104]float32 // dB
	PathLosses             [71]float32  // dB, ICD index i is element i-1
	_                      [8]byte
	VTsCw                  float32
	HRnscale               [13]float32
	Atmos                  [13]float32
	ElIndex                [12]float32
	TfreqMHz               uint32
	BaseDataTCN            float32
	ReflDataTover          float32
	TarHDbz0LP             float32
	TarVDbz0LP             float32
	InitPhiDP              uint32
	NormInitPhiDP          uint32
	LxLP                   float32
	LxSP                   float32
	MeteorParam            float32
	_                      uint32
	AntennaGain            float32 // dB
	_                      [12]byte
	VelDegradLimit         float32
	WthDegradLimit         float32
	HNoisetempDgradLimit   float32
	HMinNoisetemp          uint32
	VNoisetempDgradLimit   float32
	VMinNoisetemp          uint32
	KlyDegradeLimit        float32
	TsCoho                 float32
	HTsCw                  float32
	_                      [8]byte
	TsStalo                float32
	AMEHNoiseENR           float32
	XmtrPeakPwrHighLimit   float32 // kW
	XmtrPeakPwrLowLimit    float32 // kW
	HDbz0DeltaLimit        float32
	Threshold1             float32
	Threshold2             float32
	ClutSuppDgradLim       float32
	_                      uint32
	Range0Value            float32
	XmtrPwrMtrScale        float32
	VDbz0DeltaLimit        float32
	TarHDbz0SP             float32
	TarVDbz0SP             float32
	DeltaPRF               uint32
	_                      [8]byte
	TauSP                  uint32 // ns
	TauLP                  uint32 // ns
	NCDeadValue            uint32
	TauRFSP                uint32 // ns
	TauRFLP                uint32 // ns
	Seg1Lim                float32
	SLatSec                float32
	SLonSec                float32
	_                      uint32
	SLatDeg                uint32
	SLatMin                uint32
	SLonDeg                uint32
	SLonMin                uint32
	SLatDir                Flag
	SLonDir                Flag
}

// Latitude of the site in decimal degrees, negative south of the equator.
func (p RadarParameters) Latitude() float64 {
	return sexagesimal(p.SLatDeg, p.SLatMin, p.SLatSec, p.SLatDir.Char() == 'S')
}

// Longitude of the site in decimal degrees, negative west of Greenwich.
func (p RadarParameters) Longitude() float64 {
	return sexagesimal(p.SLonDeg, p.SLonMin, p.SLonSec, p.SLonDir.Char() == 'W')
}

func sexagesimal(deg, minutes uint32, sec float32, negative bool) float64 {
	v := float64(deg) + float64(minutes)/60 + float64(sec)/3600
	if negative {
		return -v
	}
	return v
}

// AntennaParameters is bytes 8360-8463.
type AntennaParameters struct {
	AzCorrectionFactor float32 // deg
	ElCorrectionFactor float32 // deg
	SiteName           [4]byte
	IElMin             int32
	IElMax             int32
	FAzVelMax          uint32
	FElVelMax          uint32
	IGndHgt            int32  // m
	IRadHgt            uint32 // m
	AzPosSustainDrive  float32
	AzNegSustainDrive  float32
	AzNomPosDriveSlope float32
	AzNomNegDriveSlope float32
	AzFeedbackSlope    float32
	ElPosSustainDrive  float32
	ElNegSustainDrive  float32
	ElNomPosDriveSlope float32
	ElNomNegDriveSlope float32
	ElFeedbackSlope    float32
	ElFirstSlope       float32
	ElSecondSlope      float32
	ElThirdSlope       float32
	ElDroopPos         float32
	ElOffNeutralDrive  float32
	AzInertia          float32
	ElInertia          float32
}

// Site is the ICAO of the radar, eg "KTLX".
func (a AntennaParameters) Site() string {
	return trimField(a.SiteName[:])
}

// ReceiverParameters is bytes 8696-9047.
type ReceiverParameters struct {
	RVP8NVIWaveguideLength uint32
	VRnscaleLow            [11]float32
	VelDataTover           float32
	WidthDataTover         float32
	VRnscaleHigh           [2]float32
	_                      uint32
	DopplerRangeStart      float32
	MaxElIndex             uint32
	Seg2Lim                float32
	Seg3Lim                float32
	Seg4Lim                float32
	NbrElSegments          uint32
	HNoiseLong             float32
	AntNoiseTemp           float32
	HNoiseShort            float32
	HNoiseTolerance        float32
	MinHDynRange           float32
	GenInstalled           Flag
	GenExercise            Flag
	VNoiseTolerance        float32
	MinVDynRange           float32
	ZDRBiasDgradLim        float32
	BaselineZDRBias        float32
	_                      [12]byte
	VNoiseLong             float32
	VNoiseShort            float32
	ZDRDataTover           float32
	PhiDataTover           float32
	RhoDataTover           float32
	StaloPowerDgradLimit   float32
	StaloPowerMaintLimit   float32
	MinHPwrSense           float32
	MinVPwrSense           float32
	HPwrSenseOffset        float32
	VPwrSenseOffset        float32
	PSGainRef              float32
	RFPalletBroadLoss      float32
	_                      [64]byte
	AMEPSTolerance         float32
	AMEMaxTemp             float32
	AMEMinTemp             float32
	RcvrModMaxTemp         float32
	RcvrModMinTemp         float32
	BITEModMaxTemp         float32
	BITEModMinTemp         float32
	DefaultPolarization    uint32
	TRLimitDgradLimit      float32
	TRLimitFailLimit       float32
	RFPStepperEnabled      Flag
	_                      uint32
	AMECurrentTolerance    float32
	HOnlyPolarization      uint32
	VOnlyPolarization      uint32
	_                      [8]byte
	SunBias                float32
	MinShelterTempWarn     float32
	PowerMeterZero         float32
	TXBBaseline            float32
	TXBAlarmThresh         float32
}

// VRnscale is the 13 entry velocity range scale table, which the ICD splits
// around the velocity and width thresholds.
func (p ReceiverParameters) VRnscale() [13]float32 {
	var v [13]float32
	copy(v[:], p.VRnscaleLow[:])
	copy(v[11:], p.VRnscaleHigh[:])
	return v
}

// skip lengths between the decoded sections
const (
	adaptationGapRadarAntenna    = 8360 - 1324
	adaptationGapAntennaReceiver = 8696 - 8464
	adaptationTrailer            = rdaAdaptationLength - 9048
)

func newRDAAdaptationData(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	log.Trace("Parsing RDA Adaptation Data (Message Type 18)")

	m := &RDAAdaptationData{Base: base}
	steps := []struct {
		into interface{}
		skip int64
	}{
		{into: &m.Adaptation},
		{into: &m.Radar, skip: adaptationGapRadarAntenna},
		{into: &m.Antenna, skip: adaptationGapAntennaReceiver},
		{into: &m.Receiver, skip: adaptationTrailer},
	}
	for _, s := range steps {
		if err := binary.Read(r, binary.BigEndian, s.into); err != nil {
			return nil, err
		}
		if s.skip == 0 {
			continue
		}
		if _, err := io.CopyN(io.Discard, r, s.skip); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
	return m, nil
}

// FileName of the adaptation data set, eg "adapt00.dat"
func (m *RDAAdaptationData) FileName() string {
	return trimField(m.Adaptation.FileName[:])
}
