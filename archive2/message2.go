package archive2

import (
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"
)

// RDAStatusData Message Type 2 (User 3.2.4.6)
type RDAStatusData struct {
	Base
	RDAStatusFields
}

// RDAStatusFields is the fixed 120 byte body of message type 2, halfwords 1-60.
type RDAStatusFields struct {
	RDAStatus                       uint16
	OperabilityStatus               uint16
	ControlStatus                   uint16
	AuxPowerGeneratorState          uint16
	AvgTxPower                      uint16 // watts
	HorizRefCalibCorr               int16  // dB, scaled by 100
	DataTxEnabled                   uint16
	VolumeCoveragePatternNum        int16 // negative when selected locally
	RDAControlAuth                  uint16
	RDABuild                        uint16 // build number * 100
	OperationalMode                 uint16
	SuperResStatus                  uint16
	ClutterMitigationDecisionStatus uint16
	AvsetStatus                     uint16
	RDAAlarmSummary                 uint16
	CommandAck                      uint16
	ChannelControlStatus            uint16
	SpotBlankingStatus              uint16
	BypassMapGenDate                uint16
	BypassMapGenTime                uint16 // minutes past midnight
	ClutterFilterMapGenDate         uint16
	ClutterFilterMapGenTime         uint16 // minutes past midnight
	VertRefCalibCorr                int16  // dB, scaled by 100
	TransitionPwrSourceStatus       uint16
	RMSControlStatus                uint16
	PerformanceCheckStatus          uint16
	AlarmCodes                      [14]uint16
	SignalProcessingOptions         uint16
	Spares                          [18]uint16
	StatusVersion                   uint16
}

func newRDAStatusData(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	log.Trace("Parsing RDA Status Data (Message Type 2)")

	m := &RDAStatusData{Base: base}
	if err := binary.Read(r, binary.BigEndian, &m.RDAStatusFields); err != nil {
		return nil, err
	}
	return m, nil
}

// BuildNumber is the RDA software build, eg 19.00
func (m *RDAStatusData) BuildNumber() float32 {
	return float32(m.RDABuild) / 100
}

// HorizontalReflectivityCalibrationCorrection in dB
func (m *RDAStatusData) HorizontalReflectivityCalibrationCorrection() float32 {
	return float32(m.HorizRefCalibCorr) * 0.01
}

// VerticalReflectivityCalibrationCorrection in dB
func (m *RDAStatusData) VerticalReflectivityCalibrationCorrection() float32 {
	return float32(m.VertRefCalibCorr) * 0.01
}
