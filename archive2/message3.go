package archive2

import (
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"
)

// performanceMaintenanceLength is the body size of message type 3 in bytes
const performanceMaintenanceLength = 960

// PerformanceMaintenanceData Message Type 3 (User 3.2.4.7). Halfword numbers
// in the section comments are the ICD's, counted from 1.
type PerformanceMaintenanceData struct {
	Base
	Communications      Communications
	AME                 AMEStatus
	Power               PowerStatus
	Transmitter         TransmitterStatus
	TowerUtilities      TowerUtilities
	EquipmentShelter    EquipmentShelter
	AntennaPedestal     AntennaPedestal
	RFGeneratorReceiver RFGeneratorReceiver
	Calibration         Calibration
	FileStatus          FileStatus
	DeviceStatus        DeviceStatus
}

// Communications is halfwords 1-57.
type Communications struct {
	_                                 uint16
	LoopBackSetStatus                 uint16
	T1OutputFrames                    uint32
	T1InputFrames                     uint32
	RouterMemoryUsed                  uint32
	RouterMemoryFree                  uint32
	RouterMemoryUtilization           uint16
	RouteToRPG                        uint16
	CSULossOfSignal                   uint32
	CSULossOfFrames                   uint32
	CSUYellowAlarms                   uint32
	CSUBlueAlarms                     uint32
	CSU24HrErroredSeconds             uint32
	CSU24HrSeverelyErroredSeconds     uint32
	CSU24HrSeverelyErroredFramingSecs uint32
	CSU24HrUnavailableSeconds         uint32
	CSU24HrControlledSlipSeconds      uint32
	CSU24HrPathCodingViolations       uint32
	CSU24HrLineErroredSeconds         uint32
	CSU24HrBurstyErroredSeconds       uint32
	CSU24HrDegradedMinutes            uint32
	_                                 uint32
	LANSwitchCPUUtilization           uint32
	LANSwitchMemoryUtilization        uint16
	_                                 uint16
	IFDRChassisTemperature            int16
	IFDRFPGATemperature               int16
	_                                 uint32
	GPSSatellites                     int32
	_                                 uint32
	IPCStatus                         uint16
	CommandedChannelControl           uint16
	_                                 [3]uint16
}

// AMEStatus is the antenna mounted electronics section, halfwords 58-98.
type AMEStatus struct {
	Polarization                 uint16
	InternalTemperature          float32 // C
	ReceiverModuleTemperature    float32 // C
	BITECalModuleTemperature     float32 // C
	PeltierPulseWidthModulation  uint16  // %
	PeltierStatus                uint16
	ADConverterStatus            uint16
	State                        uint16
	PS3_3VVoltage                float32
	PS5VVoltage                  float32
	PS6_5VVoltage                float32
	PS15VVoltage                 float32
	PS48VVoltage                 float32
	STALOPower                   float32 // dBm
	PeltierCurrent               float32 // A
	ADCCalibrationReferenceVolts float32
	Mode                         uint16
	PeltierMode                  uint16
	PeltierInsideFanCurrent      float32
	PeltierOutsideFanCurrent     float32
	HorizontalTRLimiterVoltage   float32
	VerticalTRLimiterVoltage     float32
	ADCCalibrationOffsetVoltage  float32 // mV
	ADCCalibrationGainCorrection float32
}

// PowerStatus is the RCP/SPIP power button and power administrator section,
// halfwords 99-136.
type PowerStatus struct {
	RCPStatus                       uint16
	RCPString                       [16]byte
	SPIPPowerButtons                uint16
	_                               [2]uint16
	MasterPowerAdministratorLoad    float32 // A
	ExpansionPowerAdministratorLoad float32 // A
	_                               [22]uint16
}

// RCP is the RCP status text.
func (p PowerStatus) RCP() string { return trimField(p.RCPString[:]) }

// TransmitterStatus is halfwords 137-228. Most fields are alarm codes,
// 0 OK and 1 alarm.
type TransmitterStatus struct {
	Supply5VDC                     uint16
	Supply15VDC                    uint16
	Supply28VDC                    uint16
	SupplyNeg15VDC                 uint16
	Supply45VDC                    uint16
	FilamentPSVoltage              uint16
	VacuumPumpPSVoltage            uint16
	FocusCoilPSVoltage             uint16
	FilamentPS                     uint16
	KlystronWarmup                 uint16
	TransmitterAvailable           uint16
	WGSwitchPosition               uint16
	WGPFNTransferInterlock         uint16
	MaintenanceMode                uint16
	MaintenanceRequired            uint16
	PFNSwitchPosition              uint16
	ModulatorOverload              uint16
	ModulatorInvCurrent            uint16
	ModulatorSwitchFail            uint16
	MainPowerVoltage               uint16
	ChargingSystemFail             uint16
	InverseDiodeCurrent            uint16
	TriggerAmplifier               uint16
	CirculatorTemperature          uint16
	SpectrumFilterPressure         uint16
	WGArcVSWR                      uint16
	CabinetInterlock               uint16
	CabinetAirTemperature          uint16
	CabinetAirflow                 uint16
	KlystronCurrent                uint16
	KlystronFilamentCurrent        uint16
	KlystronVacionCurrent          uint16
	KlystronAirTemperature         uint16
	KlystronAirflow                uint16
	ModulatorSwitchMaintenance     uint16
	PostChargeRegulatorMaintenance uint16
	WGPressureHumidity             uint16
	TransmitterOvervoltage         uint16
	TransmitterOvercurrent         uint16
	FocusCoilCurrent               uint16
	FocusCoilAirflow               uint16
	OilTemperature                 uint16
	PRFLimit                       uint16
	TransmitterOilLevel            uint16
	TransmitterBatteryCharging     uint16
	HighVoltageStatus              uint16
	TransmitterRecyclingSummary    uint16
	TransmitterInoperable          uint16
	TransmitterAirFilter           uint16
	ZeroTestBit                    [8]uint16
	OneTestBit                     [8]uint16
	XmtrSPIPInterface              uint16
	TransmitterSummaryStatus       uint16
	_                              uint16
	TransmitterRFPower             float32 // mW
	HorizontalXmtrPeakPower        float32 // kW
	XmtrPeakPower                  float32 // kW
	VerticalXmtrPeakPower          float32 // kW
	XmtrRFAvgPower                 float32 // W
	_                              uint32
	XmtrRecycleCount               uint32
	ReceiverBias                   float32 // dB
	TransmitImbalance              float32 // dB
	XmtrPowerMeterZero             float32 // V
	_                              [4]uint16
}

// TowerUtilities is halfwords 229-249.
type TowerUtilities struct {
	ACUnit1CompressorShutOff     uint16
	ACUnit2CompressorShutOff     uint16
	GeneratorMaintenanceRequired uint16
	GeneratorBatteryVoltage      uint16
	GeneratorEngine              uint16
	GeneratorVoltFrequency       uint16
	PowerSource                  uint16
	TransitionalPowerSource      uint16
	GeneratorAutoRunOffSwitch    uint16
	AircraftHazardLighting       uint16
	_                            [11]uint16
}

// EquipmentShelter is halfwords 250-299.
type EquipmentShelter struct {
	FireDetectionSystem         uint16
	FireSmoke                   uint16
	GeneratorShelterFireSmoke   uint16
	UtilityVoltageFrequency     uint16
	SiteSecurityAlarm           uint16
	SecurityEquipment           uint16
	SecuritySystem              uint16
	ReceiverConnectedToAntenna  uint16
	RadomeHatch                 uint16
	ACUnit1FilterDirty          uint16
	ACUnit2FilterDirty          uint16
	ShelterTemperature          float32 // C
	OutsideAmbientTemperature   float32 // C
	TransmitterLeavingAirTemp   float32 // C
	ACUnit1DischargeAirTemp     float32 // C
	GeneratorShelterTemperature float32 // C
	RadomeAirTemperature        float32 // C
	ACUnit2DischargeAirTemp     float32 // C
	SPIP15VPS                   float32
	SPIPNeg15VPS                float32
	SPIP28VPSStatus             uint16
	_                           uint16
	SPIP5VPS                    float32
	ConvertedGeneratorFuelLevel uint16 // %
	_                           [16]uint16
}

// AntennaPedestal is halfwords 300-340.
type AntennaPedestal struct {
	ElevationPosDeadLimit         uint16
	Overvoltage150V               uint16
	Undervoltage150V              uint16
	ElevationServoAmpInhibit      uint16
	ElevationServoAmpShortCircuit uint16
	ElevationServoAmpOvertemp     uint16
	ElevationMotorOvertemp        uint16
	ElevationStowPin              uint16
	ElevationHousing5VPS          uint16
	ElevationNegDeadLimit         uint16
	ElevationPosNormalLimit       uint16
	ElevationNegNormalLimit       uint16
	ElevationEncoderLight         uint16
	ElevationGearboxOil           uint16
	ElevationHandwheel            uint16
	ElevationAmpPS                uint16
	AzimuthServoAmpInhibit        uint16
	AzimuthServoAmpShortCircuit   uint16
	AzimuthServoAmpOvertemp       uint16
	AzimuthMotorOvertemp          uint16
	AzimuthStowPin                uint16
	AzimuthHousing5VPS            uint16
	AzimuthEncoderLight           uint16
	AzimuthGearboxOil             uint16
	AzimuthBullGearOil            uint16
	AzimuthHandwheel              uint16
	AzimuthServoAmpPS             uint16
	Servo                         uint16
	PedestalInterlockSwitch       uint16
	_                             [12]uint16
}

// RFGeneratorReceiver is halfwords 341-362.
type RFGeneratorReceiver struct {
	COHOClock                  uint16
	FrequencySelectOscillator  uint16
	RFSTALO                    uint16
	PhaseShiftedCOHO           uint16
	ReceiverPS9V               uint16
	ReceiverPS5V               uint16
	ReceiverPS18V              uint16
	ReceiverPSNeg9V            uint16
	SingleChannelRDAIUPS5V     uint16
	_                          uint16
	HorizontalShortPulseNoise  float32 // dBm
	HorizontalLongPulseNoise   float32 // dBm
	HorizontalNoiseTemperature float32 // K
	VerticalShortPulseNoise    float32 // dBm
	VerticalLongPulseNoise     float32 // dBm
	VerticalNoiseTemperature   float32 // K
}

// Calibration is halfwords 363-430.
type Calibration struct {
	HorizontalLinearity               float32
	HorizontalDynamicRange            float32 // dB
	HorizontalDeltaDBZ0               float32 // dB
	VerticalDeltaDBZ0                 float32 // dB
	KDPeakMeasured                    float32 // dBm
	_                                 uint32
	ShortPulseHorizontalDBZ0          float32 // dBZ
	LongPulseHorizontalDBZ0           float32 // dBZ
	VelocityProcessed                 uint16
	WidthProcessed                    uint16
	VelocityRFGen                     uint16
	WidthRFGen                        uint16
	HorizontalI0                      float32 // dBm
	VerticalI0                        float32 // dBm
	VerticalDynamicRange              float32 // dB
	ShortPulseVerticalDBZ0            float32 // dBZ
	LongPulseVerticalDBZ0             float32 // dBZ
	_                                 [4]uint16
	HorizontalPowerSense              float32 // dBm
	VerticalPowerSense                float32 // dBm
	ZDRBias                           float32 // dB
	_                                 [6]uint16
	ClutterSuppressionDelta           float32 // dB
	ClutterSuppressionUnfilteredPower float32 // dBZ
	ClutterSuppressionFilteredPower   float32 // dBZ
	_                                 [10]uint16
	VerticalLinearity                 float32
	_                                 [4]uint16
}

// FileStatus is halfwords 431-460.
type FileStatus struct {
	StateFileReadStatus              uint16
	StateFileWriteStatus             uint16
	BypassMapFileReadStatus          uint16
	BypassMapFileWriteStatus         uint16
	_                                [2]uint16
	CurrentAdaptationFileReadStatus  uint16
	CurrentAdaptationFileWriteStatus uint16
	CensorZoneFileReadStatus         uint16
	CensorZoneFileWriteStatus        uint16
	RemoteVCPFileReadStatus          uint16
	RemoteVCPFileWriteStatus         uint16
	BaselineAdaptationFileReadStatus uint16
	ReadStatusOfPRFSets              uint16
	ClutterFilterMapFileReadStatus   uint16
	ClutterFilterMapFileWriteStatus  uint16
	GeneralDiskIOError               uint16
	RSPStatus                        uint8
	MotherboardTemperature           uint8 // C
	CPU1Temperature                  uint8 // C
	CPU2Temperature                  uint8 // C
	CPU1FanSpeed                     uint16
	CPU2FanSpeed                     uint16
	RSPFan1Speed                     uint16
	RSPFan2Speed                     uint16
	RSPFan3Speed                     uint16
	_                                [6]uint16
}

// DeviceStatus is halfwords 461-480.
type DeviceStatus struct {
	SPIPCommStatus               uint16
	HCICommStatus                uint16
	_                            uint16
	SignalProcessorCommandStatus uint16
	AMECommunicationStatus       uint16
	RMSLinkStatus                uint16
	RPGLinkStatus                uint16
	InterpanelLinkStatus         uint16
	PerformanceCheckTime         uint32 // seconds since 1 January 1970
	_                            [9]uint16
	Version                      uint16
}

func newPerformanceMaintenanceData(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error) {
	log.Trace("Parsing Performance/Maintenance Data (Message Type 3)")

	m := &PerformanceMaintenanceData{Base: base}
	sections := []interface{}{
		&m.Communications,
		&m.AME,
		&m.Power,
		&m.Transmitter,
		&m.TowerUtilities,
		&m.EquipmentShelter,
		&m.AntennaPedestal,
		&m.RFGeneratorReceiver,
		&m.Calibration,
		&m.FileStatus,
		&m.DeviceStatus,
	}
	for _, s := range sections {
		if err := binary.Read(r, binary.BigEndian, s); err != nil {
			return nil, err
		}
	}
	return m, nil
}
