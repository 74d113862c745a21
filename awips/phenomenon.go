package awips

// Phenomenon is the two letter hazard code of a P-VTEC string (NWSI 10-1703
// section 3.3).
type Phenomenon int

const (
	PhenomenonUnknown Phenomenon = iota
	AshfallLand
	AirStagnation
	BeachHazard
	BriskWind
	Blizzard
	CoastalFlood
	DebrisFlow
	DustStorm
	BlowingDust
	ExtremeCold
	ExcessiveHeat
	ExtremeWind
	Flood
	FlashFlood
	DenseFogLand
	FloodForecastPoints
	Frost
	FireWeather
	Freeze
	Gale
	HurricaneForceWind
	Heat
	Hurricane
	HighWind
	Hydrologic
	HardFreeze
	IceStorm
	LakeEffectSnow
	LowWater
	LakeshoreFlood
	LakeWind
	Marine
	DenseFogMarine
	AshfallMarine
	DenseSmokeMarine
	RipCurrentRisk
	SmallCraft
	HazardousSeas
	DenseSmokeLand
	Storm
	StormSurge
	SnowSquall
	HighSurf
	SevereThunderstorm
	Tornado
	TropicalStorm
	Tsunami
	Typhoon
	HeavyFreezingSpray
	WindChill
	Wind
	WinterStorm
	WinterWeather
	FreezingFog
	FreezingRain
	FreezingSpray
)

type phenomenonInfo struct {
	code string
	text string
}

var phenomena = map[Phenomenon]phenomenonInfo{
	PhenomenonUnknown:   {"??", "Unknown"},
	AshfallLand:         {"AF", "Ashfall (land)"},
	AirStagnation:       {"AS", "Air Stagnation"},
	BeachHazard:         {"BH", "Beach Hazard"},
	BriskWind:           {"BW", "Brisk Wind"},
	Blizzard:            {"BZ", "Blizzard"},
	CoastalFlood:        {"CF", "Coastal Flood"},
	DebrisFlow:          {"DF", "Debris Flow"},
	DustStorm:           {"DS", "Dust Storm"},
	BlowingDust:         {"DU", "Blowing Dust"},
	ExtremeCold:         {"EC", "Extreme Cold"},
	ExcessiveHeat:       {"EH", "Excessive Heat"},
	ExtremeWind:         {"EW", "Extreme Wind"},
	Flood:               {"FA", "Flood"},
	FlashFlood:          {"FF", "Flash Flood"},
	DenseFogLand:        {"FG", "Dense Fog (land)"},
	FloodForecastPoints: {"FL", "Flood (Forecast Points)"},
	Frost:               {"FR", "Frost"},
	FireWeather:         {"FW", "Fire Weather"},
	Freeze:              {"FZ", "Freeze"},
	Gale:                {"GL", "Gale"},
	HurricaneForceWind:  {"HF", "Hurricane Force Wind"},
	Heat:                {"HT", "Heat"},
	Hurricane:           {"HU", "Hurricane"},
	HighWind:            {"HW", "High Wind"},
	Hydrologic:          {"HY", "Hydrologic"},
	HardFreeze:          {"HZ", "Hard Freeze"},
	IceStorm:            {"IS", "Ice Storm"},
	LakeEffectSnow:      {"LE", "Lake Effect Snow"},
	LowWater:            {"LO", "Low Water"},
	LakeshoreFlood:      {"LS", "Lakeshore Flood"},
	LakeWind:            {"LW", "Lake Wind"},
	Marine:              {"MA", "Marine"},
	DenseFogMarine:      {"MF", "Dense Fog (marine)"},
	AshfallMarine:       {"MH", "Ashfall (marine)"},
	DenseSmokeMarine:    {"MS", "Dense Smoke (marine)"},
	RipCurrentRisk:      {"RP", "Rip Current Risk"},
	SmallCraft:          {"SC", "Small Craft"},
	HazardousSeas:       {"SE", "Hazardous Seas"},
	DenseSmokeLand:      {"SM", "Dense Smoke (land)"},
	Storm:               {"SR", "Storm"},
	StormSurge:          {"SS", "Storm Surge"},
	SnowSquall:          {"SQ", "Snow Squall"},
	HighSurf:            {"SU", "High Surf"},
	SevereThunderstorm:  {"SV", "Severe Thunderstorm"},
	Tornado:             {"TO", "Tornado"},
	TropicalStorm:       {"TR", "Tropical Storm"},
	Tsunami:             {"TS", "Tsunami"},
	Typhoon:             {"TY", "Typhoon"},
	HeavyFreezingSpray:  {"UP", "Heavy Freezing Spray"},
	WindChill:           {"WC", "Wind Chill"},
	Wind:                {"WI", "Wind"},
	WinterStorm:         {"WS", "Winter Storm"},
	WinterWeather:       {"WW", "Winter Weather"},
	FreezingFog:         {"ZF", "Freezing Fog"},
	FreezingRain:        {"ZR", "Freezing Rain"},
	FreezingSpray:       {"ZY", "Freezing Spray"},
}

var (
	phenomenonByCode = make(map[string]Phenomenon, len(phenomena))
	phenomenonByText = make(map[string]Phenomenon, len(phenomena))
)

func init() {
	for p, info := range phenomena {
		phenomenonByCode[info.code] = p
		phenomenonByText[info.text] = p
	}
}

// GetPhenomenon looks up a two letter code, PhenomenonUnknown if there is no
// match.
func GetPhenomenon(code string) Phenomenon {
	return phenomenonByCode[code]
}

// GetPhenomenonFromText is the inverse of Phenomenon.String.
func GetPhenomenonFromText(text string) Phenomenon {
	return phenomenonByText[text]
}

// Code is the two letter P-VTEC code.
func (p Phenomenon) Code() string {
	return phenomena[p].code
}

func (p Phenomenon) String() string {
	if info, ok := phenomena[p]; ok {
		return info.text
	}
	return phenomena[PhenomenonUnknown].text
}
