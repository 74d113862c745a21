package awips

// Significance is the one letter P-VTEC significance code.
type Significance int

const (
	SignificanceUnknown Significance = iota
	Warning
	Watch
	Advisory
	Statement
	Forecast
	Outlook
	Synopsis
)

var significanceCodes = map[Significance]string{
	SignificanceUnknown: "?",
	Warning:             "W",
	Watch:               "A",
	Advisory:            "Y",
	Statement:           "S",
	Forecast:            "F",
	Outlook:             "O",
	Synopsis:            "N",
}

var significanceText = map[Significance]string{
	SignificanceUnknown: "Unknown",
	Warning:             "Warning",
	Watch:               "Watch",
	Advisory:            "Advisory",
	Statement:           "Statement",
	Forecast:            "Forecast",
	Outlook:             "Outlook",
	Synopsis:            "Synopsis",
}

// GetSignificance looks up a one letter code.
func GetSignificance(code string) Significance {
	for s, c := range significanceCodes {
		if c == code && s != SignificanceUnknown {
			return s
		}
	}
	return SignificanceUnknown
}

// Code is the one letter P-VTEC code.
func (s Significance) Code() string { return significanceCodes[s] }

func (s Significance) String() string {
	if text, ok := significanceText[s]; ok {
		return text
	}
	return significanceText[SignificanceUnknown]
}
