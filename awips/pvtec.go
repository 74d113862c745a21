package awips

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidVtec is returned for a malformed P-VTEC string.
var ErrInvalidVtec = errors.New("awips: invalid P-VTEC")

// ProductType is the fixed identifier k of a P-VTEC string.
type ProductType int

const (
	ProductTypeUnknown ProductType = iota
	Operational
	Test
	Experimental
	OperationalWithExperimentalVtec
)

var productTypeCodes = map[string]ProductType{
	"O": Operational,
	"T": Test,
	"E": Experimental,
	"X": OperationalWithExperimentalVtec,
}

// Action is the three letter action code aaa of a P-VTEC string.
type Action int

const (
	ActionUnknown Action = iota
	New
	Continued
	ExtendedInArea
	ExtendedInTime
	ExtendedInAreaAndTime
	Upgraded
	Canceled
	Expired
	Routine
	Correction
)

var actionCodes = map[string]Action{
	"NEW": New,
	"CON": Continued,
	"EXA": ExtendedInArea,
	"EXT": ExtendedInTime,
	"EXB": ExtendedInAreaAndTime,
	"UPG": Upgraded,
	"CAN": Canceled,
	"EXP": Expired,
	"ROU": Routine,
	"COR": Correction,
}

// Code is the three letter action code.
func (a Action) Code() string {
	for code, action := range actionCodes {
		if action == a {
			return code
		}
	}
	return "???"
}

// Code is the one letter product type code.
func (t ProductType) Code() string {
	for code, pt := range productTypeCodes {
		if pt == t {
			return code
		}
	}
	return "??"
}

// P-VTEC takes the form:
//
//	/k.aaa.cccc.pp.s.####.yymmddThhnnZ-yymmddThhnnZ/
//	012345678901234567890123456789012345678901234567
const (
	pVtecLength            = 48
	pVtecOffsetIdentifier  = 1
	pVtecOffsetAction      = 3
	pVtecOffsetOfficeID    = 7
	pVtecOffsetPhenomenon  = 12
	pVtecOffsetSignificant = 15
	pVtecOffsetEventNumber = 17
	pVtecOffsetEventBegin  = 22
	pVtecOffsetEventEnd    = 35
	pVtecOffsetEnd         = 47

	vtecTimeLayout = "060102T1504Z"
)

// PVtec is a decoded primary valid time event code (NWSI 10-1703).
type PVtec struct {
	Raw                 string
	FixedIdentifier     ProductType
	Action              Action
	OfficeID            string
	Phenomenon          Phenomenon
	Significance        Significance
	EventTrackingNumber int16 // -1 when not numeric

	// zero when coded as 000000T0000Z
	EventBegin time.Time
	EventEnd   time.Time
}

// ParsePVtec decodes s. Unknown codes in an otherwise well formed string
// decode to the Unknown values rather than failing.
func ParsePVtec(s string) (PVtec, error) {
	if len(s) < pVtecLength || s[0] != '/' || s[pVtecOffsetEnd] != '/' {
		return PVtec{}, fmt.Errorf("%w: %q", ErrInvalidVtec, s)
	}

	v := PVtec{
		Raw:             s[:pVtecLength],
		FixedIdentifier: productTypeCodes[s[pVtecOffsetIdentifier:pVtecOffsetIdentifier+1]],
		Action:          actionCodes[s[pVtecOffsetAction:pVtecOffsetAction+3]],
		OfficeID:        s[pVtecOffsetOfficeID : pVtecOffsetOfficeID+4],
		Phenomenon:      GetPhenomenon(s[pVtecOffsetPhenomenon : pVtecOffsetPhenomenon+2]),
		Significance:    GetSignificance(s[pVtecOffsetSignificant : pVtecOffsetSignificant+1]),
	}

	if n, err := strconv.ParseInt(s[pVtecOffsetEventNumber:pVtecOffsetEventNumber+4], 10, 16); err == nil {
		v.EventTrackingNumber = int16(n)
	} else {
		v.EventTrackingNumber = -1
	}

	// parsing fails for 000000T0000Z, which means "already in effect"
	if t, err := time.Parse(vtecTimeLayout, s[pVtecOffsetEventBegin:pVtecOffsetEventBegin+12]); err == nil {
		v.EventBegin = t
	}
	if t, err := time.Parse(vtecTimeLayout, s[pVtecOffsetEventEnd:pVtecOffsetEventEnd+12]); err == nil {
		v.EventEnd = t
	}
	return v, nil
}

// Key identifies the event across products: office, phenomenon, significance
// and event tracking number, eg KLIX.TO.W.0032.
func (v PVtec) Key() string {
	return fmt.Sprintf("%s.%s.%s.%04d", v.OfficeID, v.Phenomenon.Code(), v.Significance.Code(), v.EventTrackingNumber)
}

func (v PVtec) String() string {
	return v.Raw
}
