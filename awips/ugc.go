package awips

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidUgc is returned for a malformed universal geographic code.
var ErrInvalidUgc = errors.New("awips: invalid UGC")

// UgcFormat tells whether the codes are counties or zones. A UGC string never
// mixes the two.
type UgcFormat byte

const (
	UgcFormatUnknown  UgcFormat = '?'
	UgcFormatCounties UgcFormat = 'C'
	UgcFormatZones    UgcFormat = 'Z'
)

var (
	reUgcStart             = regexp.MustCompile(`^[A-Z]{2}[CZ]([0-9]{3}|ALL)$`)
	reUgcAnyFipsID         = regexp.MustCompile(`^([0-9]{3}|ALL)$`)
	reUgcSpecificFipsID    = regexp.MustCompile(`^[0-9]{3}$`)
	reUgcProductExpiration = regexp.MustCompile(`^[0-9]{6}$`)
)

// Ugc is a decoded universal geographic code string (NWSI 10-1702):
//
//	SSFNNN-NNN>NNN-SSFNNN-DDHHMM-
type Ugc struct {
	Lines             []string
	Format            UgcFormat
	ProductExpiration string // DDHHMM

	// id 0 means every county or zone of the state
	fipsIDs map[string][]uint16
}

// ParseUgc decodes the UGC lines of a segment header. Decoding stops at the
// product expiration; a string without one is invalid.
func ParseUgc(lines []string) (*Ugc, error) {
	u := &Ugc{Lines: lines, Format: UgcFormatUnknown, fipsIDs: make(map[string][]uint16)}

	var joined strings.Builder
	for _, line := range lines {
		joined.WriteString(strings.TrimSpace(line))
	}

	state := ""
	for _, token := range strings.Split(joined.String(), "-") {
		if token == "" {
			continue
		}
		// product expiration is the final token
		if reUgcProductExpiration.MatchString(token) {
			u.ProductExpiration = token
			return u, nil
		}

		ranges := strings.Split(token, ">")
		if len(ranges) > 2 {
			return nil, fmt.Errorf("%w: token %q", ErrInvalidUgc, token)
		}

		format := u.Format
		var first string
		switch {
		case reUgcStart.MatchString(ranges[0]):
			// start of a state, territory or marine area
			state = ranges[0][0:2]
			format = UgcFormat(ranges[0][2])
			first = ranges[0][3:6]
			if u.Format != UgcFormatUnknown && u.Format != format {
				return nil, fmt.Errorf("%w: mixed counties and zones at %q", ErrInvalidUgc, token)
			}
		case state != "" && reUgcAnyFipsID.MatchString(ranges[0]):
			first = ranges[0]
		default:
			return nil, fmt.Errorf("%w: token %q", ErrInvalidUgc, token)
		}

		all := first == "000" || first == "ALL"
		if all && len(ranges) > 1 {
			return nil, fmt.Errorf("%w: range of all ids %q", ErrInvalidUgc, token)
		}

		u.Format = format
		if all {
			u.fipsIDs[state] = append(u.fipsIDs[state], 0)
			continue
		}

		begin, _ := strconv.Atoi(first)
		end := begin
		if len(ranges) == 2 {
			if !reUgcSpecificFipsID.MatchString(ranges[1]) || ranges[1] == "000" {
				return nil, fmt.Errorf("%w: range end %q", ErrInvalidUgc, token)
			}
			end, _ = strconv.Atoi(ranges[1])
		}
		for id := begin; id <= end; id++ {
			u.fipsIDs[state] = append(u.fipsIDs[state], uint16(id))
		}
	}
	return nil, fmt.Errorf("%w: no product expiration in %q", ErrInvalidUgc, joined.String())
}

// States returns the two letter state, territory or marine area codes in
// alphabetical order.
func (u *Ugc) States() []string {
	states := make([]string, 0, len(u.fipsIDs))
	for s := range u.fipsIDs {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// FipsIDs returns every county or zone as SSFNNN, eg MOC189, grouped by state.
func (u *Ugc) FipsIDs() []string {
	var ids []string
	for _, state := range u.States() {
		for _, id := range u.fipsIDs[state] {
			ids = append(ids, fmt.Sprintf("%s%c%03d", state, u.Format, id))
		}
	}
	return ids
}

func (u *Ugc) String() string {
	return strings.Join(u.FipsIDs(), ",")
}
