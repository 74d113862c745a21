// Package awips parses AWIPS text products: the WMO abbreviated heading, the
// segment structure of a bulletin and the coded lines inside it (P-VTEC,
// UGC, LAT...LON and TIME...MOT...LOC).
//
// The documents referenced here:
//   - NWSI 10-1701: text product formats and codes
//   - NWSI 10-1702: universal geographic code
//   - NWSI 10-1703: valid time event code
package awips

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jddeal/go-wxdata/stream"
)

const (
	soh = "\x01"
	etx = "\x03"
)

// ErrInvalidWmoHeader is returned when the heading lines are malformed.
var ErrInvalidWmoHeader = errors.New("awips: invalid WMO header")

// WmoHeader is the transmission header, WMO abbreviated heading and AWIPS
// identifier in front of every bulletin.
//
//	[SOH]
//	nnn
//	T1T2A1A2ii CCCC YYGGgg (BBB)
//	NNNxxx
//
// WmoHeader is comparable; two bulletins with equal headers are the same
// transmission.
type WmoHeader struct {
	SequenceNumber       string
	DataType             string // T1T2
	GeographicDesignator string // A1A2
	BulletinID           string // ii
	ICAO                 string // CCCC
	DateTime             string // YYGGgg
	BBBIndicator         string
	ProductCategory      string // NNN
	ProductDesignator    string // xxx
}

// ParseWmoHeader reads the heading lines from l. Blank lines and an end of
// text character left over from a previous bulletin are skipped.
func ParseWmoHeader(l *stream.LineReader) (WmoHeader, error) {
	first, ok := nextHeaderLine(l)
	if !ok {
		return WmoHeader{}, fmt.Errorf("%w: reached end of file", ErrInvalidWmoHeader)
	}

	var sequence string
	if strings.HasPrefix(first, soh) {
		if rest := strings.TrimSpace(strings.TrimPrefix(first, soh)); rest != "" {
			sequence = rest
		} else if sequence, ok = l.Next(); !ok {
			return WmoHeader{}, fmt.Errorf("%w: reached end of file", ErrInvalidWmoHeader)
		}
		if first, ok = l.Next(); !ok {
			return WmoHeader{}, fmt.Errorf("%w: reached end of file", ErrInvalidWmoHeader)
		}
	}

	awips, ok := l.Next()
	if !ok {
		return WmoHeader{}, fmt.Errorf("%w: reached end of file", ErrInvalidWmoHeader)
	}
	return ParseWmoLines(sequence, first, awips)
}

func nextHeaderLine(l *stream.LineReader) (string, bool) {
	for {
		line, ok := l.Next()
		if !ok {
			return "", false
		}
		line = strings.TrimLeft(line, etx)
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}
}

// ParseWmoLines builds a header from the sequence, WMO heading and AWIPS
// identifier lines with their terminators removed. The sequence line may be
// empty.
func ParseWmoLines(sequence, wmo, awips string) (WmoHeader, error) {
	h := WmoHeader{SequenceNumber: strings.TrimRight(sequence, " ")}

	tokens := strings.Fields(wmo)
	switch {
	case len(tokens) < 3 || len(tokens) > 4:
		return h, fmt.Errorf("%w: %d WMO tokens in %q", ErrInvalidWmoHeader, len(tokens), wmo)
	case len(tokens[0]) != 6:
		return h, fmt.Errorf("%w: WMO identifier %q", ErrInvalidWmoHeader, tokens[0])
	case len(tokens[1]) != 4:
		return h, fmt.Errorf("%w: ICAO %q", ErrInvalidWmoHeader, tokens[1])
	case len(tokens[2]) != 6:
		return h, fmt.Errorf("%w: date/time %q", ErrInvalidWmoHeader, tokens[2])
	case len(tokens) == 4 && len(tokens[3]) != 3:
		return h, fmt.Errorf("%w: BBB indicator %q", ErrInvalidWmoHeader, tokens[3])
	}
	h.DataType = tokens[0][0:2]
	h.GeographicDesignator = tokens[0][2:4]
	h.BulletinID = tokens[0][4:6]
	h.ICAO = tokens[1]
	h.DateTime = tokens[2]
	if len(tokens) == 4 {
		h.BBBIndicator = tokens[3]
	}

	// some offices pad short identifiers
	awips = strings.TrimRight(awips, " ")
	if len(awips) < 4 || len(awips) > 6 {
		return h, fmt.Errorf("%w: AWIPS identifier %q", ErrInvalidWmoHeader, awips)
	}
	h.ProductCategory = awips[0:3]
	h.ProductDesignator = awips[3:]
	return h, nil
}

// AwipsID is the product category and designator, eg TORLSX.
func (h WmoHeader) AwipsID() string {
	return h.ProductCategory + h.ProductDesignator
}

func (h WmoHeader) String() string {
	s := fmt.Sprintf("%s%s%s %s %s", h.DataType, h.GeographicDesignator, h.BulletinID, h.ICAO, h.DateTime)
	if h.BBBIndicator != "" {
		s += " " + h.BBBIndicator
	}
	return s + " " + h.AwipsID()
}
