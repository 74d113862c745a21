package awips

import (
	"regexp"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/stream"
)

var (
	reDateTime  = regexp.MustCompile(`^[0-9]{3,4} ([AP]M|UTC)`)
	reUgcString = regexp.MustCompile(`^[A-Z]{2}[CZ]([0-9]{3})?[->]`)
	reUgcEnd    = regexp.MustCompile(`[0-9]{6}-\s*$`)
	rePVtecLine = regexp.MustCompile(`^/[OTEX]\.`)
	reHVtecLine = regexp.MustCompile(`^/[A-Z0-9]{5}\.`)
)

const (
	locationTag  = "LAT...LON"
	motionTag    = "TIME...MOT...LOC"
	segmentClose = "$$"
)

// Vtec is a P-VTEC string and the H-VTEC string that may follow it.
type Vtec struct {
	PVtec PVtec
	HVtec string
}

// SegmentHeader is the UGC, VTEC and area lines opening a segment.
type SegmentHeader struct {
	UgcLines         []string
	Ugc              *Ugc // nil when the UGC lines do not decode
	Vtec             []Vtec
	UgcNames         []string
	IssuanceDateTime string
}

// Segment is one section of a bulletin, ended by $$.
type Segment struct {
	Header         *SegmentHeader
	ProductContent []string
	CodedLocation  *CodedLocation
	CodedMotion    *CodedTimeMotionLocation
	Impact         ImpactTags
}

// EventBegin is the begin time of the first P-VTEC string in the segment. It
// is zero when the event is already in effect or the segment has no VTEC.
func (s *Segment) EventBegin() time.Time {
	if s.Header == nil || len(s.Header.Vtec) == 0 {
		return time.Time{}
	}
	return s.Header.Vtec[0].PVtec.EventBegin
}

// EventEnd is the end time of the first P-VTEC string in the segment.
func (s *Segment) EventEnd() time.Time {
	if s.Header == nil || len(s.Header.Vtec) == 0 {
		return time.Time{}
	}
	return s.Header.Vtec[0].PVtec.EventEnd
}

// TextProductMessage is one bulletin of a text product file.
type TextProductMessage struct {
	Header        WmoHeader
	MndHeader     []string // mass news disseminator header
	OverviewBlock []string
	Segments      []*Segment
}

// ParseTextProductMessage reads one bulletin from l, leaving l on the line
// after its end of text. Only a bad WMO header fails the bulletin; coded
// lines that do not decode are logged and left nil.
func ParseTextProductMessage(l *stream.LineReader, log logrus.Ext1FieldLogger) (*TextProductMessage, error) {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "awips")
	}

	header, err := ParseWmoHeader(l)
	if err != nil {
		return nil, err
	}
	m := &TextProductMessage{Header: header}
	log.Debugf("Found bulletin %s", header)

	for i := 0; !l.EOF(); i++ {
		if i != 0 && tryParseEndOfProduct(l) {
			break
		}

		segment := &Segment{}
		if i == 0 {
			// segment headers may follow the AWIPS identifier directly
			if line, _ := l.Peek(); line != "" {
				segment.Header = tryParseSegmentHeader(l, log)
			}
			skipBlankLines(l)

			m.MndHeader = tryParseMndHeader(l)
			skipBlankLines(l)

			if segment.Header == nil {
				m.OverviewBlock = tryParseOverviewBlock(l)
				skipBlankLines(l)
			}
		}

		if segment.Header == nil {
			segment.Header = tryParseSegmentHeader(l, log)
			skipBlankLines(l)
		}

		segment.ProductContent = parseProductContent(l)
		skipBlankLines(l)

		parseCodedInformation(segment, header.ICAO, log)

		if segment.Header != nil || len(segment.ProductContent) > 0 {
			m.Segments = append(m.Segments, segment)
		}
	}

	log.Tracef("Bulletin %s: %s segments", header.AwipsID(), color.CyanString("%d", len(m.Segments)))
	return m, nil
}

func isEndOfText(line string) bool {
	return strings.HasPrefix(line, etx)
}

// consumeEndOfText removes the end of text character from the next line. A
// start of heading sharing the line is pushed back for the next bulletin.
func consumeEndOfText(l *stream.LineReader) {
	line, _ := l.Next()
	if rest := strings.TrimPrefix(line, etx); rest != "" {
		l.Unread(rest)
	}
}

func tryParseEndOfProduct(l *stream.LineReader) bool {
	line, ok := l.Peek()
	if !ok {
		return true
	}
	if isEndOfText(line) {
		consumeEndOfText(l)
		return true
	}

	// one trailing line may sit in front of the end of text
	var consumed []string
	line, _ = l.Next()
	consumed = append(consumed, line)
	for {
		next, ok := l.Peek()
		if !ok {
			return true
		}
		if isEndOfText(next) {
			consumeEndOfText(l)
			return true
		}
		if next != "" {
			break
		}
		l.Next()
		consumed = append(consumed, next)
	}

	unreadAll(l, consumed)
	return false
}

func skipBlankLines(l *stream.LineReader) {
	for {
		line, ok := l.Peek()
		if !ok || line != "" {
			return
		}
		l.Next()
	}
}

// readParagraph reads lines up to the next blank line or end of text.
func readParagraph(l *stream.LineReader) []string {
	var lines []string
	for {
		line, ok := l.Peek()
		if !ok || line == "" || isEndOfText(line) {
			return lines
		}
		l.Next()
		lines = append(lines, line)
	}
}

func unreadAll(l *stream.LineReader, lines []string) {
	for i := len(lines) - 1; i >= 0; i-- {
		l.Unread(lines[i])
	}
}

// tryParseMndHeader reads the product type, issuing office and issuance time
// paragraph. It ends with the issuance date and time.
func tryParseMndHeader(l *stream.LineReader) []string {
	lines := readParagraph(l)
	if len(lines) == 0 || !reDateTime.MatchString(lines[len(lines)-1]) {
		unreadAll(l, lines)
		return nil
	}
	return lines
}

// tryParseOverviewBlock reads a headline paragraph such as
// ...TORNADO WARNING REMAINS IN EFFECT...
func tryParseOverviewBlock(l *stream.LineReader) []string {
	if line, ok := l.Peek(); !ok || !strings.HasPrefix(line, ".") {
		return nil
	}
	return readParagraph(l)
}

func tryParseSegmentHeader(l *stream.LineReader, log logrus.Ext1FieldLogger) *SegmentHeader {
	line, ok := l.Peek()
	if !ok || !reUgcString.MatchString(line) {
		return nil
	}
	l.Next()

	header := &SegmentHeader{UgcLines: []string{line}}
	for !reUgcEnd.MatchString(line) {
		next, ok := l.Peek()
		if !ok || next == "" || rePVtecLine.MatchString(next) || reDateTime.MatchString(next) {
			break
		}
		line, _ = l.Next()
		header.UgcLines = append(header.UgcLines, line)
	}

	ugc, err := ParseUgc(header.UgcLines)
	if err != nil {
		log.Warnf("Segment header: %v", err)
	} else {
		header.Ugc = ugc
	}

	for {
		vtec, ok := tryParseVtecString(l, log)
		if !ok {
			break
		}
		header.Vtec = append(header.Vtec, vtec)
	}

	for {
		line, ok := l.Peek()
		if !ok || line == "" || isEndOfText(line) {
			break
		}
		l.Next()
		if reDateTime.MatchString(line) {
			header.IssuanceDateTime = line
			break
		}
		header.UgcNames = append(header.UgcNames, line)
	}
	return header
}

// tryParseVtecString reads a P-VTEC line and an optional H-VTEC line. A
// P-VTEC line that fails to decode is consumed and ends the VTEC group.
func tryParseVtecString(l *stream.LineReader, log logrus.Ext1FieldLogger) (Vtec, bool) {
	line, ok := l.Peek()
	if !ok || !rePVtecLine.MatchString(line) {
		return Vtec{}, false
	}
	l.Next()

	pvtec, err := ParsePVtec(line)
	vtec := Vtec{PVtec: pvtec}
	if next, ok := l.Peek(); ok && reHVtecLine.MatchString(next) {
		l.Next()
		vtec.HVtec = next
	}
	if err != nil {
		log.Warn(err)
		return Vtec{}, false
	}
	return vtec, true
}

// parseProductContent reads the segment body up to and excluding $$ or the
// end of text. Trailing blank lines are dropped.
func parseProductContent(l *stream.LineReader) []string {
	var content []string
	for {
		line, ok := l.Peek()
		if !ok || isEndOfText(line) {
			break
		}
		l.Next()
		if strings.HasPrefix(line, segmentClose) {
			break
		}
		content = append(content, line)
	}

	for len(content) > 0 && strings.TrimSpace(content[len(content)-1]) == "" {
		content = content[:len(content)-1]
	}
	return content
}

// codedGroup returns the line starting with tag and its indented
// continuation lines.
func codedGroup(content []string, tag string) []string {
	for i, line := range content {
		if !strings.HasPrefix(line, tag) {
			continue
		}
		end := i + 1
		for end < len(content) && strings.HasPrefix(content[end], " ") {
			end++
		}
		return content[i:end]
	}
	return nil
}

func parseCodedInformation(segment *Segment, wfo string, log logrus.Ext1FieldLogger) {
	var err error
	if lines := codedGroup(segment.ProductContent, locationTag); lines != nil {
		if segment.CodedLocation, err = ParseCodedLocation(lines, wfo); err != nil {
			log.Warn(err)
		}
	}
	if lines := codedGroup(segment.ProductContent, motionTag); lines != nil {
		if segment.CodedMotion, err = ParseCodedTimeMotionLocation(lines, wfo); err != nil {
			log.Warn(err)
		}
	}
	segment.Impact = parseImpactTags(segment.ProductContent)
}
