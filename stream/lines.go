package stream

import (
	"bufio"
	"bytes"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Text products terminate lines with CR CR LF; older feeds use CR LF, a bare
// CR or a bare LF. ScanLines accepts exactly one of those as a terminator, so
// "A\r\rB" is a line, an empty line and another line.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexAny(data, "\r\n")
	if i < 0 {
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
	if data[i] == '\n' {
		return i + 1, data[:i], nil
	}

	// CR, CR LF or CR CR LF; the next two bytes decide which
	rest := data[i+1:]
	if !atEOF && (len(rest) == 0 || (rest[0] == '\r' && len(rest) == 1)) {
		return 0, nil, nil
	}
	switch {
	case len(rest) >= 1 && rest[0] == '\n':
		return i + 2, data[:i], nil
	case len(rest) >= 2 && rest[0] == '\r' && rest[1] == '\n':
		return i + 3, data[:i], nil
	}
	return i + 1, data[:i], nil
}

// Latin1Reader decodes ISO-8859-1 bytes to UTF-8. Bulletins are nominally
// ASCII but the occasional degree sign or accented place name shows up.
func Latin1Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
}

// LineReader reads terminated lines with one line of look-ahead, which the
// text-product parser needs to try a construct and back out of it.
type LineReader struct {
	scanner *bufio.Scanner
	pending []string
	eof     bool
}

// NewLineReader splits r with ScanLines after Latin-1 decoding.
func NewLineReader(r io.Reader) *LineReader {
	s := bufio.NewScanner(Latin1Reader(r))
	s.Buffer(make([]byte, 0, pageSize), 1<<20)
	s.Split(ScanLines)
	return &LineReader{scanner: s}
}

// Next returns the next line, or false at end of input.
func (l *LineReader) Next() (string, bool) {
	if n := len(l.pending); n > 0 {
		line := l.pending[n-1]
		l.pending = l.pending[:n-1]
		return line, true
	}
	if l.eof {
		return "", false
	}
	if !l.scanner.Scan() {
		l.eof = true
		return "", false
	}
	return l.scanner.Text(), true
}

// Peek returns the next line without consuming it.
func (l *LineReader) Peek() (string, bool) {
	line, ok := l.Next()
	if ok {
		l.Unread(line)
	}
	return line, ok
}

// Unread pushes line back so the next call to Next returns it.
func (l *LineReader) Unread(line string) {
	l.pending = append(l.pending, line)
}

// EOF reports whether all input has been consumed.
func (l *LineReader) EOF() bool {
	if len(l.pending) > 0 {
		return false
	}
	_, ok := l.Peek()
	return !ok
}

// Err returns the first non-EOF error hit by the underlying scanner.
func (l *LineReader) Err() error {
	return l.scanner.Err()
}
