package level3

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/klauspost/compress/zlib"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/awips"
	"github.com/jddeal/go-wxdata/stream"
)

// zlibMagic is the first byte of a zlib stream with the default window.
const zlibMagic = 0x78

// ErrNoMessages is returned when a file holds a heading but no product.
var ErrNoMessages = errors.New("level3: no messages")

// File is a decoded Level III product file.
//
// Files received over NOAAPort look like:
//   - WMO heading and AWIPS identifier
//   - optionally, one or more concatenated zlib streams holding a CCB header,
//     a second WMO heading and the rest of the file
//   - the product messages
type File struct {
	log logrus.Ext1FieldLogger

	wmoHeader   awips.WmoHeader
	ccbHeader   *CCBHeader
	innerHeader *awips.WmoHeader
	messages    []Message
}

// NewFile returns an empty File that logs to log, or to the logrus standard
// logger when log is nil.
func NewFile(log logrus.Ext1FieldLogger) *File {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "level3")
	}
	return &File{log: log}
}

// LoadFile opens and decodes filename.
func (f *File) LoadFile(filename string) error {
	f.log.Debugf("LoadFile: %s", filename)

	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.LoadData(file)
}

// LoadData decodes a Level III stream. Decoding stops at the end of the
// stream or the first invalid message header; the messages read up to that
// point are kept.
func (f *File) LoadData(r io.Reader) error {
	br := bufio.NewReader(r)

	h, err := readWmoHeader(br)
	if err != nil {
		return err
	}
	f.wmoHeader = h
	f.log.Debugf("Data Type: %s ICAO: %s Date/Time: %s Category: %s", h.DataType, h.ICAO, h.DateTime, h.ProductCategory)

	src := br
	if b, err := br.Peek(1); err == nil && b[0] == zlibMagic {
		data, err := f.decompress(br)
		if err != nil {
			return err
		}
		src = bufio.NewReader(data)

		if f.ccbHeader, err = readCCBHeader(src, f.log); err != nil {
			return err
		}
		inner, err := readWmoHeader(src)
		if err != nil {
			return err
		}
		f.innerHeader = &inner
	}

	return f.readMessages(src)
}

// decompress inflates consecutive zlib streams while the next byte still
// looks like a zlib header.
func (f *File) decompress(br *bufio.Reader) (*stream.Buffer, error) {
	data := stream.NewBuffer(0)
	for {
		b, err := br.Peek(1)
		if err != nil || b[0] != zlibMagic {
			break
		}

		// bufio.Reader is an io.ByteReader, so inflation stops exactly at the
		// end of each stream
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("level3: zlib: %w", err)
		}
		n, err := data.ReadFrom(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("level3: zlib: %w", err)
		}
		f.log.Tracef("Inflated %s bytes", color.CyanString("%d", n))
	}

	f.log.Tracef("Decompressed data size = %s bytes", color.CyanString("%d", data.Len()))
	return data, data.UpdateReadPointers(data.Len())
}

func (f *File) readMessages(r io.Reader) error {
	ctx := NewContext(f.log)
	for {
		msg, err := ctx.CreateMessage(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, ErrInvalidHeader) {
				if len(f.messages) == 0 {
					return err
				}
				f.log.Warn(err)
				break
			}
			if errors.Is(err, ErrInvalidMessage) {
				f.log.Warn(err)
				continue
			}
			return err
		}
		f.messages = append(f.messages, msg)
	}

	f.log.Debugf("Decoded %s messages", color.CyanString("%d", len(f.messages)))
	if len(f.messages) == 0 {
		return ErrNoMessages
	}
	return nil
}

// readWmoHeader reads the heading lines of a binary product one line at a
// time so that nothing past the AWIPS identifier is consumed.
func readWmoHeader(br *bufio.Reader) (awips.WmoHeader, error) {
	var sequence string
	if b, err := br.Peek(1); err == nil && b[0] == 0x01 {
		if _, err := readHeaderLine(br); err != nil {
			return awips.WmoHeader{}, err
		}
		var err error
		if sequence, err = readHeaderLine(br); err != nil {
			return awips.WmoHeader{}, err
		}
	}

	wmo, err := readHeaderLine(br)
	if err != nil {
		return awips.WmoHeader{}, err
	}
	id, err := readHeaderLine(br)
	if err != nil {
		return awips.WmoHeader{}, err
	}
	return awips.ParseWmoLines(sequence, wmo, id)
}

// maxHeaderLine bounds the search for a line terminator in binary input.
const maxHeaderLine = 128

func readHeaderLine(br *bufio.Reader) (string, error) {
	var line []byte
	for len(line) <= maxHeaderLine {
		c, err := br.ReadByte()
		if err != nil {
			return "", fmt.Errorf("%w: %v", awips.ErrInvalidWmoHeader, err)
		}
		if c == '\n' {
			return strings.TrimRight(string(line), "\r "), nil
		}
		line = append(line, c)
	}
	return "", fmt.Errorf("%w: line too long", awips.ErrInvalidWmoHeader)
}

// WmoHeader is the outer heading of the file.
func (f *File) WmoHeader() awips.WmoHeader { return f.wmoHeader }

// CCBHeader is the communications control block of a zlib wrapped file, nil
// otherwise.
func (f *File) CCBHeader() *CCBHeader { return f.ccbHeader }

// InnerHeader is the heading inside the zlib wrapper, nil when there is none.
func (f *File) InnerHeader() *awips.WmoHeader { return f.innerHeader }

// MessageCount is the number of messages decoded.
func (f *File) MessageCount() int { return len(f.messages) }

// Message returns the i-th message in file order.
func (f *File) Message(i int) Message {
	if i < 0 || i >= len(f.messages) {
		return nil
	}
	return f.messages[i]
}

// Messages returns every message in file order.
func (f *File) Messages() []Message { return f.messages }

// MessageHeader is the header of the first message.
func (f *File) MessageHeader() *MessageHeader {
	if len(f.messages) == 0 {
		return nil
	}
	h := f.messages[0].MessageHeader()
	return &h
}

// DescriptionBlock is the product description block of the first product.
func (f *File) DescriptionBlock() *DescriptionBlock {
	for _, m := range f.messages {
		if p, ok := m.(Product); ok {
			return p.DescriptionBlock()
		}
	}
	return nil
}

func (f *File) graphicProduct() *GraphicProduct {
	for _, m := range f.messages {
		switch p := m.(type) {
		case *GraphicProduct:
			return p
		case *StormTrackingInformation:
			return &p.GraphicProduct
		}
	}
	return nil
}

// SymbologyBlock of the first graphic product.
func (f *File) SymbologyBlock() *SymbologyBlock {
	if p := f.graphicProduct(); p != nil {
		return p.Symbology
	}
	return nil
}

// GraphicBlock of the first graphic product.
func (f *File) GraphicBlock() *GraphicBlock {
	if p := f.graphicProduct(); p != nil {
		return p.Graphic
	}
	return nil
}

// TabularBlock of the first graphic or stand-alone tabular product.
func (f *File) TabularBlock() *TabularBlock {
	for _, m := range f.messages {
		switch p := m.(type) {
		case *GraphicProduct:
			return p.Tabular
		case *StormTrackingInformation:
			return p.Tabular
		case *TabularProduct:
			return p.Tabular
		}
	}
	return nil
}
