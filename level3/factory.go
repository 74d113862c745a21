package level3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/stream"
)

// Message is implemented by every decoded Level III message.
type Message interface {
	MessageHeader() MessageHeader
	// DataSize is the number of bytes following the message header.
	DataSize() int
}

// Base carries the framing shared by all message types.
type Base struct {
	Header MessageHeader
	Size   int
}

// MessageHeader implements Message.
func (b Base) MessageHeader() MessageHeader { return b.Header }

// DataSize implements Message.
func (b Base) DataSize() int { return b.Size }

type createFunc func(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error)

// create is built at init and only read afterwards.
var create = map[int16]createFunc{
	2:  newGeneralStatus,
	58: newStormTrackingInformation,
	59: newStormTrackingInformation,
	62: newTabularProduct,
	74: newRadarCodedMessage,
	75: newTabularProduct,
	77: newTabularProduct,
	82: newTabularProduct,
}

var graphicProducts = []int16{
	19, 20, 27, 30, 31, 32, 37, 38, 41, 48, 49, 50, 51, 56, 57, 61, 65, 66, 67, 78, 79, 80, 81, 84, 86, 90,
	93, 94, 97, 98, 99, 100, 101, 102, 104, 105, 107, 108, 109, 110, 111, 113, 132, 133, 134, 135, 137, 138,
	140, 141, 143, 144, 145, 146, 147, 149, 150, 151, 152, 153, 154, 155, 159, 161, 163, 165, 166, 167, 168,
	169, 170, 171, 172, 173, 174, 175, 176, 177, 178, 179, 193, 195, 196, 202,
}

func init() {
	for _, code := range graphicProducts {
		create[code] = newGraphicProduct
	}
}

// Known reports whether a message code has a registered decoder.
func Known(code int16) bool {
	_, ok := create[code]
	return ok
}

// Context holds the logger used while decoding messages.
type Context struct {
	Log logrus.Ext1FieldLogger
}

// NewContext returns a decoding context. A nil logger uses the logrus
// standard logger.
func NewContext(log logrus.Ext1FieldLogger) *Context {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "level3")
	}
	return &Context{Log: log}
}

// CreateMessage reads one message header and its body from r.
//
// The body is consumed to its declared length, so after any error other than
// ErrInvalidHeader, io.EOF or io.ErrUnexpectedEOF the reader sits on the next
// message.
func (ctx *Context) CreateMessage(r io.Reader) (Message, error) {
	header := MessageHeader{}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	base := Base{Header: header, Size: header.DataSize()}
	body := stream.NewBoundedReader(r, int64(base.Size))

	ctx.Log.Debugf("Found Message %d", header.Code)
	msg, err := ctx.dispatch(base, body)

	if skipped, derr := body.Discard(); derr != nil {
		return nil, derr
	} else if skipped > 0 {
		ctx.Log.Tracef("Message contents smaller than size: skipped %s bytes", color.CyanString("%d", skipped))
	}
	return msg, err
}

func (ctx *Context) dispatch(base Base, r io.Reader) (Message, error) {
	fn, ok := create[base.Header.Code]
	if !ok {
		ctx.Log.Warnf("Unknown message type: %d", base.Header.Code)
		return newUnknownMessage(base, r)
	}

	msg, err := fn(base, r, ctx.Log)
	if err != nil {
		if !errors.Is(err, ErrInvalidMessage) {
			err = fmt.Errorf("%w: code %d: %v", ErrInvalidMessage, base.Header.Code, err)
		}
		return nil, err
	}
	return msg, nil
}

// UnknownMessage keeps the body of a message code with no registered decoder.
type UnknownMessage struct {
	Base
	Data []byte
}

func newUnknownMessage(base Base, r io.Reader) (Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &UnknownMessage{Base: base, Data: data}, nil
}
