package archive2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/stream"
)

// Message is implemented by every decoded Level II message.
type Message interface {
	MessageHeader() MessageHeader
	// DataSize is the number of body bytes the message was decoded from.
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

// maxReservedSegments bounds the buffer reserved up front for a segmented
// message.
const maxReservedSegments = 32

type createFunc func(base Base, r io.Reader, log logrus.Ext1FieldLogger) (Message, error)

// create is built once and only read afterwards, so concurrent decoders can
// share it.
var create = map[uint8]createFunc{
	2:  newRDAStatusData,
	3:  newPerformanceMaintenanceData,
	5:  newVolumeCoveragePattern,
	13: newClutterFilterBypassMap,
	15: newClutterFilterMap,
	18: newRDAAdaptationData,
	31: newDigitalRadarData,
}

// Known reports whether a message type has a registered decoder.
func Known(messageType uint8) bool {
	_, ok := create[messageType]
	return ok
}

// Context holds the state carried between messages while decoding one LDM
// record: the logger and the buffer used to stitch segmented messages back
// together.
type Context struct {
	Log logrus.Ext1FieldLogger

	segments *stream.Buffer
	buffered bool
}

// NewContext returns a decoding context. A nil logger uses the logrus
// standard logger.
func NewContext(log logrus.Ext1FieldLogger) *Context {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "archive2")
	}
	return &Context{Log: log, segments: stream.NewBuffer(0)}
}

// CreateMessage reads one message header and its body from r.
//
// The body is always consumed to its declared length, so after any error
// other than ErrInvalidHeader, io.EOF or io.ErrUnexpectedEOF the reader sits
// on the next message. A nil Message with a nil error means a segment was
// buffered and the message is not complete yet.
func (ctx *Context) CreateMessage(r io.Reader) (Message, error) {
	header := MessageHeader{}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	if err := header.Validate(); err != nil {
		if header.MessageSize != 0 {
			ctx.Log.Warn(err)
		}
		return nil, err
	}

	dataSize := header.DataSize()
	body := stream.NewBoundedReader(r, int64(dataSize))

	if header.Segmented() {
		ctx.Log.Tracef("Found Message %d Segment %d/%d",
			header.MessageType, header.MessageSegmentNum, header.NumMessageSegments)

		if header.MessageSegmentNum == 1 {
			ctx.segments.Reset()
			// the segment count is untrusted; ReadFrom grows the buffer past
			// the reservation as segments actually arrive
			ctx.segments.Grow(dataSize * min(int(header.NumMessageSegments), maxReservedSegments))
			ctx.buffered = true
		}
		if !ctx.buffered {
			// a later segment without its first, nothing to attach it to
			if _, err := body.Discard(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: orphaned segment %d/%d of type %d", ErrInvalidMessage,
				header.MessageSegmentNum, header.NumMessageSegments, header.MessageType)
		}

		if _, err := ctx.segments.ReadFrom(body); err != nil || body.Remaining() > 0 {
			ctx.Log.Warn("End of file reached trying to buffer message")
			ctx.segments.Reset()
			ctx.buffered = false
			return nil, io.ErrUnexpectedEOF
		}
		if header.MessageSegmentNum != header.NumMessageSegments {
			return nil, nil
		}

		size := ctx.segments.Len()
		if err := ctx.segments.UpdateReadPointers(size); err != nil {
			return nil, err
		}
		if halfwords := size/2 + MessageHeaderLength/2; halfwords < largeMessageSize {
			header.MessageSize = uint16(halfwords)
		}
		ctx.buffered = false
		return ctx.dispatch(Base{Header: header, Size: size}, ctx.segments)
	}

	ctx.Log.Tracef("Found Message %d", header.MessageType)
	msg, err := ctx.dispatch(Base{Header: header, Size: dataSize}, body)

	// whatever the decoder left behind belongs to this message
	if skipped, derr := body.Discard(); derr != nil {
		return nil, derr
	} else if skipped > 0 {
		ctx.Log.Tracef("Message contents smaller than size: skipped %s bytes", color.CyanString("%d", skipped))
	}
	return msg, err
}

func (ctx *Context) dispatch(base Base, r io.Reader) (Message, error) {
	fn, ok := create[base.Header.MessageType]
	if !ok {
		ctx.Log.Debugf("Unknown message type: %d", base.Header.MessageType)
		return newUnknownMessage(base, r)
	}

	msg, err := fn(base, r, ctx.Log)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: type %d truncated: %v", ErrInvalidMessage, base.Header.MessageType, err)
		}
		return nil, err
	}
	return msg, nil
}

// UnknownMessage keeps the body of a message type with no registered decoder.
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
