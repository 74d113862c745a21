// Package packet decodes the display packets nested inside the layers of a
// Level III product symbology block and the pages of a graphic alphanumeric
// block (RPG to Class 1 User ICD 2620001, section 3.3.3 and figures 3-3
// through 3-15).
//
// Packets carry no common framing. Each decoder receives the packet code
// already read by Create and consumes its own length fields, so callers must
// scope r to the enclosing layer or page with a stream.BoundedReader.
package packet

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/jddeal/go-wxdata/stream"
)

var (
	// ErrInvalidPacket is returned when a packet's fields are out of range or
	// its data runs past the enclosing layer.
	ErrInvalidPacket = errors.New("packet: invalid packet")
)

// Packet is a decoded display packet.
type Packet interface {
	PacketCode() uint16
	// DataSize is the number of bytes the packet occupied, code included.
	DataSize() int
}

// Header is the code and length prefix shared by the length-of-block packets.
type Header struct {
	Code   uint16
	Length uint16 // bytes following the length field
}

// PacketCode of the packet
func (h Header) PacketCode() uint16 { return h.Code }

// DataSize is the declared length plus the code and length fields.
func (h Header) DataSize() int { return int(h.Length) + 4 }

// Point is an I/J screen coordinate in 1/4 km units.
type Point struct {
	I int16
	J int16
}

// Vector is one unlinked vector.
type Vector struct {
	BeginI int16
	BeginJ int16
	EndI   int16
	EndJ   int16
}

// decodeBlock reads the length following code, hands fn a reader scoped to
// that many bytes and discards whatever fn left unread.
func decodeBlock(code uint16, r io.Reader, minLength, maxLength uint16,
	fn func(h Header, body io.Reader) (Packet, error)) (Packet, error) {
	h := Header{Code: code}
	if err := binary.Read(r, binary.BigEndian, &h.Length); err != nil {
		return nil, err
	}
	if h.Length < minLength || h.Length > maxLength {
		return nil, lengthError(h.Length)
	}

	body := stream.NewBoundedReader(r, int64(h.Length))
	p, err := fn(h, body)
	if err != nil {
		return nil, err
	}
	if _, err := body.Discard(); err != nil {
		return nil, err
	}
	return p, nil
}

// readRecords reads n fixed size records into a new slice.
func readRecords[T any](r io.Reader, n int) ([]T, error) {
	records := make([]T, n)
	if n == 0 {
		return records, nil
	}
	if err := binary.Read(r, binary.BigEndian, records); err != nil {
		return nil, err
	}
	return records, nil
}

// expandRLE expands run length encoded bytes whose high nibble is the run and
// low nibble the color level.
func expandRLE(data []byte) []uint8 {
	n := 0
	for _, c := range data {
		n += int(c >> 4)
	}
	levels := make([]uint8, 0, n)
	for _, c := range data {
		level := c & 0x0f
		for run := c >> 4; run > 0; run-- {
			levels = append(levels, level)
		}
	}
	return levels
}

// Unknown keeps the bytes of a packet code with no registered decoder. Packet
// lengths are code specific, so it holds everything left in the enclosing
// layer.
type Unknown struct {
	Code uint16
	Data []byte
}

// PacketCode of the packet
func (u *Unknown) PacketCode() uint16 { return u.Code }

// DataSize includes the code.
func (u *Unknown) DataSize() int { return len(u.Data) + 2 }

func newUnknown(code uint16, r io.Reader) (Packet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Unknown{Code: code, Data: data}, nil
}
