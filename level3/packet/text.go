package packet

import (
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"
)

// TextSymbol Packet Codes 1, 2 and 8: text and special symbols written at a
// screen position. Code 8 carries a color level ahead of the position.
type TextSymbol struct {
	Header
	Value  uint16 // color level, code 8 only
	StartI int16
	StartJ int16
	Text   string
}

func newTextSymbol(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	minLength := uint16(4)
	if code == 8 {
		minLength = 6
	}

	return decodeBlock(code, r, minLength, 32767, func(h Header, body io.Reader) (Packet, error) {
		p := &TextSymbol{Header: h}
		if code == 8 {
			if err := binary.Read(body, binary.BigEndian, &p.Value); err != nil {
				return nil, err
			}
		}
		if err := binary.Read(body, binary.BigEndian, &p.StartI); err != nil {
			return nil, err
		}
		if err := binary.Read(body, binary.BigEndian, &p.StartJ); err != nil {
			return nil, err
		}

		text, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		p.Text = string(text)
		return p, nil
	})
}
