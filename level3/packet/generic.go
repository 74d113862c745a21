package packet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// maxGenericLength bounds the allocation for a generic packet body. The
// largest products (DPR) stay well under this.
const maxGenericLength = 1 << 24

// GenericData Packet Codes 28 and 29 (Figure 3-15c). The body is an XDR
// encoded product object that is kept as is.
type GenericData struct {
	Code   uint16
	Length uint32
	Data   []byte
}

// PacketCode of the packet
func (p *GenericData) PacketCode() uint16 { return p.Code }

// DataSize covers the code, reserved halfword and length.
func (p *GenericData) DataSize() int { return int(p.Length) + 8 }

func newGenericData(code uint16, r io.Reader, _ logrus.Ext1FieldLogger) (Packet, error) {
	p := &GenericData{Code: code}
	var reserved uint16
	if err := binary.Read(r, binary.BigEndian, &reserved); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &p.Length); err != nil {
		return nil, err
	}
	if p.Length > maxGenericLength {
		return nil, fmt.Errorf("length of block %d", p.Length)
	}

	p.Data = make([]byte, p.Length)
	if _, err := io.ReadFull(r, p.Data); err != nil {
		return nil, err
	}
	return p, nil
}
