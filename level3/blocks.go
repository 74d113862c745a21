package level3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/jddeal/go-wxdata/level3/packet"
	"github.com/jddeal/go-wxdata/stream"
)

const (
	maxLayers        = 18
	maxPages         = 48
	maxLineCharacter = 80
	endOfPage        = 0xFFFF
)

// Layer is one data layer of the product symbology block.
type Layer struct {
	Divider int16
	Length  uint32
	Packets []packet.Packet
}

// SymbologyBlock is the product symbology block (RPG Figure 3-6, sheet 7).
type SymbologyBlock struct {
	BlockHeader
	NumberOfLayers uint16
	Layers         []Layer
}

// Packets returns the packets of every layer in order.
func (b *SymbologyBlock) Packets() []packet.Packet {
	var all []packet.Packet
	for _, l := range b.Layers {
		all = append(all, l.Packets...)
	}
	return all
}

// GraphicPage is one page of the graphic alphanumeric block.
type GraphicPage struct {
	Number  uint16
	Length  uint16
	Packets []packet.Packet
}

// GraphicBlock is the graphic alphanumeric block (RPG Figure 3-6, sheet 8).
type GraphicBlock struct {
	BlockHeader
	NumberOfPages uint16
	Pages         []GraphicPage
}

// TabularBlock is the tabular alphanumeric block (RPG Figure 3-6, sheet 9).
// Stand-alone tabular products carry the pages without the prolog, in which
// case BlockHeader is zero and the embedded headers are nil.
type TabularBlock struct {
	BlockHeader
	MessageHeader *MessageHeader
	Description   *DescriptionBlock
	NumberOfPages uint16
	Pages         [][]string
}

// readSymbologyBlock decodes a symbology block. A layer whose packets fail
// to decode keeps the packets read before the failure and the block carries
// on at the next layer.
func readSymbologyBlock(r io.Reader, log logrus.Ext1FieldLogger) (*SymbologyBlock, error) {
	b := &SymbologyBlock{}
	if err := binary.Read(r, binary.BigEndian, &b.BlockHeader); err != nil {
		return nil, err
	}
	if err := b.validate(1); err != nil {
		return nil, err
	}

	body := stream.NewBoundedReader(r, int64(b.Length)-blockHeaderLength)
	if err := binary.Read(body, binary.BigEndian, &b.NumberOfLayers); err != nil {
		return nil, err
	}
	if b.NumberOfLayers < 1 || b.NumberOfLayers > maxLayers {
		return nil, fmt.Errorf("%w: number of layers %d", ErrInvalidBlock, b.NumberOfLayers)
	}

	for i := 0; i < int(b.NumberOfLayers); i++ {
		log.Tracef("Layer %d", i)

		var layer Layer
		if err := binary.Read(body, binary.BigEndian, &layer.Divider); err != nil {
			return b, err
		}
		if err := binary.Read(body, binary.BigEndian, &layer.Length); err != nil {
			return b, err
		}

		var err error
		layer.Packets, err = readPackets(body, int64(layer.Length), log)
		b.Layers = append(b.Layers, layer)
		if err != nil {
			log.Debugf("Layer %d: %v", i, err)
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return b, err
			}
		}
	}

	if skipped, _ := body.Discard(); skipped > 0 {
		log.Tracef("Symbology block smaller than size: skipped %s bytes", color.CyanString("%d", skipped))
	}
	return b, nil
}

// readGraphicBlock decodes a graphic alphanumeric block.
func readGraphicBlock(r io.Reader, log logrus.Ext1FieldLogger) (*GraphicBlock, error) {
	b := &GraphicBlock{}
	if err := binary.Read(r, binary.BigEndian, &b.BlockHeader); err != nil {
		return nil, err
	}
	if err := b.validate(2); err != nil {
		return nil, err
	}

	body := stream.NewBoundedReader(r, int64(b.Length)-blockHeaderLength)
	if err := binary.Read(body, binary.BigEndian, &b.NumberOfPages); err != nil {
		return nil, err
	}
	if b.NumberOfPages < 1 || b.NumberOfPages > maxPages {
		return nil, fmt.Errorf("%w: number of pages %d", ErrInvalidBlock, b.NumberOfPages)
	}

	for i := 0; i < int(b.NumberOfPages); i++ {
		log.Tracef("Page %d", i+1)

		var page GraphicPage
		if err := binary.Read(body, binary.BigEndian, &page.Number); err != nil {
			return b, err
		}
		if err := binary.Read(body, binary.BigEndian, &page.Length); err != nil {
			return b, err
		}
		if int(page.Number) != i+1 {
			log.Warnf("Page out of order: Expected %d, found %d", i+1, page.Number)
		}

		var err error
		page.Packets, err = readPackets(body, int64(page.Length), log)
		b.Pages = append(b.Pages, page)
		if err != nil {
			log.Debugf("Page %d: %v", page.Number, err)
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return b, err
			}
		}
	}

	if skipped, _ := body.Discard(); skipped > 0 {
		log.Tracef("Graphic block smaller than size: skipped %s bytes", color.CyanString("%d", skipped))
	}
	return b, nil
}

// readPackets decodes packets until length bytes are used. The reader is left
// on the end of the layer or page even when a packet fails.
func readPackets(r io.Reader, length int64, log logrus.Ext1FieldLogger) ([]packet.Packet, error) {
	scope := stream.NewBoundedReader(r, length)

	var packets []packet.Packet
	for {
		p, err := packet.Create(scope, log)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if _, derr := scope.Discard(); derr != nil {
				return packets, derr
			}
			return packets, err
		}
		packets = append(packets, p)
	}

	// Create reports io.EOF for a source that ran dry before the layer did
	if _, err := scope.Discard(); err != nil {
		return packets, err
	}
	return packets, nil
}

// readTabularBlock decodes a tabular alphanumeric block. With skipHeader the
// block starts directly at the second divider.
func readTabularBlock(r io.Reader, skipHeader bool, log logrus.Ext1FieldLogger) (*TabularBlock, error) {
	b := &TabularBlock{}

	body := r
	if !skipHeader {
		if err := binary.Read(r, binary.BigEndian, &b.BlockHeader); err != nil {
			return nil, err
		}
		if err := b.validate(3); err != nil {
			return nil, err
		}
		bounded := stream.NewBoundedReader(r, int64(b.Length)-blockHeaderLength)
		defer func() { _, _ = bounded.Discard() }()
		body = bounded

		header := &MessageHeader{}
		if err := binary.Read(body, binary.BigEndian, header); err != nil {
			return nil, err
		}
		if err := header.Validate(); err != nil {
			return nil, err
		}
		description := &DescriptionBlock{}
		if err := binary.Read(body, binary.BigEndian, description); err != nil {
			return nil, err
		}
		if err := description.Validate(); err != nil {
			return nil, err
		}
		b.MessageHeader, b.Description = header, description
	}

	var divider int16
	if err := binary.Read(body, binary.BigEndian, &divider); err != nil {
		return nil, err
	}
	if err := binary.Read(body, binary.BigEndian, &b.NumberOfPages); err != nil {
		return nil, err
	}
	if divider != -1 {
		return nil, fmt.Errorf("%w: second block divider %d", ErrInvalidBlock, divider)
	}
	if b.NumberOfPages < 1 || b.NumberOfPages > maxPages {
		return nil, fmt.Errorf("%w: number of pages %d", ErrInvalidBlock, b.NumberOfPages)
	}

	decoder := charmap.ISO8859_1.NewDecoder()
	for i := 0; i < int(b.NumberOfPages); i++ {
		var lines []string
		for {
			var count uint16
			if err := binary.Read(body, binary.BigEndian, &count); err != nil {
				b.Pages = append(b.Pages, lines)
				return b, err
			}
			if count == endOfPage {
				break
			}
			if count > maxLineCharacter {
				b.Pages = append(b.Pages, lines)
				return b, fmt.Errorf("%w: %d characters on page %d", ErrInvalidBlock, count, i+1)
			}

			raw := make([]byte, count)
			if _, err := io.ReadFull(body, raw); err != nil {
				b.Pages = append(b.Pages, lines)
				return b, err
			}
			line, err := decoder.Bytes(raw)
			if err != nil {
				line = raw
			}
			lines = append(lines, string(line))
		}
		b.Pages = append(b.Pages, lines)
	}
	return b, nil
}
